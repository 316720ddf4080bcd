package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RequestVerificationMessage struct {
	Email      string `json:"email" doc:"Account email requesting a new verification link"`
	OnResponse func(resp *RequestVerificationResponse)
}

func (p RequestVerificationMessage) Type() string { return "user.request_verification" }

type RequestVerificationResponse struct {
	// Accepted mirrors the reset flow: true for every well formed request,
	// regardless of whether the account exists or is already verified.
	Accepted bool `json:"accepted"`
}

// RequestVerificationHandler re-sends the email verification link for
// accounts that have not confirmed yet. Unknown and already verified
// addresses are accepted silently.
type RequestVerificationHandler struct {
	repo    RepositoryManager
	tokens  TokenService
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewRequestVerificationHandler(repo RepositoryManager, tokens TokenService, mailer Mailer, baseURL string) *RequestVerificationHandler {
	if mailer == nil {
		mailer = noopMailer{}
	}
	return &RequestVerificationHandler{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  defLogger{},
	}
}

func (h *RequestVerificationHandler) WithLogger(l Logger) *RequestVerificationHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RequestVerificationHandler) Execute(ctx context.Context, event RequestVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestVerificationHandler) execute(ctx context.Context, event RequestVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &RequestVerificationResponse{Accepted: true}
	respond := func() {
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
	}

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			respond()
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification request")
	}

	if user.EmailVerified {
		h.logger.Info("verification requested for already verified account %s", event.Email)
		respond()
		return nil
	}

	token, err := h.tokens.Issue(NewIdentityFromUser(user), PurposeEmailVerify)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	link := fmt.Sprintf("%s/auth/confirm/%s", h.baseURL, token)
	if err := h.mailer.SendVerificationLink(ctx, user.Email, user.Username, link); err != nil {
		h.logger.Error("failed to send verification email to %s: %s", user.Email, err)
	}

	respond()
	return nil
}
