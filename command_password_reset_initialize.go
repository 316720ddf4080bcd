package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" doc:"Account email requesting the reset"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	// Accepted is true whenever the request was well formed. It says nothing
	// about whether the account exists.
	Accepted bool `json:"accepted"`
}

// InitializePasswordResetHandler issues a reset token for verified accounts
// and mails the link. Unknown or unverified addresses are accepted silently
// so the endpoint cannot be used to enumerate accounts.
type InitializePasswordResetHandler struct {
	repo    RepositoryManager
	tokens  TokenService
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, tokens TokenService, mailer Mailer, baseURL string) *InitializePasswordResetHandler {
	if mailer == nil {
		mailer = noopMailer{}
	}
	return &InitializePasswordResetHandler{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(l Logger) *InitializePasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &InitializePasswordResetResponse{Accepted: true}
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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if !user.EmailVerified {
		h.logger.Info("password reset requested for unverified account %s", event.Email)
		respond()
		return nil
	}

	token, err := h.tokens.Issue(NewIdentityFromUser(user), PurposePasswordReset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	link := fmt.Sprintf("%s/auth/password-reset/%s", h.baseURL, token)
	if err := h.mailer.SendResetLink(ctx, user.Email, user.Username, link); err != nil {
		h.logger.Error("failed to send reset email to %s: %s", user.Email, err)
	}

	respond()
	return nil
}
