package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyEmailMessage struct {
	Token      string `json:"token" doc:"Email verification token from the link"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

type VerifyEmailResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	AlreadyVerified bool   `json:"already_verified"`
}

// VerifyEmailHandler redeems an email verification token. Redemption is
// idempotent: a second click on the same link reports success with
// AlreadyVerified set, it never errors. Single use enforcement comes from
// the user row, not from token state.
type VerifyEmailHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

func NewVerifyEmailHandler(repo RepositoryManager, tokens TokenService) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(l Logger) *VerifyEmailHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.tokens.Validate(event.Token, PurposeEmailVerify)
	if err != nil {
		h.logger.Warn("email verification token rejected: %s", err)
		return CollapseAuthError(err)
	}

	user, err := h.repo.Users().GetByIdentifier(ctx, claims.Subject())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUnauthorized
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification")
	}

	resp := &VerifyEmailResponse{ID: user.ID.String(), Email: user.Email, Username: user.Username}

	if user.EmailVerified {
		resp.AlreadyVerified = true
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
		return nil
	}

	if _, err := h.repo.Users().ConfirmEmail(ctx, user.Email); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
