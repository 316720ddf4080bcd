package auth

import (
	"context"
)

// Auther implements Authenticator over an IdentityProvider and a
// TokenService. It holds no mutable state of its own, so a single instance
// is safe to share across concurrent requests.
type Auther struct {
	provider       IdentityProvider
	tokenService   TokenService
	tokenValidator TokenValidator
	logger         Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, config TokenConfig) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: NewTokenService(config, defLogger{}),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the default token service.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and, for verified accounts, issues an
// access token. Unverified accounts fail the same way bad credentials do:
// the caller only ever sees a generic unauthorized error.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error: %s", err)
		return "", CollapseAuthError(err)
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrUnauthorized
	}

	if verified, known := identityVerified(identity); known && !verified {
		s.logger.Warn("Login blocked for unverified account: %s", identifier)
		return "", CollapseAuthError(ErrAccountUnverified)
	}

	token, err := s.tokenService.Issue(identity, PurposeAccess)
	if err != nil {
		s.logger.Error("Login token issuance failed: %s", err)
		return "", err
	}

	return token, nil
}

// SessionFromToken validates a raw access token and converts its claims
// into a Session.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw, PurposeAccess)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed: %s", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims: %s", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession loads the user record behind a validated session.
// A missing user reads the same as a bad token.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier: %s", err)
		return nil, CollapseAuthError(err)
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
