package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenConfig carries everything the token service needs. It is passed in
// explicitly so tests can run with fixture secrets, changing SigningKey
// invalidates every outstanding token.
type TokenConfig struct {
	SigningKey    []byte
	SigningMethod string
	Issuer        string
	Audience      jwt.ClaimStrings
	// Per purpose TTLs. Zero values fall back to the defaults below.
	AccessTTL       time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

const (
	// DefaultAccessTTL keeps session tokens short lived
	DefaultAccessTTL = time.Hour
	// DefaultVerificationTTL gives verification links a week before they rot
	DefaultVerificationTTL = 7 * 24 * time.Hour
	// DefaultResetTTL keeps the reset window tight
	DefaultResetTTL = time.Hour
)

// TokenConfigFromConfig maps the app facing Config interface onto an
// explicit TokenConfig.
func TokenConfigFromConfig(cfg Config) TokenConfig {
	return TokenConfig{
		SigningKey:      []byte(cfg.GetSigningKey()),
		SigningMethod:   cfg.GetSigningMethod(),
		Issuer:          cfg.GetIssuer(),
		Audience:        jwt.ClaimStrings(cfg.GetAudience()),
		AccessTTL:       cfg.GetAccessTokenTTL(),
		VerificationTTL: cfg.GetVerificationTokenTTL(),
		ResetTTL:        cfg.GetResetTokenTTL(),
	}
}

// TokenService issues and validates purpose scoped bearer tokens
type TokenService interface {
	Issue(identity Identity, purpose TokenPurpose) (string, error)
	IssueWithTTL(identity Identity, purpose TokenPurpose, ttl time.Duration) (string, error)
	Validate(tokenString string, expected TokenPurpose) (AuthClaims, error)
	SignClaims(claims *JWTClaims) (string, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	config TokenConfig
	logger Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(config TokenConfig, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		config: config,
		logger: logger,
	}
}

// Issue creates a signed token for the identity using the TTL configured
// for the given purpose
func (ts *TokenServiceImpl) Issue(identity Identity, purpose TokenPurpose) (string, error) {
	return ts.IssueWithTTL(identity, purpose, ts.ttlFor(purpose))
}

// IssueWithTTL creates a signed token with an explicit TTL override
func (ts *TokenServiceImpl) IssueWithTTL(identity Identity, purpose TokenPurpose, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	if !purpose.IsValid() {
		return "", errors.New("unknown token purpose", errors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	if ttl <= 0 {
		ttl = ts.ttlFor(purpose)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.config.Issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:          identity.ID(),
		UserRole:     identity.Role(),
		TokenPurpose: purpose,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses a token string, verifies the signature and expiry, and
// checks the embedded purpose against the expected one. Expiry beats the
// purpose check so a stale token never reveals what it was minted for.
func (ts *TokenServiceImpl) Validate(tokenString string, expected TokenPurpose) (AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.config.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.config.Issuer))
	}
	if len(ts.config.Audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.config.Audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.config.SigningKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrUnableToDecodeSession
	}

	if claims.TokenPurpose != expected {
		return nil, ErrTokenPurposeMismatch
	}

	return claims, nil
}

func (ts *TokenServiceImpl) ttlFor(purpose TokenPurpose) time.Duration {
	switch purpose {
	case PurposeEmailVerify:
		if ts.config.VerificationTTL > 0 {
			return ts.config.VerificationTTL
		}
		return DefaultVerificationTTL
	case PurposePasswordReset:
		if ts.config.ResetTTL > 0 {
			return ts.config.ResetTTL
		}
		return DefaultResetTTL
	default:
		if ts.config.AccessTTL > 0 {
			return ts.config.AccessTTL
		}
		return DefaultAccessTTL
	}
}

func (ts *TokenServiceImpl) audience() jwt.ClaimStrings {
	if len(ts.config.Audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.config.Audience))
	copy(aud, ts.config.Audience)
	return aud
}
