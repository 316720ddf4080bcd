package auth

import (
	"context"

	"github.com/contactdeck/go-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// purposeValidatorAdapter bridges the auth TokenValidator into the
// string-typed interface jwtware declares to avoid an import cycle.
type purposeValidatorAdapter struct {
	validator TokenValidator
}

func (a purposeValidatorAdapter) Validate(tokenString string, expectedPurpose string) (jwtware.AuthClaims, error) {
	claims, err := a.validator.Validate(tokenString, TokenPurpose(expectedPurpose))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewMiddlewareValidator wraps a TokenValidator for use in jwtware.Config.
func NewMiddlewareValidator(v TokenValidator) jwtware.TokenValidator {
	return purposeValidatorAdapter{validator: v}
}

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores claims in the standard context for downstream usage.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
