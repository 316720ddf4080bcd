package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced alongside rich errors so API clients can branch
// without string matching.
const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeMissingToken     = "MISSING_TOKEN"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeTokenSignature   = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenPurpose     = "TOKEN_PURPOSE_MISMATCH"
	TextCodeUnauthorized     = "UNAUTHORIZED"
	TextCodeForbidden        = "FORBIDDEN"
	TextCodeUnverified       = "ACCOUNT_UNVERIFIED"
	TextCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	TextCodeTooManyAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrMismatchedHashAndPassword is returned when a password comparison fails.
// It reads like a generic credentials error on purpose.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredential is returned when no bearer token is present
var ErrMissingCredential = errors.New("missing authentication credential", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token is past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be parsed
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned when the signature does not verify
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTokenPurposeMismatch is returned when a token is presented to an
// endpoint that expects a different purpose claim
var ErrTokenPurposeMismatch = errors.New("token purpose mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeTokenPurpose).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is the generic boundary error every token or credential
// failure collapses into, see CollapseAuthError
var ErrUnauthorized = errors.New("could not validate credentials", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned for authenticated but disallowed callers
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrAccountUnverified is returned when a verified account is required
var ErrAccountUnverified = errors.New("email address not verified", errors.CategoryAuth).
	WithTextCode(TextCodeUnverified).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned on registration against a taken email
var ErrDuplicateEmail = errors.New("a user with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrTooManyLoginAttempts is returned when the cool down window is active
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty plaintext passwords
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims into a session
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode("SESSION_DECODE_ERROR").
	WithCode(errors.CodeUnauthorized)

// CollapseAuthError maps any token or credential validation failure to the
// generic ErrUnauthorized. The distinct sub-errors stay internal so the API
// boundary never works as an oracle for which check failed. Infrastructure
// failures keep their identity and category.
func CollapseAuthError(err error) error {
	if err == nil {
		return nil
	}

	var rich *errors.Error
	if errors.As(err, &rich) {
		switch rich.Category {
		case errors.CategoryAuth, errors.CategoryNotFound, errors.CategoryRateLimit:
			return ErrUnauthorized
		case errors.CategoryAuthz:
			return err
		}
		return err
	}

	if IsTokenExpiredError(err) || IsMalformedError(err) {
		return ErrUnauthorized
	}

	return err
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsDuplicateRecordError detects unique constraint violations across the
// drivers we care about, sqlite and postgres report them differently.
func IsDuplicateRecordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateEmail) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
