package auth_test

import (
	"errors"
	"testing"

	auth "github.com/contactdeck/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestCollapseAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil stays nil",
			err:      nil,
			expected: nil,
		},
		{
			name:     "expired token collapses",
			err:      auth.ErrTokenExpired,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "bad signature collapses",
			err:      auth.ErrTokenSignature,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "purpose mismatch collapses",
			err:      auth.ErrTokenPurposeMismatch,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "bad credentials collapse",
			err:      auth.ErrMismatchedHashAndPassword,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "unverified account collapses",
			err:      auth.ErrAccountUnverified,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "not found collapses",
			err:      auth.ErrIdentityNotFound,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "rate limit collapses",
			err:      auth.ErrTooManyLoginAttempts,
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "authz passes through distinct",
			err:      auth.ErrForbidden,
			expected: auth.ErrForbidden,
		},
		{
			name:     "conflict passes through",
			err:      auth.ErrDuplicateEmail,
			expected: auth.ErrDuplicateEmail,
		},
		{
			name:     "legacy expired message collapses",
			err:      errors.New("some wrapper: token is expired"),
			expected: auth.ErrUnauthorized,
		},
		{
			name:     "legacy malformed message collapses",
			err:      errors.New("missing or malformed JWT"),
			expected: auth.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.CollapseAuthError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("infrastructure errors keep their identity", func(t *testing.T) {
		infra := goerrors.New("database connection lost", goerrors.CategoryInternal)
		result := auth.CollapseAuthError(infra)
		assert.Equal(t, infra, result)
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		plain := errors.New("disk full")
		result := auth.CollapseAuthError(plain)
		assert.Equal(t, plain, result)
	})
}

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured token expired error",
			err:      auth.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "different structured error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured malformed error",
			err:      auth.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "legacy malformed message",
			err:      errors.New("token is malformed: could not base64 decode"),
			expected: true,
		},
		{
			name:     "middleware missing token message",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsMalformedError(tt.err))
		})
	}
}

func TestIsDuplicateRecordError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured duplicate error",
			err:      auth.ErrDuplicateEmail,
			expected: true,
		},
		{
			name:     "sqlite unique violation",
			err:      errors.New("UNIQUE constraint failed: users.email"),
			expected: true,
		},
		{
			name:     "postgres unique violation",
			err:      errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("syntax error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsDuplicateRecordError(tt.err))
		})
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{
			name:     "unauthorized",
			err:      auth.ErrUnauthorized,
			category: goerrors.CategoryAuth,
			textCode: auth.TextCodeUnauthorized,
		},
		{
			name:     "forbidden",
			err:      auth.ErrForbidden,
			category: goerrors.CategoryAuthz,
			textCode: auth.TextCodeForbidden,
		},
		{
			name:     "duplicate email",
			err:      auth.ErrDuplicateEmail,
			category: goerrors.CategoryConflict,
			textCode: auth.TextCodeDuplicateEmail,
		},
		{
			name:     "too many attempts",
			err:      auth.ErrTooManyLoginAttempts,
			category: goerrors.CategoryRateLimit,
			textCode: auth.TextCodeTooManyAttempts,
		},
		{
			name:     "empty password",
			err:      auth.ErrNoEmptyString,
			category: goerrors.CategoryValidation,
			textCode: auth.TextCodeEmptyPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
		})
	}
}
