package auth_test

import (
	"testing"
	"time"

	auth "github.com/contactdeck/go-auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims_Subject(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user123",
		},
	}

	assert.Equal(t, "user123", claims.Subject())
}

func TestJWTClaims_UserID(t *testing.T) {
	t.Run("returns UID when present", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
			UID: "uid456",
		}

		assert.Equal(t, "uid456", claims.UserID())
	})

	t.Run("fallback to subject when UID is empty", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
		}

		assert.Equal(t, "user123", claims.UserID())
	})
}

func TestJWTClaims_Role(t *testing.T) {
	claims := &auth.JWTClaims{
		UserRole: "admin",
	}

	assert.Equal(t, "admin", claims.Role())
}

func TestJWTClaims_Purpose(t *testing.T) {
	claims := &auth.JWTClaims{
		TokenPurpose: auth.PurposePasswordReset,
	}

	assert.Equal(t, auth.PurposePasswordReset, claims.Purpose())
}

func TestJWTClaims_HasRole(t *testing.T) {
	claims := &auth.JWTClaims{
		UserRole: "user",
	}

	assert.True(t, claims.HasRole("user"))
	assert.False(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole(""))
}

func TestJWTClaims_IsAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		userRole string
		minRole  string
		expected bool
	}{
		{
			name:     "admin meets user minimum",
			userRole: "admin",
			minRole:  "user",
			expected: true,
		},
		{
			name:     "user meets user minimum",
			userRole: "user",
			minRole:  "user",
			expected: true,
		},
		{
			name:     "guest fails user minimum",
			userRole: "guest",
			minRole:  "user",
			expected: false,
		},
		{
			name:     "user fails admin minimum",
			userRole: "user",
			minRole:  "admin",
			expected: false,
		},
		{
			name:     "unknown role never passes",
			userRole: "superuser",
			minRole:  "guest",
			expected: false,
		},
		{
			name:     "unknown minimum never passes",
			userRole: "admin",
			minRole:  "owner",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &auth.JWTClaims{UserRole: tt.userRole}
			assert.Equal(t, tt.expected, claims.IsAtLeast(tt.minRole))
		})
	}
}

func TestJWTClaims_Times(t *testing.T) {
	t.Run("returns times when set", func(t *testing.T) {
		issued := time.Now().Add(-time.Minute).Truncate(time.Second)
		expires := time.Now().Add(time.Hour).Truncate(time.Second)

		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}

		assert.Equal(t, issued, claims.IssuedAt())
		assert.Equal(t, expires, claims.Expires())
	})

	t.Run("zero values when unset", func(t *testing.T) {
		claims := &auth.JWTClaims{}

		assert.True(t, claims.IssuedAt().IsZero())
		assert.True(t, claims.Expires().IsZero())
	})
}

func TestTokenPurpose_IsValid(t *testing.T) {
	assert.True(t, auth.PurposeAccess.IsValid())
	assert.True(t, auth.PurposeEmailVerify.IsValid())
	assert.True(t, auth.PurposePasswordReset.IsValid())
	assert.False(t, auth.TokenPurpose("refresh").IsValid())
	assert.False(t, auth.TokenPurpose("").IsValid())
}
