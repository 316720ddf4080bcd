package auth

import (
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded view of an access token's claims
type SessionObject struct {
	UserID         string       `json:"user_id,omitempty"`
	Role           string       `json:"role,omitempty"`
	Purpose        TokenPurpose `json:"purpose,omitempty"`
	Issuer         string       `json:"issuer,omitempty"`
	IssuedAt       *time.Time   `json:"issued_at,omitempty"`
	ExpirationDate *time.Time   `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetRole() string {
	return s.Role
}

func (s *SessionObject) GetPurpose() TokenPurpose {
	return s.Purpose
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// IsAtLeast checks the session role against the hierarchy
func (s *SessionObject) IsAtLeast(minRole UserRole) bool {
	return UserRole(s.Role).IsAtLeast(minRole)
}

func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	session := &SessionObject{
		UserID:  claims.UserID(),
		Role:    claims.Role(),
		Purpose: claims.Purpose(),
	}

	if iat := claims.IssuedAt(); !iat.IsZero() {
		session.IssuedAt = &iat
	}

	if exp := claims.Expires(); !exp.IsZero() {
		session.ExpirationDate = &exp
	}

	if jc, ok := claims.(*JWTClaims); ok {
		session.Issuer = jc.RegisteredClaims.Issuer
	}

	return session, nil
}
