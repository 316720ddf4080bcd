package auth

// UserIdentity adapts a User into the Identity interface for token generation.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

func (u UserIdentity) ID() string {
	return u.user.ID.String()
}

func (u UserIdentity) Username() string {
	return u.user.Username
}

func (u UserIdentity) Email() string {
	return u.user.Email
}

func (u UserIdentity) Role() string {
	return string(u.user.Role)
}

// Verified reports the email confirmation flag, used by login and the
// protected route guard.
func (u UserIdentity) Verified() bool {
	return u.user.EmailVerified
}

// VerifiedAwareIdentity is implemented by identities that can report email
// confirmation state.
type VerifiedAwareIdentity interface {
	Verified() bool
}

func identityVerified(identity Identity) (bool, bool) {
	if identity == nil {
		return false, false
	}
	if va, ok := identity.(VerifiedAwareIdentity); ok {
		return va.Verified(), true
	}
	return false, false
}
