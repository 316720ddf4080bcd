package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is a read only role granted to unauthenticated contexts
	RoleGuest UserRole = "guest"
	// RoleUser is a regular account (ie. owns and manages its contacts)
	RoleUser UserRole = "user"
	// RoleAdmin outranks every regular account
	RoleAdmin UserRole = "admin"
)

var roleHierarchy = map[UserRole]int{
	RoleGuest: 0,
	RoleUser:  1,
	RoleAdmin: 2,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level. Unknown
// roles never pass, on either side of the comparison.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// Authorize allows the identity when its role equals or outranks required.
// Callers get ErrForbidden back, never a reason.
func Authorize(identity Identity, required UserRole) error {
	if identity == nil {
		return ErrForbidden
	}
	if !UserRole(identity.Role()).IsAtLeast(required) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeClaims is the claims-level variant of Authorize, used by
// middleware that has not loaded the full identity.
func AuthorizeClaims(claims AuthClaims, required UserRole) error {
	if claims == nil {
		return ErrForbidden
	}
	if !claims.IsAtLeast(string(required)) {
		return ErrForbidden
	}
	return nil
}
