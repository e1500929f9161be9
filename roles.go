package auth

// AllRoles returns the platform roles. The order is stable so clients can
// render it directly.
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleUser}
}

// IsValidRole checks if the role is one of the predefined roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// RoleIn reports whether role is a member of the required set. An empty set
// means no role restriction at all.
func RoleIn(role UserRole, required ...UserRole) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}
