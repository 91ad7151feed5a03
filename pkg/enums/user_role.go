package enums

import "fmt"

// UserRole identifies the actor kind resolved from an access token.
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleOwner    UserRole = "OWNER"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleMaster   UserRole = "MASTER"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleOwner,
	UserRoleManager,
	UserRoleMaster,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// ManagesStores reports whether the role belongs to the store-management tier.
func (u UserRole) ManagesStores() bool {
	switch u {
	case UserRoleOwner, UserRoleManager, UserRoleMaster:
		return true
	default:
		return false
	}
}
