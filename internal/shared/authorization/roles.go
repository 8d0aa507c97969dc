package authorization

import (
	"fmt"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

type UserRole string

const (
	RoleTenant   UserRole = constants.RoleTenant
	RoleSeller   UserRole = constants.RoleSeller
	RoleAdmin    UserRole = constants.RoleAdmin
	RoleSupAdmin UserRole = constants.RoleSupAdmin
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleTenant, RoleSeller, RoleAdmin, RoleSupAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role acts on behalf of the operator rather
// than a single tenant.
func (r UserRole) IsStaff() bool {
	return r == RoleSeller || r == RoleAdmin || r == RoleSupAdmin
}

func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return role, nil
}

// CanAccessTenant lets staff reach every tenant and tenant users only their own.
func CanAccessTenant(role UserRole, ownTenantID, tenantID uint) bool {
	if role.IsStaff() {
		return true
	}
	return role == RoleTenant && ownTenantID != 0 && ownTenantID == tenantID
}
