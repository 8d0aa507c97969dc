package permission

import (
	"fmt"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

const (
	ResourcePlan         = "plan"
	ResourceSubscription = "subscription"
	ResourceEntitlement  = "entitlement"
	ResourcePayment      = "payment"

	ActionRead     = "read"
	ActionWrite    = "write"
	ActionExtend   = "extend"
	ActionOverride = "override"
	ActionConfirm  = "confirm"
	ActionSync     = "sync"
)

var defaultPolicies = [][]string{
	{constants.RoleTenant, ResourcePlan, ActionRead},
	{constants.RoleTenant, ResourceSubscription, ActionRead},
	{constants.RoleTenant, ResourceSubscription, ActionWrite},
	{constants.RoleTenant, ResourceEntitlement, ActionRead},

	{constants.RoleSeller, ResourceSubscription, ActionExtend},

	{constants.RoleAdmin, ResourceSubscription, ActionOverride},
	{constants.RoleAdmin, ResourcePayment, ActionConfirm},
	{constants.RoleAdmin, ResourcePlan, ActionSync},
}

// Each role inherits everything granted to the one before it.
var defaultRoleChain = [][]string{
	{constants.RoleSeller, constants.RoleTenant},
	{constants.RoleAdmin, constants.RoleSeller},
	{constants.RoleSupAdmin, constants.RoleAdmin},
}

// EnsureDefaultPolicies adds any missing built-in policy. Existing rows,
// including operator additions, are left alone.
func (e *Enforcer) EnsureDefaultPolicies() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, p := range defaultPolicies {
		ok, err := e.enforcer.AddPolicy(p[0], p[1], p[2])
		if err != nil {
			e.logger.Errorw("failed to add permission policy", "error", err, "role", p[0], "resource", p[1], "action", p[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
		if ok {
			added++
		}
	}
	for _, g := range defaultRoleChain {
		ok, err := e.enforcer.AddGroupingPolicy(g[0], g[1])
		if err != nil {
			e.logger.Errorw("failed to add role inheritance", "error", err, "role", g[0], "inherits", g[1])
			return fmt.Errorf("failed to add role inheritance [%s, %s]: %w", g[0], g[1], err)
		}
		if ok {
			added++
		}
	}

	e.logger.Infow("default permissions ensured", "added", added)
	return nil
}
