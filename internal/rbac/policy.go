package rbac

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

// ErrInvalidPolicy reports a role map that breaks the policy invariants.
var ErrInvalidPolicy = errors.New("rbac: invalid policy")

// Policy is the static role to permission map compiled into a Casbin enforcer.
type Policy struct {
	grants   map[Role]PermissionSet
	enforcer *casbin.Enforcer
}

// DefaultGrants returns the built-in role to permission map.
func DefaultGrants() map[Role][]Permission {
	return map[Role][]Permission{
		RoleAdmin: {PermAll},
		RoleHR: {
			PermEmployees, PermPayroll, PermAttendance, PermLeave, PermRecruitment,
			PermEvaluation, PermNotifications, PermProfile, PermAssets, PermAnalytics,
			PermProjects, PermHR, PermDocuments,
		},
		RoleEmployee: {
			PermAttendance, PermLeave, PermNotifications, PermProfile, PermAssetsView,
			PermDocuments,
		},
	}
}

// DefaultPolicy compiles DefaultGrants. It panics only if the embedded model is broken.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultGrants())
	if err != nil {
		panic(err)
	}
	return p
}

// NewPolicy validates grants and loads them into an in-memory enforcer.
func NewPolicy(grants map[Role][]Permission) (*Policy, error) {
	sets := make(map[Role]PermissionSet, len(grants))
	for role, perms := range grants {
		sets[role] = NewPermissionSet(perms...)
	}
	if err := validateGrants(sets); err != nil {
		return nil, err
	}

	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("rbac: parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac: create casbin enforcer: %w", err)
	}
	for role, set := range sets {
		for perm := range set {
			if _, err := enforcer.AddPolicy(string(role), string(perm)); err != nil {
				return nil, fmt.Errorf("rbac: add policy %s/%s: %w", role, perm, err)
			}
		}
	}
	return &Policy{grants: sets, enforcer: enforcer}, nil
}

func validateGrants(sets map[Role]PermissionSet) error {
	for _, role := range Roles() {
		set, ok := sets[role]
		if !ok || len(set) == 0 {
			return fmt.Errorf("%w: role %s has no permissions", ErrInvalidPolicy, role)
		}
	}
	for role := range sets {
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidPolicy, role)
		}
	}
	admin := sets[RoleAdmin]
	if len(admin) != 1 || !admin.Has(PermAll) {
		return fmt.Errorf("%w: admin must map to exactly {all}", ErrInvalidPolicy)
	}
	return nil
}

// Permissions returns a copy of the set granted to role.
func (p *Policy) Permissions(role Role) PermissionSet {
	src := p.grants[role]
	out := make(PermissionSet, len(src))
	for perm := range src {
		out[perm] = struct{}{}
	}
	return out
}

// IsWildcard reports whether role holds PermAll.
func (p *Policy) IsWildcard(role Role) bool {
	return p.grants[role].Has(PermAll)
}

// Allows is the single-token check. The wildcard is tested before the
// enforcer so a role holding PermAll passes for any non-empty token.
func (p *Policy) Allows(role Role, perm Permission) bool {
	if perm == "" {
		return false
	}
	if p.IsWildcard(role) {
		return true
	}
	ok, err := p.enforcer.Enforce(string(role), string(perm))
	if err != nil {
		return false
	}
	return ok
}
