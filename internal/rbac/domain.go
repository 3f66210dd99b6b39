package rbac

import (
	"sort"
	"strings"
)

// Role classifies an identity and selects its default permissions.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

// Roles lists the closed set of roles.
func Roles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleEmployee}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// Permission is an opaque capability token. Tokens have no hierarchy apart
// from PermAll, which satisfies every check.
type Permission string

// Known permission tokens. Callers may pass any other string; it simply
// never matches.
const (
	PermAll           Permission = "all"
	PermEmployees     Permission = "employees"
	PermPayroll       Permission = "payroll"
	PermAttendance    Permission = "attendance"
	PermLeave         Permission = "leave"
	PermRecruitment   Permission = "recruitment"
	PermEvaluation    Permission = "evaluation"
	PermNotifications Permission = "notifications"
	PermProfile       Permission = "profile"
	PermAssetsView    Permission = "assets_view"
	PermAssets        Permission = "assets"
	PermAnalytics     Permission = "analytics"
	PermProjects      Permission = "projects"
	PermHR            Permission = "hr"
	PermDocuments     Permission = "documents"
)

// PermissionSet is an unordered set of permission tokens.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from perms, skipping blanks.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Has reports exact membership. It does not expand the wildcard.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the members sorted by name.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subject is the minimal view of an authenticated identity the evaluator needs.
type Subject struct {
	ID   string
	Name string
	Role Role
}

// SubjectSource yields the current subject, if any.
type SubjectSource interface {
	Subject() (Subject, bool)
}

// ParsePermissions converts raw strings into tokens, dropping empties and
// duplicates while keeping the first-seen order. Tokens match exactly, as in
// HasPermission.
func ParsePermissions(raw ...string) []Permission {
	seen := make(map[Permission]struct{}, len(raw))
	out := make([]Permission, 0, len(raw))
	for _, r := range raw {
		p := Permission(r)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func joinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
