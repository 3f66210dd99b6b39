package identity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/limitless-hr/hris/internal/rbac"
)

// Directory maps known email addresses to identities.
type Directory struct {
	entries map[string]Identity
}

// NewDirectory indexes identities by case-folded email.
func NewDirectory(identities ...Identity) *Directory {
	d := &Directory{entries: make(map[string]Identity, len(identities))}
	for _, id := range identities {
		d.entries[d.key(id.Email)] = id
	}
	return d
}

// DefaultDirectory returns the demo accounts.
func DefaultDirectory() *Directory {
	return NewDirectory(
		Identity{ID: "1", Name: "Admin User", Email: "admin@limitless.com", Role: rbac.RoleAdmin, Department: "IT", Avatar: "/static/avatars/admin.png"},
		Identity{ID: "2", Name: "Sarah Johnson", Email: "hr@limitless.com", Role: rbac.RoleHR, Department: "Human Resources", Avatar: "/static/avatars/hr.png"},
		Identity{ID: "3", Name: "John Doe", Email: "employee@limitless.com", Role: rbac.RoleEmployee, Department: "Engineering", Avatar: "/static/avatars/employee.png"},
	)
}

// Lookup finds the identity registered for email.
func (d *Directory) Lookup(email string) (Identity, bool) {
	if d == nil {
		return Identity{}, false
	}
	id, ok := d.entries[d.key(email)]
	return id, ok
}

// List returns every identity ordered by ID.
func (d *Directory) List() []Identity {
	if d == nil {
		return []Identity{}
	}
	out := make([]Identity, 0, len(d.entries))
	for _, id := range d.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Casers are stateful, so each lookup folds with a fresh one.
func (d *Directory) key(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
