package identity

import "github.com/limitless-hr/hris/internal/rbac"

// Identity is the authenticated user record held by a Store.
type Identity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	Department string    `json:"department"`
	Avatar     string    `json:"avatar,omitempty"`
}

// Subject projects the identity for permission checks.
func (i Identity) Subject() rbac.Subject {
	return rbac.Subject{ID: i.ID, Name: i.Name, Role: i.Role}
}

func (i Identity) valid() bool {
	return i.ID != "" && i.Email != "" && i.Role.Valid()
}
