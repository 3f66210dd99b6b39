package rbac

import (
	"html/template"
)

// Component guards a fragment inside an already rendered page.
type Component struct {
	Permissions []Permission
	// Fallback replaces the children on denial when non-empty.
	Fallback template.HTML
	// ShowFallback enables the generic placeholder when Fallback is empty.
	ShowFallback bool
}

// Allowed reports whether the fragment's children may render.
func (c Component) Allowed(ev *Evaluator) bool {
	return ev.HasAny(c.Permissions...)
}

// Render returns children on allow and the configured fallback otherwise.
func (c Component) Render(ev *Evaluator, children template.HTML) template.HTML {
	if c.Allowed(ev) {
		return children
	}
	if c.Fallback != "" {
		return c.Fallback
	}
	if !c.ShowFallback {
		return ""
	}
	return template.HTML(`<div class="access-restricted" role="note">Access restricted. Required permissions: ` +
		template.HTMLEscapeString(joinPermissions(c.Permissions)) + `</div>`)
}
