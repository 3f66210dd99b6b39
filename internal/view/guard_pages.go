package view

import (
	"log/slog"
	"net/http"

	"github.com/limitless-hr/hris/internal/rbac"
)

// GuardPages renders the route guard fallbacks with templates.
type GuardPages struct {
	Engine *Engine
	Logger *slog.Logger
}

type accessDeniedData struct {
	Role     string
	Required []string
	Back     string
}

// AuthenticationRequired implements rbac.Fallback.
func (g GuardPages) AuthenticationRequired(w http.ResponseWriter, r *http.Request, loginPath string) {
	data := TemplateData{Title: "Authentication Required", CurrentPath: r.URL.Path, Data: map[string]string{"LoginPath": loginPath}}
	if err := g.Engine.RenderStatus(w, http.StatusUnauthorized, "pages/auth_required.html", data); err != nil {
		g.logError("render auth required", err)
	}
}

// AccessDenied implements rbac.Fallback.
func (g GuardPages) AccessDenied(w http.ResponseWriter, r *http.Request, denial rbac.Denial) {
	required := make([]string, len(denial.Required))
	for i, p := range denial.Required {
		required[i] = string(p)
	}
	back := r.Referer()
	if back == "" {
		back = "/"
	}
	data := TemplateData{
		Title:       "Access Denied",
		CurrentPath: r.URL.Path,
		User:        &CurrentUser{Role: string(denial.Role)},
		Data:        accessDeniedData{Role: string(denial.Role), Required: required, Back: back},
	}
	if err := g.Engine.RenderStatus(w, http.StatusForbidden, "pages/access_denied.html", data); err != nil {
		g.logError("render access denied", err)
	}
}

func (g GuardPages) logError(msg string, err error) {
	if g.Logger != nil {
		g.Logger.Error(msg, slog.Any("error", err))
	}
}

var _ rbac.Fallback = GuardPages{}
