package employees

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limitless-hr/hris/internal/auth"
	"github.com/limitless-hr/hris/internal/filter"
	"github.com/limitless-hr/hris/internal/identity"
	"github.com/limitless-hr/hris/internal/platform/httpx"
	"github.com/limitless-hr/hris/internal/rbac"
)

// Handler serves the redacted record views.
type Handler struct {
	logger    *slog.Logger
	data      Dataset
	directory *identity.Directory
	guard     rbac.Guard
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, data Dataset, directory *identity.Directory, guard rbac.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, data: data, directory: directory, guard: guard}
}

// MountRoutes registers the record views on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(string(rbac.PermEmployees), string(rbac.PermHR))).Get("/employees", h.listEmployees)
	r.With(h.guard.Require(string(rbac.PermProfile))).Get("/profile", h.showProfile)
	r.With(h.guard.Require(string(rbac.PermPayroll))).Get("/payroll", h.listPayroll)
	r.With(h.guard.Require(string(rbac.PermAll))).Get("/admin/users", h.listUsers)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	records := access.Filter.Employees(h.data.Employees)
	access.Audit.LogAccess(r.Context(), "employees", "view", map[string]any{"count": len(records)})
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": records})
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	subject, _ := access.Evaluator.Subject()
	for _, rec := range access.Filter.Employees(h.data.Employees) {
		if rec.ID == subject.ID {
			access.Audit.LogAccess(r.Context(), "profile", "view", nil)
			httpx.JSON(w, http.StatusOK, rec)
			return
		}
	}
	httpx.RespondError(w, fmt.Errorf("%w: no employee record for %s", httpx.ErrNotFound, subject.Name))
}

func (h *Handler) listPayroll(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	records := access.Filter.Payroll(h.data.Payroll)
	access.Audit.LogAccess(r.Context(), "payroll", "view", map[string]any{"count": len(records)})
	httpx.JSON(w, http.StatusOK, map[string]any{"payroll": records})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	access := auth.AccessFromContext(r.Context())
	users := filter.Admin(access.Filter, h.directory.List())
	access.Audit.LogAccess(r.Context(), "users", "view", map[string]any{"count": len(users)})
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}
