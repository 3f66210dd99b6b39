package app

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/limitless-hr/hris/internal/audit/http"
	"github.com/limitless-hr/hris/internal/auth"
	documentshttp "github.com/limitless-hr/hris/internal/documents/http"
	"github.com/limitless-hr/hris/internal/employees"
	"github.com/limitless-hr/hris/internal/identity"
	"github.com/limitless-hr/hris/internal/observability"
	"github.com/limitless-hr/hris/internal/rbac"
	"github.com/limitless-hr/hris/internal/shared"
	"github.com/limitless-hr/hris/internal/view"
	"github.com/limitless-hr/hris/jobs"
	"github.com/limitless-hr/hris/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Directory        *identity.Directory
	Policy           *rbac.Policy
	Guard            rbac.Guard
	AuthHandler      *auth.Handler
	EmployeesHandler *employees.Handler
	DocumentsHandler *documentshttp.Handler
	AuditHandler     *audithttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewGuard builds the route guard shared by every protected handler.
func NewGuard(templates *view.Engine, metrics *observability.Metrics, logger *slog.Logger) rbac.Guard {
	guard := rbac.Guard{
		Resolve:   auth.EvaluatorFor,
		Fallback:  view.GuardPages{Engine: templates, Logger: logger},
		LoginPath: "/auth/login",
		Logger:    logger,
	}
	if metrics != nil {
		guard.Observer = metrics
	}
	return guard
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Directory:      params.Directory,
		Policy:         params.Policy,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.With(params.Guard.Require()).Get("/", dashboard(params))

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.EmployeesHandler != nil {
		params.EmployeesHandler.MountRoutes(r)
	}
	if params.DocumentsHandler != nil {
		params.DocumentsHandler.MountRoutes(r)
	}
	if params.AuditHandler != nil {
		params.AuditHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// dashboardTile is one card on the home page, shown only to holders of
// one of its permissions.
type dashboardTile struct {
	guard rbac.Component
	body  template.HTML
}

var dashboardTiles = []dashboardTile{
	{
		guard: rbac.Component{Permissions: []rbac.Permission{rbac.PermEmployees, rbac.PermHR}},
		body:  `<h2>Employees</h2><p><a href="/employees">Employee directory</a></p>`,
	},
	{
		guard: rbac.Component{Permissions: []rbac.Permission{rbac.PermProfile}},
		body:  `<h2>My profile</h2><p><a href="/profile">View my record</a></p>`,
	},
	{
		guard: rbac.Component{Permissions: []rbac.Permission{rbac.PermPayroll}, ShowFallback: true},
		body:  `<h2>Payroll</h2><p><a href="/payroll">Payroll records</a></p>`,
	},
	{
		guard: rbac.Component{Permissions: []rbac.Permission{rbac.PermDocuments}},
		body:  `<h2>Documents</h2><p><a href="/documents">Documents awaiting signature</a></p>`,
	},
	{
		guard: rbac.Component{
			Permissions: []rbac.Permission{rbac.PermAll},
			Fallback:    `<h2>Administration</h2><p>Ask an administrator for user or audit changes.</p>`,
		},
		body: `<h2>Administration</h2><p><a href="/admin/users">Users</a> · <a href="/audit">Audit log</a></p>`,
	},
}

type dashboardData struct {
	Tiles []template.HTML
}

func dashboard(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := auth.AccessFromContext(r.Context())
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}

		tiles := make([]template.HTML, 0, len(dashboardTiles))
		for _, tile := range dashboardTiles {
			tiles = append(tiles, tile.guard.Render(access.Evaluator, tile.body))
		}
		access.Audit.LogAccess(r.Context(), "dashboard", "view", nil)

		data := view.TemplateData{
			Title:       "Dashboard",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			User:        auth.CurrentUser(r),
			Data:        dashboardData{Tiles: tiles},
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
		}
	}
}

// staticCacheHandler wraps a file server with a one hour Cache-Control.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
