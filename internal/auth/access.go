// Package auth wires the per-session identity store, permission evaluator,
// audit logger and data filter into each request, and serves login/logout.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/limitless-hr/hris/internal/audit"
	"github.com/limitless-hr/hris/internal/filter"
	"github.com/limitless-hr/hris/internal/identity"
	"github.com/limitless-hr/hris/internal/platform/storage"
	"github.com/limitless-hr/hris/internal/rbac"
	"github.com/limitless-hr/hris/internal/shared"
	"github.com/limitless-hr/hris/internal/view"
)

// Access bundles everything a handler needs to answer "who is this and
// what may they see".
type Access struct {
	Identity  *identity.Store
	Evaluator *rbac.Evaluator
	Audit     *audit.Logger
	Filter    *filter.Filter
}

type accessContextKey struct{}

// ContextWithAccess stores access in ctx.
func ContextWithAccess(ctx context.Context, access *Access) context.Context {
	return context.WithValue(ctx, accessContextKey{}, access)
}

// AccessFromContext extracts the request's Access, or nil.
func AccessFromContext(ctx context.Context) *Access {
	access, _ := ctx.Value(accessContextKey{}).(*Access)
	return access
}

// EvaluatorFor is the rbac.Guard resolver.
func EvaluatorFor(r *http.Request) *rbac.Evaluator {
	if access := AccessFromContext(r.Context()); access != nil {
		return access.Evaluator
	}
	return nil
}

// NewAccess assembles an Access over a browser's local storage.
func NewAccess(ctx context.Context, local storage.KV, directory *identity.Directory, policy *rbac.Policy, observer audit.FailureObserver, logger *slog.Logger) *Access {
	store := identity.NewStore(ctx, local, directory, logger)
	ev := rbac.NewEvaluator(policy, store)
	return &Access{
		Identity:  store,
		Evaluator: ev,
		Audit:     audit.NewLogger(local, store, logger, observer),
		Filter:    filter.New(ev),
	}
}

// MiddlewareConfig holds what the access middleware needs.
type MiddlewareConfig struct {
	Sessions  *shared.SessionManager
	Directory *identity.Directory
	Policy    *rbac.Policy
	Observer  audit.FailureObserver
	Logger    *slog.Logger
}

// Middleware rehydrates the session identity and attaches Access and audit
// client metadata to the request. It must run after the session middleware.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := audit.WithClientMeta(r.Context(), audit.ClientMeta{
				UserAgent:  r.UserAgent(),
				RemoteAddr: r.RemoteAddr,
				RequestID:  middleware.GetReqID(r.Context()),
				Path:       r.URL.Path,
			})
			access := NewAccess(ctx, cfg.Sessions.LocalStorage(sess), cfg.Directory, cfg.Policy, cfg.Observer, cfg.Logger)
			next.ServeHTTP(w, r.WithContext(ContextWithAccess(ctx, access)))
		})
	}
}

// CurrentUser is the page header's view of the signed-in identity.
func CurrentUser(r *http.Request) *view.CurrentUser {
	access := AccessFromContext(r.Context())
	if access == nil {
		return nil
	}
	id, ok := access.Identity.Current()
	if !ok {
		return nil
	}
	return &view.CurrentUser{Name: id.Name, Role: string(id.Role)}
}
