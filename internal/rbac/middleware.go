package rbac

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Decision is the outcome of evaluating a guard.
type Decision int

const (
	// DecisionUnauthenticated means no identity is signed in.
	DecisionUnauthenticated Decision = iota
	// DecisionDenied means the identity lacks every required token.
	DecisionDenied
	// DecisionAllowed means the wrapped content may render.
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionDenied:
		return "denied"
	case DecisionAllowed:
		return "allowed"
	}
	return "unknown"
}

// Decide evaluates perms with OR semantics. It is recomputed on every call.
func Decide(ev *Evaluator, perms []Permission) Decision {
	if !ev.IsAuthenticated() {
		return DecisionUnauthenticated
	}
	if ev.HasAny(perms...) {
		return DecisionAllowed
	}
	return DecisionDenied
}

// Denial carries what an access-denied page shows.
type Denial struct {
	Role     Role
	Required []Permission
}

// Fallback renders the pages shown when a route guard refuses a request.
type Fallback interface {
	AuthenticationRequired(w http.ResponseWriter, r *http.Request, loginPath string)
	AccessDenied(w http.ResponseWriter, r *http.Request, denial Denial)
}

// DenialObserver is notified about refused requests, e.g. for metrics.
type DenialObserver interface {
	ObserveGuardDecision(decision string)
}

// Guard wraps whole routes behind a permission check.
type Guard struct {
	// Resolve returns the evaluator bound to the request's session.
	Resolve   func(r *http.Request) *Evaluator
	Fallback  Fallback
	LoginPath string
	Observer  DenialObserver
	Logger    *slog.Logger
}

// Require lets the request through when the user holds any of perms.
func (g Guard) Require(perms ...string) func(http.Handler) http.Handler {
	required := ParsePermissions(perms...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ev *Evaluator
			if g.Resolve != nil {
				ev = g.Resolve(r)
			}
			decision := Decide(ev, required)
			if g.Observer != nil {
				g.Observer.ObserveGuardDecision(decision.String())
			}
			switch decision {
			case DecisionAllowed:
				next.ServeHTTP(w, r)
			case DecisionUnauthenticated:
				g.fallback().AuthenticationRequired(w, r, g.loginPath())
			default:
				subject, _ := ev.Subject()
				if g.Logger != nil {
					g.Logger.Info("rbac access denied",
						slog.String("path", r.URL.Path),
						slog.String("role", string(subject.Role)),
						slog.String("required", joinPermissions(required)))
				}
				g.fallback().AccessDenied(w, r, Denial{Role: subject.Role, Required: required})
			}
		})
	}
}

func (g Guard) fallback() Fallback {
	if g.Fallback == nil {
		return PlainFallback{}
	}
	return g.Fallback
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return "/auth/login"
	}
	return g.LoginPath
}

// PlainFallback writes text responses. Used when no template renderer is wired.
type PlainFallback struct{}

// AuthenticationRequired implements Fallback.
func (PlainFallback) AuthenticationRequired(w http.ResponseWriter, r *http.Request, loginPath string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, "Authentication Required\nPlease log in to access this page: %s\n", loginPath)
}

// AccessDenied implements Fallback.
func (PlainFallback) AccessDenied(w http.ResponseWriter, r *http.Request, denial Denial) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = fmt.Fprintf(w, "Access Denied\nYour role (%s) does not have permission to access this page.\nRequired permissions: %s\n",
		denial.Role, joinPermissions(denial.Required))
}
