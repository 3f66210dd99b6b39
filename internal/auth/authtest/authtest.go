// Package authtest spins up a session-aware router for handler tests.
package authtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/limitless-hr/hris/internal/auth"
	"github.com/limitless-hr/hris/internal/identity"
	"github.com/limitless-hr/hris/internal/platform/storage"
	"github.com/limitless-hr/hris/internal/rbac"
	"github.com/limitless-hr/hris/internal/shared"
)

const cookieName = "hris_test_session"

// Server is a browser-like client bound to a router backed by miniredis.
type Server struct {
	t        testing.TB
	Router   chi.Router
	Sessions *shared.SessionManager
	Redis    *miniredis.Miniredis
	cookie   *http.Cookie
}

// New builds a Server with session and access middleware installed.
func New(t testing.TB) *Server {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := shared.NewSessionManager(storage.NewRedisKV(client), cookieName, time.Hour, false)

	r := chi.NewRouter()
	r.Use(sessions.Middleware(nil))
	r.Use(auth.Middleware(auth.MiddlewareConfig{
		Sessions:  sessions,
		Directory: identity.DefaultDirectory(),
		Policy:    rbac.DefaultPolicy(),
	}))
	r.Post("/_test/login", func(w http.ResponseWriter, req *http.Request) {
		if !auth.AccessFromContext(req.Context()).Identity.Login(req.Context(), req.FormValue("email"), "test") {
			http.Error(w, "unknown", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return &Server{t: t, Router: r, Sessions: sessions, Redis: mr}
}

// Guard returns a route guard with plain-text fallbacks.
func (s *Server) Guard() rbac.Guard {
	return rbac.Guard{Resolve: auth.EvaluatorFor, LoginPath: "/auth/login"}
}

// LoginAs signs the browser in as the directory entry for email.
func (s *Server) LoginAs(email string) {
	s.t.Helper()
	rr := s.Do(s.Form(http.MethodPost, "/_test/login", url.Values{"email": {email}}))
	require.Equal(s.t, http.StatusNoContent, rr.Code, "login as %s", email)
}

// Get performs a GET request.
func (s *Server) Get(path string) *httptest.ResponseRecorder {
	return s.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// Form builds a form-encoded request.
func (s *Server) Form(method, path string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// JSON builds a request carrying body as JSON.
func (s *Server) JSON(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Do sends req with the current session cookie and remembers any new one.
func (s *Server) Do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			s.cookie = c
		}
	}
	return rr
}

// SessionID returns the session ID the browser currently holds.
func (s *Server) SessionID() string {
	if s.cookie == nil {
		return ""
	}
	return s.cookie.Value
}

// ForgetSession drops the cookie, like a fresh browser.
func (s *Server) ForgetSession() {
	s.cookie = nil
}
