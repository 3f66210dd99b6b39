package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limitless-hr/hris/internal/rbac"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestGuardPages(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	pages := GuardPages{Engine: engine}

	rr := httptest.NewRecorder()
	pages.AuthenticationRequired(rr, httptest.NewRequest(http.MethodGet, "/employees", nil), "/auth/login")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Authentication Required")
	assert.Contains(t, rr.Body.String(), `href="/auth/login"`)

	rr = httptest.NewRecorder()
	pages.AccessDenied(rr, httptest.NewRequest(http.MethodGet, "/payroll", nil), rbac.Denial{
		Role:     rbac.RoleEmployee,
		Required: []rbac.Permission{rbac.PermPayroll, rbac.PermAll},
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Access Denied")
	assert.Contains(t, rr.Body.String(), "employee")
	assert.Contains(t, rr.Body.String(), "payroll, all")
}

func TestFragmentEscapesInput(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	html, err := engine.Fragment("partials/sign_form", map[string]string{
		"Action":    "/documents/doc-001/sign",
		"CSRFToken": "tok",
		"Signer":    `<script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Contains(t, string(html), `action="/documents/doc-001/sign"`)
	assert.NotContains(t, string(html), "<script>")
}
