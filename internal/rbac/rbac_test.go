package rbac

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	subject *Subject
}

func (s staticSource) Subject() (Subject, bool) {
	if s.subject == nil {
		return Subject{}, false
	}
	return *s.subject, true
}

func evaluatorFor(role Role) *Evaluator {
	return NewEvaluator(DefaultPolicy(), staticSource{subject: &Subject{ID: "1", Name: "Test", Role: role}})
}

func TestDefaultPolicyInvariants(t *testing.T) {
	p := DefaultPolicy()
	for _, role := range Roles() {
		assert.NotEmpty(t, p.Permissions(role), "role %s", role)
	}
	assert.Equal(t, []Permission{PermAll}, p.Permissions(RoleAdmin).Slice())
}

func TestNewPolicyRejectsBrokenGrants(t *testing.T) {
	grants := DefaultGrants()
	grants[RoleEmployee] = nil
	_, err := NewPolicy(grants)
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	grants = DefaultGrants()
	grants[RoleAdmin] = []Permission{PermAll, PermPayroll}
	_, err = NewPolicy(grants)
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	grants = DefaultGrants()
	grants[Role("contractor")] = []Permission{PermProfile}
	_, err = NewPolicy(grants)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestHasPermission(t *testing.T) {
	hr := evaluatorFor(RoleHR)
	assert.True(t, hr.HasPermission(PermPayroll))
	assert.True(t, hr.HasPermission(PermEmployees))
	assert.False(t, hr.HasPermission(PermAll))
	assert.False(t, hr.HasPermission(PermAssetsView))
	assert.False(t, hr.HasPermission("no-such-token"))
	assert.False(t, hr.HasPermission(""))

	emp := evaluatorFor(RoleEmployee)
	assert.True(t, emp.HasPermission(PermLeave))
	assert.False(t, emp.HasPermission(PermPayroll))

	admin := evaluatorFor(RoleAdmin)
	assert.True(t, admin.HasPermission(PermPayroll))
	assert.True(t, admin.HasPermission("anything-at-all"))
}

func TestUnauthenticatedHasNothing(t *testing.T) {
	ev := NewEvaluator(nil, staticSource{})
	assert.False(t, ev.HasPermission(PermProfile))
	assert.False(t, ev.HasAny())
	assert.False(t, ev.HasAll())
	assert.Empty(t, ev.Permissions())

	var nilEv *Evaluator
	assert.False(t, nilEv.HasPermission(PermProfile))
}

func TestHasAnyUsesOrSemantics(t *testing.T) {
	emp := evaluatorFor(RoleEmployee)
	assert.True(t, emp.HasAny(PermPayroll, PermLeave))
	assert.False(t, emp.HasAny(PermPayroll, PermEmployees))
	assert.True(t, emp.HasAny())

	assert.False(t, emp.HasAll(PermPayroll, PermLeave))
	assert.True(t, emp.HasAll(PermLeave, PermAttendance))
}

func TestParsePermissions(t *testing.T) {
	got := ParsePermissions("employees", "hr", "", "employees", "Payroll")
	assert.Equal(t, []Permission{PermEmployees, PermHR, Permission("Payroll")}, got)
}

func TestRouteAndComponentGuardsAgreeOnTokenCase(t *testing.T) {
	hr := evaluatorFor(RoleHR)
	children := template.HTML("children")

	rr := serveGuarded(t, hr, nil, "Payroll")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, hr.HasPermission("Payroll"))
	assert.Empty(t, Component{Permissions: []Permission{"Payroll"}}.Render(hr, children))

	rr = serveGuarded(t, hr, nil, " payroll")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDecide(t *testing.T) {
	assert.Equal(t, DecisionUnauthenticated, Decide(nil, []Permission{PermEmployees}))
	assert.Equal(t, DecisionUnauthenticated, Decide(NewEvaluator(nil, staticSource{}), []Permission{PermEmployees}))
	assert.Equal(t, DecisionDenied, Decide(evaluatorFor(RoleEmployee), []Permission{PermEmployees}))
	assert.Equal(t, DecisionAllowed, Decide(evaluatorFor(RoleHR), []Permission{PermEmployees}))
}

type recordingObserver struct {
	decisions []string
}

func (o *recordingObserver) ObserveGuardDecision(decision string) {
	o.decisions = append(o.decisions, decision)
}

func serveGuarded(t *testing.T, ev *Evaluator, observer DenialObserver, perms ...string) *httptest.ResponseRecorder {
	t.Helper()
	guard := Guard{
		Resolve:  func(*http.Request) *Evaluator { return ev },
		Observer: observer,
	}
	handler := guard.Require(perms...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("children"))
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/employees", nil))
	return rr
}

func TestGuardUnauthenticatedRendersLoginFallback(t *testing.T) {
	obs := &recordingObserver{}
	rr := serveGuarded(t, NewEvaluator(nil, staticSource{}), obs, "employees")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Authentication Required")
	assert.Contains(t, rr.Body.String(), "/auth/login")
	assert.NotContains(t, rr.Body.String(), "children")
	assert.Equal(t, []string{"unauthenticated"}, obs.decisions)
}

func TestGuardDeniedNamesRoleAndTokens(t *testing.T) {
	rr := serveGuarded(t, evaluatorFor(RoleEmployee), nil, "employees", "hr")

	require.Equal(t, http.StatusForbidden, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Access Denied")
	assert.Contains(t, body, "employee")
	assert.Contains(t, body, "employees, hr")
	assert.NotContains(t, body, "children")
}

func TestGuardAllowedRendersChildren(t *testing.T) {
	rr := serveGuarded(t, evaluatorFor(RoleHR), nil, "payroll", "all")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "children", rr.Body.String())
}

func TestComponentRender(t *testing.T) {
	children := template.HTML("<b>salary</b>")
	hr := evaluatorFor(RoleHR)
	emp := evaluatorFor(RoleEmployee)

	allowed := Component{Permissions: []Permission{PermPayroll}}
	assert.Equal(t, children, allowed.Render(hr, children))

	assert.Equal(t, template.HTML(""), allowed.Render(emp, children))

	custom := Component{Permissions: []Permission{PermPayroll}, Fallback: "<i>hidden</i>", ShowFallback: false}
	assert.Equal(t, template.HTML("<i>hidden</i>"), custom.Render(emp, children))

	placeholder := Component{Permissions: []Permission{PermPayroll, PermAll}, ShowFallback: true}
	out := string(placeholder.Render(emp, children))
	assert.True(t, strings.Contains(out, "Access restricted"))
	assert.Contains(t, out, "payroll, all")
}
