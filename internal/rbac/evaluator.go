package rbac

// Evaluator answers permission questions for the current subject. It holds
// no state of its own and every call re-reads the source.
type Evaluator struct {
	policy *Policy
	source SubjectSource
}

// NewEvaluator binds policy to a subject source. A nil source means nobody
// is signed in.
func NewEvaluator(policy *Policy, source SubjectSource) *Evaluator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Evaluator{policy: policy, source: source}
}

// Subject returns the current subject.
func (e *Evaluator) Subject() (Subject, bool) {
	if e == nil || e.source == nil {
		return Subject{}, false
	}
	return e.source.Subject()
}

// IsAuthenticated reports whether a subject is present.
func (e *Evaluator) IsAuthenticated() bool {
	_, ok := e.Subject()
	return ok
}

// HasPermission reports whether the current subject holds perm.
func (e *Evaluator) HasPermission(perm Permission) bool {
	subject, ok := e.Subject()
	if !ok {
		return false
	}
	return e.policy.Allows(subject.Role, perm)
}

// HasAny grants access when at least one of perms passes HasPermission.
// An empty list only requires authentication.
func (e *Evaluator) HasAny(perms ...Permission) bool {
	if !e.IsAuthenticated() {
		return false
	}
	if len(perms) == 0 {
		return true
	}
	for _, p := range perms {
		if e.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAll grants access only when every token passes.
func (e *Evaluator) HasAll(perms ...Permission) bool {
	if !e.IsAuthenticated() {
		return false
	}
	for _, p := range perms {
		if !e.HasPermission(p) {
			return false
		}
	}
	return true
}

// Permissions returns the subject's granted set, empty when signed out.
func (e *Evaluator) Permissions() PermissionSet {
	subject, ok := e.Subject()
	if !ok {
		return PermissionSet{}
	}
	return e.policy.Permissions(subject.Role)
}
