// Package filter redacts record collections according to the caller's role
// and permissions. Inputs are never modified.
package filter

import "github.com/limitless-hr/hris/internal/rbac"

// Filter applies redaction rules for the subject behind an evaluator.
type Filter struct {
	ev *rbac.Evaluator
}

// New binds a Filter to ev.
func New(ev *rbac.Evaluator) *Filter {
	return &Filter{ev: ev}
}

// Employees returns redacted copies of records.
//
//   - wildcard holders see everything;
//   - hr sees salary only with payroll and personal details only with employees;
//   - employee sees phone, salary and personal details on their own record only;
//   - anyone else gets nothing.
func (f *Filter) Employees(records []Employee) []Employee {
	subject, ok := f.ev.Subject()
	if !ok {
		return []Employee{}
	}
	if f.ev.HasPermission(rbac.PermAll) {
		return cloneSlice(records)
	}

	out := make([]Employee, 0, len(records))
	switch subject.Role {
	case rbac.RoleHR:
		canPayroll := f.ev.HasPermission(rbac.PermPayroll)
		canEmployees := f.ev.HasPermission(rbac.PermEmployees)
		for _, rec := range records {
			if !canPayroll {
				rec.Salary = None[float64]()
			}
			if !canEmployees {
				rec.PersonalDetails = None[PersonalDetails]()
			}
			out = append(out, rec)
		}
	case rbac.RoleEmployee:
		for _, rec := range records {
			if rec.ID != subject.ID {
				rec.Salary = None[float64]()
				rec.PersonalDetails = None[PersonalDetails]()
				rec.Phone = None[string]()
			}
			out = append(out, rec)
		}
	}
	return out
}

// Payroll hides payroll from callers without payroll access and narrows
// employees to their own records.
func (f *Filter) Payroll(records []PayrollRecord) []PayrollRecord {
	if !f.ev.HasPermission(rbac.PermPayroll) && !f.ev.HasPermission(rbac.PermAll) {
		return []PayrollRecord{}
	}
	subject, _ := f.ev.Subject()
	if subject.Role != rbac.RoleEmployee {
		return cloneSlice(records)
	}
	out := make([]PayrollRecord, 0, len(records))
	for _, rec := range records {
		if rec.EmployeeID == subject.ID {
			out = append(out, rec)
		}
	}
	return out
}

// Admin passes records through only for wildcard holders.
func Admin[T any](f *Filter, records []T) []T {
	if !f.ev.HasPermission(rbac.PermAll) {
		return []T{}
	}
	return cloneSlice(records)
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
