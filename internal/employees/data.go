// Package employees serves the employee directory, payroll and user
// administration views, each redacted for the caller.
package employees

import "github.com/limitless-hr/hris/internal/filter"

// Dataset is the static data feed behind the employee views.
type Dataset struct {
	Employees []filter.Employee
	Payroll   []filter.PayrollRecord
}

// SeedDataset returns the demo records. Employee IDs line up with the
// identity directory so self-views resolve.
func SeedDataset() Dataset {
	return Dataset{
		Employees: []filter.Employee{
			{
				ID: "1", Name: "Admin User", Email: "admin@limitless.com",
				Department: "IT", Position: "System Administrator",
				Phone:  filter.Some("+1 555 0100"),
				Salary: filter.Some(98000.0),
				PersonalDetails: filter.Some(filter.PersonalDetails{
					DateOfBirth: "1985-04-12", Address: "12 Harbor Rd, Springfield",
					NationalID: "A-100-200", EmergencyContact: "Jamie User +1 555 0199",
				}),
			},
			{
				ID: "2", Name: "Sarah Johnson", Email: "hr@limitless.com",
				Department: "Human Resources", Position: "HR Manager",
				Phone:  filter.Some("+1 555 0101"),
				Salary: filter.Some(85000.0),
				PersonalDetails: filter.Some(filter.PersonalDetails{
					DateOfBirth: "1988-09-30", Address: "44 Elm St, Springfield",
					NationalID: "B-300-400", EmergencyContact: "Mark Johnson +1 555 0198",
				}),
			},
			{
				ID: "3", Name: "John Doe", Email: "employee@limitless.com",
				Department: "Engineering", Position: "Software Engineer",
				Phone:  filter.Some("+1 555 0102"),
				Salary: filter.Some(72000.0),
				PersonalDetails: filter.Some(filter.PersonalDetails{
					DateOfBirth: "1992-01-05", Address: "7 Oak Ave, Springfield",
					NationalID: "C-500-600", EmergencyContact: "Jane Doe +1 555 0197",
				}),
			},
			{
				ID: "4", Name: "Maria Garcia", Email: "maria.garcia@limitless.com",
				Department: "Finance", Position: "Accountant",
				Phone:  filter.Some("+1 555 0103"),
				Salary: filter.Some(68000.0),
			},
		},
		Payroll: []filter.PayrollRecord{
			{ID: "pay-2026-09-1", EmployeeID: "1", Period: "2026-09", BaseSalary: 8166.67, Allowances: 400, Deductions: 1650, NetPay: 6916.67},
			{ID: "pay-2026-09-2", EmployeeID: "2", Period: "2026-09", BaseSalary: 7083.33, Allowances: 350, Deductions: 1420, NetPay: 6013.33},
			{ID: "pay-2026-09-3", EmployeeID: "3", Period: "2026-09", BaseSalary: 6000, Allowances: 250, Deductions: 1180, NetPay: 5070},
			{ID: "pay-2026-09-4", EmployeeID: "4", Period: "2026-09", BaseSalary: 5666.67, Allowances: 200, Deductions: 1100, NetPay: 4766.67},
		},
	}
}
