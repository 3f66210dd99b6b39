package filter

// PersonalDetails is sensitive personal data attached to an employee.
type PersonalDetails struct {
	DateOfBirth      string `json:"dateOfBirth"`
	Address          string `json:"address"`
	NationalID       string `json:"nationalId"`
	EmergencyContact string `json:"emergencyContact"`
}

// Employee is a directory record. Phone, Salary and PersonalDetails may be
// redacted depending on who is looking.
type Employee struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Email           string                    `json:"email"`
	Department      string                    `json:"department"`
	Position        string                    `json:"position"`
	Phone           Optional[string]          `json:"phone,omitzero"`
	Salary          Optional[float64]         `json:"salary,omitzero"`
	PersonalDetails Optional[PersonalDetails] `json:"personalDetails,omitzero"`
}

// PayrollRecord is one pay period for one employee.
type PayrollRecord struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Period     string  `json:"period"`
	BaseSalary float64 `json:"baseSalary"`
	Allowances float64 `json:"allowances"`
	Deductions float64 `json:"deductions"`
	NetPay     float64 `json:"netPay"`
}
