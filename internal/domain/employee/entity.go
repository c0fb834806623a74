package employee

import (
	"github.com/shopspring/decimal"
)

// Employee is the read-only roster view the payroll engine consumes.
type Employee struct {
	ID               string
	OrganizationID   string
	DepartmentID     *string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal // annual; nil falls back to the formula default
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
