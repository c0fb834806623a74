package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayCycle enum
type PayCycle string

const (
	PayCycleMonthly  PayCycle = "monthly"
	PayCycleBiWeekly PayCycle = "bi-weekly"
	PayCycleWeekly   PayCycle = "weekly"
)

// PayrollSettings - Organization payroll configuration (display only)
type PayrollSettings struct {
	ID             string
	OrganizationID string
	PayCycle       PayCycle
	PayDay         string
	Currency       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultSettings is synthesized when an organization has never saved settings.
func DefaultSettings(organizationID string) PayrollSettings {
	return PayrollSettings{
		OrganizationID: organizationID,
		PayCycle:       PayCycleMonthly,
		PayDay:         "Last working day of the month",
		Currency:       "USD",
	}
}

// PayrollStatus enum, shared by periods and records
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "DRAFT"
	PayrollStatusProcessing PayrollStatus = "PROCESSING"
	PayrollStatusApproved   PayrollStatus = "APPROVED"
	PayrollStatusPaid       PayrollStatus = "PAID"
	PayrollStatusCancelled  PayrollStatus = "CANCELLED"
)

func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusProcessing, PayrollStatusApproved, PayrollStatusPaid, PayrollStatusCancelled:
		return true
	}
	return false
}

// rank orders the forward lifecycle; cancelled sits outside it.
func (s PayrollStatus) rank() int {
	switch s {
	case PayrollStatusDraft:
		return 0
	case PayrollStatusProcessing:
		return 1
	case PayrollStatusApproved:
		return 2
	case PayrollStatusPaid:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether a period may move from s to next.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	if next == PayrollStatusCancelled {
		return s != PayrollStatusPaid && s != PayrollStatusCancelled
	}
	if s == PayrollStatusCancelled {
		return false
	}
	return next.rank() == s.rank()+1
}

// IsBehind reports whether s is earlier in the lifecycle than other.
func (s PayrollStatus) IsBehind(other PayrollStatus) bool {
	return s.rank() >= 0 && s.rank() < other.rank()
}

const PeriodTypeMonthly = "monthly"

// PayrollPeriod - one monthly window per organization
type PayrollPeriod struct {
	ID              string
	OrganizationID  string
	Label           string
	PeriodType      string
	StartDate       time.Time // inclusive
	EndDate         time.Time // exclusive
	PayDate         time.Time
	ProcessingDate  time.Time
	Status          PayrollStatus
	FormulaVersion  string
	TotalGrossPay   decimal.Decimal
	TotalNetPay     decimal.Decimal
	TotalDeductions decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Totals returns the period's stored aggregates.
func (p PayrollPeriod) Totals() PeriodTotals {
	return PeriodTotals{
		TotalGrossPay:   p.TotalGrossPay,
		TotalNetPay:     p.TotalNetPay,
		TotalDeductions: p.TotalDeductions,
	}
}

// PayrollRecord - one employee's pay for one period
type PayrollRecord struct {
	ID             string
	PeriodID       string
	EmployeeID     string
	OrganizationID string
	BasicSalary    decimal.Decimal
	RecordTotals
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	TotalHours    decimal.Decimal
	Status        PayrollStatus
	ApprovedBy    *string
	ApprovedAt    *time.Time
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeCode   *string
	DepartmentID   *string
	DepartmentName *string
	PeriodLabel    *string
}

// PayrollComponent - a single signed line item of a record
type PayrollComponent struct {
	ID          string
	RecordID    string
	Name        string
	Kind        ComponentKind
	Amount      decimal.Decimal // deductions are stored negative
	IsTaxable   bool
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Magnitude is the amount reported to callers.
func (c PayrollComponent) Magnitude() decimal.Decimal {
	return c.Amount.Abs()
}

// WorkedHours - aggregate from the attendance collaborator
type WorkedHours struct {
	EmployeeID    string
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
}
