package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type PayrollSettingsResponse struct {
	ID             string `json:"id,omitempty"`
	OrganizationID string `json:"organization_id"`
	PayCycle       string `json:"pay_cycle"`
	PayDay         string `json:"pay_day"`
	Currency       string `json:"currency"`
}

type UpdatePayrollSettingsRequest struct {
	OrganizationID string  `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	PayCycle       *string `json:"pay_cycle,omitempty" validate:"omitempty,oneof=monthly bi-weekly weekly"`
	PayDay         *string `json:"pay_day,omitempty" validate:"omitempty,min=1,max=100"`
	Currency       *string `json:"currency,omitempty" validate:"omitempty,iso4217"`
}

func (r *UpdatePayrollSettingsRequest) Validate() error {
	return validator.Struct(r)
}

// ========== PROCESSING DTOs ==========

type ProcessPayrollRequest struct {
	OrganizationID string `json:"organization_id,omitempty"`
	// Resume continues an interrupted run for the current month instead of
	// rejecting it as already processed.
	Resume bool `json:"resume,omitempty"`
}

func (r *ProcessPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.OrganizationID != "" && !validator.IsValidUUID(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{Field: "organization_id", Message: "must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProcessFailure struct {
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

type ProcessPayrollResponse struct {
	PeriodID       string           `json:"period_id"`
	PeriodLabel    string           `json:"period_label"`
	FormulaVersion string           `json:"formula_version"`
	ProcessedCount int              `json:"processed_count"`
	SkippedCount   int              `json:"skipped_count"`
	FailedCount    int              `json:"failed_count"`
	TotalGross     decimal.Decimal  `json:"total_gross"`
	TotalNet       decimal.Decimal  `json:"total_net"`
	Partial        bool             `json:"partial"`
	Failures       []ProcessFailure `json:"failures,omitempty"`
}

// ========== PAYROLL RECORD DTOs ==========

type CreatePayrollRecordRequest struct {
	OrganizationID string          `json:"organization_id,omitempty"`
	EmployeeID     string          `json:"employee_id"`
	BasicSalary    decimal.Decimal `json:"basic_salary"`
	PeriodMonth    *int            `json:"period_month,omitempty"`
	PeriodYear     *int            `json:"period_year,omitempty"`
	NamedFieldAmounts
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (r *CreatePayrollRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.OrganizationID != "" && !validator.IsValidUUID(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{Field: "organization_id", Message: "must be a valid UUID"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	if (r.PeriodMonth == nil) != (r.PeriodYear == nil) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "period_month and period_year must be given together"})
	}
	if r.PeriodMonth != nil && (*r.PeriodMonth < 1 || *r.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear != nil && *r.PeriodYear < 2000 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be 2000 or later"})
	}
	errs = append(errs, validateNamedFields(r.NamedFieldAmounts)...)
	errs = append(errs, validateStatus(r.Status)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePayrollRecordRequest struct {
	ID          string           `json:"-"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
	NamedFieldAmounts
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// ValidateID rejects a path identifier that is not a UUID before it reaches
// the store.
func ValidateID(id string) error {
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "must be a valid UUID"}}
	}
	return nil
}

func (r *UpdatePayrollRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	errs = append(errs, validateNamedFields(r.NamedFieldAmounts)...)
	errs = append(errs, validateStatus(r.Status)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateNamedFields(a NamedFieldAmounts) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, e := range a.Entries() {
		if e.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: string(e.Field), Message: "must be non-negative"})
		}
	}
	return errs
}

func validateStatus(status *string) validator.ValidationErrors {
	if status == nil || PayrollStatus(*status).IsValid() {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("must be one of %s, %s, %s, %s, %s", PayrollStatusDraft, PayrollStatusProcessing, PayrollStatusApproved, PayrollStatusPaid, PayrollStatusCancelled),
	}}
}

type PayrollComponentResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Polarity    string          `json:"polarity"`
	Amount      decimal.Decimal `json:"amount"`
	IsTaxable   bool            `json:"is_taxable"`
	Description *string         `json:"description,omitempty"`
}

type PayrollRecordResponse struct {
	ID              string                     `json:"id"`
	PeriodID        string                     `json:"period_id"`
	PeriodLabel     string                     `json:"period_label,omitempty"`
	EmployeeID      string                     `json:"employee_id"`
	EmployeeName    string                     `json:"employee_name"`
	EmployeeCode    string                     `json:"employee_code,omitempty"`
	DepartmentID    *string                    `json:"department_id,omitempty"`
	DepartmentName  *string                    `json:"department_name,omitempty"`
	BasicSalary     decimal.Decimal            `json:"basic_salary"`
	TotalEarnings   decimal.Decimal            `json:"total_earnings"`
	TotalAllowances decimal.Decimal            `json:"total_allowances"`
	TotalBonuses    decimal.Decimal            `json:"total_bonuses"`
	TotalOvertime   decimal.Decimal            `json:"total_overtime"`
	TotalCommission decimal.Decimal            `json:"total_commission"`
	TotalDeductions decimal.Decimal            `json:"total_deductions"`
	TotalTaxes      decimal.Decimal            `json:"total_taxes"`
	TotalInsurance  decimal.Decimal            `json:"total_insurance"`
	TotalPension    decimal.Decimal            `json:"total_pension"`
	GrossPay        decimal.Decimal            `json:"gross_pay"`
	NetPay          decimal.Decimal            `json:"net_pay"`
	RegularHours    decimal.Decimal            `json:"regular_hours"`
	OvertimeHours   decimal.Decimal            `json:"overtime_hours"`
	TotalHours      decimal.Decimal            `json:"total_hours"`
	Status          string                     `json:"status"`
	ApprovedBy      *string                    `json:"approved_by,omitempty"`
	ApprovedAt      *string                    `json:"approved_at,omitempty"`
	Notes           *string                    `json:"notes,omitempty"`
	Components      []PayrollComponentResponse `json:"components,omitempty"`
	CreatedAt       string                     `json:"created_at"`
	UpdatedAt       string                     `json:"updated_at"`
}

type PayrollFilter struct {
	OrganizationID *string `json:"organization_id,omitempty"`
	PeriodID       *string `json:"period_id,omitempty"`
	PeriodMonth    *int    `json:"period_month,omitempty"`
	PeriodYear     *int    `json:"period_year,omitempty"`
	Status         *string `json:"status,omitempty"`
	DepartmentID   *string `json:"department_id,omitempty"`
	EmployeeID     *string `json:"employee_id,omitempty"`
	Page           int     `json:"page"`
	Limit          int     `json:"limit"`
	SortBy         string  `json:"sort_by"`
	SortOrder      string  `json:"sort_order"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, id := range map[string]*string{
		"organization_id": f.OrganizationID,
		"period_id":       f.PeriodID,
		"department_id":   f.DepartmentID,
		"employee_id":     f.EmployeeID,
	} {
		if id != nil && !validator.IsValidUUID(*id) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be a valid UUID"})
		}
	}
	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	errs = append(errs, validateStatus(f.Status)...)
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must not exceed 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollSummaryResponse struct {
	OrganizationID     string          `json:"organization_id"`
	PeriodID           *string         `json:"period_id,omitempty"`
	PeriodLabel        string          `json:"period_label"`
	PeriodMonth        int             `json:"period_month"`
	PeriodYear         int             `json:"period_year"`
	ActiveEmployees    int             `json:"active_employees"`
	RecordCount        int             `json:"record_count"`
	ThisMonthPaidTotal decimal.Decimal `json:"this_month_paid_total"`
	TotalGrossPay      decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay        decimal.Decimal `json:"total_net_pay"`
	AverageNetPay      decimal.Decimal `json:"average_net_pay"`
	PendingCount       int             `json:"pending_count"`
	ProcessedCount     int             `json:"processed_count"`
}

// ========== PERIOD DTOs ==========

type PayrollPeriodResponse struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	Label           string          `json:"label"`
	PeriodType      string          `json:"period_type"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PayDate         string          `json:"pay_date"`
	ProcessingDate  string          `json:"processing_date"`
	Status          string          `json:"status"`
	FormulaVersion  string          `json:"formula_version"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
}

type UpdatePeriodStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdatePeriodStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	status := r.Status
	errs = append(errs, validateStatus(&status)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecomputePeriodResponse struct {
	PeriodID        string          `json:"period_id"`
	RecordsChecked  int             `json:"records_checked"`
	RecordsRepaired int             `json:"records_repaired"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
}
