package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportTypeSummary  ReportType = "summary"
	ReportTypeDetailed ReportType = "detailed"
	ReportTypeTax      ReportType = "tax"
	ReportTypeBenefits ReportType = "benefits"
)

func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeSummary, ReportTypeDetailed, ReportTypeTax, ReportTypeBenefits:
		return true
	}
	return false
}

// ========================================
// REQUEST
// ========================================

type GenerateReportRequest struct {
	OrganizationID string     `json:"organization_id,omitempty"`
	ReportType     ReportType `json:"report_type"`
	Month          *int       `json:"month,omitempty"`
	Year           *int       `json:"year,omitempty"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	Status         *string    `json:"status,omitempty"`
}

// ValidateAt checks the request; now bounds the accepted year.
func (r *GenerateReportRequest) ValidateAt(now time.Time) error {
	var errs validator.ValidationErrors

	if !r.ReportType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "report_type",
			Message: ErrInvalidReportType.Error(),
		})
	}

	if r.OrganizationID != "" && !validator.IsValidUUID(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id must be a valid UUID",
		})
	}

	if r.Month != nil && (*r.Month < 1 || *r.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := now.Year()
	if r.Year != nil && (*r.Year < 2000 || *r.Year > currentYear+1) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1),
		})
	}

	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}

	if r.Status != nil && !payroll.PayrollStatus(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is not a valid payroll status",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// REPORT SHAPES
// ========================================

// Report is implemented by the four report payloads.
type Report interface {
	Type() ReportType
}

type Header struct {
	ReportType  ReportType `json:"report_type"`
	Period      string     `json:"period"`
	GeneratedAt string     `json:"generated_at"`
}

func (h Header) Type() ReportType { return h.ReportType }

type SummaryReport struct {
	Header
	EmployeeCount   int                 `json:"employee_count"`
	TotalGrossPay   decimal.Decimal     `json:"total_gross_pay"`
	TotalNetPay     decimal.Decimal     `json:"total_net_pay"`
	TotalDeductions decimal.Decimal     `json:"total_deductions"`
	AverageNetPay   decimal.Decimal     `json:"average_net_pay"`
	Departments     []DepartmentSummary `json:"departments"`
}

type DepartmentSummary struct {
	Department    string          `json:"department"`
	EmployeeCount int             `json:"employee_count"`
	TotalGrossPay decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay   decimal.Decimal `json:"total_net_pay"`
	AverageNetPay decimal.Decimal `json:"average_net_pay"`
}

type DetailedReport struct {
	Header
	Rows []DetailedRow `json:"rows"`
}

type DetailedRow struct {
	RecordID        string          `json:"record_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	Department      string          `json:"department"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalOvertime   decimal.Decimal `json:"total_overtime"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	Status          string          `json:"status"`
	HoursWorked     decimal.Decimal `json:"hours_worked"`
}

type TaxBracketName string

const (
	TaxBracketLow    TaxBracketName = "low"
	TaxBracketMedium TaxBracketName = "medium"
	TaxBracketHigh   TaxBracketName = "high"
)

type TaxReport struct {
	Header
	TotalTaxes     decimal.Decimal `json:"total_taxes"`
	TotalInsurance decimal.Decimal `json:"total_insurance"`
	TotalPension   decimal.Decimal `json:"total_pension"`
	Brackets       []TaxBracket    `json:"brackets"`
}

type TaxBracket struct {
	Bracket       TaxBracketName  `json:"bracket"`
	Range         string          `json:"range"`
	EmployeeCount int             `json:"employee_count"`
	TotalTax      decimal.Decimal `json:"total_tax"`
}

type BenefitsReport struct {
	Header
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalOvertime   decimal.Decimal `json:"total_overtime"`
	TotalInsurance  decimal.Decimal `json:"total_insurance"`
	TotalPension    decimal.Decimal `json:"total_pension"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
}

// ========================================
// CSV EXPORT
// ========================================

// DetailedCSVRow is one CSV line; amounts are pre-formatted to two decimals.
type DetailedCSVRow struct {
	EmployeeID   string `csv:"employee_id"`
	EmployeeName string `csv:"employee_name"`
	Department   string `csv:"department"`
	BasicSalary  string `csv:"basic_salary"`
	Allowances   string `csv:"total_allowances"`
	Bonuses      string `csv:"total_bonuses"`
	Overtime     string `csv:"total_overtime"`
	GrossPay     string `csv:"gross_pay"`
	Deductions   string `csv:"total_deductions"`
	NetPay       string `csv:"net_pay"`
	Status       string `csv:"status"`
	HoursWorked  string `csv:"hours_worked"`
}

type CSVExport struct {
	Filename string
	Data     []byte
}
