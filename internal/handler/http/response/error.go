package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/department"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authorization errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrOrganizationIDRequired):
		Forbidden(w, "Organization context is required")
	case errors.Is(err, user.ErrOrganizationAccessDenied):
		Forbidden(w, "Access to this organization is denied")

	// Roster errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayrollSettingsNotFound):
		NotFound(w, "Payroll settings not found")
	case errors.Is(err, payroll.ErrPayrollAlreadyProcessed),
		errors.Is(err, payroll.ErrPayrollPeriodAlreadyExists),
		errors.Is(err, payroll.ErrPayrollRecordAlreadyExists),
		errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollPeriodClosed),
		errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoActiveEmployees):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPayrollProcessingRateLimited):
		TooManyRequests(w, err.Error())

	// Report domain errors
	case errors.Is(err, report.ErrNoRecordsForPeriod):
		NotFound(w, err.Error())
	case errors.Is(err, report.ErrInvalidReportType):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Default().Error("unhandled request error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
