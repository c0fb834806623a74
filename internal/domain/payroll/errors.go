package payroll

import "errors"

var (
	ErrPayrollSettingsNotFound      = errors.New("payroll settings not found")
	ErrPayrollPeriodNotFound        = errors.New("payroll period not found")
	ErrPayrollPeriodAlreadyExists   = errors.New("payroll period already exists for this month")
	ErrPayrollPeriodClosed          = errors.New("payroll period is paid or cancelled")
	ErrPayrollAlreadyProcessed      = errors.New("payroll already processed for this organization and month")
	ErrInvalidStatusTransition      = errors.New("invalid payroll status transition")
	ErrPayrollRecordNotFound        = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists   = errors.New("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid     = errors.New("payroll record already paid, cannot modify")
	ErrNoActiveEmployees            = errors.New("organization has no active employees")
	ErrProcessingWindowExceeded     = errors.New("payroll processing window exceeded")
	ErrPayrollProcessingRateLimited = errors.New("payroll processing requested too frequently")
)
