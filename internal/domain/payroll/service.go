package payroll

import "context"

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context, organizationID string) (PayrollSettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdatePayrollSettingsRequest) (PayrollSettingsResponse, error)

	// Processing
	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (ProcessPayrollResponse, error)

	// Payroll Records
	CreatePayrollRecord(ctx context.Context, req CreatePayrollRecordRequest) (PayrollRecordResponse, error)
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	UpdatePayrollRecord(ctx context.Context, req UpdatePayrollRecordRequest) (PayrollRecordResponse, error)

	// Periods
	ListPeriods(ctx context.Context, organizationID string) ([]PayrollPeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PayrollPeriodResponse, error)
	UpdatePeriodStatus(ctx context.Context, req UpdatePeriodStatusRequest) (PayrollPeriodResponse, error)
	RecomputePeriod(ctx context.Context, id string) (RecomputePeriodResponse, error)

	// Summary
	GetPayrollSummary(ctx context.Context, organizationID string) (PayrollSummaryResponse, error)
}
