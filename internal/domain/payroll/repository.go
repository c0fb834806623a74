package payroll

import (
	"context"
	"time"
)

// Transactor runs fn inside one storage transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PayrollRepository defines data access methods for payroll.
// Lookups by id include organizationID to prevent cross-organization access.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, organizationID string) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)

	// Periods
	// CreatePeriod fails with ErrPayrollPeriodAlreadyExists when
	// (organization, start_date) is taken.
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriodByStartDate(ctx context.Context, organizationID string, startDate time.Time) (PayrollPeriod, error)
	GetPeriodByID(ctx context.Context, id string, organizationID string) (PayrollPeriod, error)
	// LockPeriod serializes aggregate recomputation of one period.
	LockPeriod(ctx context.Context, id string) (PayrollPeriod, error)
	ListPeriods(ctx context.Context, organizationID string, limit int) ([]PayrollPeriod, error)
	UpdatePeriodTotals(ctx context.Context, id string, totals PeriodTotals) error
	UpdatePeriodStatus(ctx context.Context, id string, status PayrollStatus) error

	// Records
	// CreateRecord fails with ErrPayrollRecordAlreadyExists when
	// (employee, period) is taken.
	CreateRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetRecordByID(ctx context.Context, id string, organizationID string) (PayrollRecord, error)
	LockRecord(ctx context.Context, id string, organizationID string) (PayrollRecord, error)
	ListRecords(ctx context.Context, organizationID string, filter PayrollFilter) ([]PayrollRecord, int64, error)
	ListRecordsByPeriod(ctx context.Context, periodID string) ([]PayrollRecord, error)
	UpdateRecord(ctx context.Context, record PayrollRecord) error
	// AdvanceRecordStatuses moves every record of the period that is behind
	// status up to it.
	AdvanceRecordStatuses(ctx context.Context, periodID string, status PayrollStatus, approvedBy *string) error

	// Components
	ListComponents(ctx context.Context, recordID string) ([]PayrollComponent, error)
	ListComponentsByRecordIDs(ctx context.Context, recordIDs []string) (map[string][]PayrollComponent, error)
	CreateComponents(ctx context.Context, components []PayrollComponent) error
	// UpsertComponent writes the single component of (record, kind).
	UpsertComponent(ctx context.Context, component PayrollComponent) error
	DeleteComponentsByKind(ctx context.Context, recordID string, kind ComponentKind) error

	// Attendance collaborator
	GetWorkedHours(ctx context.Context, organizationID string, start, end time.Time, employeeIDs []string) ([]WorkedHours, error)
}
