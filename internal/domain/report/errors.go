package report

import "errors"

var (
	ErrInvalidReportType  = errors.New("report_type must be one of summary, detailed, tax, benefits")
	ErrNoRecordsForPeriod = errors.New("no payroll records found for the specified period")
)
