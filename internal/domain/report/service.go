package report

import "context"

// ReportService defines the interface for payroll report generation
type ReportService interface {
	// GenerateReport builds one of the four report shapes for a period.
	GenerateReport(ctx context.Context, req GenerateReportRequest) (Report, error)

	// ExportDetailedCSV renders the detailed report as CSV.
	ExportDetailedCSV(ctx context.Context, req GenerateReportRequest) (CSVExport, error)
}
