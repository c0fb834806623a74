package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

type ReportHandler interface {
	GenerateReport(w http.ResponseWriter, r *http.Request)
	ExportDetailedCSV(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GenerateReport handles GET /payroll/generate-report
func (h *reportHandlerImpl) GenerateReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GenerateReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportDetailedCSV handles GET /payroll/reports/export
func (h *reportHandlerImpl) ExportDetailedCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	export, err := h.reportService.ExportDetailedCSV(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

// parseReportRequest reads the shared query parameters and writes a 400 on
// malformed numbers.
func parseReportRequest(w http.ResponseWriter, r *http.Request) (report.GenerateReportRequest, bool) {
	query := r.URL.Query()
	req := report.GenerateReportRequest{
		OrganizationID: query.Get("organization_id"),
		ReportType:     report.ReportType(query.Get("report_type")),
	}

	if monthStr := query.Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "invalid month parameter", nil)
			return req, false
		}
		req.Month = &month
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "invalid year parameter", nil)
			return req, false
		}
		req.Year = &year
	}
	if departmentID := query.Get("department_id"); departmentID != "" {
		req.DepartmentID = &departmentID
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	return req, true
}
