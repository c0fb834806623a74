package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/department"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo department.DepartmentRepository
	now            func() time.Time
}

func NewReportService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo department.DepartmentRepository,
	now func() time.Time,
) report.ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		now:            now,
	}
}

// dataset is the filtered record set of one period with its roster.
type dataset struct {
	period  payroll.PayrollPeriod
	records []payroll.PayrollRecord
	roster  roster
}

func (s *ReportServiceImpl) GenerateReport(ctx context.Context, req report.GenerateReportRequest) (report.Report, error) {
	if err := req.ValidateAt(s.now()); err != nil {
		return nil, err
	}

	data, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	header := s.header(req.ReportType, data.period)

	switch req.ReportType {
	case report.ReportTypeSummary:
		return Summary(header, data.records, data.roster), nil
	case report.ReportTypeDetailed:
		return Detailed(header, data.records, data.roster), nil
	case report.ReportTypeTax:
		return Tax(header, data.records), nil
	case report.ReportTypeBenefits:
		return Benefits(header, data.records), nil
	}
	return nil, report.ErrInvalidReportType
}

func (s *ReportServiceImpl) ExportDetailedCSV(ctx context.Context, req report.GenerateReportRequest) (report.CSVExport, error) {
	req.ReportType = report.ReportTypeDetailed
	if err := req.ValidateAt(s.now()); err != nil {
		return report.CSVExport{}, err
	}

	data, err := s.load(ctx, req)
	if err != nil {
		return report.CSVExport{}, err
	}

	detailed := Detailed(s.header(req.ReportType, data.period), data.records, data.roster)
	rows := DetailedCSV(detailed.Rows)

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return report.CSVExport{}, fmt.Errorf("failed to encode payroll csv: %w", err)
	}

	return report.CSVExport{
		Filename: fmt.Sprintf("payroll-%s.csv", data.period.StartDate.Format("2006-01")),
		Data:     out,
	}, nil
}

func (s *ReportServiceImpl) header(t report.ReportType, period payroll.PayrollPeriod) report.Header {
	return report.Header{
		ReportType:  t,
		Period:      period.Label,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}
}

// load resolves the period, reads its records and the roster, and applies
// the department and status filters.
func (s *ReportServiceImpl) load(ctx context.Context, req report.GenerateReportRequest) (dataset, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return dataset{}, err
	}
	organizationID, err := caller.ResolveOrganization(req.OrganizationID)
	if err != nil {
		return dataset{}, err
	}

	now := s.now().UTC()
	year, month := now.Year(), now.Month()
	if req.Year != nil {
		year = *req.Year
	}
	if req.Month != nil {
		month = time.Month(*req.Month)
	}
	start, _ := payroll.MonthWindow(year, month)

	if req.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *req.DepartmentID, organizationID); err != nil {
			return dataset{}, err
		}
	}

	period, err := s.payrollRepo.GetPeriodByStartDate(ctx, organizationID, start)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollPeriodNotFound) {
			return dataset{}, report.ErrNoRecordsForPeriod
		}
		return dataset{}, err
	}

	var (
		records     []payroll.PayrollRecord
		employees   []employee.Employee
		departments []department.Department
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.payrollRepo.ListRecordsByPeriod(gctx, period.ID)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.ListByOrganizationID(gctx, organizationID)
		return err
	})
	g.Go(func() error {
		var err error
		departments, err = s.departmentRepo.ListByOrganizationID(gctx, organizationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return dataset{}, err
	}

	r := newRoster(employees, departments)

	filtered := records[:0:0]
	for _, rec := range records {
		if req.DepartmentID != nil && r.departmentID(rec) != *req.DepartmentID {
			continue
		}
		if req.Status != nil && string(rec.Status) != *req.Status {
			continue
		}
		filtered = append(filtered, rec)
	}
	if len(filtered) == 0 {
		return dataset{}, report.ErrNoRecordsForPeriod
	}

	slog.Default().DebugContext(ctx, "payroll report data loaded",
		"component", "report",
		"organization_id", organizationID,
		"period_id", period.ID,
		"records", len(filtered),
	)

	return dataset{period: period, records: filtered, roster: r}, nil
}
