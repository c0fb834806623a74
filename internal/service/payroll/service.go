package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

// Options tunes batch processing.
type Options struct {
	Workers int
	Timeout time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

const (
	defaultWorkers     = 8
	defaultTimeout     = 2 * time.Minute
	defaultRecordLimit = 20
	defaultPeriodLimit = 24
	timestampLayout    = time.RFC3339
)

type PayrollServiceImpl struct {
	txm          payroll.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	formula      payroll.Formula
	resolver     *PeriodResolver
	processor    *Processor
	reconciler   *Reconciler
	now          func() time.Time
}

func NewPayrollService(
	txm payroll.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	formula payroll.Formula,
	opts Options,
) payroll.PayrollService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	resolver := NewPeriodResolver(payrollRepo, formula.Version, now)
	reconciler := NewReconciler(txm, payrollRepo)

	return &PayrollServiceImpl{
		txm:          txm,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		formula:      formula,
		resolver:     resolver,
		processor:    NewProcessor(txm, payrollRepo, employeeRepo, resolver, reconciler, formula, opts.Workers, opts.Timeout, now),
		reconciler:   reconciler,
		now:          now,
	}
}

// scope returns the caller and the organization the request acts on.
func scope(ctx context.Context, requested string) (user.Caller, string, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return user.Caller{}, "", err
	}
	organizationID, err := caller.ResolveOrganization(requested)
	if err != nil {
		return user.Caller{}, "", err
	}
	return caller, organizationID, nil
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) GetSettings(ctx context.Context, organizationID string) (payroll.PayrollSettingsResponse, error) {
	_, organizationID, err := scope(ctx, organizationID)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	settings, err := s.payrollRepo.GetSettings(ctx, organizationID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return toSettingsResponse(payroll.DefaultSettings(organizationID)), nil
		}
		return payroll.PayrollSettingsResponse{}, err
	}

	return toSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdatePayrollSettingsRequest) (payroll.PayrollSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	_, organizationID, err := scope(ctx, req.OrganizationID)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	// Get current settings or use defaults
	current, err := s.payrollRepo.GetSettings(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return payroll.PayrollSettingsResponse{}, err
		}
		current = payroll.DefaultSettings(organizationID)
	}

	// Apply updates
	if req.PayCycle != nil {
		current.PayCycle = payroll.PayCycle(*req.PayCycle)
	}
	if req.PayDay != nil {
		current.PayDay = *req.PayDay
	}
	if req.Currency != nil {
		current.Currency = *req.Currency
	}

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	return toSettingsResponse(updated), nil
}

// ========== PROCESSING ==========

func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	_, organizationID, err := scope(ctx, req.OrganizationID)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	return s.processor.Process(ctx, organizationID, req.Resume)
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	if err := payroll.ValidateID(id); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	_, organizationID, err := scope(ctx, "")
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return s.loadRecordResponse(ctx, id, organizationID)
}

func (s *PayrollServiceImpl) loadRecordResponse(ctx context.Context, id, organizationID string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, id, organizationID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	components, err := s.payrollRepo.ListComponents(ctx, record.ID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return toRecordResponse(record, components), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	requested := ""
	if filter.OrganizationID != nil {
		requested = *filter.OrganizationID
	}
	_, organizationID, err := scope(ctx, requested)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultRecordLimit
	}

	records, total, err := s.payrollRepo.ListRecords(ctx, organizationID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	components, err := s.payrollRepo.ListComponentsByRecordIDs(ctx, ids)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, toRecordResponse(r, components[r.ID]))
	}

	return payroll.ListPayrollRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== SUMMARY ==========

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, organizationID string) (payroll.PayrollSummaryResponse, error) {
	_, organizationID, err := scope(ctx, organizationID)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	now := s.now().UTC()
	start, _ := payroll.MonthWindow(now.Year(), now.Month())

	resp := payroll.PayrollSummaryResponse{
		OrganizationID:     organizationID,
		PeriodLabel:        payroll.PeriodLabel(start),
		PeriodMonth:        int(now.Month()),
		PeriodYear:         now.Year(),
		ThisMonthPaidTotal: decimal.Zero,
		TotalGrossPay:      decimal.Zero,
		TotalNetPay:        decimal.Zero,
		AverageNetPay:      decimal.Zero,
	}

	resp.ActiveEmployees, err = s.employeeRepo.CountActive(ctx, organizationID)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByStartDate(ctx, organizationID, start)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollPeriodNotFound) {
			return resp, nil
		}
		return payroll.PayrollSummaryResponse{}, err
	}
	resp.PeriodID = &period.ID

	records, err := s.payrollRepo.ListRecordsByPeriod(ctx, period.ID)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	totals := payroll.ComputePeriodTotals(records)
	resp.RecordCount = len(records)
	resp.TotalGrossPay = totals.TotalGrossPay
	resp.TotalNetPay = totals.TotalNetPay
	if len(records) > 0 {
		resp.AverageNetPay = payroll.RoundMoney(totals.TotalNetPay.Div(decimal.NewFromInt(int64(len(records)))))
	}

	for _, r := range records {
		switch r.Status {
		case payroll.PayrollStatusDraft, payroll.PayrollStatusProcessing:
			resp.PendingCount++
		case payroll.PayrollStatusApproved, payroll.PayrollStatusPaid:
			resp.ProcessedCount++
		}
		if r.Status == payroll.PayrollStatusPaid {
			resp.ThisMonthPaidTotal = resp.ThisMonthPaidTotal.Add(r.NetPay)
		}
	}

	return resp, nil
}

// ========== MAPPING ==========

func toSettingsResponse(s payroll.PayrollSettings) payroll.PayrollSettingsResponse {
	return payroll.PayrollSettingsResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		PayCycle:       string(s.PayCycle),
		PayDay:         s.PayDay,
		Currency:       s.Currency,
	}
}

func toComponentResponse(c payroll.PayrollComponent) payroll.PayrollComponentResponse {
	return payroll.PayrollComponentResponse{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        string(c.Kind),
		Polarity:    payroll.Classify(c.Kind).String(),
		Amount:      c.Magnitude(),
		IsTaxable:   c.IsTaxable,
		Description: c.Description,
	}
}

func toRecordResponse(r payroll.PayrollRecord, components []payroll.PayrollComponent) payroll.PayrollRecordResponse {
	resp := payroll.PayrollRecordResponse{
		ID:              r.ID,
		PeriodID:        r.PeriodID,
		EmployeeID:      r.EmployeeID,
		DepartmentID:    r.DepartmentID,
		DepartmentName:  r.DepartmentName,
		BasicSalary:     r.BasicSalary,
		TotalEarnings:   r.TotalEarnings,
		TotalAllowances: r.TotalAllowances,
		TotalBonuses:    r.TotalBonuses,
		TotalOvertime:   r.TotalOvertime,
		TotalCommission: r.TotalCommission,
		TotalDeductions: r.TotalDeductions,
		TotalTaxes:      r.TotalTaxes,
		TotalInsurance:  r.TotalInsurance,
		TotalPension:    r.TotalPension,
		GrossPay:        r.GrossPay,
		NetPay:          r.NetPay,
		RegularHours:    r.RegularHours,
		OvertimeHours:   r.OvertimeHours,
		TotalHours:      r.TotalHours,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:       r.UpdatedAt.UTC().Format(timestampLayout),
	}

	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	if r.PeriodLabel != nil {
		resp.PeriodLabel = *r.PeriodLabel
	}
	if r.ApprovedAt != nil {
		approvedAt := r.ApprovedAt.UTC().Format(timestampLayout)
		resp.ApprovedAt = &approvedAt
	}

	for _, c := range components {
		resp.Components = append(resp.Components, toComponentResponse(c))
	}

	return resp
}

func toPeriodResponse(p payroll.PayrollPeriod) payroll.PayrollPeriodResponse {
	return payroll.PayrollPeriodResponse{
		ID:              p.ID,
		OrganizationID:  p.OrganizationID,
		Label:           p.Label,
		PeriodType:      p.PeriodType,
		StartDate:       p.StartDate.Format(payroll.DateLayout),
		EndDate:         p.EndDate.Format(payroll.DateLayout),
		PayDate:         p.PayDate.Format(payroll.DateLayout),
		ProcessingDate:  p.ProcessingDate.Format(payroll.DateLayout),
		Status:          string(p.Status),
		FormulaVersion:  p.FormulaVersion,
		TotalGrossPay:   p.TotalGrossPay,
		TotalNetPay:     p.TotalNetPay,
		TotalDeductions: p.TotalDeductions,
	}
}

func logger() *slog.Logger {
	return slog.Default().With("component", "payroll")
}
