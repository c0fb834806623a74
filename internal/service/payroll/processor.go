package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Processor runs the monthly batch: one record with the full formula
// component set per active employee.
type Processor struct {
	txm          payroll.Transactor
	repo         payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	resolver     *PeriodResolver
	reconciler   *Reconciler
	formula      payroll.Formula
	workers      int
	timeout      time.Duration
	now          func() time.Time
}

func NewProcessor(
	txm payroll.Transactor,
	repo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	resolver *PeriodResolver,
	reconciler *Reconciler,
	formula payroll.Formula,
	workers int,
	timeout time.Duration,
	now func() time.Time,
) *Processor {
	return &Processor{
		txm:          txm,
		repo:         repo,
		employeeRepo: employeeRepo,
		resolver:     resolver,
		reconciler:   reconciler,
		formula:      formula,
		workers:      workers,
		timeout:      timeout,
		now:          now,
	}
}

type employeeOutcome struct {
	record  payroll.PayrollRecord
	skipped bool
	err     error
}

// Process runs the batch for the current month. Without resume an existing
// period is a conflict; with resume the existing period is reused and only
// employees without a record are processed.
func (p *Processor) Process(ctx context.Context, organizationID string, resume bool) (payroll.ProcessPayrollResponse, error) {
	log := logger().With("organization_id", organizationID)

	employees, err := p.employeeRepo.GetActiveByOrganizationID(ctx, organizationID)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}
	if len(employees) == 0 {
		return payroll.ProcessPayrollResponse{}, payroll.ErrNoActiveEmployees
	}

	now := p.now().UTC()
	year, month := now.Year(), now.Month()
	start, end := payroll.MonthWindow(year, month)

	hours, err := p.workedHours(ctx, organizationID, start, end, employees)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	period, existing, err := p.openPeriod(ctx, organizationID, year, month, resume)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	log.InfoContext(ctx, "payroll batch started",
		"period_id", period.ID,
		"employees", len(employees),
		"resume", resume,
		"formula_version", p.formula.Version,
	)

	windowCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outcomes := make([]employeeOutcome, len(employees))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	for i, emp := range employees {
		if existing[emp.ID] {
			outcomes[i].skipped = true
			continue
		}
		g.Go(func() error {
			if windowCtx.Err() != nil {
				outcomes[i].err = payroll.ErrProcessingWindowExceeded
				return nil
			}
			rec, err := p.processEmployee(windowCtx, period, emp, hours[emp.ID])
			if err != nil && windowCtx.Err() != nil {
				err = payroll.ErrProcessingWindowExceeded
			}
			outcomes[i] = employeeOutcome{record: rec, err: err}
			return nil
		})
	}
	// Workers never return an error; failures stay per employee.
	_ = g.Wait()

	resp := payroll.ProcessPayrollResponse{
		PeriodID:       period.ID,
		PeriodLabel:    period.Label,
		FormulaVersion: period.FormulaVersion,
	}

	var processed []payroll.PayrollRecord
	for i, o := range outcomes {
		switch {
		case o.skipped:
			resp.SkippedCount++
		case o.err != nil:
			resp.Failures = append(resp.Failures, payroll.ProcessFailure{
				EmployeeID: employees[i].ID,
				Message:    o.err.Error(),
			})
			log.ErrorContext(ctx, "payroll record processing failed",
				"period_id", period.ID,
				"employee_id", employees[i].ID,
				"error", o.err,
			)
		default:
			processed = append(processed, o.record)
		}
	}
	resp.ProcessedCount = len(processed)
	resp.FailedCount = len(resp.Failures)
	resp.Partial = resp.FailedCount > 0

	batch := payroll.ComputePeriodTotals(processed)
	resp.TotalGross = batch.TotalGrossPay
	resp.TotalNet = batch.TotalNetPay

	// The stored aggregates are re-summed under the period lock so records
	// written concurrently, or by an earlier resumed run, are included.
	if _, err := p.reconciler.RecomputePeriodTotals(ctx, period.ID); err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	if resp.Partial {
		log.WarnContext(ctx, "payroll batch partially completed",
			"period_id", period.ID,
			"processed", resp.ProcessedCount,
			"failed", resp.FailedCount,
			"skipped", resp.SkippedCount,
		)
	} else {
		log.InfoContext(ctx, "payroll batch completed",
			"period_id", period.ID,
			"processed", resp.ProcessedCount,
			"skipped", resp.SkippedCount,
			"total_gross", resp.TotalGross.String(),
			"total_net", resp.TotalNet.String(),
		)
	}

	return resp, nil
}

// openPeriod creates the month's period, or with resume reuses it and returns
// the employees that already have a record.
func (p *Processor) openPeriod(ctx context.Context, organizationID string, year int, month time.Month, resume bool) (payroll.PayrollPeriod, map[string]bool, error) {
	if !resume {
		period, err := p.resolver.Create(ctx, organizationID, year, month)
		if err != nil {
			if errors.Is(err, payroll.ErrPayrollPeriodAlreadyExists) {
				return payroll.PayrollPeriod{}, nil, payroll.ErrPayrollAlreadyProcessed
			}
			return payroll.PayrollPeriod{}, nil, err
		}
		return period, map[string]bool{}, nil
	}

	period, err := p.resolver.Resolve(ctx, organizationID, year, month)
	if err != nil {
		return payroll.PayrollPeriod{}, nil, err
	}
	if period.Status != payroll.PayrollStatusProcessing && period.Status != payroll.PayrollStatusDraft {
		return payroll.PayrollPeriod{}, nil, payroll.ErrPayrollAlreadyProcessed
	}

	records, err := p.repo.ListRecordsByPeriod(ctx, period.ID)
	if err != nil {
		return payroll.PayrollPeriod{}, nil, err
	}
	existing := make(map[string]bool, len(records))
	for _, r := range records {
		existing[r.EmployeeID] = true
	}
	return period, existing, nil
}

func (p *Processor) workedHours(ctx context.Context, organizationID string, start, end time.Time, employees []employee.Employee) (map[string]payroll.WorkedHours, error) {
	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}

	rows, err := p.repo.GetWorkedHours(ctx, organizationID, start, end, ids)
	if err != nil {
		return nil, err
	}

	hours := make(map[string]payroll.WorkedHours, len(rows))
	for _, h := range rows {
		hours[h.EmployeeID] = h
	}
	return hours, nil
}

// processEmployee writes one record and its components atomically.
func (p *Processor) processEmployee(ctx context.Context, period payroll.PayrollPeriod, emp employee.Employee, hours payroll.WorkedHours) (payroll.PayrollRecord, error) {
	anchor := p.formula.MonthlyAnchor(emp.BaseSalary)
	components := p.formula.Components(anchor)

	record := newRecord(period, emp.ID, anchor, hours)
	record.RecordTotals = payroll.ComputeRecordTotals(anchor, components)

	err := p.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := p.repo.CreateRecord(ctx, record)
		if err != nil {
			return err
		}
		record = created

		for i := range components {
			components[i].RecordID = record.ID
		}
		return p.repo.CreateComponents(ctx, components)
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	return record, nil
}

func newRecord(period payroll.PayrollPeriod, employeeID string, basicSalary decimal.Decimal, hours payroll.WorkedHours) payroll.PayrollRecord {
	regular := hours.RegularHours
	overtime := hours.OvertimeHours
	return payroll.PayrollRecord{
		PeriodID:       period.ID,
		EmployeeID:     employeeID,
		OrganizationID: period.OrganizationID,
		BasicSalary:    basicSalary,
		RegularHours:   regular,
		OvertimeHours:  overtime,
		TotalHours:     regular.Add(overtime),
		Status:         payroll.PayrollStatusProcessing,
	}
}
