package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// PeriodResolver owns the one-period-per-organization-per-month rule. The
// store's unique key on (organization, start_date) arbitrates races.
type PeriodResolver struct {
	repo           payroll.PayrollRepository
	formulaVersion string
	now            func() time.Time
}

func NewPeriodResolver(repo payroll.PayrollRepository, formulaVersion string, now func() time.Time) *PeriodResolver {
	return &PeriodResolver{repo: repo, formulaVersion: formulaVersion, now: now}
}

// Create persists a new period for the month and fails with
// ErrPayrollPeriodAlreadyExists if one is already there.
func (r *PeriodResolver) Create(ctx context.Context, organizationID string, year int, month time.Month) (payroll.PayrollPeriod, error) {
	r.checkPayCycle(ctx, organizationID)
	return r.repo.CreatePeriod(ctx, payroll.NewMonthlyPeriod(organizationID, year, month, r.now().UTC(), r.formulaVersion))
}

// Resolve returns the month's period, creating it on first use. It must not
// run inside a transaction: a lost creation race is recovered by re-reading.
func (r *PeriodResolver) Resolve(ctx context.Context, organizationID string, year int, month time.Month) (payroll.PayrollPeriod, error) {
	start, _ := payroll.MonthWindow(year, month)

	period, err := r.repo.GetPeriodByStartDate(ctx, organizationID, start)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, payroll.ErrPayrollPeriodNotFound) {
		return payroll.PayrollPeriod{}, err
	}

	period, err = r.Create(ctx, organizationID, year, month)
	if errors.Is(err, payroll.ErrPayrollPeriodAlreadyExists) {
		return r.repo.GetPeriodByStartDate(ctx, organizationID, start)
	}
	return period, err
}

// checkPayCycle logs organizations configured for a cycle other than monthly;
// periods stay monthly regardless.
func (r *PeriodResolver) checkPayCycle(ctx context.Context, organizationID string) {
	settings, err := r.repo.GetSettings(ctx, organizationID)
	if err != nil {
		return
	}
	if settings.PayCycle != payroll.PayCycleMonthly {
		logger().WarnContext(ctx, "pay cycle is not monthly, creating monthly period",
			"organization_id", organizationID,
			"pay_cycle", settings.PayCycle,
		)
	}
}

// ========== PERIOD OPERATIONS ==========

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, organizationID string) ([]payroll.PayrollPeriodResponse, error) {
	_, organizationID, err := scope(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	periods, err := s.payrollRepo.ListPeriods(ctx, organizationID, defaultPeriodLimit)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.PayrollPeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, toPeriodResponse(p))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PayrollPeriodResponse, error) {
	if err := payroll.ValidateID(id); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	_, organizationID, err := scope(ctx, "")
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, id, organizationID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	return toPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) UpdatePeriodStatus(ctx context.Context, req payroll.UpdatePeriodStatusRequest) (payroll.PayrollPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	caller, organizationID, err := scope(ctx, "")
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	next := payroll.PayrollStatus(req.Status)

	var updated payroll.PayrollPeriod
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.payrollRepo.GetPeriodByID(ctx, req.ID, organizationID); err != nil {
			return err
		}
		period, err := s.payrollRepo.LockPeriod(ctx, req.ID)
		if err != nil {
			return err
		}
		if !period.Status.CanTransitionTo(next) {
			return payroll.ErrInvalidStatusTransition
		}

		if err := s.payrollRepo.UpdatePeriodStatus(ctx, period.ID, next); err != nil {
			return err
		}

		if next == payroll.PayrollStatusApproved || next == payroll.PayrollStatusPaid {
			approvedBy := caller.UserID
			if err := s.payrollRepo.AdvanceRecordStatuses(ctx, period.ID, next, &approvedBy); err != nil {
				return err
			}
		}

		period.Status = next
		updated = period
		return nil
	})
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	logger().InfoContext(ctx, "payroll period status changed",
		"period_id", updated.ID,
		"status", updated.Status,
		"user_id", caller.UserID,
	)

	return toPeriodResponse(updated), nil
}

func (s *PayrollServiceImpl) RecomputePeriod(ctx context.Context, id string) (payroll.RecomputePeriodResponse, error) {
	if err := payroll.ValidateID(id); err != nil {
		return payroll.RecomputePeriodResponse{}, err
	}

	_, organizationID, err := scope(ctx, "")
	if err != nil {
		return payroll.RecomputePeriodResponse{}, err
	}

	if _, err := s.payrollRepo.GetPeriodByID(ctx, id, organizationID); err != nil {
		return payroll.RecomputePeriodResponse{}, err
	}

	return s.reconciler.RepairPeriod(ctx, id)
}
