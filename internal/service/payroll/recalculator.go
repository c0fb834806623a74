package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/shopspring/decimal"
)

// CreatePayrollRecord creates one record outside the batch formula: the basic
// salary plus whichever named fields are non-zero.
func (s *PayrollServiceImpl) CreatePayrollRecord(ctx context.Context, req payroll.CreatePayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	caller, organizationID, err := scope(ctx, req.OrganizationID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, organizationID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	now := s.now().UTC()
	year, month := now.Year(), now.Month()
	if req.PeriodYear != nil && req.PeriodMonth != nil {
		year, month = *req.PeriodYear, time.Month(*req.PeriodMonth)
	}

	// Resolve runs outside the transaction below, see PeriodResolver.Resolve.
	period, err := s.resolver.Resolve(ctx, organizationID, year, month)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if isClosed(period.Status) {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollPeriodClosed
	}

	hours, err := s.payrollRepo.GetWorkedHours(ctx, organizationID, period.StartDate, period.EndDate, []string{emp.ID})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	var worked payroll.WorkedHours
	if len(hours) > 0 {
		worked = hours[0]
	}

	basic := payroll.RoundMoney(req.BasicSalary)
	var components []payroll.PayrollComponent
	if basic.IsPositive() {
		components = append(components, newComponent("", payroll.KindBasicSalary, basic))
	}
	for _, e := range req.Entries() {
		if e.Amount.IsZero() {
			continue
		}
		components = append(components, newComponent("", e.Kind, e.Amount))
	}

	record := newRecord(period, emp.ID, basic, worked)
	record.RecordTotals = payroll.ComputeRecordTotals(basic, components)
	record.Status = payroll.PayrollStatusDraft
	if req.Status != nil {
		applyStatus(&record, payroll.PayrollStatus(*req.Status), caller, now)
	}
	record.Notes = req.Notes

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.payrollRepo.CreateRecord(ctx, record)
		if err != nil {
			return err
		}
		record = created

		for i := range components {
			components[i].RecordID = record.ID
		}
		if len(components) > 0 {
			if err := s.payrollRepo.CreateComponents(ctx, components); err != nil {
				return err
			}
		}

		_, err = s.reconciler.RecomputePeriodTotals(ctx, period.ID)
		return err
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	logger().InfoContext(ctx, "payroll record created",
		"record_id", record.ID,
		"period_id", period.ID,
		"employee_id", emp.ID,
		"net_pay", record.NetPay.String(),
	)

	return s.loadRecordResponse(ctx, record.ID, organizationID)
}

// UpdatePayrollRecord applies basic salary and named field changes, then
// rebuilds the record's aggregates from its components and re-sums the
// owning period. A zero named field removes its component.
func (s *PayrollServiceImpl) UpdatePayrollRecord(ctx context.Context, req payroll.UpdatePayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	caller, organizationID, err := scope(ctx, "")
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	current, err := s.payrollRepo.GetRecordByID(ctx, req.ID, organizationID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	now := s.now().UTC()

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		// Period first, then record: the same order status cascades take.
		period, err := s.payrollRepo.LockPeriod(ctx, current.PeriodID)
		if err != nil {
			return err
		}
		if isClosed(period.Status) {
			return payroll.ErrPayrollPeriodClosed
		}

		record, err := s.payrollRepo.LockRecord(ctx, req.ID, organizationID)
		if err != nil {
			return err
		}
		if record.Status == payroll.PayrollStatusPaid {
			return payroll.ErrPayrollRecordAlreadyPaid
		}

		if req.BasicSalary != nil {
			record.BasicSalary = payroll.RoundMoney(*req.BasicSalary)
			if err := s.setComponent(ctx, record.ID, payroll.KindBasicSalary, record.BasicSalary); err != nil {
				return err
			}
		}

		for _, e := range req.Entries() {
			if err := s.setComponent(ctx, record.ID, e.Kind, e.Amount); err != nil {
				return err
			}
		}

		if req.Status != nil {
			applyStatus(&record, payroll.PayrollStatus(*req.Status), caller, now)
		}
		if req.Notes != nil {
			record.Notes = req.Notes
		}

		components, err := s.payrollRepo.ListComponents(ctx, record.ID)
		if err != nil {
			return err
		}
		record.RecordTotals = payroll.ComputeRecordTotals(record.BasicSalary, components)

		if err := s.payrollRepo.UpdateRecord(ctx, record); err != nil {
			return err
		}

		_, err = s.reconciler.RecomputePeriodTotals(ctx, record.PeriodID)
		return err
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	logger().InfoContext(ctx, "payroll record recalculated",
		"record_id", req.ID,
		"period_id", current.PeriodID,
		"user_id", caller.UserID,
	)

	return s.loadRecordResponse(ctx, req.ID, organizationID)
}

// setComponent writes the single component of kind, or removes every
// component of kind when amount is zero.
func (s *PayrollServiceImpl) setComponent(ctx context.Context, recordID string, kind payroll.ComponentKind, amount decimal.Decimal) error {
	if amount.IsZero() {
		return s.payrollRepo.DeleteComponentsByKind(ctx, recordID, kind)
	}
	return s.payrollRepo.UpsertComponent(ctx, newComponent(recordID, kind, amount))
}

func newComponent(recordID string, kind payroll.ComponentKind, magnitude decimal.Decimal) payroll.PayrollComponent {
	return payroll.PayrollComponent{
		RecordID:  recordID,
		Name:      payroll.DisplayName(kind),
		Kind:      kind,
		Amount:    kind.SignedAmount(payroll.RoundMoney(magnitude)),
		IsTaxable: isTaxable(kind),
	}
}

// isTaxable mirrors the batch formula: earnings are taxable except the
// medical allowance; deductions never are.
func isTaxable(kind payroll.ComponentKind) bool {
	if kind == payroll.KindBasicSalary {
		return true
	}
	return kind.IsAllowance() && kind != payroll.KindMedicalAllowance
}

func isClosed(status payroll.PayrollStatus) bool {
	return status == payroll.PayrollStatusPaid || status == payroll.PayrollStatusCancelled
}

// applyStatus sets the record status and stamps approval metadata the first
// time a record reaches APPROVED or PAID.
func applyStatus(record *payroll.PayrollRecord, status payroll.PayrollStatus, caller user.Caller, now time.Time) {
	record.Status = status
	if status != payroll.PayrollStatusApproved && status != payroll.PayrollStatusPaid {
		return
	}
	if record.ApprovedBy == nil {
		approvedBy := caller.UserID
		record.ApprovedBy = &approvedBy
	}
	if record.ApprovedAt == nil {
		approvedAt := now
		record.ApprovedAt = &approvedAt
	}
}
