package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// Reconciler rebuilds stored aggregates from persisted components. It is the
// repair path for records left inconsistent by an interrupted write and is
// safe to run any number of times.
type Reconciler struct {
	txm  payroll.Transactor
	repo payroll.PayrollRepository
}

func NewReconciler(txm payroll.Transactor, repo payroll.PayrollRepository) *Reconciler {
	return &Reconciler{txm: txm, repo: repo}
}

// RecomputePeriodTotals re-sums every record of the period under a row lock
// and overwrites the period's aggregates.
func (r *Reconciler) RecomputePeriodTotals(ctx context.Context, periodID string) (payroll.PeriodTotals, error) {
	var totals payroll.PeriodTotals
	err := r.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.repo.LockPeriod(ctx, periodID); err != nil {
			return err
		}

		records, err := r.repo.ListRecordsByPeriod(ctx, periodID)
		if err != nil {
			return err
		}

		totals = payroll.ComputePeriodTotals(records)
		return r.repo.UpdatePeriodTotals(ctx, periodID, totals)
	})
	return totals, err
}

// RepairPeriod recomputes every record of the period from its components,
// rewriting only the records whose stored aggregates drifted, then the
// period aggregates.
func (r *Reconciler) RepairPeriod(ctx context.Context, periodID string) (payroll.RecomputePeriodResponse, error) {
	resp := payroll.RecomputePeriodResponse{PeriodID: periodID}

	err := r.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.repo.LockPeriod(ctx, periodID); err != nil {
			return err
		}

		records, err := r.repo.ListRecordsByPeriod(ctx, periodID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		components, err := r.repo.ListComponentsByRecordIDs(ctx, ids)
		if err != nil {
			return err
		}

		for i := range records {
			fresh := payroll.ComputeRecordTotals(records[i].BasicSalary, components[records[i].ID])
			if records[i].RecordTotals.Equal(fresh) {
				continue
			}

			logger().WarnContext(ctx, "payroll record aggregates drifted, repairing",
				"period_id", periodID,
				"record_id", records[i].ID,
				"stored_net", records[i].NetPay.String(),
				"computed_net", fresh.NetPay.String(),
			)

			records[i].RecordTotals = fresh
			if err := r.repo.UpdateRecord(ctx, records[i]); err != nil {
				return err
			}
			resp.RecordsRepaired++
		}
		resp.RecordsChecked = len(records)

		totals := payroll.ComputePeriodTotals(records)
		resp.TotalGrossPay = totals.TotalGrossPay
		resp.TotalNetPay = totals.TotalNetPay
		resp.TotalDeductions = totals.TotalDeductions
		return r.repo.UpdatePeriodTotals(ctx, periodID, totals)
	})
	if err != nil {
		return payroll.RecomputePeriodResponse{}, err
	}

	logger().InfoContext(ctx, "payroll period recomputed",
		"period_id", periodID,
		"records_checked", resp.RecordsChecked,
		"records_repaired", resp.RecordsRepaired,
	)

	return resp, nil
}
