package payroll

import "github.com/shopspring/decimal"

// RecordTotals holds every aggregate derived from a record's components.
type RecordTotals struct {
	TotalEarnings   decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalOvertime   decimal.Decimal
	TotalCommission decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalTaxes      decimal.Decimal
	TotalInsurance  decimal.Decimal
	TotalPension    decimal.Decimal
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
}

// Equal compares totals by value, ignoring decimal exponent differences.
func (t RecordTotals) Equal(o RecordTotals) bool {
	return t.TotalEarnings.Equal(o.TotalEarnings) &&
		t.TotalAllowances.Equal(o.TotalAllowances) &&
		t.TotalBonuses.Equal(o.TotalBonuses) &&
		t.TotalOvertime.Equal(o.TotalOvertime) &&
		t.TotalCommission.Equal(o.TotalCommission) &&
		t.TotalDeductions.Equal(o.TotalDeductions) &&
		t.TotalTaxes.Equal(o.TotalTaxes) &&
		t.TotalInsurance.Equal(o.TotalInsurance) &&
		t.TotalPension.Equal(o.TotalPension) &&
		t.GrossPay.Equal(o.GrossPay) &&
		t.NetPay.Equal(o.NetPay)
}

// RoundMoney rounds to two fractional digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeRecordTotals derives a record's aggregates from its components in a
// single pass. Base-polarity lines are ignored; basicSalary is the anchor.
func ComputeRecordTotals(basicSalary decimal.Decimal, components []PayrollComponent) RecordTotals {
	t := RecordTotals{
		TotalAllowances: decimal.Zero,
		TotalBonuses:    decimal.Zero,
		TotalOvertime:   decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalTaxes:      decimal.Zero,
		TotalInsurance:  decimal.Zero,
		TotalPension:    decimal.Zero,
	}

	for _, c := range components {
		magnitude := c.Amount.Abs()
		switch Classify(c.Kind) {
		case PolarityAllowance:
			t.TotalAllowances = t.TotalAllowances.Add(magnitude)
			switch c.Kind {
			case KindBonus:
				t.TotalBonuses = t.TotalBonuses.Add(magnitude)
			case KindOvertime:
				t.TotalOvertime = t.TotalOvertime.Add(magnitude)
			case KindCommission:
				t.TotalCommission = t.TotalCommission.Add(magnitude)
			}
		case PolarityDeduction:
			t.TotalDeductions = t.TotalDeductions.Add(magnitude)
			switch c.Kind {
			case KindTax:
				t.TotalTaxes = t.TotalTaxes.Add(magnitude)
			case KindInsurance:
				t.TotalInsurance = t.TotalInsurance.Add(magnitude)
			case KindPension:
				t.TotalPension = t.TotalPension.Add(magnitude)
			}
		}
	}

	t.GrossPay = RoundMoney(basicSalary.Add(t.TotalAllowances))
	t.NetPay = RoundMoney(t.GrossPay.Sub(t.TotalDeductions))
	t.TotalEarnings = t.GrossPay
	t.TotalAllowances = RoundMoney(t.TotalAllowances)
	t.TotalDeductions = RoundMoney(t.TotalDeductions)
	return t
}

// PeriodTotals are the three aggregates stored on a period.
type PeriodTotals struct {
	TotalGrossPay   decimal.Decimal
	TotalNetPay     decimal.Decimal
	TotalDeductions decimal.Decimal
}

// Add accumulates one record's pay.
func (t PeriodTotals) Add(gross, net decimal.Decimal) PeriodTotals {
	t.TotalGrossPay = t.TotalGrossPay.Add(gross)
	t.TotalNetPay = t.TotalNetPay.Add(net)
	t.TotalDeductions = t.TotalGrossPay.Sub(t.TotalNetPay)
	return t
}

// ComputePeriodTotals re-sums every record of a period. Deductions are
// always gross minus net so the period invariant holds by construction.
func ComputePeriodTotals(records []PayrollRecord) PeriodTotals {
	t := PeriodTotals{TotalGrossPay: decimal.Zero, TotalNetPay: decimal.Zero, TotalDeductions: decimal.Zero}
	for _, r := range records {
		t = t.Add(r.GrossPay, r.NetPay)
	}
	return t
}

// Reconciles reports whether a record's stored aggregates match its components.
func Reconciles(record PayrollRecord, components []PayrollComponent) bool {
	return record.RecordTotals.Equal(ComputeRecordTotals(record.BasicSalary, components))
}
