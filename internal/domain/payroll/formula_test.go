package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormula_Valid(t *testing.T) {
	require.NoError(t, DefaultFormula().Validate())
}

func TestFormula_MonthlyAnchor(t *testing.T) {
	f := DefaultFormula()

	annual := d("60000")
	assert.True(t, f.MonthlyAnchor(&annual).Equal(d("5000")))

	assert.True(t, f.MonthlyAnchor(nil).Equal(d("4166.67")))

	zero := decimal.Zero
	assert.True(t, f.MonthlyAnchor(&zero).Equal(d("4166.67")))
}

func TestFormula_Components(t *testing.T) {
	anchor := d("5000")
	lines := DefaultFormula().Components(anchor)

	require.Len(t, lines, 14)
	assert.Equal(t, KindBasicSalary, lines[0].Kind)

	byKind := map[ComponentKind]PayrollComponent{}
	for _, c := range lines {
		byKind[c.Kind] = c
	}
	assert.True(t, byKind[KindAllowance].Amount.Equal(d("500")))
	assert.True(t, byKind[KindMedicalAllowance].Amount.Equal(d("250")))
	assert.False(t, byKind[KindMedicalAllowance].IsTaxable)
	assert.True(t, byKind[KindTax].Amount.Equal(d("-800")))
	assert.True(t, byKind[KindInsurance].Amount.Equal(d("-100")))
	assert.True(t, byKind[KindPension].Amount.Equal(d("-100")))
	assert.True(t, byKind[KindLatePenalty].Amount.IsZero())

	totals := ComputeRecordTotals(anchor, lines)
	assert.True(t, totals.TotalAllowances.Equal(d("1600")))
	assert.True(t, totals.TotalDeductions.Equal(d("1195")))
	assert.True(t, totals.GrossPay.Equal(d("6600")))
	assert.True(t, totals.NetPay.Equal(d("5405")))
	assert.True(t, totals.TotalTaxes.Equal(d("800")))
}

func TestFormula_PensionAbsorbsRounding(t *testing.T) {
	anchor := d("4166.67")
	lines := DefaultFormula().Components(anchor)
	totals := ComputeRecordTotals(anchor, lines)

	pool := RoundMoney(anchor.Mul(d("0.20")))
	split := totals.TotalTaxes.Add(totals.TotalInsurance).Add(totals.TotalPension)
	assert.True(t, split.Equal(pool), "split %s != pool %s", split, pool)
}

func TestFormula_ValidateRejectsBadRules(t *testing.T) {
	f := DefaultFormula()
	f.Allowances = append(f.Allowances, FormulaRule{Kind: KindHousingAllowance, Mode: RuleModeFixed, Value: d("1")})
	f.Deductions[0].Kind = KindHousingAllowance
	f.TaxShare = d("0.95")

	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears twice")
	assert.Contains(t, err.Error(), "tax_share")
}
