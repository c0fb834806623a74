package formula

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const v2Formula = `
version: v2
default_annual_salary: 60000
allowance_rate: 0.15
deduction_rate: 0.25
tax_share: 0.7
insurance_share: 0.2
allowances:
  - {kind: housing_allowance, mode: fixed, value: 800}
  - {kind: transport_allowance, mode: fixed, value: 250}
  - {kind: medical_allowance, mode: percent, value: 0.04}
  - {kind: meal_allowance, mode: fixed, value: 100}
deductions:
  - {kind: loan_deduction, mode: fixed, value: 0}
  - {kind: advance_deduction, mode: fixed, value: 0}
  - {kind: uniform_deduction, mode: fixed, value: 30}
  - {kind: parking_deduction, mode: fixed, value: 15}
  - {kind: late_penalty, mode: fixed, value: 0}
`

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "v1", f.Version)
	assert.True(t, f.AllowanceRate.Equal(decimal.RequireFromString("0.10")))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formula.yaml")
	require.NoError(t, os.WriteFile(path, []byte(v2Formula), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "v2", f.Version)
	assert.True(t, f.DefaultAnnualSalary.Equal(decimal.NewFromInt(60000)))
	assert.True(t, f.DeductionRate.Equal(decimal.RequireFromString("0.25")))
	require.Len(t, f.Allowances, 4)
	assert.Equal(t, payroll.KindMedicalAllowance, f.Allowances[2].Kind)
	assert.Equal(t, payroll.RuleModePercent, f.Allowances[2].Mode)
	assert.True(t, f.Allowances[2].Value.Equal(decimal.RequireFromString("0.04")))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_RejectsIncompleteRules(t *testing.T) {
	doc := `
version: broken
default_annual_salary: 50000
allowance_rate: 0.1
deduction_rate: 0.2
tax_share: 0.8
insurance_share: 0.1
allowances:
  - {kind: housing_allowance, mode: fixed, value: 500}
deductions:
  - {kind: tax, mode: fixed, value: 10}
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("version: v1\nbonus_rate: 0.5\n"))
	assert.Error(t, err)
}

func TestMarshal_RoundTripsDefault(t *testing.T) {
	data, err := Marshal(payroll.DefaultFormula())
	require.NoError(t, err)

	f, err := Parse(data)
	require.NoError(t, err)

	anchor := decimal.RequireFromString("5000")
	want := payroll.DefaultFormula().Components(anchor)
	got := f.Components(anchor)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "kind %s: %s != %s", want[i].Kind, want[i].Amount, got[i].Amount)
	}
}

func TestParse_KeepsExactDecimals(t *testing.T) {
	doc := strings.Replace(v2Formula, "allowance_rate: 0.15", "allowance_rate: 0.123456789012345678901", 1)
	doc = strings.Replace(doc, "default_annual_salary: 60000", `default_annual_salary: "90000000000000000.01"`, 1)

	f, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "0.123456789012345678901", f.AllowanceRate.String())
	assert.Equal(t, "90000000000000000.01", f.DefaultAnnualSalary.String())

	data, err := Marshal(f)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, again.AllowanceRate.Equal(f.AllowanceRate))
	assert.True(t, again.DefaultAnnualSalary.Equal(f.DefaultAnnualSalary))
}

func TestParse_RejectsNonNumericRate(t *testing.T) {
	doc := strings.Replace(v2Formula, "allowance_rate: 0.15", "allowance_rate: high", 1)
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}
