package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// RuleMode says how a formula rule turns the monthly anchor into an amount.
type RuleMode string

const (
	RuleModeFixed   RuleMode = "fixed"
	RuleModePercent RuleMode = "percent"
)

// FormulaRule computes one named allowance or deduction line.
type FormulaRule struct {
	Kind  ComponentKind
	Mode  RuleMode
	Value decimal.Decimal
}

// Amount evaluates the rule against the monthly anchor.
func (r FormulaRule) Amount(anchor decimal.Decimal) decimal.Decimal {
	if r.Mode == RuleModePercent {
		return RoundMoney(anchor.Mul(r.Value))
	}
	return RoundMoney(r.Value)
}

// Formula is the default batch split. It is a placeholder business rule,
// versioned so each period can record which split produced it.
type Formula struct {
	Version             string
	DefaultAnnualSalary decimal.Decimal
	AllowanceRate       decimal.Decimal
	DeductionRate       decimal.Decimal
	TaxShare            decimal.Decimal
	InsuranceShare      decimal.Decimal // pension receives the remainder of the pool
	Allowances          []FormulaRule
	Deductions          []FormulaRule
}

var monthsPerYear = decimal.NewFromInt(12)

// DefaultFormula returns formula version v1.
func DefaultFormula() Formula {
	return Formula{
		Version:             "v1",
		DefaultAnnualSalary: decimal.NewFromInt(50000),
		AllowanceRate:       decimal.RequireFromString("0.10"),
		DeductionRate:       decimal.RequireFromString("0.20"),
		TaxShare:            decimal.RequireFromString("0.80"),
		InsuranceShare:      decimal.RequireFromString("0.10"),
		Allowances: []FormulaRule{
			{Kind: KindHousingAllowance, Mode: RuleModeFixed, Value: decimal.NewFromInt(500)},
			{Kind: KindTransportAllowance, Mode: RuleModeFixed, Value: decimal.NewFromInt(200)},
			{Kind: KindMedicalAllowance, Mode: RuleModePercent, Value: decimal.RequireFromString("0.05")},
			{Kind: KindMealAllowance, Mode: RuleModeFixed, Value: decimal.NewFromInt(150)},
		},
		Deductions: []FormulaRule{
			{Kind: KindLoanDeduction, Mode: RuleModeFixed, Value: decimal.NewFromInt(100)},
			{Kind: KindAdvanceDeduction, Mode: RuleModeFixed, Value: decimal.NewFromInt(50)},
			{Kind: KindUniformDeduction, Mode: RuleModeFixed, Value: decimal.NewFromInt(25)},
			{Kind: KindParkingDeduction, Mode: RuleModeFixed, Value: decimal.NewFromInt(20)},
			{Kind: KindLatePenalty, Mode: RuleModeFixed, Value: decimal.Zero},
		},
	}
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func (f Formula) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.Version) {
		errs = append(errs, validator.ValidationError{Field: "version", Message: "is required"})
	}
	if !f.DefaultAnnualSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "default_annual_salary", Message: "must be positive"})
	}
	if !isFraction(f.AllowanceRate) {
		errs = append(errs, validator.ValidationError{Field: "allowance_rate", Message: "must be between 0 and 1"})
	}
	if !isFraction(f.DeductionRate) {
		errs = append(errs, validator.ValidationError{Field: "deduction_rate", Message: "must be between 0 and 1"})
	}
	if !isFraction(f.TaxShare) || !isFraction(f.InsuranceShare) || !isFraction(f.TaxShare.Add(f.InsuranceShare)) {
		errs = append(errs, validator.ValidationError{Field: "tax_share", Message: "tax and insurance shares must be fractions summing to at most 1"})
	}

	errs = append(errs, validateRules("allowances", f.Allowances, PolarityAllowance, 4)...)
	errs = append(errs, validateRules("deductions", f.Deductions, PolarityDeduction, 5)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRules requires each named field of the given polarity exactly once.
func validateRules(field string, rules []FormulaRule, polarity Polarity, want int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	seen := make(map[ComponentKind]bool)
	for i, r := range rules {
		name := fmt.Sprintf("%s[%d]", field, i)
		if _, ok := FieldForKind(r.Kind); !ok || Classify(r.Kind) != polarity {
			errs = append(errs, validator.ValidationError{Field: name, Message: fmt.Sprintf("kind %q is not a named %s", r.Kind, polarity)})
			continue
		}
		if seen[r.Kind] {
			errs = append(errs, validator.ValidationError{Field: name, Message: fmt.Sprintf("kind %q appears twice", r.Kind)})
		}
		seen[r.Kind] = true
		if r.Mode != RuleModeFixed && r.Mode != RuleModePercent {
			errs = append(errs, validator.ValidationError{Field: name, Message: "mode must be 'fixed' or 'percent'"})
		}
		if r.Value.IsNegative() || (r.Mode == RuleModePercent && !isFraction(r.Value)) {
			errs = append(errs, validator.ValidationError{Field: name, Message: "value out of range"})
		}
	}
	if len(seen) != want {
		errs = append(errs, validator.ValidationError{Field: field, Message: fmt.Sprintf("must cover all %d named %ss", want, polarity)})
	}
	return errs
}

// MonthlyAnchor converts an annual base salary into the monthly anchor,
// falling back to the formula default when the employee has none.
func (f Formula) MonthlyAnchor(annual *decimal.Decimal) decimal.Decimal {
	base := f.DefaultAnnualSalary
	if annual != nil && annual.IsPositive() {
		base = *annual
	}
	return RoundMoney(base.Div(monthsPerYear))
}

// Components expands the formula into the full line item set for one
// employee: basic, general allowance, named allowances, the tax/insurance/
// pension split of the deduction pool, then named deductions.
func (f Formula) Components(anchor decimal.Decimal) []PayrollComponent {
	lines := make([]PayrollComponent, 0, 3+len(f.Allowances)+len(f.Deductions)+3)

	line := func(kind ComponentKind, magnitude decimal.Decimal, taxable bool) {
		lines = append(lines, PayrollComponent{
			Name:      DisplayName(kind),
			Kind:      kind,
			Amount:    kind.SignedAmount(RoundMoney(magnitude)),
			IsTaxable: taxable,
		})
	}

	line(KindBasicSalary, anchor, true)
	line(KindAllowance, anchor.Mul(f.AllowanceRate), true)
	for _, r := range f.Allowances {
		line(r.Kind, r.Amount(anchor), r.Kind != KindMedicalAllowance)
	}

	pool := RoundMoney(anchor.Mul(f.DeductionRate))
	tax := RoundMoney(pool.Mul(f.TaxShare))
	insurance := RoundMoney(pool.Mul(f.InsuranceShare))
	line(KindTax, tax, false)
	line(KindInsurance, insurance, false)
	line(KindPension, pool.Sub(tax).Sub(insurance), false)

	for _, r := range f.Deductions {
		line(r.Kind, r.Amount(anchor), false)
	}
	return lines
}
