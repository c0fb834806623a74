package formula

import (
	"fmt"
	"os"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// number decodes a YAML scalar from its source text, so rates and amounts
// never pass through float64.
type number decimal.Decimal

func (n *number) UnmarshalYAML(b []byte) error {
	text := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", text, err)
	}
	*n = number(d)
	return nil
}

func (n number) MarshalYAML() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

type ruleFile struct {
	Kind  string `yaml:"kind"`
	Mode  string `yaml:"mode"`
	Value number `yaml:"value"`
}

type formulaFile struct {
	Version             string     `yaml:"version"`
	DefaultAnnualSalary number     `yaml:"default_annual_salary"`
	AllowanceRate       number     `yaml:"allowance_rate"`
	DeductionRate       number     `yaml:"deduction_rate"`
	TaxShare            number     `yaml:"tax_share"`
	InsuranceShare      number     `yaml:"insurance_share"`
	Allowances          []ruleFile `yaml:"allowances"`
	Deductions          []ruleFile `yaml:"deductions"`
}

// Load reads a formula from a YAML file. An empty path yields the built-in
// default formula.
func Load(path string) (payroll.Formula, error) {
	if path == "" {
		return payroll.DefaultFormula(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Formula{}, fmt.Errorf("failed to read formula file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML formula document.
func Parse(data []byte) (payroll.Formula, error) {
	var raw formulaFile
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.Strict()); err != nil {
		return payroll.Formula{}, fmt.Errorf("failed to parse formula: %w", err)
	}

	f := payroll.Formula{
		Version:             raw.Version,
		DefaultAnnualSalary: decimal.Decimal(raw.DefaultAnnualSalary),
		AllowanceRate:       decimal.Decimal(raw.AllowanceRate),
		DeductionRate:       decimal.Decimal(raw.DeductionRate),
		TaxShare:            decimal.Decimal(raw.TaxShare),
		InsuranceShare:      decimal.Decimal(raw.InsuranceShare),
		Allowances:          toRules(raw.Allowances),
		Deductions:          toRules(raw.Deductions),
	}
	if err := f.Validate(); err != nil {
		return payroll.Formula{}, fmt.Errorf("invalid formula %q: %w", raw.Version, err)
	}
	return f, nil
}

// Marshal renders f in the same YAML layout Parse accepts.
func Marshal(f payroll.Formula) ([]byte, error) {
	raw := formulaFile{
		Version:             f.Version,
		DefaultAnnualSalary: number(f.DefaultAnnualSalary),
		AllowanceRate:       number(f.AllowanceRate),
		DeductionRate:       number(f.DeductionRate),
		TaxShare:            number(f.TaxShare),
		InsuranceShare:      number(f.InsuranceShare),
		Allowances:          fromRules(f.Allowances),
		Deductions:          fromRules(f.Deductions),
	}
	return yaml.Marshal(raw)
}

func toRules(in []ruleFile) []payroll.FormulaRule {
	out := make([]payroll.FormulaRule, 0, len(in))
	for _, r := range in {
		out = append(out, payroll.FormulaRule{
			Kind:  payroll.ComponentKind(r.Kind),
			Mode:  payroll.RuleMode(r.Mode),
			Value: decimal.Decimal(r.Value),
		})
	}
	return out
}

func fromRules(in []payroll.FormulaRule) []ruleFile {
	out := make([]ruleFile, 0, len(in))
	for _, r := range in {
		out = append(out, ruleFile{Kind: string(r.Kind), Mode: string(r.Mode), Value: number(r.Value)})
	}
	return out
}
