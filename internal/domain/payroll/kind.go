package payroll

import "github.com/shopspring/decimal"

// ComponentKind identifies what a line item represents.
type ComponentKind string

const (
	KindBasicSalary ComponentKind = "basic_salary"

	// Earnings / allowances
	KindAllowance          ComponentKind = "allowance"
	KindBonus              ComponentKind = "bonus"
	KindOvertime           ComponentKind = "overtime"
	KindCommission         ComponentKind = "commission"
	KindHousingAllowance   ComponentKind = "housing_allowance"
	KindTransportAllowance ComponentKind = "transport_allowance"
	KindMedicalAllowance   ComponentKind = "medical_allowance"
	KindMealAllowance      ComponentKind = "meal_allowance"

	// Deductions
	KindDeduction        ComponentKind = "deduction"
	KindTax              ComponentKind = "tax"
	KindInsurance        ComponentKind = "insurance"
	KindPension          ComponentKind = "pension"
	KindLoanDeduction    ComponentKind = "loan_deduction"
	KindAdvanceDeduction ComponentKind = "advance_deduction"
	KindUniformDeduction ComponentKind = "uniform_deduction"
	KindParkingDeduction ComponentKind = "parking_deduction"
	KindLatePenalty      ComponentKind = "late_penalty"
)

// Polarity is the side of the pay calculation a kind falls on.
type Polarity int

const (
	PolarityUnknown Polarity = iota
	// PolarityBase marks the basic salary line. It mirrors
	// PayrollRecord.BasicSalary and is never summed into either side.
	PolarityBase
	PolarityAllowance
	PolarityDeduction
)

func (p Polarity) String() string {
	switch p {
	case PolarityBase:
		return "base"
	case PolarityAllowance:
		return "allowance"
	case PolarityDeduction:
		return "deduction"
	}
	return "unknown"
}

var kindPolarity = map[ComponentKind]Polarity{
	KindBasicSalary: PolarityBase,

	KindAllowance:          PolarityAllowance,
	KindBonus:              PolarityAllowance,
	KindOvertime:           PolarityAllowance,
	KindCommission:         PolarityAllowance,
	KindHousingAllowance:   PolarityAllowance,
	KindTransportAllowance: PolarityAllowance,
	KindMedicalAllowance:   PolarityAllowance,
	KindMealAllowance:      PolarityAllowance,

	KindDeduction:        PolarityDeduction,
	KindTax:              PolarityDeduction,
	KindInsurance:        PolarityDeduction,
	KindPension:          PolarityDeduction,
	KindLoanDeduction:    PolarityDeduction,
	KindAdvanceDeduction: PolarityDeduction,
	KindUniformDeduction: PolarityDeduction,
	KindParkingDeduction: PolarityDeduction,
	KindLatePenalty:      PolarityDeduction,
}

// Classify returns the polarity of kind, or PolarityUnknown.
func Classify(kind ComponentKind) Polarity {
	return kindPolarity[kind]
}

func (k ComponentKind) IsValid() bool {
	return Classify(k) != PolarityUnknown
}

func (k ComponentKind) IsAllowance() bool { return Classify(k) == PolarityAllowance }

func (k ComponentKind) IsDeduction() bool { return Classify(k) == PolarityDeduction }

// SignedAmount converts a non-negative magnitude into the stored sign for kind.
func (k ComponentKind) SignedAmount(magnitude decimal.Decimal) decimal.Decimal {
	if k.IsDeduction() {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

// Kinds lists every known kind in a stable order.
func Kinds() []ComponentKind {
	return []ComponentKind{
		KindBasicSalary,
		KindAllowance, KindBonus, KindOvertime, KindCommission,
		KindHousingAllowance, KindTransportAllowance, KindMedicalAllowance, KindMealAllowance,
		KindDeduction, KindTax, KindInsurance, KindPension,
		KindLoanDeduction, KindAdvanceDeduction, KindUniformDeduction, KindParkingDeduction, KindLatePenalty,
	}
}

// NamedField is one of the nine flat update parameters.
type NamedField string

const (
	FieldHousingAllowance   NamedField = "housing_allowance"
	FieldTransportAllowance NamedField = "transport_allowance"
	FieldMedicalAllowance   NamedField = "medical_allowance"
	FieldMealAllowance      NamedField = "meal_allowance"
	FieldLoanDeduction      NamedField = "loan_deduction"
	FieldAdvanceDeduction   NamedField = "advance_deduction"
	FieldUniformDeduction   NamedField = "uniform_deduction"
	FieldParkingDeduction   NamedField = "parking_deduction"
	FieldLatePenalty        NamedField = "late_penalty"
)

type namedFieldSpec struct {
	field       NamedField
	kind        ComponentKind
	displayName string
}

// namedFields is the field <-> kind bijection, in update order.
var namedFields = []namedFieldSpec{
	{FieldHousingAllowance, KindHousingAllowance, "Housing Allowance"},
	{FieldTransportAllowance, KindTransportAllowance, "Transport Allowance"},
	{FieldMedicalAllowance, KindMedicalAllowance, "Medical Allowance"},
	{FieldMealAllowance, KindMealAllowance, "Meal Allowance"},
	{FieldLoanDeduction, KindLoanDeduction, "Loan Deduction"},
	{FieldAdvanceDeduction, KindAdvanceDeduction, "Advance Deduction"},
	{FieldUniformDeduction, KindUniformDeduction, "Uniform Deduction"},
	{FieldParkingDeduction, KindParkingDeduction, "Parking Deduction"},
	{FieldLatePenalty, KindLatePenalty, "Late Penalty"},
}

// NamedFields returns the nine named fields in update order.
func NamedFields() []NamedField {
	out := make([]NamedField, 0, len(namedFields))
	for _, nf := range namedFields {
		out = append(out, nf.field)
	}
	return out
}

// Kind returns the component kind backing f.
func (f NamedField) Kind() (ComponentKind, bool) {
	for _, nf := range namedFields {
		if nf.field == f {
			return nf.kind, true
		}
	}
	return "", false
}

// FieldForKind is the inverse of NamedField.Kind.
func FieldForKind(kind ComponentKind) (NamedField, bool) {
	for _, nf := range namedFields {
		if nf.kind == kind {
			return nf.field, true
		}
	}
	return "", false
}

// DisplayName returns the line item label used for a kind.
func DisplayName(kind ComponentKind) string {
	for _, nf := range namedFields {
		if nf.kind == kind {
			return nf.displayName
		}
	}
	switch kind {
	case KindBasicSalary:
		return "Basic Salary"
	case KindAllowance:
		return "General Allowance"
	case KindBonus:
		return "Bonus"
	case KindOvertime:
		return "Overtime"
	case KindCommission:
		return "Commission"
	case KindDeduction:
		return "General Deduction"
	case KindTax:
		return "Income Tax"
	case KindInsurance:
		return "Insurance"
	case KindPension:
		return "Pension"
	}
	return string(kind)
}

// NamedFieldAmounts is the flat per-field update payload. A nil field is
// left untouched; a zero field removes the component.
type NamedFieldAmounts struct {
	HousingAllowance   *decimal.Decimal `json:"housing_allowance,omitempty"`
	TransportAllowance *decimal.Decimal `json:"transport_allowance,omitempty"`
	MedicalAllowance   *decimal.Decimal `json:"medical_allowance,omitempty"`
	MealAllowance      *decimal.Decimal `json:"meal_allowance,omitempty"`
	LoanDeduction      *decimal.Decimal `json:"loan_deduction,omitempty"`
	AdvanceDeduction   *decimal.Decimal `json:"advance_deduction,omitempty"`
	UniformDeduction   *decimal.Decimal `json:"uniform_deduction,omitempty"`
	ParkingDeduction   *decimal.Decimal `json:"parking_deduction,omitempty"`
	LatePenalty        *decimal.Decimal `json:"late_penalty,omitempty"`
}

// NamedFieldAmount is one present entry of a NamedFieldAmounts payload.
type NamedFieldAmount struct {
	Field  NamedField
	Kind   ComponentKind
	Amount decimal.Decimal
}

func (a *NamedFieldAmounts) slot(f NamedField) **decimal.Decimal {
	switch f {
	case FieldHousingAllowance:
		return &a.HousingAllowance
	case FieldTransportAllowance:
		return &a.TransportAllowance
	case FieldMedicalAllowance:
		return &a.MedicalAllowance
	case FieldMealAllowance:
		return &a.MealAllowance
	case FieldLoanDeduction:
		return &a.LoanDeduction
	case FieldAdvanceDeduction:
		return &a.AdvanceDeduction
	case FieldUniformDeduction:
		return &a.UniformDeduction
	case FieldParkingDeduction:
		return &a.ParkingDeduction
	case FieldLatePenalty:
		return &a.LatePenalty
	}
	return nil
}

// Set assigns amount to field f.
func (a *NamedFieldAmounts) Set(f NamedField, amount decimal.Decimal) {
	if p := a.slot(f); p != nil {
		v := amount
		*p = &v
	}
}

// Entries returns the present fields in update order.
func (a NamedFieldAmounts) Entries() []NamedFieldAmount {
	var out []NamedFieldAmount
	for _, nf := range namedFields {
		p := a.slot(nf.field)
		if *p == nil {
			continue
		}
		out = append(out, NamedFieldAmount{Field: nf.field, Kind: nf.kind, Amount: **p})
	}
	return out
}

// IsEmpty reports whether no field is present.
func (a NamedFieldAmounts) IsEmpty() bool {
	return len(a.Entries()) == 0
}
