package report

import (
	"cmp"
	"slices"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/department"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/shopspring/decimal"
)

var (
	monthsPerYear    = decimal.NewFromInt(12)
	lowBracketLimit  = decimal.NewFromInt(50000)
	highBracketLimit = decimal.NewFromInt(100000)
)

// roster resolves display names for report rows.
type roster struct {
	names         map[string]string
	departmentIDs map[string]string
	departments   map[string]string // department id -> name
}

func newRoster(employees []employee.Employee, departments []department.Department) roster {
	r := roster{
		names:         make(map[string]string, len(employees)),
		departmentIDs: make(map[string]string, len(employees)),
		departments:   make(map[string]string, len(departments)),
	}
	for _, d := range departments {
		r.departments[d.ID] = d.Name
	}
	for _, e := range employees {
		r.names[e.ID] = e.FullName
		if e.DepartmentID != nil {
			r.departmentIDs[e.ID] = *e.DepartmentID
		}
	}
	return r
}

func (r roster) employeeName(rec payroll.PayrollRecord) string {
	if name, ok := r.names[rec.EmployeeID]; ok {
		return name
	}
	if rec.EmployeeName != nil {
		return *rec.EmployeeName
	}
	return ""
}

func (r roster) departmentID(rec payroll.PayrollRecord) string {
	if id, ok := r.departmentIDs[rec.EmployeeID]; ok {
		return id
	}
	if rec.DepartmentID != nil {
		return *rec.DepartmentID
	}
	return ""
}

func (r roster) departmentName(rec payroll.PayrollRecord) string {
	if name, ok := r.departments[r.departmentID(rec)]; ok {
		return name
	}
	if rec.DepartmentName != nil {
		return *rec.DepartmentName
	}
	return department.NoDepartment
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return payroll.RoundMoney(total.Div(decimal.NewFromInt(int64(count))))
}

// Summary totals the period and breaks it down by department name.
func Summary(header report.Header, records []payroll.PayrollRecord, r roster) report.SummaryReport {
	totals := payroll.ComputePeriodTotals(records)

	byName := map[string]*report.DepartmentSummary{}
	for _, rec := range records {
		name := r.departmentName(rec)
		ds, ok := byName[name]
		if !ok {
			ds = &report.DepartmentSummary{Department: name, TotalGrossPay: decimal.Zero, TotalNetPay: decimal.Zero}
			byName[name] = ds
		}
		ds.EmployeeCount++
		ds.TotalGrossPay = ds.TotalGrossPay.Add(rec.GrossPay)
		ds.TotalNetPay = ds.TotalNetPay.Add(rec.NetPay)
	}

	departments := make([]report.DepartmentSummary, 0, len(byName))
	for _, ds := range byName {
		ds.AverageNetPay = average(ds.TotalNetPay, ds.EmployeeCount)
		departments = append(departments, *ds)
	}
	slices.SortFunc(departments, func(a, b report.DepartmentSummary) int {
		return cmp.Compare(a.Department, b.Department)
	})

	return report.SummaryReport{
		Header:          header,
		EmployeeCount:   len(records),
		TotalGrossPay:   totals.TotalGrossPay,
		TotalNetPay:     totals.TotalNetPay,
		TotalDeductions: totals.TotalDeductions,
		AverageNetPay:   average(totals.TotalNetPay, len(records)),
		Departments:     departments,
	}
}

// Detailed lists one row per record.
func Detailed(header report.Header, records []payroll.PayrollRecord, r roster) report.DetailedReport {
	rows := make([]report.DetailedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, report.DetailedRow{
			RecordID:        rec.ID,
			EmployeeID:      rec.EmployeeID,
			EmployeeName:    r.employeeName(rec),
			Department:      r.departmentName(rec),
			BasicSalary:     rec.BasicSalary,
			TotalAllowances: rec.TotalAllowances,
			TotalBonuses:    rec.TotalBonuses,
			TotalOvertime:   rec.TotalOvertime,
			GrossPay:        rec.GrossPay,
			TotalDeductions: rec.TotalDeductions,
			NetPay:          rec.NetPay,
			Status:          string(rec.Status),
			HoursWorked:     rec.TotalHours,
		})
	}
	return report.DetailedReport{Header: header, Rows: rows}
}

// BracketFor places a monthly basic salary by its annualized amount.
func BracketFor(basicSalary decimal.Decimal) report.TaxBracketName {
	annual := basicSalary.Mul(monthsPerYear)
	switch {
	case annual.LessThan(lowBracketLimit):
		return report.TaxBracketLow
	case annual.LessThanOrEqual(highBracketLimit):
		return report.TaxBracketMedium
	}
	return report.TaxBracketHigh
}

// Tax sums the statutory deductions and buckets records by bracket. All
// three brackets are always present.
func Tax(header report.Header, records []payroll.PayrollRecord) report.TaxReport {
	brackets := []report.TaxBracket{
		{Bracket: report.TaxBracketLow, Range: "< 50,000", TotalTax: decimal.Zero},
		{Bracket: report.TaxBracketMedium, Range: "50,000 - 100,000", TotalTax: decimal.Zero},
		{Bracket: report.TaxBracketHigh, Range: "> 100,000", TotalTax: decimal.Zero},
	}
	index := map[report.TaxBracketName]int{
		report.TaxBracketLow:    0,
		report.TaxBracketMedium: 1,
		report.TaxBracketHigh:   2,
	}

	resp := report.TaxReport{
		Header:         header,
		TotalTaxes:     decimal.Zero,
		TotalInsurance: decimal.Zero,
		TotalPension:   decimal.Zero,
	}
	for _, rec := range records {
		resp.TotalTaxes = resp.TotalTaxes.Add(rec.TotalTaxes)
		resp.TotalInsurance = resp.TotalInsurance.Add(rec.TotalInsurance)
		resp.TotalPension = resp.TotalPension.Add(rec.TotalPension)

		b := &brackets[index[BracketFor(rec.BasicSalary)]]
		b.EmployeeCount++
		b.TotalTax = b.TotalTax.Add(rec.TotalTaxes)
	}
	resp.Brackets = brackets
	return resp
}

// Benefits sums earnings and employer-side contributions.
func Benefits(header report.Header, records []payroll.PayrollRecord) report.BenefitsReport {
	resp := report.BenefitsReport{
		Header:          header,
		TotalAllowances: decimal.Zero,
		TotalBonuses:    decimal.Zero,
		TotalOvertime:   decimal.Zero,
		TotalInsurance:  decimal.Zero,
		TotalPension:    decimal.Zero,
	}
	for _, rec := range records {
		resp.TotalAllowances = resp.TotalAllowances.Add(rec.TotalAllowances)
		resp.TotalBonuses = resp.TotalBonuses.Add(rec.TotalBonuses)
		resp.TotalOvertime = resp.TotalOvertime.Add(rec.TotalOvertime)
		resp.TotalInsurance = resp.TotalInsurance.Add(rec.TotalInsurance)
		resp.TotalPension = resp.TotalPension.Add(rec.TotalPension)
	}
	resp.GrandTotal = resp.TotalAllowances.
		Add(resp.TotalBonuses).
		Add(resp.TotalOvertime).
		Add(resp.TotalInsurance).
		Add(resp.TotalPension)
	return resp
}

// DetailedCSV formats detailed rows for export.
func DetailedCSV(rows []report.DetailedRow) []report.DetailedCSVRow {
	out := make([]report.DetailedCSVRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, report.DetailedCSVRow{
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName,
			Department:   r.Department,
			BasicSalary:  r.BasicSalary.StringFixed(2),
			Allowances:   r.TotalAllowances.StringFixed(2),
			Bonuses:      r.TotalBonuses.StringFixed(2),
			Overtime:     r.TotalOvertime.StringFixed(2),
			GrossPay:     r.GrossPay.StringFixed(2),
			Deductions:   r.TotalDeductions.StringFixed(2),
			NetPay:       r.NetPay.StringFixed(2),
			Status:       r.Status,
			HoursWorked:  r.HoursWorked.StringFixed(2),
		})
	}
	return out
}
