package report

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/department"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// formulaRecord builds a record the way the batch does for an annual salary.
func formulaRecord(id, employeeID, annual string) payroll.PayrollRecord {
	f := payroll.DefaultFormula()
	salary := d(annual)
	anchor := f.MonthlyAnchor(&salary)
	return payroll.PayrollRecord{
		ID:           id,
		EmployeeID:   employeeID,
		BasicSalary:  anchor,
		RecordTotals: payroll.ComputeRecordTotals(anchor, f.Components(anchor)),
		TotalHours:   d("160"),
		Status:       payroll.PayrollStatusProcessing,
	}
}

func testRoster() roster {
	engineering := "dep-eng"
	return newRoster(
		[]employee.Employee{
			{ID: "emp-1", FullName: "Ada Lovelace", DepartmentID: &engineering},
			{ID: "emp-2", FullName: "Grace Hopper"},
		},
		[]department.Department{{ID: engineering, Name: "Engineering"}},
	)
}

func testRecords() []payroll.PayrollRecord {
	return []payroll.PayrollRecord{
		formulaRecord("rec-1", "emp-1", "60000"),
		formulaRecord("rec-2", "emp-2", "120000"),
	}
}

var testHeader = report.Header{ReportType: report.ReportTypeSummary, Period: "October 2026", GeneratedAt: "2026-10-16T09:30:00Z"}

func TestSummary_DepartmentBuckets(t *testing.T) {
	// Act
	got := Summary(testHeader, testRecords(), testRoster())

	// Assert
	assert.Equal(t, 2, got.EmployeeCount)
	assert.True(t, d("18950").Equal(got.TotalGrossPay))
	assert.True(t, d("15560").Equal(got.TotalNetPay))
	assert.True(t, d("3390").Equal(got.TotalDeductions))
	assert.True(t, d("7780").Equal(got.AverageNetPay))

	require.Len(t, got.Departments, 2)
	assert.Equal(t, "Engineering", got.Departments[0].Department)
	assert.Equal(t, 1, got.Departments[0].EmployeeCount)
	assert.True(t, d("5405").Equal(got.Departments[0].AverageNetPay))
	assert.Equal(t, department.NoDepartment, got.Departments[1].Department)
	assert.True(t, d("12350").Equal(got.Departments[1].TotalGrossPay))
}

func TestDetailed_Rows(t *testing.T) {
	// Act
	got := Detailed(testHeader, testRecords(), testRoster())

	// Assert
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Ada Lovelace", got.Rows[0].EmployeeName)
	assert.Equal(t, "Engineering", got.Rows[0].Department)
	assert.True(t, d("1600").Equal(got.Rows[0].TotalAllowances))
	assert.True(t, d("1195").Equal(got.Rows[0].TotalDeductions))
	assert.Equal(t, "PROCESSING", got.Rows[0].Status)
	assert.Equal(t, department.NoDepartment, got.Rows[1].Department)
}

func TestDetailed_FallsBackToJoinedName(t *testing.T) {
	name := "Joined Name"
	rec := formulaRecord("rec-3", "emp-3", "60000")
	rec.EmployeeName = &name

	// Act
	got := Detailed(testHeader, []payroll.PayrollRecord{rec}, testRoster())

	// Assert
	assert.Equal(t, "Joined Name", got.Rows[0].EmployeeName)
}

func TestTax_Brackets(t *testing.T) {
	// Act
	got := Tax(testHeader, testRecords())

	// Assert
	assert.True(t, d("2400").Equal(got.TotalTaxes))
	assert.True(t, d("300").Equal(got.TotalInsurance))
	assert.True(t, d("300").Equal(got.TotalPension))

	require.Len(t, got.Brackets, 3)
	assert.Equal(t, report.TaxBracketLow, got.Brackets[0].Bracket)
	assert.Equal(t, 0, got.Brackets[0].EmployeeCount)
	assert.True(t, got.Brackets[0].TotalTax.IsZero())

	assert.Equal(t, report.TaxBracketMedium, got.Brackets[1].Bracket)
	assert.Equal(t, 1, got.Brackets[1].EmployeeCount)
	assert.True(t, d("800").Equal(got.Brackets[1].TotalTax))

	assert.Equal(t, report.TaxBracketHigh, got.Brackets[2].Bracket)
	assert.Equal(t, 1, got.Brackets[2].EmployeeCount)
	assert.True(t, d("1600").Equal(got.Brackets[2].TotalTax))
}

func TestBracketFor(t *testing.T) {
	tests := []struct {
		basic string
		want  report.TaxBracketName
	}{
		{"4166.66", report.TaxBracketLow},
		{"4166.67", report.TaxBracketMedium},
		{"8333.33", report.TaxBracketMedium},
		{"8333.34", report.TaxBracketHigh},
	}

	for _, tt := range tests {
		t.Run(tt.basic, func(t *testing.T) {
			assert.Equal(t, tt.want, BracketFor(d(tt.basic)))
		})
	}
}

func TestBenefits_GrandTotal(t *testing.T) {
	// Act
	got := Benefits(testHeader, testRecords())

	// Assert
	assert.True(t, d("3950").Equal(got.TotalAllowances))
	assert.True(t, got.TotalBonuses.IsZero())
	assert.True(t, got.TotalOvertime.IsZero())
	assert.True(t, d("4550").Equal(got.GrandTotal))
}

func TestDetailedCSV_FormatsMoney(t *testing.T) {
	rows := Detailed(testHeader, testRecords(), testRoster()).Rows

	// Act
	got := DetailedCSV(rows)

	// Assert
	require.Len(t, got, 2)
	assert.Equal(t, "5000.00", got[0].BasicSalary)
	assert.Equal(t, "0.00", got[0].Bonuses)
	assert.Equal(t, "5405.00", got[0].NetPay)
	assert.Equal(t, "160.00", got[0].HoursWorked)
}

func TestDetailed_DepartmentFallsBackToJoinedName(t *testing.T) {
	sales := "Sales"
	records := testRecords()
	records[1].EmployeeID = "emp-gone"
	records[1].DepartmentName = &sales
	records = append(records, formulaRecord("rec-3", "emp-unknown", "60000"))

	// Act
	got := Detailed(testHeader, records, testRoster())

	// Assert
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Engineering", got.Rows[0].Department)
	assert.Equal(t, "Sales", got.Rows[1].Department)
	assert.Equal(t, department.NoDepartment, got.Rows[2].Department)
}
