package payroll

import "time"

const DateLayout = "2006-01-02"

// MonthWindow returns the canonical [start, end) calendar dates of a month.
// time.Date normalizes month 13 into January of the following year.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// PeriodLabel is the human label of the month starting at start, e.g. "October 2026".
func PeriodLabel(start time.Time) string {
	return start.Format("January 2006")
}

// CalendarDate strips the time of day, keeping the calendar date of t.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewMonthlyPeriod builds an unsaved PROCESSING period for the month.
func NewMonthlyPeriod(organizationID string, year int, month time.Month, today time.Time, formulaVersion string) PayrollPeriod {
	start, end := MonthWindow(year, month)
	return PayrollPeriod{
		OrganizationID: organizationID,
		Label:          PeriodLabel(start),
		PeriodType:     PeriodTypeMonthly,
		StartDate:      start,
		EndDate:        end,
		PayDate:        end,
		ProcessingDate: CalendarDate(today),
		Status:         PayrollStatusProcessing,
		FormulaVersion: formulaVersion,
	}
}
