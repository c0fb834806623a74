package postgresql

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	ukPayrollPeriodOrgStart        = "uk_payroll_period_org_start"
	ukPayrollRecordEmployeePeriod  = "uk_payroll_record_employee_period"
	ukPayrollComponentRecordKind   = "uk_payroll_component_record_kind"
	payrollRecordsFrom             = "payroll_records pr"
	payrollRecordsJoinPeriod       = "payroll_periods pp ON pp.id = pr.payroll_period_id"
	payrollRecordsJoinEmployee     = "employees e ON e.id = pr.employee_id"
	payrollRecordsJoinDepartment   = "departments d ON d.id = e.department_id"
	payrollComponentsTable         = "payroll_record_components"
	payrollRecordsDefaultPageLimit = 20
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, organizationID string) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, pay_cycle, pay_day, currency, created_at, updated_at
		FROM payroll_settings
		WHERE organization_id = $1
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query, organizationID).Scan(
		&s.ID, &s.OrganizationID, &s.PayCycle, &s.PayDay, &s.Currency, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (organization_id, pay_cycle, pay_day, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id) DO UPDATE SET
			pay_cycle = EXCLUDED.pay_cycle,
			pay_day = EXCLUDED.pay_day,
			currency = EXCLUDED.currency,
			updated_at = NOW()
		RETURNING id, organization_id, pay_cycle, pay_day, currency, created_at, updated_at
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query,
		settings.OrganizationID, string(settings.PayCycle), settings.PayDay, settings.Currency,
	).Scan(
		&s.ID, &s.OrganizationID, &s.PayCycle, &s.PayDay, &s.Currency, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

// ========== PERIODS ==========

const periodColumns = `
	id, organization_id, label, period_type, start_date, end_date, pay_date, processing_date,
	status, formula_version, total_gross_pay, total_net_pay, total_deductions, created_at, updated_at
`

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Label, &p.PeriodType, &p.StartDate, &p.EndDate, &p.PayDate, &p.ProcessingDate,
		&p.Status, &p.FormulaVersion, &p.TotalGrossPay, &p.TotalNetPay, &p.TotalDeductions, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			organization_id, label, period_type, start_date, end_date, pay_date, processing_date,
			status, formula_version, total_gross_pay, total_net_pay, total_deductions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, 0)
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query,
		period.OrganizationID, period.Label, period.PeriodType, period.StartDate, period.EndDate,
		period.PayDate, period.ProcessingDate, string(period.Status), period.FormulaVersion,
	))
	if err != nil {
		if isUniqueViolation(err, ukPayrollPeriodOrgStart) {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodAlreadyExists
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetPeriodByStartDate(ctx context.Context, organizationID string, startDate time.Time) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE organization_id = $1 AND start_date = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, organizationID, startDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period by start date: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string, organizationID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1 AND organization_id = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) LockPeriod(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1 FOR UPDATE`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to lock payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, organizationID string, limit int) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE organization_id = $1
		ORDER BY start_date DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}

	return periods, rows.Err()
}

func (r *payrollRepository) UpdatePeriodTotals(ctx context.Context, id string, totals payroll.PeriodTotals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET total_gross_pay = $2, total_net_pay = $3, total_deductions = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, id, totals.TotalGrossPay, totals.TotalNetPay, totals.TotalDeductions)
	if err != nil {
		return fmt.Errorf("failed to update payroll period totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrPayrollPeriodNotFound
	}

	return nil
}

func (r *payrollRepository) UpdatePeriodStatus(ctx context.Context, id string, status payroll.PayrollStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payroll_periods SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update payroll period status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrPayrollPeriodNotFound
	}

	return nil
}

// ========== RECORDS ==========

var recordColumns = []string{
	"pr.id", "pr.payroll_period_id", "pr.employee_id", "pr.organization_id", "pr.basic_salary",
	"pr.total_earnings", "pr.total_allowances", "pr.total_bonuses", "pr.total_overtime", "pr.total_commission",
	"pr.total_deductions", "pr.total_taxes", "pr.total_insurance", "pr.total_pension",
	"pr.gross_pay", "pr.net_pay", "pr.regular_hours", "pr.overtime_hours", "pr.total_hours",
	"pr.status", "pr.approved_by", "pr.approved_at", "pr.notes", "pr.created_at", "pr.updated_at",
	"e.full_name", "e.employee_code", "e.department_id", "d.name", "pp.label",
}

// recordSelect is the joined record projection shared by every record read.
func recordSelect() sq.SelectBuilder {
	return psql.Select(recordColumns...).
		From(payrollRecordsFrom).
		Join(payrollRecordsJoinPeriod).
		LeftJoin(payrollRecordsJoinEmployee).
		LeftJoin(payrollRecordsJoinDepartment)
}

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var pr payroll.PayrollRecord
	err := row.Scan(
		&pr.ID, &pr.PeriodID, &pr.EmployeeID, &pr.OrganizationID, &pr.BasicSalary,
		&pr.TotalEarnings, &pr.TotalAllowances, &pr.TotalBonuses, &pr.TotalOvertime, &pr.TotalCommission,
		&pr.TotalDeductions, &pr.TotalTaxes, &pr.TotalInsurance, &pr.TotalPension,
		&pr.GrossPay, &pr.NetPay, &pr.RegularHours, &pr.OvertimeHours, &pr.TotalHours,
		&pr.Status, &pr.ApprovedBy, &pr.ApprovedAt, &pr.Notes, &pr.CreatedAt, &pr.UpdatedAt,
		&pr.EmployeeName, &pr.EmployeeCode, &pr.DepartmentID, &pr.DepartmentName, &pr.PeriodLabel,
	)
	return pr, err
}

func (r *payrollRepository) queryRecords(ctx context.Context, builder sq.SelectBuilder) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payroll record query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		pr, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, pr)
	}

	return records, rows.Err()
}

func (r *payrollRepository) getRecord(ctx context.Context, builder sq.SelectBuilder) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to build payroll record query: %w", err)
	}

	pr, err := scanRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return pr, nil
}

func (r *payrollRepository) CreateRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			payroll_period_id, employee_id, organization_id, basic_salary,
			total_earnings, total_allowances, total_bonuses, total_overtime, total_commission,
			total_deductions, total_taxes, total_insurance, total_pension, gross_pay, net_pay,
			regular_hours, overtime_hours, total_hours, status, approved_by, approved_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.PeriodID, record.EmployeeID, record.OrganizationID, record.BasicSalary,
		record.TotalEarnings, record.TotalAllowances, record.TotalBonuses, record.TotalOvertime, record.TotalCommission,
		record.TotalDeductions, record.TotalTaxes, record.TotalInsurance, record.TotalPension, record.GrossPay, record.NetPay,
		record.RegularHours, record.OvertimeHours, record.TotalHours, string(record.Status), record.ApprovedBy, record.ApprovedAt, record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, ukPayrollRecordEmployeePeriod) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string, organizationID string) (payroll.PayrollRecord, error) {
	return r.getRecord(ctx, recordSelect().Where(sq.Eq{"pr.id": id, "pr.organization_id": organizationID}))
}

func (r *payrollRepository) LockRecord(ctx context.Context, id string, organizationID string) (payroll.PayrollRecord, error) {
	return r.getRecord(ctx, recordSelect().
		Where(sq.Eq{"pr.id": id, "pr.organization_id": organizationID}).
		Suffix("FOR UPDATE OF pr"))
}

var recordSortColumns = map[string]string{
	"created_at":    "pr.created_at",
	"gross_pay":     "pr.gross_pay",
	"net_pay":       "pr.net_pay",
	"employee_name": "e.full_name",
	"period":        "pp.start_date",
}

func (r *payrollRepository) ListRecords(ctx context.Context, organizationID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	where := sq.And{sq.Eq{"pr.organization_id": organizationID}}
	if filter.PeriodID != nil {
		where = append(where, sq.Eq{"pr.payroll_period_id": *filter.PeriodID})
	}
	if filter.PeriodMonth != nil {
		where = append(where, sq.Expr("EXTRACT(MONTH FROM pp.start_date) = ?", *filter.PeriodMonth))
	}
	if filter.PeriodYear != nil {
		where = append(where, sq.Expr("EXTRACT(YEAR FROM pp.start_date) = ?", *filter.PeriodYear))
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"pr.status": *filter.Status})
	}
	if filter.DepartmentID != nil {
		where = append(where, sq.Eq{"e.department_id": *filter.DepartmentID})
	}
	if filter.EmployeeID != nil {
		where = append(where, sq.Eq{"pr.employee_id": *filter.EmployeeID})
	}

	// Count total
	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From(payrollRecordsFrom).
		Join(payrollRecordsJoinPeriod).
		LeftJoin(payrollRecordsJoinEmployee).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build payroll record count: %w", err)
	}

	var total int64
	if err := GetQuerier(ctx, r.db).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	sortCol, ok := recordSortColumns[filter.SortBy]
	if !ok {
		sortCol = "pr.created_at"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = payrollRecordsDefaultPageLimit
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	records, err := r.queryRecords(ctx, recordSelect().
		Where(where).
		OrderBy(sortCol+" "+sortOrder, "pr.id").
		Limit(uint64(limit)).
		Offset(uint64((page-1)*limit)))
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *payrollRepository) ListRecordsByPeriod(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	return r.queryRecords(ctx, recordSelect().
		Where(sq.Eq{"pr.payroll_period_id": periodID}).
		OrderBy("e.full_name", "pr.id"))
}

func (r *payrollRepository) UpdateRecord(ctx context.Context, record payroll.PayrollRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records SET
			basic_salary = $3,
			total_earnings = $4, total_allowances = $5, total_bonuses = $6, total_overtime = $7, total_commission = $8,
			total_deductions = $9, total_taxes = $10, total_insurance = $11, total_pension = $12,
			gross_pay = $13, net_pay = $14,
			regular_hours = $15, overtime_hours = $16, total_hours = $17,
			status = $18, approved_by = $19, approved_at = $20, notes = $21,
			updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`

	result, err := q.Exec(ctx, query,
		record.ID, record.OrganizationID, record.BasicSalary,
		record.TotalEarnings, record.TotalAllowances, record.TotalBonuses, record.TotalOvertime, record.TotalCommission,
		record.TotalDeductions, record.TotalTaxes, record.TotalInsurance, record.TotalPension,
		record.GrossPay, record.NetPay,
		record.RegularHours, record.OvertimeHours, record.TotalHours,
		string(record.Status), record.ApprovedBy, record.ApprovedAt, record.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}

	return nil
}

func (r *payrollRepository) AdvanceRecordStatuses(ctx context.Context, periodID string, status payroll.PayrollStatus, approvedBy *string) error {
	q := GetQuerier(ctx, r.db)

	var behind []string
	for _, s := range []payroll.PayrollStatus{
		payroll.PayrollStatusDraft, payroll.PayrollStatusProcessing, payroll.PayrollStatusApproved, payroll.PayrollStatusPaid,
	} {
		if s.IsBehind(status) {
			behind = append(behind, string(s))
		}
	}
	if len(behind) == 0 {
		return nil
	}

	query := `
		UPDATE payroll_records SET
			status = $2,
			approved_by = COALESCE(approved_by, $3::uuid),
			approved_at = CASE WHEN $3::uuid IS NULL THEN approved_at ELSE COALESCE(approved_at, NOW()) END,
			updated_at = NOW()
		WHERE payroll_period_id = $1 AND status = ANY($4)
	`

	if _, err := q.Exec(ctx, query, periodID, string(status), approvedBy, behind); err != nil {
		return fmt.Errorf("failed to advance payroll record statuses: %w", err)
	}

	return nil
}

// ========== COMPONENTS ==========

const componentColumns = `id, payroll_record_id, name, kind, amount, is_taxable, description, created_at, updated_at`

func scanComponent(row pgx.Row) (payroll.PayrollComponent, error) {
	var c payroll.PayrollComponent
	err := row.Scan(&c.ID, &c.RecordID, &c.Name, &c.Kind, &c.Amount, &c.IsTaxable, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *payrollRepository) ListComponents(ctx context.Context, recordID string) ([]payroll.PayrollComponent, error) {
	byRecord, err := r.ListComponentsByRecordIDs(ctx, []string{recordID})
	if err != nil {
		return nil, err
	}
	return byRecord[recordID], nil
}

func (r *payrollRepository) ListComponentsByRecordIDs(ctx context.Context, recordIDs []string) (map[string][]payroll.PayrollComponent, error) {
	result := make(map[string][]payroll.PayrollComponent, len(recordIDs))
	if len(recordIDs) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + componentColumns + `
		FROM payroll_record_components
		WHERE payroll_record_id = ANY($1)
		ORDER BY payroll_record_id, created_at, kind
	`

	rows, err := q.Query(ctx, query, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll component: %w", err)
		}
		result[c.RecordID] = append(result[c.RecordID], c)
	}

	return result, rows.Err()
}

func (r *payrollRepository) CreateComponents(ctx context.Context, components []payroll.PayrollComponent) error {
	if len(components) == 0 {
		return nil
	}

	builder := psql.Insert(payrollComponentsTable).
		Columns("payroll_record_id", "name", "kind", "amount", "is_taxable", "description")
	for _, c := range components {
		builder = builder.Values(c.RecordID, c.Name, string(c.Kind), c.Amount, c.IsTaxable, c.Description)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build payroll component insert: %w", err)
	}

	if _, err := GetQuerier(ctx, r.db).Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err, ukPayrollComponentRecordKind) {
			return fmt.Errorf("duplicate payroll component kind: %w", payroll.ErrPayrollRecordAlreadyExists)
		}
		return fmt.Errorf("failed to create payroll components: %w", err)
	}

	return nil
}

func (r *payrollRepository) UpsertComponent(ctx context.Context, component payroll.PayrollComponent) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_record_components (payroll_record_id, name, kind, amount, is_taxable, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (payroll_record_id, kind) DO UPDATE SET
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			is_taxable = EXCLUDED.is_taxable,
			description = EXCLUDED.description,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query,
		component.RecordID, component.Name, string(component.Kind), component.Amount, component.IsTaxable, component.Description,
	); err != nil {
		return fmt.Errorf("failed to upsert payroll component: %w", err)
	}

	return nil
}

func (r *payrollRepository) DeleteComponentsByKind(ctx context.Context, recordID string, kind payroll.ComponentKind) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_record_components WHERE payroll_record_id = $1 AND kind = $2`

	if _, err := q.Exec(ctx, query, recordID, string(kind)); err != nil {
		return fmt.Errorf("failed to delete payroll components: %w", err)
	}

	return nil
}

// ========== ATTENDANCE ==========

var minutesPerHour = decimal.NewFromInt(60)

func (r *payrollRepository) GetWorkedHours(ctx context.Context, organizationID string, start, end time.Time, employeeIDs []string) ([]payroll.WorkedHours, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, COALESCE(SUM(work_minutes), 0), COALESCE(SUM(overtime_minutes), 0)
		FROM attendances
		WHERE organization_id = $1 AND date >= $2 AND date < $3 AND employee_id = ANY($4)
		GROUP BY employee_id
	`

	rows, err := q.Query(ctx, query, organizationID, start, end, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate worked hours: %w", err)
	}
	defer rows.Close()

	var hours []payroll.WorkedHours
	for rows.Next() {
		var (
			employeeID             string
			workMinutes, otMinutes int64
		)
		if err := rows.Scan(&employeeID, &workMinutes, &otMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan worked hours: %w", err)
		}
		hours = append(hours, payroll.WorkedHours{
			EmployeeID:    employeeID,
			RegularHours:  decimal.NewFromInt(workMinutes).Div(minutesPerHour).Round(2),
			OvertimeHours: decimal.NewFromInt(otMinutes).Div(minutesPerHour).Round(2),
		})
	}

	return hours, rows.Err()
}
