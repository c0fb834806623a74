package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, organization_id, department_id, employee_code, full_name, employment_status, base_salary`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.OrganizationID, &emp.DepartmentID, &emp.EmployeeCode,
		&emp.FullName, &emp.EmploymentStatus, &emp.BaseSalary,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, organizationID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// GetActiveByOrganizationID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE organization_id = $1 AND employment_status = $2 AND deleted_at IS NULL
		ORDER BY full_name, id
	`
	return e.list(ctx, query, organizationID, string(employee.EmploymentStatusActive))
}

// ListByOrganizationID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE organization_id = $1
		ORDER BY full_name, id
	`
	return e.list(ctx, query, organizationID)
}

// CountActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CountActive(ctx context.Context, organizationID string) (int, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT COUNT(*)
		FROM employees
		WHERE organization_id = $1 AND employment_status = $2 AND deleted_at IS NULL
	`

	var count int
	if err := q.QueryRow(ctx, query, organizationID, string(employee.EmploymentStatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}

	return count, nil
}
