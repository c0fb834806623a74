package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, organizationID string) (Employee, error)
	GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]Employee, error)
	// ListByOrganizationID includes inactive employees so historical
	// records still resolve a display name.
	ListByOrganizationID(ctx context.Context, organizationID string) ([]Employee, error)
	CountActive(ctx context.Context, organizationID string) (int, error)
}
