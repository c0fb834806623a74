package department

import "context"

type DepartmentRepository interface {
	ListByOrganizationID(ctx context.Context, organizationID string) ([]Department, error)
	GetByID(ctx context.Context, id string, organizationID string) (Department, error)
}
