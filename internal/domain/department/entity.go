package department

// Department is the id -> display name lookup used by report joins.
type Department struct {
	ID             string
	OrganizationID string
	Name           string
}

// NoDepartment is the bucket for records whose employee has no resolved department.
const NoDepartment = "No Department"
