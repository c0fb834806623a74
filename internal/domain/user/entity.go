package user

type Role string

const (
	RoleOwner    Role = "owner"    // Organization owner - full access
	RoleManager  Role = "manager"  // Can view payroll and reports
	RoleEmployee Role = "employee" // Regular employee
)

// Caller is the authenticated identity carried by an access token.
type Caller struct {
	UserID         string
	OrganizationID string
	Role           Role
	IsAdmin        bool
}

// IsOwner checks if the caller owns the organization
func (c Caller) IsOwner() bool {
	return c.Role == RoleOwner
}

// CanAccessOrganization reports whether the caller may act on organizationID.
// Only admins may reach across organizations.
func (c Caller) CanAccessOrganization(organizationID string) bool {
	return c.IsAdmin || organizationID == c.OrganizationID
}

// ResolveOrganization picks the organization a request acts on: the
// requested one when given, the caller's own otherwise.
func (c Caller) ResolveOrganization(requested string) (string, error) {
	if requested == "" {
		requested = c.OrganizationID
	}
	if requested == "" {
		return "", ErrOrganizationIDRequired
	}
	if !c.CanAccessOrganization(requested) {
		return "", ErrOrganizationAccessDenied
	}
	return requested, nil
}
