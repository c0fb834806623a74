package user

import "errors"

var (
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrOrganizationIDRequired   = errors.New("organization ID is required")
	ErrOrganizationAccessDenied = errors.New("access to this organization is not permitted")
)
