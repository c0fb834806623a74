package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
)

// RequireOrganization rejects non-admin callers whose token carries no
// organization.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := jwt.CallerFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if caller.OrganizationID == "" && !caller.IsAdmin {
			response.HandleError(w, user.ErrOrganizationIDRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
