package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"golang.org/x/time/rate"
)

// OrganizationRateLimiter throttles an endpoint per organization with a
// token bucket refilled perMinute times a minute.
type OrganizationRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func NewOrganizationRateLimiter(perMinute int) *OrganizationRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &OrganizationRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *OrganizationRateLimiter) limiter(organizationID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[organizationID]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[organizationID] = lim
	}
	return lim
}

// requestedOrganization mirrors the handler: organization_id in the JSON body
// wins over the query string. The body is restored for the next handler.
func requestedOrganization(r *http.Request) (string, error) {
	requested := r.URL.Query().Get("organization_id")
	if r.Body == nil || r.Body == http.NoBody {
		return requested, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		OrganizationID string `json:"organization_id"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.OrganizationID != "" {
		requested = payload.OrganizationID
	}
	return requested, nil
}

// Limit keys the bucket on the organization the request acts on.
func (l *OrganizationRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := jwt.CallerFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		requested, err := requestedOrganization(r)
		if err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}

		organizationID, err := caller.ResolveOrganization(requested)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !l.limiter(organizationID).Allow() {
			response.HandleError(w, payroll.ErrPayrollProcessingRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}
