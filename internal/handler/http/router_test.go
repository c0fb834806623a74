package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
	handlerTestOrgID     = "7d0c8a8e-8f0e-4d8f-9a55-0f6d2b1f4c11"
)

type fakePayrollService struct {
	payroll.PayrollService

	processResult payroll.ProcessPayrollResponse
	processErr    error
	processReq    payroll.ProcessPayrollRequest

	updateErr error
	updateReq payroll.UpdatePayrollRecordRequest

	listResult payroll.ListPayrollRecordResponse
	listFilter payroll.PayrollFilter
}

func (f *fakePayrollService) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	f.processReq = req
	return f.processResult, f.processErr
}

func (f *fakePayrollService) UpdatePayrollRecord(ctx context.Context, req payroll.UpdatePayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	f.updateReq = req
	if f.updateErr != nil {
		return payroll.PayrollRecordResponse{}, f.updateErr
	}
	return payroll.PayrollRecordResponse{ID: req.ID}, nil
}

func (f *fakePayrollService) CreatePayrollRecord(ctx context.Context, req payroll.CreatePayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	return payroll.PayrollRecordResponse{ID: "rec-new"}, nil
}

func (f *fakePayrollService) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	f.listFilter = filter
	return f.listResult, nil
}

type fakeReportService struct {
	report.ReportService

	generateReq report.GenerateReportRequest
	export      report.CSVExport
}

func (f *fakeReportService) GenerateReport(ctx context.Context, req report.GenerateReportRequest) (report.Report, error) {
	f.generateReq = req
	return report.Header{ReportType: req.ReportType, Period: "2026-10"}, nil
}

func (f *fakeReportService) ExportDetailedCSV(ctx context.Context, req report.GenerateReportRequest) (report.CSVExport, error) {
	return f.export, nil
}

type routerEnv struct {
	router  *chi.Mux
	jwt     jwt.Service
	payroll *fakePayrollService
	reports *fakeReportService
}

func newRouterEnv(t *testing.T, ratePerMinute int) *routerEnv {
	t.Helper()
	env := &routerEnv{
		jwt:     jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp),
		payroll: &fakePayrollService{},
		reports: &fakeReportService{},
	}
	env.router = NewRouter(env.jwt, NewPayrollHandler(env.payroll), NewReportHandler(env.reports), RouterOptions{
		App:            "payroll-engine",
		Version:        "test",
		Env:            "test",
		ProcessLimiter: middleware.NewOrganizationRateLimiter(ratePerMinute),
	})
	return env
}

func (e *routerEnv) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(user.Caller{
		UserID:         "user-1",
		OrganizationID: handlerTestOrgID,
		Role:           role,
	})
	require.NoError(t, err)
	return token
}

func (e *routerEnv) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp response.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRouter_MissingToken(t *testing.T) {
	env := newRouterEnv(t, 6)

	// Act
	rec, resp := env.do(t, http.MethodGet, "/api/v1/payroll/summary", "", "")

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestRouter_ForeignSignature(t *testing.T) {
	env := newRouterEnv(t, 6)
	other := jwt.NewJWTService("another-secret", handlerTestAccessExp)
	token, _, err := other.GenerateAccessToken(user.Caller{UserID: "user-1", OrganizationID: handlerTestOrgID, Role: user.RoleOwner})
	require.NoError(t, err)

	// Act
	rec, _ := env.do(t, http.MethodGet, "/api/v1/payroll/summary", token, "")

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_MissingOrganization(t *testing.T) {
	env := newRouterEnv(t, 6)
	token, _, err := env.jwt.GenerateAccessToken(user.Caller{UserID: "user-1", Role: user.RoleOwner})
	require.NoError(t, err)

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, "")

	// Assert
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestRouter_PermissionDenied(t *testing.T) {
	env := newRouterEnv(t, 6)

	tests := []struct {
		name   string
		role   user.Role
		method string
		path   string
	}{
		{"employee cannot process", user.RoleEmployee, http.MethodPost, "/api/v1/payroll/process"},
		{"employee cannot view records", user.RoleEmployee, http.MethodGet, "/api/v1/payroll/records"},
		{"manager cannot create records", user.RoleManager, http.MethodPost, "/api/v1/payroll/records"},
		{"manager cannot change settings", user.RoleManager, http.MethodPut, "/api/v1/payroll/settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec, resp := env.do(t, tt.method, tt.path, env.token(t, tt.role), "{}")

			// Assert
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "FORBIDDEN", resp.Error.Code)
		})
	}
}

func TestRouter_ProcessPayroll(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.processResult = payroll.ProcessPayrollResponse{
		PeriodID:       "period-1",
		ProcessedCount: 2,
		TotalGross:     decimal.NewFromInt(18950),
		TotalNet:       decimal.NewFromInt(15560),
	}

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", env.token(t, user.RoleOwner), "")

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "period-1", data["period_id"])
	assert.EqualValues(t, 2, data["processed_count"])
	assert.False(t, env.payroll.processReq.Resume)
}

func TestRouter_ProcessPayroll_Partial(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.processResult = payroll.ProcessPayrollResponse{
		PeriodID:       "period-1",
		ProcessedCount: 1,
		FailedCount:    1,
		Partial:        true,
	}

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", env.token(t, user.RoleOwner), `{"resume": true}`)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payroll partially processed", resp.Message)
	assert.True(t, env.payroll.processReq.Resume)
}

func TestRouter_ProcessPayroll_Conflict(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.processErr = payroll.ErrPayrollAlreadyProcessed

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", env.token(t, user.RoleOwner), "")

	// Assert
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, payroll.ErrPayrollAlreadyProcessed.Error(), resp.Error.Message)
}

func TestRouter_ProcessPayroll_InvalidBody(t *testing.T) {
	env := newRouterEnv(t, 6)

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", env.token(t, user.RoleOwner), "{not json")

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestRouter_ProcessPayroll_RateLimited(t *testing.T) {
	env := newRouterEnv(t, 1)
	token := env.token(t, user.RoleOwner)

	// Act
	first, _ := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, "")
	second, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, "")

	// Assert
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", resp.Error.Code)
}

func TestRouter_ProcessPayroll_RateLimitedPerBodyOrganization(t *testing.T) {
	env := newRouterEnv(t, 1)
	token, _, err := env.jwt.GenerateAccessToken(user.Caller{
		UserID:         "admin-1",
		OrganizationID: handlerTestOrgID,
		Role:           user.RoleOwner,
		IsAdmin:        true,
	})
	require.NoError(t, err)
	orgA := "1111aaaa-0000-4000-8000-000000000001"
	orgB := "2222bbbb-0000-4000-8000-000000000002"

	// Act
	firstA, _ := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, `{"organization_id": "`+orgA+`"}`)
	firstB, _ := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, `{"organization_id": "`+orgB+`"}`)
	gotB := env.payroll.processReq.OrganizationID
	secondB, resp := env.do(t, http.MethodPost, "/api/v1/payroll/process", token, `{"organization_id": "`+orgB+`"}`)

	// Assert
	assert.Equal(t, http.StatusCreated, firstA.Code)
	assert.Equal(t, http.StatusCreated, firstB.Code)
	assert.Equal(t, orgB, gotB)
	assert.Equal(t, http.StatusTooManyRequests, secondB.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", resp.Error.Code)
}

func TestRouter_UpdatePayrollRecord_Validation(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.updateErr = validator.ValidationErrors{
		{Field: "parking_deduction", Message: "must not be negative"},
	}

	// Act
	rec, resp := env.do(t, http.MethodPut, "/api/v1/payroll/records/rec-1", env.token(t, user.RoleOwner), `{"parking_deduction": "-5"}`)

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "must not be negative", resp.Error.Details["parking_deduction"])
	assert.Equal(t, "rec-1", env.payroll.updateReq.ID)
}

func TestRouter_UpdatePayrollRecord_Paid(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.updateErr = payroll.ErrPayrollRecordAlreadyPaid

	// Act
	rec, _ := env.do(t, http.MethodPut, "/api/v1/payroll/records/rec-1", env.token(t, user.RoleOwner), `{"notes": "late fix"}`)

	// Assert
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_CreatePayrollRecord(t *testing.T) {
	env := newRouterEnv(t, 6)

	// Act
	rec, resp := env.do(t, http.MethodPost, "/api/v1/payroll/records", env.token(t, user.RoleOwner), `{"employee_id": "emp-1"}`)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Payroll record created", resp.Message)
}

func TestRouter_ListPayrollRecords(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.payroll.listResult = payroll.ListPayrollRecordResponse{
		Data:       []payroll.PayrollRecordResponse{{ID: "rec-1"}},
		TotalCount: 45,
		Page:       2,
		Limit:      20,
	}

	// Act
	rec, resp := env.do(t, http.MethodGet, "/api/v1/payroll/records?page=2&status=APPROVED&period_month=10", env.token(t, user.RoleManager), "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.EqualValues(t, 45, resp.Meta.TotalItems)
	assert.Equal(t, 2, env.payroll.listFilter.Page)
	assert.Equal(t, 20, env.payroll.listFilter.Limit)
	require.NotNil(t, env.payroll.listFilter.Status)
	assert.Equal(t, "APPROVED", *env.payroll.listFilter.Status)
	require.NotNil(t, env.payroll.listFilter.PeriodMonth)
	assert.Equal(t, 10, *env.payroll.listFilter.PeriodMonth)
}

func TestRouter_GenerateReport(t *testing.T) {
	env := newRouterEnv(t, 6)

	// Act
	rec, resp := env.do(t, http.MethodGet, "/api/v1/payroll/generate-report?report_type=tax&month=10&year=2026&department_id=dept-1", env.token(t, user.RoleManager), "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, report.ReportTypeTax, env.reports.generateReq.ReportType)
	require.NotNil(t, env.reports.generateReq.Month)
	assert.Equal(t, 10, *env.reports.generateReq.Month)
	require.NotNil(t, env.reports.generateReq.DepartmentID)
	assert.Equal(t, "dept-1", *env.reports.generateReq.DepartmentID)
}

func TestRouter_GenerateReport_InvalidMonth(t *testing.T) {
	env := newRouterEnv(t, 6)

	// Act
	rec, resp := env.do(t, http.MethodGet, "/api/v1/payroll/generate-report?report_type=tax&month=oct", env.token(t, user.RoleManager), "")

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid month parameter", resp.Error.Message)
}

func TestRouter_ExportDetailedCSV(t *testing.T) {
	env := newRouterEnv(t, 6)
	env.reports.export = report.CSVExport{
		Filename: "payroll-2026-10.csv",
		Data:     []byte("employee_id,employee_name\nemp-1,Ada Lovelace\n"),
	}

	// Act
	rec, _ := env.do(t, http.MethodGet, "/api/v1/payroll/reports/export?month=10&year=2026", env.token(t, user.RoleManager), "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="payroll-2026-10.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "employee_id,employee_name\nemp-1,Ada Lovelace\n", rec.Body.String())
}
