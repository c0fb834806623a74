package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	App                string
	Version            string
	Env                string
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	// ProcessLimiter throttles POST /process per organization; nil disables it.
	ProcessLimiter *middleware.OrganizationRateLimiter
}

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, reportHandler ReportHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(opts.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.App),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	throttle := func(next http.Handler) http.Handler { return next }
	if opts.ProcessLimiter != nil {
		throttle = opts.ProcessLimiter.Limit
	}

	r.Route("/api/v1/payroll", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)
		r.Use(middleware.RequireOrganization)

		r.With(middleware.RequirePermission(user.PermissionPayrollProcess), throttle).Post("/process", payrollHandler.ProcessPayroll)

		r.Route("/records", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListPayrollRecords)
			r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/", payrollHandler.CreatePayrollRecord)
			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/{id}", payrollHandler.GetPayrollRecord)
			r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Put("/{id}", payrollHandler.UpdatePayrollRecord)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollView))
				r.Get("/", payrollHandler.ListPeriods)
				r.Get("/{id}", payrollHandler.GetPeriod)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollManage))
				r.Put("/{id}/status", payrollHandler.UpdatePeriodStatus)
				r.Post("/{id}/recompute", payrollHandler.RecomputePeriod)
			})
		})

		r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/summary", payrollHandler.GetPayrollSummary)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionReportsView))
			r.Get("/generate-report", reportHandler.GenerateReport)
			r.Get("/reports/export", reportHandler.ExportDetailedCSV)
		})

		r.Route("/settings", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.GetSettings)
			r.With(middleware.RequirePermission(user.PermissionSettingsManage)).Put("/", payrollHandler.UpdateSettings)
		})
	})

	return r
}
