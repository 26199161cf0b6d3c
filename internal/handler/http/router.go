package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/handler/http/middleware"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, authorizer user.Authorizer, payrollHandler PayrollHandler, leaveHandler LeaveHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	requires := func(p user.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(authorizer, p)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.With(requires(user.PermissionPayrollWrite)).Post("/generate", payrollHandler.Generate)
				r.With(requires(user.PermissionPayrollReadAll)).Get("/", payrollHandler.List)
				r.With(requires(user.PermissionPayrollReadOwn)).Get("/my", payrollHandler.ListMine)
				r.With(requires(user.PermissionPayrollReadAll)).Get("/analytics/salary", payrollHandler.SalaryAnalytics)

				r.Route("/{id}", func(r chi.Router) {
					r.With(requires(user.PermissionPayrollReadOwn)).Get("/", payrollHandler.Get)
					r.With(requires(user.PermissionPayrollWrite)).Put("/confirm", payrollHandler.Confirm)

					// Payment
					r.Group(func(r chi.Router) {
						r.Use(requires(user.PermissionPayrollPay))
						r.Put("/pay", payrollHandler.Pay)
						r.Put("/processing", payrollHandler.StartPayment)
						r.Put("/complete", payrollHandler.CompletePayment)
						r.Put("/fail", payrollHandler.Fail)
						r.Put("/retry", payrollHandler.Retry)
					})
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.With(requires(user.PermissionLeaveCreate)).Post("/", leaveHandler.FileRequest)
				r.With(requires(user.PermissionLeaveReadOwn)).Get("/", leaveHandler.ListRequests)
				r.With(requires(user.PermissionLeaveReadOwn)).Get("/balance", leaveHandler.Balance)
				r.With(requires(user.PermissionLeaveReadAll)).Get("/analytics", leaveHandler.Analytics)
				r.With(requires(user.PermissionLeaveManageEntitlements)).Put("/entitlements", leaveHandler.SetEntitlement)

				r.Route("/{id}", func(r chi.Router) {
					r.With(requires(user.PermissionLeaveReadOwn)).Get("/", leaveHandler.GetRequest)

					// Decisions
					r.Group(func(r chi.Router) {
						r.Use(requires(user.PermissionLeaveDecide))
						r.Put("/approve", leaveHandler.Approve)
						r.Put("/reject", leaveHandler.Reject)
					})
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(requires(user.PermissionAttendanceWrite)).Put("/", attendanceHandler.RecordDay)
				r.With(requires(user.PermissionPayrollReadOwn)).Get("/summary", attendanceHandler.Summary)
			})
		})
	})
	return r
}
