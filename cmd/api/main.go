package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v3"
	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/config"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	appHTTP "github.com/simplehr/simplehr-backend-go/internal/handler/http"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/authz"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/events"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/jwt"
	"github.com/simplehr/simplehr-backend-go/internal/repository/postgresql"
	attendanceService "github.com/simplehr/simplehr-backend-go/internal/service/attendance"
	leaveService "github.com/simplehr/simplehr-backend-go/internal/service/leave"
	payrollService "github.com/simplehr/simplehr-backend-go/internal/service/payroll"
	statutoryService "github.com/simplehr/simplehr-backend-go/internal/service/statutory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "simplehr-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("Error connecting to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveEntitlementRepo := postgresql.NewLeaveEntitlementRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	transactor := postgresql.NewTransactor(db)

	rules, err := statutoryService.LoadTable(cfg.Payroll.StatutoryRulesPath)
	if err != nil {
		logger.Error("Error loading statutory rules", slog.Any("error", err))
		os.Exit(1)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		logger.Error("Error creating JWT service", slog.Any("error", err))
		os.Exit(1)
	}
	authorizer, err := authz.NewAuthorizer(user.RolePermissions, logger)
	if err != nil {
		logger.Error("Error creating authorizer", slog.Any("error", err))
		os.Exit(1)
	}
	publisher, err := events.NewNATSPublisher(cfg.NATS.URL, logger)
	if err != nil {
		logger.Error("Error connecting to NATS", slog.Any("error", err))
		os.Exit(1)
	}
	defer publisher.Close()

	policy := payroll.Policy{
		LateDayMultiplier:   cfg.Payroll.LateDayMultiplier,
		AbsentDayMultiplier: cfg.Payroll.AbsentDayMultiplier,
		OvertimeMultipliers: map[payroll.RateCategory]decimal.Decimal{
			payroll.RateCategoryNormal:  cfg.Payroll.OvertimeNormal,
			payroll.RateCategoryWeekend: cfg.Payroll.OvertimeWeekend,
			payroll.RateCategoryHoliday: cfg.Payroll.OvertimeHoliday,
		},
		HoursPerDay: cfg.Payroll.HoursPerDay,
	}

	aggregator := attendanceService.NewAggregator(attendanceRepo, leaveRequestRepo, cfg.Payroll.WorkingWeekdays, logger)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, aggregator, authorizer, logger)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, leaveEntitlementRepo, employeeRepo, authorizer, publisher, logger)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		aggregator,
		rules,
		policy,
		authorizer,
		publisher,
		logger,
	)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		authorizer,
		payrollHandler,
		leaveHandler,
		attendanceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Server running", slog.String("addr", "http://localhost"+port))
	if err := http.ListenAndServe(port, router); err != nil {
		logger.Error("Server error", slog.Any("error", err))
	}
}
