package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/jwt"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	aggregator     attendance.Aggregator
	authorizer     user.Authorizer
	log            *slog.Logger
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	aggregator attendance.Aggregator,
	authorizer user.Authorizer,
	log *slog.Logger,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		aggregator:     aggregator,
		authorizer:     authorizer,
		log:            log,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// RecordDay stores one day's outcome. Recording the same day again replaces it.
func (s *AttendanceServiceImpl) RecordDay(ctx context.Context, req attendance.RecordDayRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.CompanyID); err != nil {
		return err
	}

	day := attendance.Day{
		EmployeeID: req.EmployeeID,
		CompanyID:  actor.CompanyID,
		WorkDate:   req.WorkDate(),
		Status:     attendance.DayStatus(req.Status),
	}
	if err := s.attendanceRepo.Upsert(ctx, day); err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}

	s.log.Debug("attendance recorded",
		slog.String("employee_id", day.EmployeeID),
		slog.String("date", req.Date),
		slog.String("status", req.Status),
	)
	return nil
}

func (s *AttendanceServiceImpl) Summary(ctx context.Context, employeeID string, month, year int) (attendance.SummaryResponse, error) {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if year < 2000 || year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	if len(errs) > 0 {
		return attendance.SummaryResponse{}, errs
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return attendance.SummaryResponse{}, user.ErrEmployeeRequired
	}
	if employeeID != actor.EmployeeID && !s.authorizer.Allowed(actor.Role, user.PermissionPayrollReadAll) {
		return attendance.SummaryResponse{}, user.ErrInsufficientPermissions
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID); err != nil {
		return attendance.SummaryResponse{}, err
	}

	summary, err := s.aggregator.Summarize(ctx, actor.CompanyID, employeeID, month, year)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}
	return attendance.SummaryResponse(summary), nil
}
