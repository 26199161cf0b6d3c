package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/events"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/jwt"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	aggregator   attendance.Aggregator
	rules        statutory.Provider
	policy       payroll.Policy
	authorizer   user.Authorizer
	publisher    events.Publisher
	log          *slog.Logger
	now          func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	aggregator attendance.Aggregator,
	rules statutory.Provider,
	policy payroll.Policy,
	authorizer user.Authorizer,
	publisher events.Publisher,
	log *slog.Logger,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		aggregator:   aggregator,
		rules:        rules,
		policy:       policy,
		authorizer:   authorizer,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== GENERATE ==========

func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.CompanyID); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	rules, err := s.rules.ForPeriod(req.Year, req.Month)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var snapshot payroll.AttendanceSnapshot
	if req.Attendance != nil {
		snapshot = req.Attendance.ToSnapshot()
	} else {
		summary, err := s.aggregator.Summarize(ctx, actor.CompanyID, req.EmployeeID, req.Month, req.Year)
		if err != nil {
			return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to summarize attendance: %w", err)
		}
		snapshot = payroll.AttendanceSnapshot{
			WorkingDays:     summary.WorkingDays,
			PresentDays:     summary.PresentDays,
			LateDays:        summary.LateDays,
			AbsentDays:      summary.AbsentDays,
			LeaveDays:       summary.LeaveDays,
			UnpaidLeaveDays: summary.UnpaidLeaveDays,
		}
	}

	record := Calculate(CalculationInput{
		BasicSalary:      req.BasicSalary,
		Allowances:       req.Allowances.ToAllowances(),
		Overtime:         req.Overtime,
		Attendance:       snapshot,
		ManualDeductions: req.ManualDeductions.ToManualDeductions(),
	}, rules, s.policy)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to generate payroll record id: %w", err)
	}
	record.ID = id.String()
	record.CompanyID = actor.CompanyID
	record.EmployeeID = req.EmployeeID
	record.PeriodMonth = req.Month
	record.PeriodYear = req.Year
	record.Status = payroll.PayrollStatusDraft
	if actor.UserID != "" {
		record.CreatedBy = &actor.UserID
	}

	var created payroll.PayrollRecord
	var replacedDraft bool
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		replacedDraft, err = s.payrollRepo.SupersedeDraft(txCtx, actor.CompanyID, req.EmployeeID, req.Month, req.Year)
		if err != nil {
			return err
		}
		created, err = s.payrollRepo.Create(txCtx, record)
		return err
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	s.log.InfoContext(ctx, "payroll generated",
		slog.String("payroll_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.Int("month", created.PeriodMonth),
		slog.Int("year", created.PeriodYear),
		slog.Int64("net_salary", created.NetSalary),
		slog.Bool("replaced_draft", replacedDraft),
	)
	if created.HasShortfall() {
		s.log.WarnContext(ctx, "payroll shortfall", slog.String("payroll_id", created.ID), slog.Int64("shortfall", created.Shortfall))
	}
	s.publish(ctx, actor, "generated", created)

	return mapToRecordResponse(created), nil
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.payrollRepo.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if !s.authorizer.Allowed(actor.Role, user.PermissionPayrollReadAll) && record.EmployeeID != actor.EmployeeID {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListMine(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if !actor.HasEmployee() {
		return payroll.ListPayrollRecordResponse{}, user.ErrEmployeeRequired
	}
	filter.EmployeeID = &actor.EmployeeID
	return s.list(ctx, actor, filter)
}

func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if !s.authorizer.Allowed(actor.Role, user.PermissionPayrollReadAll) {
		if !actor.HasEmployee() {
			return payroll.ListPayrollRecordResponse{}, user.ErrEmployeeRequired
		}
		filter.EmployeeID = &actor.EmployeeID
	}
	return s.list(ctx, actor, filter)
}

func (s *PayrollServiceImpl) list(ctx context.Context, actor user.Actor, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	records, total, err := s.payrollRepo.List(ctx, actor.CompanyID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return payroll.ListPayrollRecordResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    mapToRecordResponses(records),
	}, nil
}

func (s *PayrollServiceImpl) SalaryAnalytics(ctx context.Context, year int) (payroll.SalaryAnalyticsResponse, error) {
	if year < 2000 || year > 2100 {
		return payroll.SalaryAnalyticsResponse{}, payroll.ErrInvalidPeriod
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.SalaryAnalyticsResponse{}, err
	}

	months, err := s.payrollRepo.SalaryAnalytics(ctx, actor.CompanyID, year)
	if err != nil {
		return payroll.SalaryAnalyticsResponse{}, err
	}

	resp := payroll.SalaryAnalyticsResponse{Year: year, Months: make([]payroll.MonthlySalaryResponse, 0, len(months))}
	for _, m := range months {
		resp.GrossSalary += m.GrossSalary
		resp.TotalDeductions += m.TotalDeductions
		resp.NetSalary += m.NetSalary
		resp.SSBEmployer += m.SSBEmployer
		resp.Months = append(resp.Months, payroll.MonthlySalaryResponse{
			Month:           m.PeriodMonth,
			RecordCount:     m.RecordCount,
			GrossSalary:     m.GrossSalary,
			TotalDeductions: m.TotalDeductions,
			NetSalary:       m.NetSalary,
			SSBEmployee:     m.SSBEmployee,
			SSBEmployer:     m.SSBEmployer,
			IncomeTax:       m.IncomeTax,
			CountByStatus:   m.CountByStatus,
		})
	}
	return resp, nil
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) Confirm(ctx context.Context, req payroll.ConfirmPayrollRequest) (payroll.PayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	current, err := s.payrollRepo.GetByID(ctx, req.ID, actor.CompanyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if current.Status != payroll.PayrollStatusDraft {
		return payroll.PayrollRecordResponse{}, payroll.ErrInvalidState
	}
	if current.HasShortfall() && !req.AcknowledgeShortfall {
		return payroll.PayrollRecordResponse{}, payroll.ErrShortfallNotAcknowledged
	}

	return s.transition(ctx, actor, "confirmed", payroll.StatusTransition{
		ID:   req.ID,
		From: []payroll.PayrollStatus{payroll.PayrollStatusDraft},
		To:   payroll.PayrollStatusConfirmed,
	})
}

func (s *PayrollServiceImpl) Pay(ctx context.Context, req payroll.PayPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	method := payroll.PaymentMethod(req.PaymentMethod)
	return s.transition(ctx, actor, "paid", payroll.StatusTransition{
		ID:             req.ID,
		From:           []payroll.PayrollStatus{payroll.PayrollStatusConfirmed},
		To:             payroll.PayrollStatusPaid,
		PaymentMethod:  &method,
		PaymentDetails: paymentDetailsFrom(req),
	})
}

// StartPayment parks a confirmed record while an external transfer is pending.
func (s *PayrollServiceImpl) StartPayment(ctx context.Context, req payroll.PayPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	method := payroll.PaymentMethod(req.PaymentMethod)
	return s.transition(ctx, actor, "processing", payroll.StatusTransition{
		ID:             req.ID,
		From:           []payroll.PayrollStatus{payroll.PayrollStatusConfirmed},
		To:             payroll.PayrollStatusProcessing,
		PaymentMethod:  &method,
		PaymentDetails: paymentDetailsFrom(req),
	})
}

func (s *PayrollServiceImpl) CompletePayment(ctx context.Context, req payroll.CompletePaymentRequest) (payroll.PayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return s.transition(ctx, actor, "paid", payroll.StatusTransition{
		ID:             req.ID,
		From:           []payroll.PayrollStatus{payroll.PayrollStatusProcessing},
		To:             payroll.PayrollStatusPaid,
		PaymentDetails: &payroll.PaymentDetails{TransactionID: req.TransactionID},
	})
}

func (s *PayrollServiceImpl) Fail(ctx context.Context, req payroll.FailPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return s.transition(ctx, actor, "failed", payroll.StatusTransition{
		ID:            req.ID,
		From:          []payroll.PayrollStatus{payroll.PayrollStatusConfirmed, payroll.PayrollStatusProcessing},
		To:            payroll.PayrollStatusFailed,
		FailureReason: &req.Reason,
	})
}

// Retry is the manual correction that returns a failed payment to confirmed.
func (s *PayrollServiceImpl) Retry(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return s.transition(ctx, actor, "confirmed", payroll.StatusTransition{
		ID:   id,
		From: []payroll.PayrollStatus{payroll.PayrollStatusFailed},
		To:   payroll.PayrollStatusConfirmed,
	})
}

func (s *PayrollServiceImpl) transition(ctx context.Context, actor user.Actor, event string, t payroll.StatusTransition) (payroll.PayrollRecordResponse, error) {
	t.CompanyID = actor.CompanyID
	t.At = s.now().UTC()
	if t.To == payroll.PayrollStatusPaid {
		if t.PaymentDetails == nil {
			t.PaymentDetails = &payroll.PaymentDetails{}
		}
		t.PaymentDetails.PaidAt = &t.At
	}

	record, err := s.payrollRepo.Transition(ctx, t)
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidState) {
			s.log.InfoContext(ctx, "payroll transition rejected",
				slog.String("payroll_id", t.ID),
				slog.String("to", string(t.To)),
			)
		}
		return payroll.PayrollRecordResponse{}, err
	}

	s.log.InfoContext(ctx, "payroll status changed",
		slog.String("payroll_id", record.ID),
		slog.String("status", string(record.Status)),
		slog.String("actor_id", actor.UserID),
	)
	s.publish(ctx, actor, event, record)

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) publish(ctx context.Context, actor user.Actor, eventType string, r payroll.PayrollRecord) {
	s.publisher.Publish(ctx, events.Event{
		EventType:    eventType,
		CompanyID:    r.CompanyID,
		ActorID:      actor.UserID,
		ResourceType: "payroll",
		ResourceID:   r.ID,
		Payload: map[string]interface{}{
			"employee_id": r.EmployeeID,
			"month":       r.PeriodMonth,
			"year":        r.PeriodYear,
			"status":      string(r.Status),
			"net_salary":  r.NetSalary,
		},
	})
}

func paymentDetailsFrom(req payroll.PayPayrollRequest) *payroll.PaymentDetails {
	return &payroll.PaymentDetails{
		TransactionID: req.TransactionID,
		AccountRef:    req.Account(),
		AccountName:   req.AccountName,
		Note:          req.Note,
	}
}

// ========== MAPPERS ==========

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []payroll.Warning{}
	}

	return payroll.PayrollRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		EmployeeCode:    r.EmployeeCode,
		Month:           r.PeriodMonth,
		Year:            r.PeriodYear,
		BasicSalary:     r.BasicSalary,
		Allowances:      payroll.AllowancesInput(r.Allowances),
		TotalAllowances: r.TotalAllowances,
		Overtime: payroll.OvertimeResponse{
			Hours:        r.Overtime.Hours,
			RateCategory: r.Overtime.RateCategory,
			HourlyRate:   r.Overtime.HourlyRate,
			TotalAmount:  r.Overtime.TotalAmount,
		},
		WorkingDays:     r.Attendance.WorkingDays,
		PresentDays:     r.Attendance.PresentDays,
		LateDays:        r.Attendance.LateDays,
		AbsentDays:      r.Attendance.AbsentDays,
		LeaveDays:       r.Attendance.LeaveDays,
		UnpaidLeaveDays: r.Attendance.UnpaidLeaveDays,
		SSB: payroll.SSBResponse{
			EmployeeContribution: r.Deductions.SSBEmployee,
			EmployerContribution: r.SSBEmployer,
		},
		IncomeTax: payroll.IncomeTaxResponse{
			TaxableIncome: r.TaxableIncome,
			TaxAmount:     r.Deductions.IncomeTax,
		},
		Deductions: payroll.DeductionsResponse{
			SSB:           r.Deductions.SSBEmployee,
			Tax:           r.Deductions.IncomeTax,
			LatePenalty:   r.Deductions.LatePenalty,
			AbsentPenalty: r.Deductions.AbsentPenalty,
			AdvanceSalary: r.Deductions.AdvanceSalary,
			Loan:          r.Deductions.Loan,
			Other:         r.Deductions.Other,
		},
		GrossSalary:     r.GrossSalary,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		Shortfall:       r.Shortfall,
		Warnings:        warnings,
		RuleSetVersion:  r.RuleSetVersion,
		Status:          r.Status,
		PaymentMethod:   r.PaymentMethod,
		PaymentDetails: payroll.PaymentDetailsResponse{
			TransactionID: r.PaymentDetails.TransactionID,
			AccountRef:    r.PaymentDetails.AccountRef,
			AccountName:   r.PaymentDetails.AccountName,
			Note:          r.PaymentDetails.Note,
			PaidAt:        r.PaymentDetails.PaidAt,
		},
		FailureReason: r.FailureReason,
		ConfirmedAt:   r.ConfirmedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
