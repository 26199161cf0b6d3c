package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/events"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/jwt"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	requestRepo     leave.LeaveRequestRepository
	entitlementRepo leave.EntitlementRepository
	employeeRepo    employee.EmployeeRepository
	authorizer      user.Authorizer
	publisher       events.Publisher
	log             *slog.Logger
	now             func() time.Time
}

func NewLeaveService(
	requestRepo leave.LeaveRequestRepository,
	entitlementRepo leave.EntitlementRepository,
	employeeRepo employee.EmployeeRepository,
	authorizer user.Authorizer,
	publisher events.Publisher,
	log *slog.Logger,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		requestRepo:     requestRepo,
		entitlementRepo: entitlementRepo,
		employeeRepo:    employeeRepo,
		authorizer:      authorizer,
		publisher:       publisher,
		log:             log,
		now:             time.Now,
	}
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)

// ========== REQUESTS ==========

func (s *LeaveServiceImpl) FileRequest(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	leaveType, start, end := req.Parsed()
	if end.Before(start) {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidRange
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	employeeID := actor.EmployeeID
	if req.EmployeeID != "" && req.EmployeeID != actor.EmployeeID {
		// Filing on behalf of someone else is an approver's job.
		if !s.authorizer.Allowed(actor.Role, user.PermissionLeaveDecide) {
			return leave.LeaveRequestResponse{}, user.ErrInsufficientPermissions
		}
		employeeID = req.EmployeeID
	}
	if employeeID == "" {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeRequired
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to generate leave request id: %w", err)
	}

	created, err := s.requestRepo.Create(ctx, leave.LeaveRequest{
		ID:         id.String(),
		CompanyID:  actor.CompanyID,
		EmployeeID: emp.ID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		TotalDays:  DaysInclusive(start, end),
		Reason:     req.Reason,
		Status:     leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	if created.EmployeeName == nil {
		created.EmployeeName = &emp.FullName
	}

	s.log.InfoContext(ctx, "leave request filed",
		slog.String("request_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.String("leave_type", string(created.LeaveType)),
		slog.Int("total_days", created.TotalDays),
	)
	s.publish(ctx, actor, "requested", created)

	return mapToRequestResponse(created), nil
}

func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, id, leave.StatusApproved, nil)
}

func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.decide(ctx, req.ID, leave.StatusRejected, &req.Reason)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, id string, status leave.RequestStatus, reason *string) (leave.LeaveRequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	decided, err := s.requestRepo.Decide(ctx, leave.Decision{
		RequestID:    id,
		CompanyID:    actor.CompanyID,
		Status:       status,
		RejectReason: reason,
		DecidedBy:    actor.UserID,
		DecidedAt:    s.now().UTC(),
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.log.InfoContext(ctx, "leave request decided",
		slog.String("request_id", decided.ID),
		slog.String("status", string(decided.Status)),
		slog.String("decided_by", actor.UserID),
	)
	s.publish(ctx, actor, string(decided.Status), decided)

	return mapToRequestResponse(decided), nil
}

func (s *LeaveServiceImpl) GetRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.requestRepo.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !s.authorizer.Allowed(actor.Role, user.PermissionLeaveReadAll) && request.EmployeeID != actor.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	return mapToRequestResponse(request), nil
}

func (s *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if !s.authorizer.Allowed(actor.Role, user.PermissionLeaveReadAll) {
		if !actor.HasEmployee() {
			return leave.ListLeaveRequestResponse{}, user.ErrEmployeeRequired
		}
		filter.EmployeeID = &actor.EmployeeID
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	requests, total, err := s.requestRepo.List(ctx, actor.CompanyID, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapToRequestResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Requests:   responses,
	}, nil
}

// ========== BALANCES ==========

// BalanceFor reports the yearly balances of one employee. An empty employeeID
// means the caller.
func (s *LeaveServiceImpl) BalanceFor(ctx context.Context, employeeID string, year int) (leave.BalanceResponse, error) {
	if err := validateYear(year); err != nil {
		return leave.BalanceResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return leave.BalanceResponse{}, user.ErrEmployeeRequired
	}
	if employeeID != actor.EmployeeID && !s.authorizer.Allowed(actor.Role, user.PermissionLeaveReadAll) {
		return leave.BalanceResponse{}, user.ErrInsufficientPermissions
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID); err != nil {
		return leave.BalanceResponse{}, err
	}

	entitlements, err := s.entitlements(ctx, actor.CompanyID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	used, err := s.requestRepo.SumApprovedDaysByType(ctx, actor.CompanyID, employeeID, year)
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to sum approved leave: %w", err)
	}

	return leave.BalanceResponse{
		EmployeeID: employeeID,
		Year:       year,
		Balances:   mapToBalanceItems(BalancesFromUsed(entitlements, used)),
	}, nil
}

// Analytics reports every active employee's balances for the year.
func (s *LeaveServiceImpl) Analytics(ctx context.Context, year int) (leave.LeaveAnalyticsResponse, error) {
	if err := validateYear(year); err != nil {
		return leave.LeaveAnalyticsResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveAnalyticsResponse{}, err
	}

	employees, err := s.employeeRepo.ListActiveByCompanyID(ctx, actor.CompanyID)
	if err != nil {
		return leave.LeaveAnalyticsResponse{}, err
	}
	entitlements, err := s.entitlements(ctx, actor.CompanyID)
	if err != nil {
		return leave.LeaveAnalyticsResponse{}, err
	}
	approved, err := s.requestRepo.ListApprovedByStartYear(ctx, actor.CompanyID, "", year)
	if err != nil {
		return leave.LeaveAnalyticsResponse{}, fmt.Errorf("failed to list approved leave: %w", err)
	}

	byEmployee := make(map[string][]leave.LeaveRequest)
	for _, r := range approved {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	resp := leave.LeaveAnalyticsResponse{
		Year:      year,
		Employees: make([]leave.EmployeeLeaveSummary, 0, len(employees)),
		TotalUsed: make(map[leave.LeaveType]int, len(leave.AllLeaveTypes)),
	}
	for _, t := range leave.AllLeaveTypes {
		resp.TotalUsed[t] = 0
	}
	for _, e := range employees {
		balances := ComputeBalances(entitlements, byEmployee[e.ID], year)
		for t, b := range balances {
			resp.TotalUsed[t] += b.Used
		}
		resp.Employees = append(resp.Employees, leave.EmployeeLeaveSummary{
			EmployeeID:   e.ID,
			EmployeeName: e.FullName,
			Leaves:       mapToBalanceItems(balances),
		})
	}

	return resp, nil
}

func (s *LeaveServiceImpl) SetEntitlement(ctx context.Context, req leave.SetEntitlementRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	leaveType, _ := leave.ParseLeaveType(req.LeaveType)
	ent := leave.Entitlement{Unlimited: req.TotalDays == nil}
	if req.TotalDays != nil {
		ent.Total = *req.TotalDays
	}

	if err := s.entitlementRepo.Upsert(ctx, actor.CompanyID, leaveType, ent); err != nil {
		return fmt.Errorf("failed to save leave entitlement: %w", err)
	}

	s.log.InfoContext(ctx, "leave entitlement updated",
		slog.String("company_id", actor.CompanyID),
		slog.String("leave_type", string(leaveType)),
		slog.Int("total_days", ent.Total),
		slog.Bool("unlimited", ent.Unlimited),
	)
	return nil
}

func (s *LeaveServiceImpl) entitlements(ctx context.Context, companyID string) (map[leave.LeaveType]leave.Entitlement, error) {
	overrides, err := s.entitlementRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave entitlements: %w", err)
	}
	return MergeEntitlements(overrides), nil
}

func (s *LeaveServiceImpl) publish(ctx context.Context, actor user.Actor, eventType string, r leave.LeaveRequest) {
	s.publisher.Publish(ctx, events.Event{
		EventType:    eventType,
		CompanyID:    r.CompanyID,
		ActorID:      actor.UserID,
		ResourceType: "leave",
		ResourceID:   r.ID,
		Payload: map[string]interface{}{
			"employee_id": r.EmployeeID,
			"leave_type":  string(r.LeaveType),
			"start_date":  r.StartDate.Format(leave.DateLayout),
			"end_date":    r.EndDate.Format(leave.DateLayout),
			"total_days":  r.TotalDays,
		},
	})
}

func validateYear(year int) error {
	if year < 2000 || year > 2100 {
		return validator.ValidationErrors{{Field: "year", Message: "must be between 2000 and 2100"}}
	}
	return nil
}

// ========== MAPPERS ==========

func mapToRequestResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	return leave.LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format(leave.DateLayout),
		EndDate:      r.EndDate.Format(leave.DateLayout),
		TotalDays:    r.TotalDays,
		Reason:       r.Reason,
		Status:       r.Status,
		RejectReason: r.RejectReason,
		DecidedBy:    r.DecidedBy,
		DecidedAt:    r.DecidedAt,
		CreatedAt:    r.CreatedAt,
	}
}

func mapToBalanceItems(balances map[leave.LeaveType]leave.Balance) map[leave.LeaveType]leave.BalanceItem {
	items := make(map[leave.LeaveType]leave.BalanceItem, len(balances))
	for t, b := range balances {
		items[t] = leave.BalanceItem(b)
	}
	return items
}
