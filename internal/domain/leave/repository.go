package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveRequest, error)
	List(ctx context.Context, companyID string, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	// Decide only applies to pending requests; otherwise ErrInvalidState.
	Decide(ctx context.Context, d Decision) (LeaveRequest, error)

	// ListApprovedByStartYear returns approved requests whose start date falls in year.
	// An empty employeeID selects the whole company.
	ListApprovedByStartYear(ctx context.Context, companyID, employeeID string, year int) ([]LeaveRequest, error)
	// SumApprovedDaysByType is the aggregate form of ListApprovedByStartYear for one employee.
	SumApprovedDaysByType(ctx context.Context, companyID, employeeID string, year int) (map[LeaveType]int, error)
	// ListApprovedOverlapping returns approved requests touching [from, to].
	ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}

// EntitlementRepository holds company-specific overrides of the default entitlements.
type EntitlementRepository interface {
	GetByCompanyID(ctx context.Context, companyID string) (map[LeaveType]Entitlement, error)
	Upsert(ctx context.Context, companyID string, leaveType LeaveType, e Entitlement) error
}
