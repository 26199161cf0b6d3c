package leave

import "context"

type LeaveService interface {
	FileRequest(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)

	BalanceFor(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
	Analytics(ctx context.Context, year int) (LeaveAnalyticsResponse, error)
	SetEntitlement(ctx context.Context, req SetEntitlementRequest) error
}
