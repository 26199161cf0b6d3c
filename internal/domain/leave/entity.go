package leave

import "time"

type LeaveType string

const (
	LeaveTypeCasual    LeaveType = "casual"
	LeaveTypeEarned    LeaveType = "earned"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeUnpaid    LeaveType = "unpaid"
	LeaveTypeOther     LeaveType = "other"
)

// AllLeaveTypes lists every category in reporting order.
var AllLeaveTypes = []LeaveType{
	LeaveTypeCasual,
	LeaveTypeEarned,
	LeaveTypeSick,
	LeaveTypeMaternity,
	LeaveTypePaternity,
	LeaveTypeUnpaid,
	LeaveTypeOther,
}

// ParseLeaveType accepts "annual" as an alias of earned leave.
func ParseLeaveType(s string) (LeaveType, bool) {
	if s == "annual" {
		return LeaveTypeEarned, true
	}
	for _, t := range AllLeaveTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsPaid reports whether days of this type are paid time off.
func (t LeaveType) IsPaid() bool {
	return t != LeaveTypeUnpaid
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// LeaveRequest entity
type LeaveRequest struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	LeaveType    LeaveType
	StartDate    time.Time
	EndDate      time.Time
	TotalDays    int
	Reason       string
	Status       RequestStatus
	RejectReason *string
	DecidedBy    *string
	DecidedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields
	EmployeeName *string
}

// Entitlement is the yearly allowance of one leave type. Unlimited types carry no Total.
type Entitlement struct {
	Total     int
	Unlimited bool
}

// DefaultEntitlements are the statutory yearly days per category.
func DefaultEntitlements() map[LeaveType]Entitlement {
	return map[LeaveType]Entitlement{
		LeaveTypeCasual:    {Total: 6},
		LeaveTypeEarned:    {Total: 10},
		LeaveTypeSick:      {Total: 30},
		LeaveTypeMaternity: {Total: 98},
		LeaveTypePaternity: {Total: 15},
		LeaveTypeUnpaid:    {Unlimited: true},
		LeaveTypeOther:     {Unlimited: true},
	}
}

// Balance is derived from approved requests on demand and never stored.
type Balance struct {
	Total         int
	Used          int
	Remaining     int
	Unlimited     bool
	OverAllocated bool
}

// Decision moves a pending request to approved or rejected.
type Decision struct {
	RequestID    string
	CompanyID    string
	Status       RequestStatus
	RejectReason *string
	DecidedBy    string
	DecidedAt    time.Time
}
