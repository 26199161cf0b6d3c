package leave

import (
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

// DateLayout is the wire format of leave dates.
const DateLayout = "2006-01-02"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employeeId,omitempty"` // admins may file on behalf of an employee
	LeaveType  string `json:"leaveType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`

	// Parsed by Validate
	parsedType  LeaveType
	parsedStart time.Time
	parsedEnd   time.Time
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "must be a valid UUID"})
	}
	if lt, ok := ParseLeaveType(r.LeaveType); ok {
		r.parsedType = lt
	} else {
		errs = append(errs, validator.ValidationError{Field: "leaveType", Message: "must be one of casual, earned, annual, sick, maternity, paternity, unpaid, other"})
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "startDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	end, ok := validator.IsValidDate(r.EndDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "endDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	r.parsedStart, r.parsedEnd = start, end

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Parsed returns the typed values; only meaningful after Validate succeeded.
func (r *CreateLeaveRequest) Parsed() (LeaveType, time.Time, time.Time) {
	return r.parsedType, r.parsedStart, r.parsedEnd
}

type RejectLeaveRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectLeaveRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return ErrRejectReasonRequired
	}
	return nil
}

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *RequestStatus
	LeaveType  *LeaveType
	Year       *int
	Page       int
	Limit      int
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of pending, approved, rejected"})
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must not exceed 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetEntitlementRequest struct {
	LeaveType string `json:"leaveType"`
	TotalDays *int   `json:"totalDays,omitempty"` // nil means unlimited
}

func (r *SetEntitlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := ParseLeaveType(r.LeaveType); !ok {
		errs = append(errs, validator.ValidationError{Field: "leaveType", Message: "is not a valid leave type"})
	}
	if r.TotalDays != nil && (*r.TotalDays < 0 || *r.TotalDays > 366) {
		errs = append(errs, validator.ValidationError{Field: "totalDays", Message: "must be between 0 and 366"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type LeaveRequestResponse struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	EmployeeName *string       `json:"employeeName,omitempty"`
	LeaveType    LeaveType     `json:"leaveType"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	TotalDays    int           `json:"totalDays"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	RejectReason *string       `json:"rejectReason,omitempty"`
	DecidedBy    *string       `json:"decidedBy,omitempty"`
	DecidedAt    *time.Time    `json:"decidedAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type ListLeaveRequestResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

type BalanceItem struct {
	Total         int  `json:"total"`
	Used          int  `json:"used"`
	Remaining     int  `json:"remaining"`
	Unlimited     bool `json:"unlimited"`
	OverAllocated bool `json:"overAllocated"`
}

type BalanceResponse struct {
	EmployeeID string                    `json:"employeeId"`
	Year       int                       `json:"year"`
	Balances   map[LeaveType]BalanceItem `json:"balances"`
}

type EmployeeLeaveSummary struct {
	EmployeeID   string                    `json:"employeeId"`
	EmployeeName string                    `json:"employeeName"`
	Leaves       map[LeaveType]BalanceItem `json:"leaves"`
}

type LeaveAnalyticsResponse struct {
	Year      int                    `json:"year"`
	Employees []EmployeeLeaveSummary `json:"employees"`
	TotalUsed map[LeaveType]int      `json:"totalUsed"`
}
