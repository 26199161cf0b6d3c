package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidRange         = errors.New("leave end date precedes start date")
	ErrInvalidState         = errors.New("leave request is no longer pending")
	ErrRejectReasonRequired = errors.New("reject reason is required")
)
