package payroll

import "errors"

var (
	ErrPayrollRecordNotFound    = errors.New("payroll record not found")
	ErrDuplicateRecord          = errors.New("payroll record already exists for this period")
	ErrInvalidState             = errors.New("operation not allowed in current payroll status")
	ErrShortfallNotAcknowledged = errors.New("deductions exceed gross salary; shortfall must be acknowledged before confirm")
	ErrInvalidPeriod            = errors.New("invalid payroll period")
)
