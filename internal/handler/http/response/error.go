package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Caller errors
	case errors.Is(err, user.ErrCompanyIDRequired),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token claims")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrEmployeeRequired):
		Forbidden(w, "Account is not linked to an employee")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrDuplicateRecord):
		Conflict(w, "Payroll record already exists for this period")
	case errors.Is(err, payroll.ErrInvalidState):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrShortfallNotAcknowledged):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod):
		ValidationError(w, map[string]string{"year": "must be between 2000 and 2100"})
	case errors.Is(err, statutory.ErrNoRuleSetForPeriod):
		ValidationError(w, map[string]string{"period": "no statutory rule set is effective for this period"})

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidRange):
		ValidationError(w, map[string]string{"endDate": "must not be before startDate"})
	case errors.Is(err, leave.ErrRejectReasonRequired):
		ValidationError(w, map[string]string{"reason": "is required"})
	case errors.Is(err, leave.ErrInvalidState):
		Conflict(w, "Leave request already processed")

	// Default
	default:
		slog.Error("unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
