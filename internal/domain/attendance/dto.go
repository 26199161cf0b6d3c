package attendance

import (
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

// RecordDayRequest carries one day's outcome from the attendance feed.
type RecordDayRequest struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`

	parsedDate time.Time
}

func (r *RecordDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "must be a valid UUID"})
	}
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}
	r.parsedDate = date
	if !DayStatus(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of present, late, absent"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WorkDate returns the parsed work date; only meaningful after Validate succeeded.
func (r *RecordDayRequest) WorkDate() time.Time {
	return r.parsedDate
}

type SummaryResponse struct {
	EmployeeID      string `json:"employeeId"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	WorkingDays     int    `json:"workingDays"`
	PresentDays     int    `json:"presentDays"`
	LateDays        int    `json:"lateDays"`
	AbsentDays      int    `json:"absentDays"`
	LeaveDays       int    `json:"leaveDays"`
	UnpaidLeaveDays int    `json:"unpaidLeaveDays"`
}
