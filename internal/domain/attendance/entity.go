package attendance

import "time"

type DayStatus string

const (
	DayStatusPresent DayStatus = "present"
	DayStatusLate    DayStatus = "late"
	DayStatusAbsent  DayStatus = "absent"
)

func (s DayStatus) Valid() bool {
	return s == DayStatusPresent || s == DayStatusLate || s == DayStatusAbsent
}

// Day is one recorded attendance fact. Check-in validation (location, proof)
// happens upstream; only the resulting status reaches this store.
type Day struct {
	EmployeeID string
	CompanyID  string
	WorkDate   time.Time
	Status     DayStatus
}

// Counts is the per-status tally of recorded days in a range.
type Counts struct {
	Present int
	Late    int
	Absent  int
}

// Summary is the monthly attendance fact set consumed by payroll.
type Summary struct {
	EmployeeID      string
	Month           int
	Year            int
	WorkingDays     int
	PresentDays     int
	LateDays        int
	AbsentDays      int
	LeaveDays       int
	UnpaidLeaveDays int
}
