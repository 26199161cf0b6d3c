package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
)

// Aggregator turns recorded attendance days and approved leave into the
// monthly facts payroll consumes.
type Aggregator struct {
	attendanceRepo  attendance.AttendanceRepository
	leaveRepo       leave.LeaveRequestRepository
	workingWeekdays map[time.Weekday]bool
	log             *slog.Logger
	now             func() time.Time
}

func NewAggregator(attendanceRepo attendance.AttendanceRepository, leaveRepo leave.LeaveRequestRepository, workingWeekdays []time.Weekday, log *slog.Logger) *Aggregator {
	days := make(map[time.Weekday]bool, len(workingWeekdays))
	for _, d := range workingWeekdays {
		days[d] = true
	}
	return &Aggregator{
		attendanceRepo:  attendanceRepo,
		leaveRepo:       leaveRepo,
		workingWeekdays: days,
		log:             log,
		now:             time.Now,
	}
}

var _ attendance.Aggregator = (*Aggregator)(nil)

func (a *Aggregator) Summarize(ctx context.Context, companyID, employeeID string, month, year int) (attendance.Summary, error) {
	if month < 1 || month > 12 {
		return attendance.Summary{}, fmt.Errorf("invalid month %d", month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	counts, err := a.attendanceRepo.CountByStatus(ctx, companyID, employeeID, from, to)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to count attendance: %w", err)
	}
	approved, err := a.leaveRepo.ListApprovedOverlapping(ctx, companyID, employeeID, from, to)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to list approved leave: %w", err)
	}

	summary := attendance.Summary{
		EmployeeID:  employeeID,
		Month:       month,
		Year:        year,
		WorkingDays: a.workingDaysBetween(from, to),
		PresentDays: counts.Present,
		LateDays:    counts.Late,
	}
	// Days after today cannot have been recorded yet; they are never absences.
	elapsedTo := minTime(to, truncateDay(a.now()))
	elapsed := a.workingDaysBetween(from, elapsedTo)
	for _, r := range approved {
		start := maxTime(r.StartDate, from)
		days := a.workingDaysBetween(start, minTime(r.EndDate, to))
		if r.LeaveType.IsPaid() {
			summary.LeaveDays += days
		} else {
			summary.UnpaidLeaveDays += days
		}
		elapsed -= a.workingDaysBetween(start, minTime(r.EndDate, elapsedTo))
	}

	// Elapsed working days nobody accounted for count as absence.
	unaccounted := elapsed - summary.PresentDays - summary.LateDays
	summary.AbsentDays = max(counts.Absent, unaccounted, 0)

	a.log.DebugContext(ctx, "attendance summarized",
		slog.String("employee_id", employeeID),
		slog.Int("month", month),
		slog.Int("year", year),
		slog.Int("working_days", summary.WorkingDays),
		slog.Int("absent_days", summary.AbsentDays),
	)
	return summary, nil
}

// WorkingDaysIn counts working days of the month.
func (a *Aggregator) WorkingDaysIn(month, year int) int {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return a.workingDaysBetween(from, from.AddDate(0, 1, -1))
}

func (a *Aggregator) workingDaysBetween(from, to time.Time) int {
	from = truncateDay(from)
	to = truncateDay(to)
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if a.workingWeekdays[d.Weekday()] {
			n++
		}
	}
	return n
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
