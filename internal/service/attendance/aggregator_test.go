package attendance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

type stubAttendanceRepo struct {
	counts attendance.Counts
}

func (s stubAttendanceRepo) Upsert(ctx context.Context, day attendance.Day) error { return nil }

func (s stubAttendanceRepo) CountByStatus(ctx context.Context, companyID, employeeID string, from, to time.Time) (attendance.Counts, error) {
	return s.counts, nil
}

type stubLeaveRepo struct {
	leave.LeaveRequestRepository
	approved []leave.LeaveRequest
}

func (s stubLeaveRepo) ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	return s.approved, nil
}

func newAggregator(counts attendance.Counts, approved ...leave.LeaveRequest) *Aggregator {
	return NewAggregator(stubAttendanceRepo{counts: counts}, stubLeaveRepo{approved: approved}, weekdays,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkingDaysIn(t *testing.T) {
	a := newAggregator(attendance.Counts{})

	// January 2025 starts on a Wednesday.
	assert.Equal(t, 23, a.WorkingDaysIn(1, 2025))
	assert.Equal(t, 20, a.WorkingDaysIn(2, 2025))
	assert.Equal(t, 21, a.WorkingDaysIn(2, 2024))
}

func TestSummarize_FullAttendance(t *testing.T) {
	a := newAggregator(attendance.Counts{Present: 19, Late: 1})

	got, err := a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, attendance.Summary{
		EmployeeID: "e", Month: 2, Year: 2025,
		WorkingDays: 20, PresentDays: 19, LateDays: 1,
	}, got)
}

func TestSummarize_LeaveClippedToMonth(t *testing.T) {
	a := newAggregator(attendance.Counts{Present: 14},
		// Jan 29 (Wed) to Feb 4 (Tue): Feb 3 and Feb 4 fall in the month.
		leave.LeaveRequest{LeaveType: leave.LeaveTypeEarned, StartDate: day(2025, 1, 29), EndDate: day(2025, 2, 4), Status: leave.StatusApproved},
		// Feb 14 (Fri) to Feb 17 (Mon): two working days.
		leave.LeaveRequest{LeaveType: leave.LeaveTypeUnpaid, StartDate: day(2025, 2, 14), EndDate: day(2025, 2, 17), Status: leave.StatusApproved},
	)

	got, err := a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 20, got.WorkingDays)
	assert.Equal(t, 2, got.LeaveDays)
	assert.Equal(t, 2, got.UnpaidLeaveDays)
	assert.Equal(t, 2, got.AbsentDays, "unaccounted working days count as absent")
}

func TestSummarize_RecordedAbsenceWins(t *testing.T) {
	a := newAggregator(attendance.Counts{Present: 20, Absent: 3})

	got, err := a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AbsentDays)
}

func TestSummarize_MidMonthCountsElapsedDaysOnly(t *testing.T) {
	a := newAggregator(attendance.Counts{Present: 8},
		// Feb 13 (Thu) to Feb 18 (Tue): two days elapsed, two still ahead.
		leave.LeaveRequest{LeaveType: leave.LeaveTypeEarned, StartDate: day(2025, 2, 13), EndDate: day(2025, 2, 18), Status: leave.StatusApproved},
	)
	// Friday Feb 14: ten working days have elapsed.
	a.now = func() time.Time { return time.Date(2025, 2, 14, 15, 30, 0, 0, time.UTC) }

	got, err := a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 20, got.WorkingDays)
	assert.Equal(t, 4, got.LeaveDays)
	assert.Equal(t, 0, got.AbsentDays)

	a.now = func() time.Time { return day(2025, 1, 20) }
	got, err = a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AbsentDays, "a month that has not started has no absences")
}

func TestSummarize_MidMonthUnrecordedDays(t *testing.T) {
	a := newAggregator(attendance.Counts{Present: 6, Late: 1})
	a.now = func() time.Time { return day(2025, 2, 14) }

	got, err := a.Summarize(context.Background(), "c", "e", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AbsentDays)
}

func TestSummarize_InvalidMonth(t *testing.T) {
	_, err := newAggregator(attendance.Counts{}).Summarize(context.Background(), "c", "e", 13, 2025)
	assert.Error(t, err)
}
