package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert records the final status of one working day. A later correction of
// the same day replaces the earlier status.
func (a *attendanceRepository) Upsert(ctx context.Context, day attendance.Day) error {
	q := GetQuerier(ctx, a.db)

	_, err := q.Exec(ctx, `
		INSERT INTO attendance_days (employee_id, company_id, work_date, status, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (employee_id, work_date)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	`, day.EmployeeID, day.CompanyID, day.WorkDate, string(day.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert attendance day: %w", err)
	}
	return nil
}

func (a *attendanceRepository) CountByStatus(ctx context.Context, companyID, employeeID string, from, to time.Time) (attendance.Counts, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COUNT(*) FILTER (WHERE status = 'absent')
		FROM attendance_days
		WHERE company_id = $1 AND employee_id = $2 AND work_date BETWEEN $3 AND $4
	`

	var counts attendance.Counts
	if err := q.QueryRow(ctx, query, companyID, employeeID, from, to).Scan(&counts.Present, &counts.Late, &counts.Absent); err != nil {
		return attendance.Counts{}, fmt.Errorf("failed to count attendance: %w", err)
	}
	return counts, nil
}
