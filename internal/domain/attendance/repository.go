package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Upsert(ctx context.Context, day Day) error
	// CountByStatus tallies recorded days in [from, to].
	CountByStatus(ctx context.Context, companyID, employeeID string, from, to time.Time) (Counts, error)
}
