package attendance

import "context"

// Aggregator supplies the attendance facts of one employee for one month.
type Aggregator interface {
	Summarize(ctx context.Context, companyID, employeeID string, month, year int) (Summary, error)
}

type AttendanceService interface {
	RecordDay(ctx context.Context, req RecordDayRequest) error
	// Summary previews the monthly facts payroll would use. An empty employeeID
	// means the caller.
	Summary(ctx context.Context, employeeID string, month, year int) (SummaryResponse, error)
}
