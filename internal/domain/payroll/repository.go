package payroll

import "context"

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access.
type PayrollRepository interface {
	// SupersedeDraft marks the live draft for the period, if any, as superseded.
	SupersedeDraft(ctx context.Context, companyID, employeeID string, month, year int) (bool, error)
	// Create fails with ErrDuplicateRecord when a live record exists for the period.
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string, companyID string) (PayrollRecord, error)
	List(ctx context.Context, companyID string, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// Transition fails with ErrInvalidState when the current status is not in t.From.
	Transition(ctx context.Context, t StatusTransition) (PayrollRecord, error)
	SalaryAnalytics(ctx context.Context, companyID string, year int) ([]MonthlySalarySummary, error)
}
