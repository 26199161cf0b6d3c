package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GeneratePayrollRequest) (PayrollRecordResponse, error)
	GetByID(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListMine(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)

	Confirm(ctx context.Context, req ConfirmPayrollRequest) (PayrollRecordResponse, error)
	Pay(ctx context.Context, req PayPayrollRequest) (PayrollRecordResponse, error)
	StartPayment(ctx context.Context, req PayPayrollRequest) (PayrollRecordResponse, error)
	CompletePayment(ctx context.Context, req CompletePaymentRequest) (PayrollRecordResponse, error)
	Fail(ctx context.Context, req FailPayrollRequest) (PayrollRecordResponse, error)
	Retry(ctx context.Context, id string) (PayrollRecordResponse, error)

	SalaryAnalytics(ctx context.Context, year int) (SalaryAnalyticsResponse, error)
}
