package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(companyID, employeeID string, month, year int) payroll.PayrollRecord {
	return payroll.PayrollRecord{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		EmployeeID:      employeeID,
		PeriodMonth:     month,
		PeriodYear:      year,
		BasicSalary:     300000,
		Allowances:      payroll.Allowances{Transport: 20000, Meal: 15000},
		TotalAllowances: 35000,
		Overtime:        payroll.Overtime{Hours: decimal.RequireFromString("1.5"), RateCategory: payroll.RateCategoryNormal},
		Attendance:      payroll.AttendanceSnapshot{WorkingDays: 22, PresentDays: 20, LateDays: 1, AbsentDays: 1},
		Deductions:      payroll.Deductions{SSBEmployee: 6700, IncomeTax: 6415, LatePenalty: 6818, AbsentPenalty: 13636},
		SSBEmployer:     10050,
		GrossSalary:     335000,
		TaxableIncome:   328300,
		TotalDeductions: 33569,
		NetSalary:       301431,
		Warnings:        []payroll.Warning{{Code: payroll.WarningZeroWorkingDays, Message: "test"}},
		RuleSetVersion:  "MM-2024",
		Status:          payroll.PayrollStatusDraft,
	}
}

func TestPayrollRepository_CreateAndGet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID, err := setup.InsertEmployee(ctx, companyID, "E-001", "Aung Aung")
	require.NoError(t, err)

	repo := postgresql.NewPayrollRepository(setup.DB)
	created, err := repo.Create(ctx, newDraft(companyID, employeeID, 1, 2025))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(301431), got.NetSalary)
	assert.Equal(t, payroll.Allowances{Transport: 20000, Meal: 15000}, got.Allowances)
	assert.True(t, decimal.RequireFromString("1.5").Equal(got.Overtime.Hours))
	assert.Equal(t, payroll.PayrollStatusDraft, got.Status)
	require.Len(t, got.Warnings, 1)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Aung Aung", *got.EmployeeName)

	_, err = repo.GetByID(ctx, created.ID, uuid.NewString())
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollRepository_LivePeriodIsUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID, err := setup.InsertEmployee(ctx, companyID, "E-001", "Aung Aung")
	require.NoError(t, err)
	repo := postgresql.NewPayrollRepository(setup.DB)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, newDraft(companyID, employeeID, 2, 2025))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, payroll.ErrDuplicateRecord)
	}
	assert.Equal(t, 1, succeeded)

	replaced, err := repo.SupersedeDraft(ctx, companyID, employeeID, 2, 2025)
	require.NoError(t, err)
	assert.True(t, replaced)
	_, err = repo.Create(ctx, newDraft(companyID, employeeID, 2, 2025))
	assert.NoError(t, err)
}

func TestPayrollRepository_Transition(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID, err := setup.InsertEmployee(ctx, companyID, "E-001", "Aung Aung")
	require.NoError(t, err)
	repo := postgresql.NewPayrollRepository(setup.DB)

	created, err := repo.Create(ctx, newDraft(companyID, employeeID, 3, 2025))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	method := payroll.PaymentMethodWavePay
	_, err = repo.Transition(ctx, payroll.StatusTransition{
		ID: created.ID, CompanyID: companyID,
		From: []payroll.PayrollStatus{payroll.PayrollStatusConfirmed}, To: payroll.PayrollStatusPaid,
		PaymentMethod: &method, At: now,
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidState)

	confirmed, err := repo.Transition(ctx, payroll.StatusTransition{
		ID: created.ID, CompanyID: companyID,
		From: []payroll.PayrollStatus{payroll.PayrollStatusDraft}, To: payroll.PayrollStatusConfirmed, At: now,
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	txID := "TX-9"
	paid, err := repo.Transition(ctx, payroll.StatusTransition{
		ID: created.ID, CompanyID: companyID,
		From: []payroll.PayrollStatus{payroll.PayrollStatusConfirmed}, To: payroll.PayrollStatusPaid,
		PaymentMethod:  &method,
		PaymentDetails: &payroll.PaymentDetails{TransactionID: &txID, PaidAt: &now},
		At:             now,
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, method, *paid.PaymentMethod)
	require.NotNil(t, paid.PaymentDetails.PaidAt)
	assert.True(t, now.Equal(*paid.PaymentDetails.PaidAt))

	_, err = repo.Transition(ctx, payroll.StatusTransition{
		ID: uuid.NewString(), CompanyID: companyID,
		From: []payroll.PayrollStatus{payroll.PayrollStatusDraft}, To: payroll.PayrollStatusConfirmed, At: now,
	})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollRepository_ListAndAnalytics(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	first, err := setup.InsertEmployee(ctx, companyID, "E-001", "Aung Aung")
	require.NoError(t, err)
	second, err := setup.InsertEmployee(ctx, companyID, "E-002", "Su Su")
	require.NoError(t, err)
	repo := postgresql.NewPayrollRepository(setup.DB)

	for _, rec := range []payroll.PayrollRecord{
		newDraft(companyID, first, 1, 2025),
		newDraft(companyID, second, 1, 2025),
		newDraft(companyID, first, 2, 2025),
	} {
		_, err := repo.Create(ctx, rec)
		require.NoError(t, err)
	}

	year := 2025
	records, total, err := repo.List(ctx, companyID, payroll.PayrollFilter{EmployeeID: &first, Year: &year, Limit: 1, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].PeriodMonth)

	months, err := repo.SalaryAnalytics(ctx, companyID, 2025)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, 1, months[0].PeriodMonth)
	assert.Equal(t, 2, months[0].RecordCount)
	assert.Equal(t, int64(2*301431), months[0].NetSalary)
	assert.Equal(t, 2, months[0].CountByStatus[payroll.PayrollStatusDraft])
}
