package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
)

const uniqueLivePayrollPeriod = "uk_payroll_live_period"

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `
	pr.id, pr.employee_id, pr.company_id, pr.period_month, pr.period_year,
	pr.basic_salary, pr.allowance_transport, pr.allowance_meal, pr.allowance_housing,
	pr.allowance_phone, pr.allowance_position, pr.allowance_other, pr.total_allowances,
	pr.overtime_hours, pr.overtime_rate_category, pr.overtime_hourly_rate, pr.overtime_amount,
	pr.working_days, pr.present_days, pr.late_days, pr.absent_days, pr.leave_days, pr.unpaid_leave_days,
	pr.ssb_employee, pr.ssb_employer, pr.income_tax, pr.late_penalty, pr.absent_penalty,
	pr.advance_salary, pr.loan, pr.other_deduction,
	pr.gross_salary, pr.taxable_income, pr.total_deductions, pr.net_salary, pr.shortfall,
	pr.warnings, pr.rule_set_version,
	pr.status, pr.payment_method, pr.transaction_id, pr.account_ref, pr.account_name, pr.payment_note,
	pr.paid_at, pr.failure_reason, pr.confirmed_at, pr.superseded_at,
	pr.created_by, pr.created_at, pr.updated_at,
	e.full_name, e.employee_code`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayrollRecord(row rowScanner) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var rateCategory, status string
	var paymentMethod *string
	var warningsBytes []byte

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.BasicSalary, &rec.Allowances.Transport, &rec.Allowances.Meal, &rec.Allowances.Housing,
		&rec.Allowances.Phone, &rec.Allowances.Position, &rec.Allowances.Other, &rec.TotalAllowances,
		&rec.Overtime.Hours, &rateCategory, &rec.Overtime.HourlyRate, &rec.Overtime.TotalAmount,
		&rec.Attendance.WorkingDays, &rec.Attendance.PresentDays, &rec.Attendance.LateDays,
		&rec.Attendance.AbsentDays, &rec.Attendance.LeaveDays, &rec.Attendance.UnpaidLeaveDays,
		&rec.Deductions.SSBEmployee, &rec.SSBEmployer, &rec.Deductions.IncomeTax,
		&rec.Deductions.LatePenalty, &rec.Deductions.AbsentPenalty,
		&rec.Deductions.AdvanceSalary, &rec.Deductions.Loan, &rec.Deductions.Other,
		&rec.GrossSalary, &rec.TaxableIncome, &rec.TotalDeductions, &rec.NetSalary, &rec.Shortfall,
		&warningsBytes, &rec.RuleSetVersion,
		&status, &paymentMethod, &rec.PaymentDetails.TransactionID, &rec.PaymentDetails.AccountRef,
		&rec.PaymentDetails.AccountName, &rec.PaymentDetails.Note,
		&rec.PaymentDetails.PaidAt, &rec.FailureReason, &rec.ConfirmedAt, &rec.SupersededAt,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	rec.Overtime.RateCategory = payroll.RateCategory(rateCategory)
	rec.Status = payroll.PayrollStatus(status)
	if paymentMethod != nil {
		m := payroll.PaymentMethod(*paymentMethod)
		rec.PaymentMethod = &m
	}
	if len(warningsBytes) > 0 {
		if err := json.Unmarshal(warningsBytes, &rec.Warnings); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to decode payroll warnings: %w", err)
		}
	}

	return rec, nil
}

// ========== WRITES ==========

func (r *payrollRepository) SupersedeDraft(ctx context.Context, companyID, employeeID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET superseded_at = NOW(), updated_at = NOW()
		WHERE company_id = $1 AND employee_id = $2 AND period_month = $3 AND period_year = $4
		  AND status = 'draft' AND superseded_at IS NULL
	`
	tag, err := q.Exec(ctx, query, companyID, employeeID, month, year)
	if err != nil {
		return false, fmt.Errorf("failed to supersede draft payroll: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	warnings := record.Warnings
	if warnings == nil {
		warnings = []payroll.Warning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to encode payroll warnings: %w", err)
	}

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, period_month, period_year,
			basic_salary, allowance_transport, allowance_meal, allowance_housing,
			allowance_phone, allowance_position, allowance_other, total_allowances,
			overtime_hours, overtime_rate_category, overtime_hourly_rate, overtime_amount,
			working_days, present_days, late_days, absent_days, leave_days, unpaid_leave_days,
			ssb_employee, ssb_employer, income_tax, late_penalty, absent_penalty,
			advance_salary, loan, other_deduction,
			gross_salary, taxable_income, total_deductions, net_salary, shortfall,
			warnings, rule_set_version, status, created_by
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28,
			$29, $30, $31,
			$32, $33, $34, $35, $36,
			$37, $38, $39, $40
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
		record.BasicSalary, record.Allowances.Transport, record.Allowances.Meal, record.Allowances.Housing,
		record.Allowances.Phone, record.Allowances.Position, record.Allowances.Other, record.TotalAllowances,
		record.Overtime.Hours, string(record.Overtime.RateCategory), record.Overtime.HourlyRate, record.Overtime.TotalAmount,
		record.Attendance.WorkingDays, record.Attendance.PresentDays, record.Attendance.LateDays,
		record.Attendance.AbsentDays, record.Attendance.LeaveDays, record.Attendance.UnpaidLeaveDays,
		record.Deductions.SSBEmployee, record.SSBEmployer, record.Deductions.IncomeTax,
		record.Deductions.LatePenalty, record.Deductions.AbsentPenalty,
		record.Deductions.AdvanceSalary, record.Deductions.Loan, record.Deductions.Other,
		record.GrossSalary, record.TaxableIncome, record.TotalDeductions, record.NetSalary, record.Shortfall,
		warningsJSON, record.RuleSetVersion, string(record.Status), record.CreatedBy,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, uniqueLivePayrollPeriod) {
			return payroll.PayrollRecord{}, payroll.ErrDuplicateRecord
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

func (r *payrollRepository) Transition(ctx context.Context, t payroll.StatusTransition) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, string(s))
	}

	var method *string
	if t.PaymentMethod != nil {
		m := string(*t.PaymentMethod)
		method = &m
	}
	var details payroll.PaymentDetails
	if t.PaymentDetails != nil {
		details = *t.PaymentDetails
	}

	query := `
		UPDATE payroll_records
		SET status = $3,
			payment_method = COALESCE($4, payment_method),
			transaction_id = COALESCE($5, transaction_id),
			account_ref = COALESCE($6, account_ref),
			account_name = COALESCE($7, account_name),
			payment_note = COALESCE($8, payment_note),
			paid_at = COALESCE($9, paid_at),
			failure_reason = COALESCE($10, failure_reason),
			confirmed_at = CASE WHEN $3 = 'confirmed' THEN COALESCE(confirmed_at, $11) ELSE confirmed_at END,
			updated_at = $11
		WHERE id = $1 AND company_id = $2 AND status = ANY($12) AND superseded_at IS NULL
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		t.ID, t.CompanyID, string(t.To),
		method, details.TransactionID, details.AccountRef, details.AccountName, details.Note,
		details.PaidAt, t.FailureReason, t.At, from,
	).Scan(&id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll status: %w", err)
		}
		// Nothing matched: either the record is gone or its status moved on.
		if _, getErr := r.GetByID(ctx, t.ID, t.CompanyID); getErr != nil {
			return payroll.PayrollRecord{}, getErr
		}
		return payroll.PayrollRecord{}, payroll.ErrInvalidState
	}

	return r.GetByID(ctx, id, t.CompanyID)
}

// ========== READS ==========

// GetByID only returns live records; superseded drafts are audit rows.
func (r *payrollRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1 AND pr.company_id = $2 AND pr.superseded_at IS NULL
	`, payrollRecordColumns)

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) List(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE pr.company_id = $1 AND pr.superseded_at IS NULL"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != nil {
		whereClause += fmt.Sprintf(" AND pr.period_month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND pr.period_year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payroll_records pr %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		%s
		ORDER BY pr.period_year DESC, pr.period_month DESC, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, payrollRecordColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *payrollRepository) SalaryAnalytics(ctx context.Context, companyID string, year int) ([]payroll.MonthlySalarySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT period_month, status, COUNT(*),
			   COALESCE(SUM(gross_salary), 0)::BIGINT,
			   COALESCE(SUM(total_deductions), 0)::BIGINT,
			   COALESCE(SUM(net_salary), 0)::BIGINT,
			   COALESCE(SUM(ssb_employee), 0)::BIGINT,
			   COALESCE(SUM(ssb_employer), 0)::BIGINT,
			   COALESCE(SUM(income_tax), 0)::BIGINT
		FROM payroll_records
		WHERE company_id = $1 AND period_year = $2 AND superseded_at IS NULL
		GROUP BY period_month, status
		ORDER BY period_month
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payroll: %w", err)
	}
	defer rows.Close()

	var months []payroll.MonthlySalarySummary
	for rows.Next() {
		var month, count int
		var status string
		var gross, deductions, net, ssbEmployee, ssbEmployer, taxes int64
		if err := rows.Scan(&month, &status, &count, &gross, &deductions, &net, &ssbEmployee, &ssbEmployer, &taxes); err != nil {
			return nil, fmt.Errorf("failed to scan payroll aggregate: %w", err)
		}

		// Rows arrive ordered by month, so the current month is always last.
		if len(months) == 0 || months[len(months)-1].PeriodMonth != month {
			months = append(months, payroll.MonthlySalarySummary{
				PeriodMonth:   month,
				CountByStatus: make(map[payroll.PayrollStatus]int),
			})
		}
		m := &months[len(months)-1]
		m.RecordCount += count
		m.GrossSalary += gross
		m.TotalDeductions += deductions
		m.NetSalary += net
		m.SSBEmployee += ssbEmployee
		m.SSBEmployer += ssbEmployer
		m.IncomeTax += taxes
		m.CountByStatus[payroll.PayrollStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return months, nil
}
