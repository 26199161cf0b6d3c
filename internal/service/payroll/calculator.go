package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	statutoryRules "github.com/simplehr/simplehr-backend-go/internal/service/statutory"
)

// CalculationInput is everything a payroll record is computed from.
type CalculationInput struct {
	BasicSalary      int64
	Allowances       payroll.Allowances
	Overtime         *payroll.OvertimeInput
	Attendance       payroll.AttendanceSnapshot
	ManualDeductions payroll.ManualDeductions
}

// Calculate builds the monetary part of a payroll record. It is pure: the same
// input, rule set and policy always produce the same record.
func Calculate(in CalculationInput, rules statutory.RuleSet, policy payroll.Policy) payroll.PayrollRecord {
	var warnings []payroll.Warning
	att := in.Attendance
	basic := decimal.NewFromInt(in.BasicSalary)

	// 1. allowances
	totalAllowances := in.Allowances.Total()

	// 2. overtime
	overtime := payroll.Overtime{RateCategory: payroll.RateCategoryNormal, Hours: decimal.Zero}
	if in.Overtime != nil {
		// Stored as NUMERIC(6, 2); compute from the stored value.
		overtime.Hours = in.Overtime.Hours.Round(2)
		if in.Overtime.RateCategory != "" {
			overtime.RateCategory = in.Overtime.RateCategory
		}
		overtime.HourlyRate = in.Overtime.HourlyRate
		if overtime.HourlyRate == 0 && overtime.Hours.IsPositive() && att.WorkingDays > 0 {
			hours := decimal.NewFromInt(int64(att.WorkingDays * policy.HoursPerDay))
			overtime.HourlyRate = basic.Div(hours).Round(0).IntPart()
		}
		multiplier, ok := policy.OvertimeMultipliers[overtime.RateCategory]
		if !ok {
			multiplier = decimal.NewFromInt(1)
		}
		overtime.TotalAmount = overtime.Hours.
			Mul(decimal.NewFromInt(overtime.HourlyRate)).
			Mul(multiplier).
			Round(0).IntPart()
	}

	// 3. gross
	gross := in.BasicSalary + totalAllowances + overtime.TotalAmount

	// 4. social security
	ssbEmployee := statutoryRules.EmployeeContribution(rules, gross)
	ssbEmployer := statutoryRules.EmployerContribution(rules, gross)

	// 5. income tax on gross less the employee contribution
	taxable := gross - ssbEmployee
	if taxable < 0 {
		taxable = 0
	}
	incomeTax := statutoryRules.IncomeTax(rules, taxable)

	// 6. attendance penalties; unpaid leave is charged like an absent day
	var latePenalty, absentPenalty int64
	if att.WorkingDays <= 0 {
		warnings = append(warnings, payroll.Warning{
			Code:    payroll.WarningZeroWorkingDays,
			Message: "working days is zero; attendance penalties and derived overtime rate set to 0",
		})
	} else {
		perDay := basic.Div(decimal.NewFromInt(int64(att.WorkingDays)))
		latePenalty = perDay.
			Mul(decimal.NewFromInt(int64(att.LateDays))).
			Mul(policy.LateDayMultiplier).
			Round(0).IntPart()
		absentPenalty = perDay.
			Mul(decimal.NewFromInt(int64(att.AbsentDays + att.UnpaidLeaveDays))).
			Mul(policy.AbsentDayMultiplier).
			Round(0).IntPart()
	}

	// 7. deductions
	deductions := payroll.Deductions{
		SSBEmployee:   ssbEmployee,
		IncomeTax:     incomeTax,
		LatePenalty:   latePenalty,
		AbsentPenalty: absentPenalty,
		AdvanceSalary: in.ManualDeductions.AdvanceSalary,
		Loan:          in.ManualDeductions.Loan,
		Other:         in.ManualDeductions.Other,
	}
	totalDeductions := deductions.Total()

	// 8. net, never negative
	net := gross - totalDeductions
	var shortfall int64
	if net < 0 {
		shortfall = -net
		net = 0
		warnings = append(warnings, payroll.Warning{
			Code:    payroll.WarningShortfall,
			Message: fmt.Sprintf("deductions exceed gross salary by %d", shortfall),
		})
	}

	return payroll.PayrollRecord{
		BasicSalary:     in.BasicSalary,
		Allowances:      in.Allowances,
		TotalAllowances: totalAllowances,
		Overtime:        overtime,
		Attendance:      att,
		Deductions:      deductions,
		SSBEmployer:     ssbEmployer,
		GrossSalary:     gross,
		TaxableIncome:   taxable,
		TotalDeductions: totalDeductions,
		NetSalary:       net,
		Shortfall:       shortfall,
		Warnings:        warnings,
		RuleSetVersion:  rules.Version,
	}
}
