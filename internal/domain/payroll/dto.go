package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

// ========== GENERATE ==========

const (
	// MaxAmount bounds every money input so no sum in the calculation can overflow int64.
	MaxAmount int64 = 1_000_000_000_000
	// Overtime hours are stored as NUMERIC(6, 2).
	overtimeHoursScale = 2
)

var maxOvertimeHours = decimal.RequireFromString("9999.99")

type AllowancesInput struct {
	Transport int64 `json:"transport"`
	Meal      int64 `json:"meal"`
	Housing   int64 `json:"housing"`
	Phone     int64 `json:"phone"`
	Position  int64 `json:"position"`
	Other     int64 `json:"other"`
}

func (a AllowancesInput) ToAllowances() Allowances {
	return Allowances(a)
}

type ManualDeductionsInput struct {
	AdvanceSalary int64 `json:"advanceSalary"`
	Loan          int64 `json:"loan"`
	Other         int64 `json:"other"`
}

func (m ManualDeductionsInput) ToManualDeductions() ManualDeductions {
	return ManualDeductions(m)
}

type OvertimeInput struct {
	Hours        decimal.Decimal `json:"hours"`
	RateCategory RateCategory    `json:"rateCategory"`
	HourlyRate   int64           `json:"hourlyRate,omitempty"`
}

// AttendanceInput replaces the aggregated attendance facts when supplied.
type AttendanceInput struct {
	WorkingDays     int `json:"workingDays"`
	PresentDays     int `json:"presentDays"`
	LateDays        int `json:"lateDays"`
	AbsentDays      int `json:"absentDays"`
	LeaveDays       int `json:"leaveDays"`
	UnpaidLeaveDays int `json:"unpaidLeaveDays"`
}

func (a AttendanceInput) ToSnapshot() AttendanceSnapshot {
	return AttendanceSnapshot(a)
}

type GeneratePayrollRequest struct {
	EmployeeID       string                `json:"employeeId"`
	Month            int                   `json:"month"`
	Year             int                   `json:"year"`
	BasicSalary      int64                 `json:"basicSalary"`
	Allowances       AllowancesInput       `json:"allowances"`
	Overtime         *OvertimeInput        `json:"overtime,omitempty"`
	ManualDeductions ManualDeductionsInput `json:"manualDeductions"`
	Attendance       *AttendanceInput      `json:"attendance,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "must be a valid UUID"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}

	amounts := map[string]int64{
		"basicSalary":                    r.BasicSalary,
		"allowances.transport":           r.Allowances.Transport,
		"allowances.meal":                r.Allowances.Meal,
		"allowances.housing":             r.Allowances.Housing,
		"allowances.phone":               r.Allowances.Phone,
		"allowances.position":            r.Allowances.Position,
		"allowances.other":               r.Allowances.Other,
		"manualDeductions.advanceSalary": r.ManualDeductions.AdvanceSalary,
		"manualDeductions.loan":          r.ManualDeductions.Loan,
		"manualDeductions.other":         r.ManualDeductions.Other,
	}
	for field, v := range amounts {
		if msg, ok := checkAmount(v); !ok {
			errs = append(errs, validator.ValidationError{Field: field, Message: msg})
		}
	}

	if r.Overtime != nil {
		switch h := r.Overtime.Hours; {
		case h.IsNegative():
			errs = append(errs, validator.ValidationError{Field: "overtime.hours", Message: "must be non-negative"})
		case h.GreaterThan(maxOvertimeHours):
			errs = append(errs, validator.ValidationError{Field: "overtime.hours", Message: "must not exceed 9999.99"})
		case !h.Equal(h.Round(overtimeHoursScale)):
			errs = append(errs, validator.ValidationError{Field: "overtime.hours", Message: "must have at most 2 decimal places"})
		}
		if r.Overtime.RateCategory == "" {
			r.Overtime.RateCategory = RateCategoryNormal
		}
		if !r.Overtime.RateCategory.Valid() {
			errs = append(errs, validator.ValidationError{Field: "overtime.rateCategory", Message: "must be one of normal, weekend, holiday"})
		}
		if msg, ok := checkAmount(r.Overtime.HourlyRate); !ok {
			errs = append(errs, validator.ValidationError{Field: "overtime.hourlyRate", Message: msg})
		}
	}

	if a := r.Attendance; a != nil {
		if a.WorkingDays < 0 || a.PresentDays < 0 || a.LateDays < 0 || a.AbsentDays < 0 || a.LeaveDays < 0 || a.UnpaidLeaveDays < 0 {
			errs = append(errs, validator.ValidationError{Field: "attendance", Message: "day counts must be non-negative"})
		}
		if a.WorkingDays > 31 || a.PresentDays > 31 || a.LateDays > 31 || a.AbsentDays > 31 || a.LeaveDays > 31 || a.UnpaidLeaveDays > 31 {
			errs = append(errs, validator.ValidationError{Field: "attendance", Message: "day counts must not exceed 31"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkAmount(v int64) (string, bool) {
	switch {
	case v < 0:
		return "must be non-negative", false
	case v > MaxAmount:
		return "must not exceed 1000000000000", false
	}
	return "", true
}

// ========== LIFECYCLE ==========

type ConfirmPayrollRequest struct {
	ID                   string `json:"-"`
	AcknowledgeShortfall bool   `json:"acknowledgeShortfall"`
}

type PayPayrollRequest struct {
	ID            string  `json:"-"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID *string `json:"transactionId,omitempty"`
	AccountRef    *string `json:"accountRef,omitempty"`
	AccountNumber *string `json:"accountNumber,omitempty"` // older clients send accountNumber
	AccountName   *string `json:"accountName,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// Account returns accountRef, falling back to accountNumber.
func (r *PayPayrollRequest) Account() *string {
	if r.AccountRef != nil {
		return r.AccountRef
	}
	return r.AccountNumber
}

func (r *PayPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PaymentMethod) {
		errs = append(errs, validator.ValidationError{Field: "paymentMethod", Message: "is required"})
	} else if !PaymentMethod(r.PaymentMethod).Valid() {
		errs = append(errs, validator.ValidationError{Field: "paymentMethod", Message: "must be one of kbzpay, wavepay, cbpay, ayapay, cash, bank_transfer"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CompletePaymentRequest struct {
	ID            string  `json:"-"`
	TransactionID *string `json:"transactionId,omitempty"`
}

type FailPayrollRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *FailPayrollRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.ValidationErrors{{Field: "reason", Message: "is required"}}
	}
	return nil
}

// ========== QUERIES ==========

type PayrollFilter struct {
	EmployeeID *string
	Month      *int
	Year       *int
	Status     *PayrollStatus
	Page       int
	Limit      int
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "is not a valid payroll status"})
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must not exceed 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type OvertimeResponse struct {
	Hours        decimal.Decimal `json:"hours"`
	RateCategory RateCategory    `json:"rateCategory"`
	HourlyRate   int64           `json:"hourlyRate"`
	TotalAmount  int64           `json:"totalAmount"`
}

type SSBResponse struct {
	EmployeeContribution int64 `json:"employeeContribution"`
	EmployerContribution int64 `json:"employerContribution"`
}

type IncomeTaxResponse struct {
	TaxableIncome int64 `json:"taxableIncome"`
	TaxAmount     int64 `json:"taxAmount"`
}

type DeductionsResponse struct {
	SSB           int64 `json:"ssb"`
	Tax           int64 `json:"tax"`
	LatePenalty   int64 `json:"latePenalty"`
	AbsentPenalty int64 `json:"absentPenalty"`
	AdvanceSalary int64 `json:"advanceSalary"`
	Loan          int64 `json:"loan"`
	Other         int64 `json:"other"`
}

type PaymentDetailsResponse struct {
	TransactionID *string    `json:"transactionId,omitempty"`
	AccountRef    *string    `json:"accountRef,omitempty"`
	AccountName   *string    `json:"accountName,omitempty"`
	Note          *string    `json:"note,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type PayrollRecordResponse struct {
	ID              string                 `json:"id"`
	EmployeeID      string                 `json:"employeeId"`
	EmployeeName    *string                `json:"employeeName,omitempty"`
	EmployeeCode    *string                `json:"employeeCode,omitempty"`
	Month           int                    `json:"month"`
	Year            int                    `json:"year"`
	BasicSalary     int64                  `json:"basicSalary"`
	Allowances      AllowancesInput        `json:"allowances"`
	TotalAllowances int64                  `json:"totalAllowances"`
	Overtime        OvertimeResponse       `json:"overtime"`
	WorkingDays     int                    `json:"workingDays"`
	PresentDays     int                    `json:"presentDays"`
	LateDays        int                    `json:"lateDays"`
	AbsentDays      int                    `json:"absentDays"`
	LeaveDays       int                    `json:"leaveDays"`
	UnpaidLeaveDays int                    `json:"unpaidLeaveDays"`
	SSB             SSBResponse            `json:"ssb"`
	IncomeTax       IncomeTaxResponse      `json:"incomeTax"`
	Deductions      DeductionsResponse     `json:"deductions"`
	GrossSalary     int64                  `json:"grossSalary"`
	TotalDeductions int64                  `json:"totalDeductions"`
	NetSalary       int64                  `json:"netSalary"`
	Shortfall       int64                  `json:"shortfall"`
	Warnings        []Warning              `json:"warnings"`
	RuleSetVersion  string                 `json:"ruleSetVersion"`
	Status          PayrollStatus          `json:"status"`
	PaymentMethod   *PaymentMethod         `json:"paymentMethod,omitempty"`
	PaymentDetails  PaymentDetailsResponse `json:"paymentDetails"`
	FailureReason   *string                `json:"failureReason,omitempty"`
	ConfirmedAt     *time.Time             `json:"confirmedAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type ListPayrollRecordResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
	Records    []PayrollRecordResponse `json:"records"`
}

type MonthlySalaryResponse struct {
	Month           int                   `json:"month"`
	RecordCount     int                   `json:"recordCount"`
	GrossSalary     int64                 `json:"grossSalary"`
	TotalDeductions int64                 `json:"totalDeductions"`
	NetSalary       int64                 `json:"netSalary"`
	SSBEmployee     int64                 `json:"ssbEmployee"`
	SSBEmployer     int64                 `json:"ssbEmployer"`
	IncomeTax       int64                 `json:"incomeTax"`
	CountByStatus   map[PayrollStatus]int `json:"countByStatus"`
}

type SalaryAnalyticsResponse struct {
	Year            int                     `json:"year"`
	GrossSalary     int64                   `json:"grossSalary"`
	TotalDeductions int64                   `json:"totalDeductions"`
	NetSalary       int64                   `json:"netSalary"`
	SSBEmployer     int64                   `json:"ssbEmployer"`
	Months          []MonthlySalaryResponse `json:"months"`
}
