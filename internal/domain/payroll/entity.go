package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusConfirmed  PayrollStatus = "confirmed"
	PayrollStatusProcessing PayrollStatus = "processing"
	PayrollStatusPaid       PayrollStatus = "paid"
	PayrollStatusFailed     PayrollStatus = "failed"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusConfirmed, PayrollStatusProcessing, PayrollStatusPaid, PayrollStatusFailed:
		return true
	}
	return false
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodKBZPay       PaymentMethod = "kbzpay"
	PaymentMethodWavePay      PaymentMethod = "wavepay"
	PaymentMethodCBPay        PaymentMethod = "cbpay"
	PaymentMethodAYAPay       PaymentMethod = "ayapay"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodKBZPay, PaymentMethodWavePay, PaymentMethodCBPay,
		PaymentMethodAYAPay, PaymentMethodCash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// RateCategory selects the overtime multiplier.
type RateCategory string

const (
	RateCategoryNormal  RateCategory = "normal"
	RateCategoryWeekend RateCategory = "weekend"
	RateCategoryHoliday RateCategory = "holiday"
)

func (c RateCategory) Valid() bool {
	return c == RateCategoryNormal || c == RateCategoryWeekend || c == RateCategoryHoliday
}

// Allowances are monthly fixed additions to basic salary. Zero means none.
type Allowances struct {
	Transport int64
	Meal      int64
	Housing   int64
	Phone     int64
	Position  int64
	Other     int64
}

func (a Allowances) Total() int64 {
	return a.Transport + a.Meal + a.Housing + a.Phone + a.Position + a.Other
}

// ManualDeductions are entered by HR per period.
type ManualDeductions struct {
	AdvanceSalary int64
	Loan          int64
	Other         int64
}

type Overtime struct {
	Hours        decimal.Decimal
	RateCategory RateCategory
	HourlyRate   int64 // 0 means derived from basic salary
	TotalAmount  int64
}

// AttendanceSnapshot is the attendance fact set the record was computed from.
type AttendanceSnapshot struct {
	WorkingDays     int
	PresentDays     int
	LateDays        int
	AbsentDays      int
	LeaveDays       int
	UnpaidLeaveDays int
}

type Deductions struct {
	SSBEmployee   int64
	IncomeTax     int64
	LatePenalty   int64
	AbsentPenalty int64
	AdvanceSalary int64
	Loan          int64
	Other         int64
}

func (d Deductions) Total() int64 {
	return d.SSBEmployee + d.IncomeTax + d.LatePenalty + d.AbsentPenalty + d.AdvanceSalary + d.Loan + d.Other
}

type PaymentDetails struct {
	TransactionID *string
	AccountRef    *string
	AccountName   *string
	Note          *string
	PaidAt        *time.Time
}

// WarningCode identifies a non-fatal condition found while computing a record.
type WarningCode string

const (
	WarningZeroWorkingDays WarningCode = "ZERO_WORKING_DAYS"
	WarningShortfall       WarningCode = "SHORTFALL"
)

type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// PayrollRecord - Generated payroll result
type PayrollRecord struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	PeriodMonth     int
	PeriodYear      int
	BasicSalary     int64
	Allowances      Allowances
	TotalAllowances int64
	Overtime        Overtime
	Attendance      AttendanceSnapshot
	Deductions      Deductions
	SSBEmployer     int64
	GrossSalary     int64
	TaxableIncome   int64
	TotalDeductions int64
	NetSalary       int64
	Shortfall       int64
	Warnings        []Warning
	RuleSetVersion  string
	Status          PayrollStatus
	PaymentMethod   *PaymentMethod
	PaymentDetails  PaymentDetails
	FailureReason   *string
	ConfirmedAt     *time.Time
	SupersededAt    *time.Time
	CreatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

func (r PayrollRecord) HasShortfall() bool {
	return r.Shortfall > 0
}

// Policy carries the company-configurable attendance and overtime multipliers.
type Policy struct {
	LateDayMultiplier   decimal.Decimal
	AbsentDayMultiplier decimal.Decimal
	OvertimeMultipliers map[RateCategory]decimal.Decimal
	HoursPerDay         int
}

func DefaultPolicy() Policy {
	return Policy{
		LateDayMultiplier:   decimal.RequireFromString("0.5"),
		AbsentDayMultiplier: decimal.NewFromInt(1),
		OvertimeMultipliers: map[RateCategory]decimal.Decimal{
			RateCategoryNormal:  decimal.RequireFromString("1.5"),
			RateCategoryWeekend: decimal.NewFromInt(2),
			RateCategoryHoliday: decimal.NewFromInt(2),
		},
		HoursPerDay: 8,
	}
}

// StatusTransition is a guarded status change applied atomically by the repository.
type StatusTransition struct {
	ID             string
	CompanyID      string
	From           []PayrollStatus
	To             PayrollStatus
	PaymentMethod  *PaymentMethod
	PaymentDetails *PaymentDetails
	FailureReason  *string
	At             time.Time
}

// MonthlySalarySummary aggregates live records of one period.
type MonthlySalarySummary struct {
	PeriodMonth     int
	RecordCount     int
	GrossSalary     int64
	TotalDeductions int64
	NetSalary       int64
	SSBEmployee     int64
	SSBEmployer     int64
	IncomeTax       int64
	CountByStatus   map[PayrollStatus]int
}
