package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// SSBRates holds the Social Security Board contribution parameters.
type SSBRates struct {
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
	Ceiling      int64 // monthly gross cap the rates apply to
}

// TaxBracket applies Rate to the part of taxable income above Threshold and
// below the next bracket's Threshold.
type TaxBracket struct {
	Threshold int64
	Rate      decimal.Decimal
}

// RuleSet is one effective-dated version of the statutory table.
type RuleSet struct {
	Version       string
	EffectiveFrom time.Time
	SSB           SSBRates
	TaxBrackets   []TaxBracket
}

// MaxEmployeeContribution is the highest SSB employee deduction this rule set can produce.
func (r RuleSet) MaxEmployeeContribution() decimal.Decimal {
	return decimal.NewFromInt(r.SSB.Ceiling).Mul(r.SSB.EmployeeRate)
}
