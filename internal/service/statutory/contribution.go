package statutory

import (
	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
)

// EmployeeContribution is min(gross, ceiling) x employee rate, rounded half-up.
func EmployeeContribution(rs statutory.RuleSet, gross int64) int64 {
	return contribution(gross, rs.SSB.Ceiling, rs.SSB.EmployeeRate)
}

// EmployerContribution is stored for reporting and never deducted from pay.
func EmployerContribution(rs statutory.RuleSet, gross int64) int64 {
	return contribution(gross, rs.SSB.Ceiling, rs.SSB.EmployerRate)
}

func contribution(gross, ceiling int64, rate decimal.Decimal) int64 {
	if gross <= 0 {
		return 0
	}
	base := gross
	if base > ceiling {
		base = ceiling
	}
	return decimal.NewFromInt(base).Mul(rate).Round(0).IntPart()
}

// IncomeTax applies each bracket's marginal rate only to the slice of taxable
// income inside that bracket.
func IncomeTax(rs statutory.RuleSet, taxable int64) int64 {
	if taxable <= 0 {
		return 0
	}
	income := decimal.NewFromInt(taxable)
	total := decimal.Zero
	for i, b := range rs.TaxBrackets {
		lower := decimal.NewFromInt(b.Threshold)
		if income.LessThanOrEqual(lower) {
			break
		}
		upper := income
		if i+1 < len(rs.TaxBrackets) {
			upper = decimal.Min(income, decimal.NewFromInt(rs.TaxBrackets[i+1].Threshold))
		}
		total = total.Add(upper.Sub(lower).Mul(b.Rate))
	}
	return total.Round(0).IntPart()
}
