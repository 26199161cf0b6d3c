package statutory

// Provider looks up the rule set in force for a payroll period.
type Provider interface {
	ForPeriod(year, month int) (RuleSet, error)
}
