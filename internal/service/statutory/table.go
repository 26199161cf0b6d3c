package statutory

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

const dateLayout = "2006-01-02"

type tableFile struct {
	Version  int           `yaml:"version"`
	RuleSets []ruleSetFile `yaml:"rule_sets"`
}

type ruleSetFile struct {
	Version       string `yaml:"version"`
	EffectiveFrom string `yaml:"effective_from"`
	SSB           struct {
		EmployeeRate string `yaml:"employee_rate"`
		EmployerRate string `yaml:"employer_rate"`
		Ceiling      int64  `yaml:"ceiling"`
	} `yaml:"ssb"`
	TaxBrackets []struct {
		Threshold int64  `yaml:"threshold"`
		Rate      string `yaml:"rate"`
	} `yaml:"tax_brackets"`
}

// Table is an immutable, effective-dated list of rule sets.
type Table struct {
	sets []statutory.RuleSet // sorted by EffectiveFrom ascending
}

var _ statutory.Provider = (*Table)(nil)

func NewTable(sets []statutory.RuleSet) (*Table, error) {
	if len(sets) == 0 {
		return nil, statutory.ErrEmptyTable
	}
	sorted := make([]statutory.RuleSet, len(sets))
	copy(sorted, sets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	for i, rs := range sorted {
		if err := validateRuleSet(rs); err != nil {
			return nil, fmt.Errorf("rule set %q: %w", rs.Version, err)
		}
		if i > 0 && rs.EffectiveFrom.Equal(sorted[i-1].EffectiveFrom) {
			return nil, statutory.ErrDuplicateEffectiveDay
		}
	}
	return &Table{sets: sorted}, nil
}

// ParseTableYAML decodes a rule table document.
func ParseTableYAML(b []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("statutory rules: %w", err)
	}
	if f.Version != 1 {
		return nil, statutory.ErrUnsupportedVersion
	}

	sets := make([]statutory.RuleSet, 0, len(f.RuleSets))
	for _, raw := range f.RuleSets {
		rs, err := raw.toRuleSet()
		if err != nil {
			return nil, fmt.Errorf("rule set %q: %w", raw.Version, err)
		}
		sets = append(sets, rs)
	}
	return NewTable(sets)
}

// LoadTable reads the table from path, or the built-in table when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statutory rules: %w", err)
	}
	return ParseTableYAML(b)
}

func DefaultTable() (*Table, error) {
	return ParseTableYAML(defaultRulesYAML)
}

// ForPeriod returns the latest rule set effective on the first day of the period.
func (t *Table) ForPeriod(year, month int) (statutory.RuleSet, error) {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for i := len(t.sets) - 1; i >= 0; i-- {
		if !t.sets[i].EffectiveFrom.After(periodStart) {
			return t.sets[i], nil
		}
	}
	return statutory.RuleSet{}, fmt.Errorf("%w: %04d-%02d", statutory.ErrNoRuleSetForPeriod, year, month)
}

func (r ruleSetFile) toRuleSet() (statutory.RuleSet, error) {
	effective, err := time.Parse(dateLayout, r.EffectiveFrom)
	if err != nil {
		return statutory.RuleSet{}, fmt.Errorf("effective_from: %w", err)
	}
	employeeRate, err := decimal.NewFromString(r.SSB.EmployeeRate)
	if err != nil {
		return statutory.RuleSet{}, fmt.Errorf("ssb.employee_rate: %w", err)
	}
	employerRate, err := decimal.NewFromString(r.SSB.EmployerRate)
	if err != nil {
		return statutory.RuleSet{}, fmt.Errorf("ssb.employer_rate: %w", err)
	}

	brackets := make([]statutory.TaxBracket, 0, len(r.TaxBrackets))
	for i, b := range r.TaxBrackets {
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return statutory.RuleSet{}, fmt.Errorf("tax_brackets[%d].rate: %w", i, err)
		}
		brackets = append(brackets, statutory.TaxBracket{Threshold: b.Threshold, Rate: rate})
	}

	return statutory.RuleSet{
		Version:       r.Version,
		EffectiveFrom: effective,
		SSB: statutory.SSBRates{
			EmployeeRate: employeeRate,
			EmployerRate: employerRate,
			Ceiling:      r.SSB.Ceiling,
		},
		TaxBrackets: brackets,
	}, nil
}

func validateRuleSet(rs statutory.RuleSet) error {
	if !validRate(rs.SSB.EmployeeRate) || !validRate(rs.SSB.EmployerRate) {
		return statutory.ErrInvalidRate
	}
	if rs.SSB.Ceiling <= 0 {
		return statutory.ErrInvalidCeiling
	}
	if len(rs.TaxBrackets) == 0 || rs.TaxBrackets[0].Threshold != 0 {
		return statutory.ErrInvalidBrackets
	}
	for i, b := range rs.TaxBrackets {
		if !validRate(b.Rate) {
			return statutory.ErrInvalidRate
		}
		if i > 0 && b.Threshold <= rs.TaxBrackets[i-1].Threshold {
			return statutory.ErrInvalidBrackets
		}
	}
	return nil
}

func validRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
