package statutory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_ForPeriod(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	rs, err := table.ForPeriod(2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "MM-2024", rs.Version)
	assert.True(t, rs.SSB.EmployeeRate.Equal(decimal.RequireFromString("0.02")))
	assert.True(t, rs.SSB.EmployerRate.Equal(decimal.RequireFromString("0.03")))
	assert.Equal(t, int64(600000), rs.SSB.Ceiling)
	assert.Len(t, rs.TaxBrackets, 6)

	_, err = table.ForPeriod(2023, 12)
	assert.ErrorIs(t, err, statutory.ErrNoRuleSetForPeriod)
}

func TestParseTableYAML_PicksLatestEffectiveSet(t *testing.T) {
	doc := `
version: 1
rule_sets:
  - version: v2
    effective_from: "2025-07-01"
    ssb: {employee_rate: "0.025", employer_rate: "0.03", ceiling: 800000}
    tax_brackets:
      - {threshold: 0, rate: "0"}
      - {threshold: 300000, rate: "0.1"}
  - version: v1
    effective_from: "2024-01-01"
    ssb: {employee_rate: "0.02", employer_rate: "0.03", ceiling: 600000}
    tax_brackets:
      - {threshold: 0, rate: "0"}
`
	table, err := ParseTableYAML([]byte(doc))
	require.NoError(t, err)

	rs, err := table.ForPeriod(2025, 6)
	require.NoError(t, err)
	assert.Equal(t, "v1", rs.Version)

	rs, err = table.ForPeriod(2025, 7)
	require.NoError(t, err)
	assert.Equal(t, "v2", rs.Version)
	assert.Equal(t, int64(800000), rs.SSB.Ceiling)
}

func TestParseTableYAML_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unsupported version",
			doc:  "version: 2\nrule_sets: []\n",
			want: statutory.ErrUnsupportedVersion,
		},
		{
			name: "empty",
			doc:  "version: 1\nrule_sets: []\n",
			want: statutory.ErrEmptyTable,
		},
		{
			name: "rate above one",
			doc: `version: 1
rule_sets:
  - version: bad
    effective_from: "2024-01-01"
    ssb: {employee_rate: "1.5", employer_rate: "0.03", ceiling: 600000}
    tax_brackets: [{threshold: 0, rate: "0"}]
`,
			want: statutory.ErrInvalidRate,
		},
		{
			name: "brackets not increasing",
			doc: `version: 1
rule_sets:
  - version: bad
    effective_from: "2024-01-01"
    ssb: {employee_rate: "0.02", employer_rate: "0.03", ceiling: 600000}
    tax_brackets: [{threshold: 0, rate: "0"}, {threshold: 0, rate: "0.1"}]
`,
			want: statutory.ErrInvalidBrackets,
		},
		{
			name: "zero ceiling",
			doc: `version: 1
rule_sets:
  - version: bad
    effective_from: "2024-01-01"
    ssb: {employee_rate: "0.02", employer_rate: "0.03", ceiling: 0}
    tax_brackets: [{threshold: 0, rate: "0"}]
`,
			want: statutory.ErrInvalidCeiling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTableYAML([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadTable_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, defaultRulesYAML, 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	rs, err := table.ForPeriod(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rs.EffectiveFrom)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
