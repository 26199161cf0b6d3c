package statutory

import (
	"testing"

	"github.com/simplehr/simplehr-backend-go/internal/domain/statutory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRuleSet(t *testing.T) statutory.RuleSet {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	rs, err := table.ForPeriod(2025, 1)
	require.NoError(t, err)
	return rs
}

func TestEmployeeContribution(t *testing.T) {
	rs := defaultRuleSet(t)

	assert.Equal(t, int64(6700), EmployeeContribution(rs, 335000))
	assert.Equal(t, int64(10050), EmployerContribution(rs, 335000))
	assert.Equal(t, int64(0), EmployeeContribution(rs, 0))

	// Capped at the ceiling no matter how high gross goes.
	capValue := rs.MaxEmployeeContribution().IntPart()
	for _, gross := range []int64{600000, 600001, 1_000_000, 50_000_000} {
		assert.LessOrEqual(t, EmployeeContribution(rs, gross), capValue)
	}
	assert.Equal(t, int64(12000), EmployeeContribution(rs, 50_000_000))
}

func TestIncomeTax_Progressive(t *testing.T) {
	rs := defaultRuleSet(t)

	tests := []struct {
		taxable int64
		want    int64
	}{
		{0, 0},
		{-100, 0},
		{200000, 0},
		{200001, 0},   // 0.05 rounds to 0
		{200010, 1},   // 0.5 rounds half-up
		{328300, 6415},
		{500000, 15000},
		{1_000_000, 65000},
		{3_500_000, 540000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IncomeTax(rs, tt.taxable), "taxable=%d", tt.taxable)
	}
}

func TestIncomeTax_MonotonicNonDecreasing(t *testing.T) {
	rs := defaultRuleSet(t)

	prev := IncomeTax(rs, 0)
	for taxable := int64(0); taxable <= 5_000_000; taxable += 7919 {
		tax := IncomeTax(rs, taxable)
		require.GreaterOrEqual(t, tax, prev, "tax decreased at taxable=%d", taxable)
		prev = tax
	}
}
