package render

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGross(t *testing.T) {
	tests := []struct {
		name    string
		gross   string
		wantNet string
		wantTax string
	}{
		{name: "gross 3000", gross: "3000", wantNet: "2521.01", wantTax: "478.99"},
		{name: "gross 2000", gross: "2000", wantNet: "1680.67", wantTax: "319.33"},
		{name: "zero", gross: "0", wantNet: "0.00", wantTax: "0.00"},
		{name: "small amount", gross: "119", wantNet: "100.00", wantTax: "19.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := SplitGross(decimal.RequireFromString(tt.gross))

			assert.Equal(t, tt.wantNet, b.Net.StringFixed(2))
			assert.Equal(t, tt.wantTax, b.Tax.StringFixed(2))
			assert.True(t, b.Net.Add(b.Tax).Equal(b.Gross),
				"net %s + tax %s must equal gross %s", b.Net, b.Tax, b.Gross)
		})
	}
}

func TestSumBreakdowns(t *testing.T) {
	lines := []TaxBreakdown{
		SplitGross(decimal.NewFromInt(3000)),
		SplitGross(decimal.NewFromInt(2000)),
	}

	totals := SumBreakdowns(lines)

	assert.Equal(t, "4201.68", totals.Net.StringFixed(2))
	assert.Equal(t, "798.32", totals.Tax.StringFixed(2))
	assert.Equal(t, "5000.00", totals.Gross.StringFixed(2))
}

func TestTaxReconciliation(t *testing.T) {
	// For any set of line gross amounts the per-line rounding must never
	// break sum(net) + sum(tax) == sum(gross).
	amounts := []string{"1", "3", "7", "99.99", "123.45", "3000", "2000", "0.01", "55555.55"}

	var breakdowns []TaxBreakdown
	expected := decimal.Zero
	for _, a := range amounts {
		gross := decimal.RequireFromString(a)
		expected = expected.Add(gross)
		breakdowns = append(breakdowns, SplitGross(gross))
	}

	totals := SumBreakdowns(breakdowns)
	require.True(t, totals.Net.Add(totals.Tax).Equal(expected))
	require.True(t, totals.Gross.Equal(expected))
}
