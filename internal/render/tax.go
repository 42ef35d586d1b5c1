package render

import "github.com/shopspring/decimal"

// TaxRate is the fixed VAT rate applied to gross prices (19% IVA).
var TaxRate = decimal.RequireFromString("0.19")

var one = decimal.NewFromInt(1)

// TaxBreakdown is the tax-exclusive decomposition of a gross amount.
type TaxBreakdown struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// SplitGross decomposes a gross amount into net and tax at TaxRate.
// net = gross / (1 + rate), tax = gross - net, both rounded to 2 places so
// net + tax always reconstructs the gross exactly.
func SplitGross(gross decimal.Decimal) TaxBreakdown {
	net := gross.Div(one.Add(TaxRate)).Round(2)
	return TaxBreakdown{
		Net:   net,
		Tax:   gross.Sub(net),
		Gross: gross,
	}
}

// SumBreakdowns aggregates per-line breakdowns. The aggregate keeps the
// invariant sum(net) + sum(tax) == sum(gross).
func SumBreakdowns(lines []TaxBreakdown) TaxBreakdown {
	var total TaxBreakdown
	for _, l := range lines {
		total.Net = total.Net.Add(l.Net)
		total.Tax = total.Tax.Add(l.Tax)
		total.Gross = total.Gross.Add(l.Gross)
	}
	return total
}
