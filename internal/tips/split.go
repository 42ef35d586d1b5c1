// Package tips distributes order tips among eligible employees and keeps
// the per-period running totals the payroll reports read.
package tips

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoRecipients is returned when a tip arrives and nobody is eligible.
var ErrNoRecipients = errors.New("no tip-eligible employees")

// Split divides amount into n equal shares rounded to cents. The rounding
// remainder goes to the first share so the shares always sum back to amount.
func Split(amount decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, ErrNoRecipients
	}

	base := amount.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}

	remainder := amount.Sub(base.Mul(decimal.NewFromInt(int64(n))))
	shares[0] = shares[0].Add(remainder)
	return shares, nil
}
