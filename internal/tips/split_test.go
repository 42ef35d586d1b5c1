package tips

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
		want   []string
	}{
		{
			name:   "even split",
			amount: "3000",
			n:      3,
			want:   []string{"1000", "1000", "1000"},
		},
		{
			name:   "remainder goes to first share",
			amount: "100",
			n:      3,
			want:   []string{"33.34", "33.33", "33.33"},
		},
		{
			name:   "single recipient takes all",
			amount: "2521.01",
			n:      1,
			want:   []string{"2521.01"},
		},
		{
			name:   "amount smaller than recipient count",
			amount: "0.02",
			n:      3,
			want:   []string{"0.02", "0", "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Split(decimal.RequireFromString(tt.amount), tt.n)
			require.NoError(t, err)
			require.Len(t, shares, tt.n)

			sum := decimal.Zero
			for i, share := range shares {
				assert.True(t, decimal.RequireFromString(tt.want[i]).Equal(share),
					"share %d: want %s, got %s", i, tt.want[i], share)
				sum = sum.Add(share)
			}
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(sum),
				"shares must sum back to the amount")
		})
	}
}

func TestSplit_NoRecipients(t *testing.T) {
	_, err := Split(decimal.NewFromInt(100), 0)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = Split(decimal.NewFromInt(100), -1)
	assert.ErrorIs(t, err, ErrNoRecipients)
}
