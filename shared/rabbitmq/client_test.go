package rabbitmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishBackoff(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		mult    float64
		attempt int
		want    time.Duration
	}{
		{name: "first retry waits base", base: 100 * time.Millisecond, mult: 2.0, attempt: 0, want: 100 * time.Millisecond},
		{name: "doubles each attempt", base: 100 * time.Millisecond, mult: 2.0, attempt: 2, want: 400 * time.Millisecond},
		{name: "fractional multiplier", base: 200 * time.Millisecond, mult: 1.5, attempt: 2, want: 450 * time.Millisecond},
		{name: "constant backoff", base: 250 * time.Millisecond, mult: 1.0, attempt: 5, want: 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publishBackoff(tt.base, tt.mult, tt.attempt))
		})
	}
}
