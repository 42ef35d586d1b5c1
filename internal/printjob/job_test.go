package printjob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "pending to processing", from: StatusPending, to: StatusProcessing, allowed: true},
		{name: "processing to completed", from: StatusProcessing, to: StatusCompleted, allowed: true},
		{name: "processing to failed", from: StatusProcessing, to: StatusFailed, allowed: true},
		{name: "pending to completed skips claim", from: StatusPending, to: StatusCompleted, allowed: false},
		{name: "pending to failed skips claim", from: StatusPending, to: StatusFailed, allowed: false},
		{name: "processing back to pending", from: StatusProcessing, to: StatusPending, allowed: false},
		{name: "completed is terminal", from: StatusCompleted, to: StatusProcessing, allowed: false},
		{name: "failed is terminal", from: StatusFailed, to: StatusPending, allowed: false},
		{name: "failed cannot complete", from: StatusFailed, to: StatusCompleted, allowed: false},
		{name: "no self transition", from: StatusProcessing, to: StatusProcessing, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"kitchen", "receipt", "payment"} {
		jt, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), jt)
	}

	_, err := ParseType("invoice")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestParseTarget(t *testing.T) {
	for _, valid := range []string{"kitchen", "cashier"} {
		target, err := ParseTarget(valid)
		require.NoError(t, err)
		assert.Equal(t, Target(valid), target)
	}

	_, err := ParseTarget("bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestType_DefaultTarget(t *testing.T) {
	assert.Equal(t, TargetKitchen, TypeKitchen.DefaultTarget())
	assert.Equal(t, TargetCashier, TypeReceipt.DefaultTarget())
	assert.Equal(t, TargetCashier, TypePayment.DefaultTarget())
}
