package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

func TestNewPlan(t *testing.T) {
	plan, err := NewPlan("Team", "team", 4900, "usd", 25, 30, false)
	require.NoError(t, err)
	assert.Equal(t, "USD", plan.Currency())
	assert.True(t, plan.IsActive())
	assert.Nil(t, plan.PaymentProvider())
}

func TestNewPlan_Validation(t *testing.T) {
	tests := []struct {
		name        string
		slug        string
		price       uint64
		currency    string
		entitlement int
		duration    int
		trial       bool
	}{
		{"missing name", "", 0, "USD", 1, 1, false},
		{"bad currency", "x", 0, "DOLLARS", 1, 1, false},
		{"zero entitlement", "x", 0, "USD", 0, 1, false},
		{"zero duration", "x", 0, "USD", 1, 0, false},
		{"paid trial", "x", 100, "USD", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "Plan"
			if tt.slug == "" {
				name = ""
			}
			_, err := NewPlan(name, "slug", tt.price, tt.currency, tt.entitlement, tt.duration, tt.trial)
			assert.Error(t, err)
		})
	}
}

func TestPlan_SnapshotIsDetached(t *testing.T) {
	plan, err := NewPlan("Team", "team", 4900, "USD", 25, 30, false)
	require.NoError(t, err)
	require.NoError(t, plan.SetID(4))
	stripe := vo.PaymentProviderStripe
	require.NoError(t, plan.SetPaymentProvider(&stripe))

	snap := plan.Snapshot()
	require.NoError(t, plan.UpdateTerms("Team", 9900, "USD", 50, 30, false))

	assert.Equal(t, uint64(4900), snap.Price)
	assert.Equal(t, 25, snap.MaxEntitlement)
	require.NotNil(t, snap.Provider)
	assert.Equal(t, vo.PaymentProviderStripe, *snap.Provider)
	assert.Equal(t, uint64(9900), plan.Price())
}

func TestPlan_Deactivate(t *testing.T) {
	plan, err := NewPlan("Trial", "trial", 0, "USD", 3, 14, true)
	require.NoError(t, err)
	v := plan.Version()

	plan.Deactivate()
	assert.False(t, plan.IsActive())
	assert.Equal(t, v+1, plan.Version())

	plan.Deactivate()
	assert.Equal(t, v+1, plan.Version())
}
