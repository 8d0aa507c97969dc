package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func TestNewActiveSubscription(t *testing.T) {
	sub, err := NewActiveSubscription(7, snapshot(1, "Starter", 5, 0), vo.NoActor(), nil, t0)
	require.NoError(t, err)

	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, t0, sub.StartDate())
	assert.Equal(t, t0.AddDate(0, 0, 30), sub.EndDate())
	assert.Equal(t, 5, sub.EffectiveEntitlement())
	require.NotNil(t, sub.ActiveTenantSlot())
	assert.Equal(t, uint(7), *sub.ActiveTenantSlot())
}

func TestNewSubscription_Validation(t *testing.T) {
	_, err := NewActiveSubscription(0, snapshot(1, "x", 5, 0), vo.NoActor(), nil, t0)
	assert.Error(t, err)

	_, err = NewActiveSubscription(1, snapshot(1, "x", 0, 0), vo.NoActor(), nil, t0)
	assert.Error(t, err)

	zero := 0
	_, err = NewActiveSubscription(1, snapshot(1, "x", 5, 0), vo.NoActor(), &zero, t0)
	assert.Error(t, err)
}

func TestSubscription_ActivateStartsAtConfirmation(t *testing.T) {
	sub, err := NewPendingSubscription(3, snapshot(2, "Pro", 10, 500), vo.NoActor(), t0)
	require.NoError(t, err)
	assert.Nil(t, sub.ActiveTenantSlot())

	confirmedAt := t0.Add(36 * time.Hour)
	require.NoError(t, sub.Activate(confirmedAt))
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, confirmedAt, sub.StartDate())
	assert.Equal(t, confirmedAt.AddDate(0, 0, 30), sub.EndDate())

	version := sub.Version()
	require.NoError(t, sub.Activate(confirmedAt.Add(time.Hour)))
	assert.Equal(t, version, sub.Version())
	assert.Equal(t, confirmedAt, sub.StartDate())
}

func TestSubscription_RenewStacksOntoEndDate(t *testing.T) {
	plan := snapshot(1, "Starter", 5, 100)
	sub, err := NewActiveSubscription(1, plan, vo.NoActor(), nil, t0.AddDate(0, 0, -20))
	require.NoError(t, err)
	// 30-day plan started 20 days ago: 10 days left
	require.Equal(t, t0.AddDate(0, 0, 10), sub.EndDate())

	twin := snapshot(9, "Starter v2", 5, 100)
	require.NoError(t, sub.Renew(twin, vo.AdminActor(2), t0))

	assert.Equal(t, t0.AddDate(0, 0, 40), sub.EndDate())
	assert.Equal(t, uint(9), sub.PlanID())
	assert.Equal(t, vo.AdminActor(2), sub.ActivatedBy())
}

func TestSubscription_RenewRejectsDifferentTerms(t *testing.T) {
	sub, err := NewActiveSubscription(1, snapshot(1, "A", 5, 100), vo.NoActor(), nil, t0)
	require.NoError(t, err)
	assert.Error(t, sub.Renew(snapshot(2, "B", 10, 200), vo.NoActor(), t0))
}

func TestSubscription_Extend(t *testing.T) {
	sub, err := NewActiveSubscription(1, snapshot(1, "A", 5, 100), vo.NoActor(), nil, t0)
	require.NoError(t, err)
	end := sub.EndDate()

	require.NoError(t, sub.Extend(12, t0))
	assert.Equal(t, end.AddDate(0, 0, 12), sub.EndDate())

	assert.Error(t, sub.Extend(0, t0))
}

func TestSubscription_ExpireAndCancel(t *testing.T) {
	active, err := NewActiveSubscription(1, snapshot(1, "A", 5, 0), vo.NoActor(), nil, t0)
	require.NoError(t, err)
	require.NoError(t, active.Expire(t0))
	assert.Equal(t, vo.StatusExpired, active.Status())
	assert.Nil(t, active.ActiveTenantSlot())
	require.NoError(t, active.Expire(t0))
	assert.ErrorIs(t, active.Cancel(t0), ErrInvalidStatusTransition)

	pending, err := NewPendingSubscription(1, snapshot(2, "B", 5, 100), vo.NoActor(), t0)
	require.NoError(t, err)
	assert.ErrorIs(t, pending.Expire(t0), ErrInvalidStatusTransition)
	require.NoError(t, pending.Cancel(t0))
	assert.Equal(t, vo.StatusCancelled, pending.Status())
	assert.ErrorIs(t, pending.Activate(t0), ErrInvalidStatusTransition)
}

func TestSubscription_LiveAndLapsed(t *testing.T) {
	sub, err := NewActiveSubscription(1, snapshot(1, "A", 5, 0), vo.NoActor(), nil, t0)
	require.NoError(t, err)

	assert.True(t, sub.IsLiveAt(t0.AddDate(0, 0, 29)))
	assert.False(t, sub.IsLapsedAt(t0.AddDate(0, 0, 29)))
	assert.False(t, sub.IsLiveAt(sub.EndDate()))
	assert.True(t, sub.IsLapsedAt(sub.EndDate()))
	assert.Equal(t, 30, sub.DaysRemaining(t0))
	assert.Equal(t, 0, sub.DaysRemaining(t0.AddDate(0, 0, 45)))
}

func TestSubscription_CustomEntitlementWins(t *testing.T) {
	custom := 25
	sub, err := NewActiveSubscription(1, snapshot(1, "A", 5, 0), vo.AdminActor(1), &custom, t0)
	require.NoError(t, err)
	assert.Equal(t, 25, sub.EffectiveEntitlement())
}

func TestSubscription_LoadedVersionTracksStorage(t *testing.T) {
	sub, err := NewActiveSubscription(1, snapshot(1, "Starter", 5, 100), vo.NoActor(), nil, t0)
	require.NoError(t, err)
	assert.Zero(t, sub.LoadedVersion())

	sub.MarkPersisted()
	assert.Equal(t, 1, sub.LoadedVersion())

	require.NoError(t, sub.Extend(3, t0))
	require.NoError(t, sub.Extend(3, t0))
	assert.Equal(t, 3, sub.Version())
	assert.Equal(t, 1, sub.LoadedVersion())

	loaded, err := ReconstructSubscription(9, 1, sub.Plan(), vo.StatusActive, t0, sub.EndDate(), nil, vo.NoActor(), 4, t0, t0)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.LoadedVersion())
}
