package entitlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/entitlement"
	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
)

type stubFeatures map[uuid.UUID]plan.Feature

func (s stubFeatures) Feature(ctx context.Context, id uuid.UUID) (*plan.Feature, error) {
	f, ok := s[id]
	if !ok {
		return nil, plan.ErrFeatureNotFound
	}
	return &f, nil
}

func feature(value string) plan.Feature {
	return plan.Feature{
		ID:     uuid.New(),
		PlanID: uuid.New(),
		Slug:   "api-calls",
		Value:  value,
	}
}

func newTracker(now time.Time, features ...plan.Feature) (*entitlement.Tracker, stubFeatures) {
	resolver := make(stubFeatures, len(features))
	for _, f := range features {
		resolver[f.ID] = f
	}
	tracker := entitlement.NewTracker(
		entitlement.NewInMemStore(),
		resolver,
		entitlement.WithClock(func() time.Time { return now }),
	)
	return tracker, resolver
}

func TestRecordUsageWithinLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("5")
	tracker, _ := newTracker(now, f)
	subID := uuid.New()

	usage, err := tracker.RecordUsage(ctx, subID, f.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, usage.Used)

	ok, err := tracker.CanUse(ctx, subID, f.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok, "3 used of 5, 2 more fits exactly")

	ok, err = tracker.CanUse(ctx, subID, f.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "3 used of 5, 3 more exceeds the limit")

	remaining, err := tracker.Remaining(ctx, subID, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, remaining)
}

func TestRecordUsageAccumulates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("10")
	tracker, _ := newTracker(now, f)
	subID := uuid.New()

	_, err := tracker.RecordUsage(ctx, subID, f.ID, 4)
	require.NoError(t, err)
	usage, err := tracker.RecordUsage(ctx, subID, f.ID, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 8, usage.Used)

	used, err := tracker.CurrentUsage(ctx, subID, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, used)
}

func TestBooleanGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	enabled := feature(plan.ValueTrue)
	disabled := feature(plan.ValueFalse)
	tracker, _ := newTracker(now, enabled, disabled)
	subID := uuid.New()

	ok, err := tracker.CanUse(ctx, subID, enabled.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tracker.CanUse(ctx, subID, disabled.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := tracker.Remaining(ctx, subID, enabled.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)

	remaining, err = tracker.Remaining(ctx, subID, disabled.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, remaining)

	// Recording against a gate is allowed and never flips the answer.
	usage, err := tracker.RecordUsage(ctx, subID, enabled.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, usage.Used)

	ok, err = tracker.CanUse(ctx, subID, enabled.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	remaining, err = tracker.Remaining(ctx, subID, enabled.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)
}

func TestUnlimitedFeature(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature(plan.ValueUnlimited)
	tracker, _ := newTracker(now, f)
	subID := uuid.New()

	_, err := tracker.RecordUsage(ctx, subID, f.ID, 1_000_000)
	require.NoError(t, err)

	ok, err := tracker.CanUse(ctx, subID, f.ID, 1_000_000)
	require.NoError(t, err)
	assert.True(t, ok)

	remaining, err := tracker.Remaining(ctx, subID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.Unlimited, remaining)
}

func TestReduceUsageClampsAtZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("10")
	tracker, _ := newTracker(now, f)
	subID := uuid.New()

	_, err := tracker.RecordUsage(ctx, subID, f.ID, 3)
	require.NoError(t, err)

	usage, err := tracker.ReduceUsage(ctx, subID, f.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 0, usage.Used, "reduce never goes negative")

	_, err = tracker.ReduceUsage(ctx, uuid.New(), f.ID, 1)
	assert.ErrorIs(t, err, entitlement.ErrUsageNotFound)
}

func TestUsageResetWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("5")
	f.ResettablePeriod = 1
	f.ResettableInterval = period.IntervalMonth

	store := entitlement.NewInMemStore()
	clock := start
	tracker := entitlement.NewTracker(
		store,
		stubFeatures{f.ID: f},
		entitlement.WithClock(func() time.Time { return clock }),
	)
	subID := uuid.New()

	usage, err := tracker.RecordUsage(ctx, subID, f.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, usage.ValidUntil)
	assert.Equal(t, start.AddDate(0, 1, 0), *usage.ValidUntil)

	ok, err := tracker.CanUse(ctx, subID, f.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "limit exhausted inside the window")

	// Cross the reset boundary: the stale counter reads as zero.
	clock = start.AddDate(0, 1, 0).Add(time.Hour)

	used, err := tracker.CurrentUsage(ctx, subID, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, used)

	ok, err = tracker.CanUse(ctx, subID, f.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	usage, err = tracker.RecordUsage(ctx, subID, f.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, usage.Used, "stale counter zeroed before increment")
	assert.Equal(t, clock.AddDate(0, 1, 0), *usage.ValidUntil, "fresh window anchored at record time")
}

func TestRecordUsageGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("5")
	tracker, _ := newTracker(now, f)

	_, err := tracker.RecordUsage(ctx, uuid.New(), f.ID, 0)
	assert.ErrorIs(t, err, entitlement.ErrInvalidUses)

	_, err = tracker.RecordUsage(ctx, uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, plan.ErrFeatureNotFound)
}

func TestResetUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := feature("5")
	tracker, _ := newTracker(now, f)
	subID := uuid.New()

	_, err := tracker.RecordUsage(ctx, subID, f.ID, 4)
	require.NoError(t, err)

	require.NoError(t, tracker.ResetUsage(ctx, subID, f.ID))

	used, err := tracker.CurrentUsage(ctx, subID, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, used)
}
