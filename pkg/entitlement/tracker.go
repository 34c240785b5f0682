package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// FeatureResolver resolves a feature definition for metering decisions.
// plan.Catalog satisfies this interface.
type FeatureResolver interface {
	Feature(ctx context.Context, id uuid.UUID) (*plan.Feature, error)
}

// Tracker meters feature consumption per subscription. It interprets the
// feature value (unlimited, boolean gate, numeric limit) and keeps one usage
// counter per (subscription, feature) pair, resetting it when the feature's
// reset window elapses.
type Tracker struct {
	store    Store
	features FeatureResolver
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a usage tracker.
// Panics if store or features is nil to fail fast during initialization.
func NewTracker(store Store, features FeatureResolver, opts ...Option) *Tracker {
	if store == nil {
		panic("entitlement: Store is required")
	}
	if features == nil {
		panic("entitlement: FeatureResolver is required")
	}

	t := &Tracker{
		store:    store,
		features: features,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordUsage adds uses to the counter, creating it on first consumption.
// A stale counter is zeroed before the increment. Resettable features get a
// fresh valid_until computed from the current instant on every record.
// Boolean features record like any other; their gate answer comes from the
// feature value, never the counter.
func (t *Tracker) RecordUsage(ctx context.Context, subscriptionID, featureID uuid.UUID, uses int64) (*Usage, error) {
	if uses <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidUses, uses)
	}

	f, err := t.features.Feature(ctx, featureID)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	usage, err := t.currentRow(ctx, subscriptionID, featureID, f, now)
	if err != nil {
		return nil, err
	}

	usage.Used += uses
	usage.UpdatedAt = now
	if err := t.store.Save(ctx, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// ReduceUsage subtracts uses from the counter, clamping at zero. Reducing a
// pair that was never recorded fails with ErrUsageNotFound.
func (t *Tracker) ReduceUsage(ctx context.Context, subscriptionID, featureID uuid.UUID, uses int64) (*Usage, error) {
	if uses <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidUses, uses)
	}

	usage, err := t.store.Get(ctx, subscriptionID, featureID)
	if err != nil {
		return nil, err
	}

	usage.Used -= uses
	if usage.Used < 0 {
		usage.Used = 0
	}
	usage.UpdatedAt = t.now().UTC()
	if err := t.store.Save(ctx, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// CanUse reports whether the subscription may consume uses more units.
// Boolean gates answer their truth value, unlimited features always allow,
// and numeric limits allow while current usage plus uses stays within the
// limit. A malformed feature value answers false.
func (t *Tracker) CanUse(ctx context.Context, subscriptionID, featureID uuid.UUID, uses int64) (bool, error) {
	f, err := t.features.Feature(ctx, featureID)
	if err != nil {
		return false, err
	}

	switch {
	case f.IsBoolean():
		return f.Enabled(), nil
	case f.IsUnlimited():
		return true, nil
	}

	limit, err := f.Limit()
	if err != nil {
		return false, nil
	}

	used, err := t.CurrentUsage(ctx, subscriptionID, featureID)
	if err != nil {
		return false, err
	}
	return used+uses <= limit, nil
}

// Remaining returns how many units are left. Unlimited features report the
// Unlimited sentinel; boolean gates answer 1 when enabled and 0 when
// disabled, regardless of any recorded usage. An expired counter counts as
// zero used.
func (t *Tracker) Remaining(ctx context.Context, subscriptionID, featureID uuid.UUID) (int64, error) {
	f, err := t.features.Feature(ctx, featureID)
	if err != nil {
		return 0, err
	}
	if f.IsUnlimited() {
		return Unlimited, nil
	}
	if f.IsBoolean() {
		if f.Enabled() {
			return 1, nil
		}
		return 0, nil
	}

	limit, err := f.Limit()
	if err != nil {
		return 0, err
	}

	used, err := t.CurrentUsage(ctx, subscriptionID, featureID)
	if err != nil {
		return 0, err
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// CurrentUsage returns the live counter value. Pairs without a row and stale
// counters both report zero.
func (t *Tracker) CurrentUsage(ctx context.Context, subscriptionID, featureID uuid.UUID) (int64, error) {
	usage, err := t.store.Get(ctx, subscriptionID, featureID)
	if err != nil {
		if errors.Is(err, ErrUsageNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if usage.ExpiredAt(t.now().UTC()) {
		return 0, nil
	}
	return usage.Used, nil
}

// Usages returns all usage rows of a subscription as stored, stale counters
// included.
func (t *Tracker) Usages(ctx context.Context, subscriptionID uuid.UUID) ([]Usage, error) {
	return t.store.ListBySubscription(ctx, subscriptionID)
}

// ResetUsage zeroes the counter for the pair, keeping the row.
func (t *Tracker) ResetUsage(ctx context.Context, subscriptionID, featureID uuid.UUID) error {
	usage, err := t.store.Get(ctx, subscriptionID, featureID)
	if err != nil {
		return err
	}

	now := t.now().UTC()
	usage.Used = 0
	usage.UpdatedAt = now
	if f, err := t.features.Feature(ctx, featureID); err == nil {
		if until, ok := f.ResetDate(now); ok {
			usage.ValidUntil = &until
		}
	}
	return t.store.Save(ctx, usage)
}

// currentRow loads the usage row, creating a fresh one for first consumption
// and zeroing a stale counter.
func (t *Tracker) currentRow(ctx context.Context, subscriptionID, featureID uuid.UUID, f *plan.Feature, now time.Time) (*Usage, error) {
	usage, err := t.store.Get(ctx, subscriptionID, featureID)
	if err != nil {
		if !errors.Is(err, ErrUsageNotFound) {
			return nil, err
		}
		usage = &Usage{
			ID:             uuid.New(),
			SubscriptionID: subscriptionID,
			FeatureID:      featureID,
			CreatedAt:      now,
		}
	}

	if usage.ExpiredAt(now) {
		usage.Used = 0
	}
	if until, ok := f.ResetDate(now); ok {
		usage.ValidUntil = &until
	}
	return usage, nil
}
