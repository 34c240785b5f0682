package entitlement

import (
	"time"

	"github.com/google/uuid"
)

// Unlimited is the sentinel Remaining returns for features without a bound.
const Unlimited int64 = -1

// Usage is the consumption counter of one feature under one subscription.
// At most one row exists per (subscription, feature) pair.
type Usage struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	FeatureID      uuid.UUID
	Used           int64

	// ValidUntil marks when the counter goes stale. Nil means the counter
	// never resets.
	ValidUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpiredAt reports whether the counter is stale at the given instant.
func (u *Usage) ExpiredAt(now time.Time) bool {
	return u.ValidUntil != nil && u.ValidUntil.Before(now)
}
