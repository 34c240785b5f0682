package entitlement

import (
	"context"

	"github.com/google/uuid"
)

// Store persists usage counters. Implementations must make Save an upsert
// keyed by (subscription, feature) so concurrent recorders cannot create
// duplicate rows.
type Store interface {
	// Get returns the usage row for the pair, or ErrUsageNotFound.
	Get(ctx context.Context, subscriptionID, featureID uuid.UUID) (*Usage, error)

	// Save inserts or updates the usage row.
	Save(ctx context.Context, usage *Usage) error

	// ListBySubscription returns all usage rows of a subscription.
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Usage, error)

	// Delete removes the usage row for the pair.
	Delete(ctx context.Context, subscriptionID, featureID uuid.UUID) error
}
