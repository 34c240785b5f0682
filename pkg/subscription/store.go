package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines subscription persistence. Implementations must serialize
// read-modify-write per subscription row; the lifecycle arithmetic assumes
// row-level atomicity and provides no cross-entity transactions.
//
// Soft-deleted subscriptions are invisible to Get and the listing queries;
// payment history hangs off the subscription ID and stays addressable in the
// payment store.
type Store interface {
	// Get retrieves a subscription by ID.
	// Returns ErrSubscriptionNotFound if no live subscription exists.
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription keyed by its ID.
	Save(ctx context.Context, sub *Subscription) error

	// ListBySubscriber returns all live subscriptions for a subscriber.
	ListBySubscriber(ctx context.Context, subscriber Subscriber) ([]Subscription, error)

	// ListActive returns subscriptions that are active at now and carry no
	// cancellation mark.
	ListActive(ctx context.Context, now time.Time) ([]Subscription, error)

	// ListEndingTrials returns subscriptions whose trial ends within the
	// given window after now.
	ListEndingTrials(ctx context.Context, now time.Time, within time.Duration) ([]Subscription, error)

	// ListEndedTrials returns subscriptions whose trial has ended by now.
	ListEndedTrials(ctx context.Context, now time.Time) ([]Subscription, error)

	// ListEndingPeriods returns subscriptions whose billing window closes
	// within the given window after now.
	ListEndingPeriods(ctx context.Context, now time.Time, within time.Duration) ([]Subscription, error)

	// ListEndedPeriods returns subscriptions whose billing window has closed
	// by now.
	ListEndedPeriods(ctx context.Context, now time.Time) ([]Subscription, error)

	// Delete soft-deletes a subscription.
	Delete(ctx context.Context, id uuid.UUID, now time.Time) error
}
