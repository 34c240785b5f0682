package payment

import (
	"context"

	"github.com/google/uuid"
)

// Store persists payments. Soft-deleted rows are invisible to every query.
type Store interface {
	// Get returns the payment by ID, or ErrPaymentNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Save inserts or updates the payment.
	Save(ctx context.Context, p *Payment) error

	// ListBySubscription returns the subscription's payments, newest first.
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Payment, error)

	// Latest returns the most recently created payment of a subscription.
	Latest(ctx context.Context, subscriptionID uuid.UUID) (*Payment, error)

	// ListPendingApproval returns pending payments awaiting manual sign-off.
	ListPendingApproval(ctx context.Context) ([]Payment, error)

	// ListByGateway returns all payments taken through one gateway.
	ListByGateway(ctx context.Context, identifier string) ([]Payment, error)

	// Delete soft-deletes the payment.
	Delete(ctx context.Context, id uuid.UUID) error
}
