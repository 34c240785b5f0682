package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingkit/pkg/pg"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// SubscriptionStore persists subscriptions in PostgreSQL. It satisfies
// subscription.Store.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewSubscriptionStore creates a subscription store backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	if pool == nil {
		panic("postgres: pgxpool is required")
	}
	return &SubscriptionStore{pool: pool}
}

const subscriptionColumns = `
	id, subscriber_type, subscriber_id, plan_id, slug, name, description,
	trial_ends_at, starts_at, ends_at, cancels_at, canceled_at,
	provider_refs, created_at, updated_at, deleted_at`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := row.Scan(
		&sub.ID, &sub.Subscriber.Kind, &sub.Subscriber.ID, &sub.PlanID,
		&sub.Slug, &sub.Name, &sub.Description,
		&sub.TrialEndsAt, &sub.StartsAt, &sub.EndsAt, &sub.CancelsAt, &sub.CanceledAt,
		&sub.ProviderRefs, &sub.CreatedAt, &sub.UpdatedAt, &sub.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SubscriptionStore) Get(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND deleted_at IS NULL`

	sub, err := scanSubscription(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionStore) Save(ctx context.Context, sub *subscription.Subscription) error {
	const query = `
		INSERT INTO subscriptions (
			id, subscriber_type, subscriber_id, plan_id, slug, name, description,
			trial_ends_at, starts_at, ends_at, cancels_at, canceled_at,
			provider_refs, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			slug = EXCLUDED.slug,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trial_ends_at = EXCLUDED.trial_ends_at,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			cancels_at = EXCLUDED.cancels_at,
			canceled_at = EXCLUDED.canceled_at,
			provider_refs = EXCLUDED.provider_refs,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`

	_, err := s.pool.Exec(ctx, query,
		sub.ID, sub.Subscriber.Kind, sub.Subscriber.ID, sub.PlanID,
		sub.Slug, sub.Name, sub.Description,
		sub.TrialEndsAt, sub.StartsAt, sub.EndsAt, sub.CancelsAt, sub.CanceledAt,
		sub.ProviderRefs, sub.CreatedAt, sub.UpdatedAt, sub.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) ListBySubscriber(ctx context.Context, subscriber subscription.Subscriber) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE subscriber_type = $1 AND subscriber_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return s.list(ctx, query, subscriber.Kind, subscriber.ID)
}

// ListActive returns subscriptions with an open billing window that have not
// been canceled. A deferred-canceled subscription still grants access but is
// excluded here: these listings feed renewal jobs, and a canceled
// subscription must not be renewed.
func (s *SubscriptionStore) ListActive(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE deleted_at IS NULL
		  AND canceled_at IS NULL
		  AND (ends_at IS NULL OR ends_at > $1)`
	return s.list(ctx, query, now.UTC())
}

func (s *SubscriptionStore) ListEndingTrials(ctx context.Context, now time.Time, within time.Duration) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE deleted_at IS NULL
		  AND trial_ends_at >= $1 AND trial_ends_at <= $2`
	return s.list(ctx, query, now.UTC(), now.UTC().Add(within))
}

func (s *SubscriptionStore) ListEndedTrials(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE deleted_at IS NULL AND trial_ends_at <= $1`
	return s.list(ctx, query, now.UTC())
}

func (s *SubscriptionStore) ListEndingPeriods(ctx context.Context, now time.Time, within time.Duration) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE deleted_at IS NULL
		  AND ends_at >= $1 AND ends_at <= $2`
	return s.list(ctx, query, now.UTC(), now.UTC().Add(within))
}

func (s *SubscriptionStore) ListEndedPeriods(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE deleted_at IS NULL AND ends_at <= $1`
	return s.list(ctx, query, now.UTC())
}

func (s *SubscriptionStore) Delete(ctx context.Context, id uuid.UUID, now time.Time) error {
	const query = `
		UPDATE subscriptions SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.pool.Exec(ctx, query, id, now.UTC())
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (s *SubscriptionStore) list(ctx context.Context, query string, args ...any) ([]subscription.Subscription, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}
