package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingkit/pkg/entitlement"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

// UsageStore persists usage counters in PostgreSQL. It satisfies
// entitlement.Store; Save is an atomic upsert keyed by the
// (subscription, feature) unique constraint.
type UsageStore struct {
	pool *pgxpool.Pool
}

// NewUsageStore creates a usage store backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	if pool == nil {
		panic("postgres: pgxpool is required")
	}
	return &UsageStore{pool: pool}
}

func (s *UsageStore) Get(ctx context.Context, subscriptionID, featureID uuid.UUID) (*entitlement.Usage, error) {
	const query = `
		SELECT id, subscription_id, feature_id, used, valid_until, created_at, updated_at
		FROM subscription_usages
		WHERE subscription_id = $1 AND feature_id = $2`

	var u entitlement.Usage
	err := s.pool.QueryRow(ctx, query, subscriptionID, featureID).Scan(
		&u.ID, &u.SubscriptionID, &u.FeatureID, &u.Used, &u.ValidUntil,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, entitlement.ErrUsageNotFound
		}
		return nil, fmt.Errorf("get usage: %w", err)
	}
	return &u, nil
}

func (s *UsageStore) Save(ctx context.Context, usage *entitlement.Usage) error {
	const query = `
		INSERT INTO subscription_usages (
			id, subscription_id, feature_id, used, valid_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscription_id, feature_id) DO UPDATE SET
			used = EXCLUDED.used,
			valid_until = EXCLUDED.valid_until,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		usage.ID, usage.SubscriptionID, usage.FeatureID, usage.Used,
		usage.ValidUntil, usage.CreatedAt, usage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (s *UsageStore) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]entitlement.Usage, error) {
	const query = `
		SELECT id, subscription_id, feature_id, used, valid_until, created_at, updated_at
		FROM subscription_usages
		WHERE subscription_id = $1`

	rows, err := s.pool.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("list usages: %w", err)
	}
	defer rows.Close()

	var out []entitlement.Usage
	for rows.Next() {
		var u entitlement.Usage
		if err := rows.Scan(
			&u.ID, &u.SubscriptionID, &u.FeatureID, &u.Used, &u.ValidUntil,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list usages: %w", err)
	}
	return out, nil
}

func (s *UsageStore) Delete(ctx context.Context, subscriptionID, featureID uuid.UUID) error {
	const query = `DELETE FROM subscription_usages WHERE subscription_id = $1 AND feature_id = $2`

	tag, err := s.pool.Exec(ctx, query, subscriptionID, featureID)
	if err != nil {
		return fmt.Errorf("delete usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entitlement.ErrUsageNotFound
	}
	return nil
}
