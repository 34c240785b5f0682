package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// PlanSource loads the plan catalog from PostgreSQL. It satisfies
// plan.Source; soft-deleted plans are loaded too so existing subscription
// references keep resolving, and the domain guards reject them for new use.
type PlanSource struct {
	pool *pgxpool.Pool
}

// NewPlanSource creates a catalog source backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewPlanSource(pool *pgxpool.Pool) *PlanSource {
	if pool == nil {
		panic("postgres: pgxpool is required")
	}
	return &PlanSource{pool: pool}
}

func (s *PlanSource) Load(ctx context.Context) (map[string]plan.Plan, error) {
	const plansQuery = `
		SELECT id, slug, name, description, is_active,
		       price, currency, signup_fee, signup_fee_currency,
		       trial_period, trial_interval,
		       invoice_period, invoice_interval,
		       grace_period, grace_interval,
		       cash_auto_approve, allowed_payment_gateways, provider_price_ids,
		       sort_order, created_at, updated_at, deleted_at
		FROM plans`

	rows, err := s.pool.Query(ctx, plansQuery)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	defer rows.Close()

	plans := make(map[string]plan.Plan)
	byID := make(map[uuid.UUID]string)
	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Name, &p.Description, &p.Active,
			&p.Price.Amount, &p.Price.Currency, &p.SignupFee.Amount, &p.SignupFee.Currency,
			&p.TrialPeriod, &p.TrialInterval,
			&p.InvoicePeriod, &p.InvoiceInterval,
			&p.GracePeriod, &p.GraceInterval,
			&p.CashAutoApprove, &p.AllowedGateways, &p.ProviderPriceIDs,
			&p.SortOrder, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans[p.Slug] = p
		byID[p.ID] = p.Slug
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}

	const featuresQuery = `
		SELECT id, plan_id, slug, name, description, value,
		       resettable_period, resettable_interval, sort_order
		FROM plan_features
		ORDER BY sort_order, slug`

	frows, err := s.pool.Query(ctx, featuresQuery)
	if err != nil {
		return nil, fmt.Errorf("load plan features: %w", err)
	}
	defer frows.Close()

	for frows.Next() {
		var f plan.Feature
		if err := frows.Scan(
			&f.ID, &f.PlanID, &f.Slug, &f.Name, &f.Description, &f.Value,
			&f.ResettablePeriod, &f.ResettableInterval, &f.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("scan plan feature: %w", err)
		}
		slug, ok := byID[f.PlanID]
		if !ok {
			continue
		}
		p := plans[slug]
		p.Features = append(p.Features, f)
		plans[slug] = p
	}
	if err := frows.Err(); err != nil {
		return nil, fmt.Errorf("load plan features: %w", err)
	}

	return plans, nil
}
