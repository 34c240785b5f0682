package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
	"github.com/dmitrymomot/billingkit/pkg/slug"
)

// PlanResolver resolves a plan reference for lifecycle operations.
// plan.Catalog satisfies this interface.
type PlanResolver interface {
	PlanByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
}

// Service drives the subscription lifecycle against a Store. All derivations
// are pull-based: nothing here schedules timers or expires subscriptions in
// the background, callers observe state transitions at read time.
type Service struct {
	store Store
	plans PlanResolver
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a lifecycle service.
// Panics if store or plans is nil to fail fast during initialization.
func NewService(store Store, plans PlanResolver, opts ...Option) *Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if plans == nil {
		panic("subscription: PlanResolver is required")
	}

	s := &Service{
		store: store,
		plans: plans,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe creates a subscription for the subscriber on the given plan.
// A trial plan opens the trial window first and anchors the billing window at
// the trial end; otherwise the billing window starts immediately. Plans with
// no invoice period produce an open-ended subscription.
func (s *Service) Subscribe(ctx context.Context, subscriber Subscriber, p *plan.Plan, name l10n.Text) (*Subscription, error) {
	if subscriber.IsZero() {
		return nil, ErrSubscriberRequired
	}
	if p == nil || p.IsDeleted() || !p.Active {
		return nil, ErrPlanRequired
	}

	now := s.now().UTC()
	if name.IsEmpty() {
		name = p.Name
	}

	sub := &Subscription{
		ID:         uuid.New(),
		Subscriber: subscriber,
		PlanID:     p.ID,
		Slug:       slug.Make(p.Slug, slug.WithSuffix(8)),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	anchor := now
	if p.HasTrial() {
		trial, err := period.New(p.TrialInterval, p.TrialPeriod, now)
		if err != nil {
			return nil, err
		}
		sub.TrialEndsAt = &trial.End
		anchor = trial.End
	}

	if p.IsPaidInFull() {
		sub.StartsAt = &now
	} else {
		window, err := period.New(p.InvoiceInterval, p.InvoicePeriod, anchor)
		if err != nil {
			return nil, err
		}
		sub.StartsAt = &window.Start
		sub.EndsAt = &window.End
	}

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get retrieves a subscription by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return s.store.Get(ctx, id)
}

// BySubscriber returns all live subscriptions of a subscriber.
func (s *Service) BySubscriber(ctx context.Context, subscriber Subscriber) ([]Subscription, error) {
	if subscriber.IsZero() {
		return nil, ErrSubscriberRequired
	}
	return s.store.ListBySubscriber(ctx, subscriber)
}

// Cancel records a cancellation. With immediately set, access ends right
// away; otherwise the subscription stays active until its window closes.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, immediately bool) (*Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sub.CancelAt(s.now(), immediately); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Renew moves the subscription onto its next billing window. The plan
// reference must still resolve to a live plan; renewing against a missing or
// soft-deleted plan fails with ErrPlanRequired because there is no
// entitlement basis left to renew onto.
func (s *Service) Renew(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.plans.PlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, errors.Join(ErrPlanRequired, err)
	}

	if err := sub.RenewAt(p, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ChangePlan reassigns the subscription to another plan. The billing window
// is deliberately left untouched; call Renew afterwards when a fresh window
// on the new plan's terms is wanted.
func (s *Service) ChangePlan(ctx context.Context, id, planID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.plans.PlanByID(ctx, planID)
	if err != nil {
		return nil, errors.Join(ErrPlanRequired, err)
	}

	if err := sub.ChangePlanAt(p, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete soft-deletes a subscription. Payment history keeps referencing the
// subscription ID for audit purposes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id, s.now())
}
