package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/plan"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// SubscriptionLifecycle is the slice of the subscription service the
// orchestrator needs: settlement is the trigger for renewal.
// subscription.Service satisfies this interface.
type SubscriptionLifecycle interface {
	Get(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
	Renew(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
}

// Service orchestrates payments through their status state machine and wires
// settlement back into the subscription lifecycle.
type Service struct {
	store    Store
	registry *Registry
	subs     SubscriptionLifecycle
	now      func() time.Time
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

// NewService creates a payment orchestrator.
// Panics if store, registry, or subs is nil to fail fast during
// initialization.
func NewService(store Store, registry *Registry, subs SubscriptionLifecycle, opts ...Option) *Service {
	if store == nil {
		panic("payment: Store is required")
	}
	if registry == nil {
		panic("payment: Registry is required")
	}
	if subs == nil {
		panic("payment: SubscriptionLifecycle is required")
	}

	s := &Service{
		store:    store,
		registry: registry,
		subs:     subs,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate creates a pending payment for the subscription on the plan's
// price. The gateway must be registered and permitted by the plan's
// allow-list. Offline methods come out flagged requires_approval unless the
// plan auto-approves cash.
func (s *Service) Initiate(ctx context.Context, subscriptionID uuid.UUID, p *plan.Plan, gateway string, method Method) (*Payment, error) {
	if subscriptionID == uuid.Nil {
		return nil, ErrSubscriptionRequired
	}
	if p == nil {
		return nil, ErrPlanRequired
	}
	if !s.registry.IsAvailable(gateway, p) {
		return nil, ErrGatewayNotAllowed
	}

	now := s.now().UTC()
	payment := &Payment{
		ID:               uuid.New(),
		SubscriptionID:   subscriptionID,
		Gateway:          gateway,
		Method:           method,
		Amount:           p.Price,
		Status:           StatusPending,
		RequiresApproval: method.Offline() && !p.CashAutoApprove,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Process drives a pending payment through its gateway and applies the
// result. Payments awaiting manual approval never reach a gateway. A paid
// result triggers renewal of an inactive subscription; a pending result
// (hosted checkout) leaves the payment open and hands the checkout URL back
// to the caller.
func (s *Service) Process(ctx context.Context, id uuid.UUID) (*Result, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.RequiresApproval {
		return nil, ErrApprovalRequired
	}

	gw, err := s.registry.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}

	result, err := gw.ProcessPayment(ctx, payment)
	if err != nil {
		return nil, errors.Join(ErrExternalGateway, err)
	}

	if result.TransactionID != "" {
		payment.TransactionID = result.TransactionID
	}
	if result.Response != nil {
		payment.GatewayResponse = result.Response
	}

	now := s.now()
	switch result.Status {
	case StatusPaid:
		if err := payment.MarkAsPaidAt(now); err != nil {
			return nil, err
		}
	case StatusFailed:
		payment.MarkAsFailedAt(now)
	default:
		payment.UpdatedAt = now.UTC()
	}

	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		if err := s.renewIfInactive(ctx, payment.SubscriptionID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Approve signs off a requires_approval payment, settling it and renewing
// the subscription when its billing window has lapsed.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approver string) (*Payment, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.RequiresApproval {
		return nil, ErrInvalidStatus
	}

	if err := payment.ApproveAt(approver, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	if err := s.renewIfInactive(ctx, payment.SubscriptionID); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkAsPaid settles a payment outside any gateway call, typically from a
// webhook confirming a hosted checkout. Renewal follows as with Process.
func (s *Service) MarkAsPaid(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkAsPaidAt(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	if err := s.renewIfInactive(ctx, payment.SubscriptionID); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkAsFailed records a settlement failure.
func (s *Service) MarkAsFailed(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.MarkAsFailedAt(s.now())
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkAsRefunded records a refund.
func (s *Service) MarkAsRefunded(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.MarkAsRefundedAt(s.now())
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Get retrieves a payment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.store.Get(ctx, id)
}

// History returns the subscription's payments, newest first.
func (s *Service) History(ctx context.Context, subscriptionID uuid.UUID) ([]Payment, error) {
	return s.store.ListBySubscription(ctx, subscriptionID)
}

// Latest returns the most recent payment of a subscription.
func (s *Service) Latest(ctx context.Context, subscriptionID uuid.UUID) (*Payment, error) {
	return s.store.Latest(ctx, subscriptionID)
}

// PendingApproval returns payments awaiting manual sign-off.
func (s *Service) PendingApproval(ctx context.Context) ([]Payment, error) {
	return s.store.ListPendingApproval(ctx)
}

func (s *Service) renewIfInactive(ctx context.Context, subscriptionID uuid.UUID) error {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.ActiveAt(s.now()) {
		return nil
	}
	_, err = s.subs.Renew(ctx, subscriptionID)
	return err
}
