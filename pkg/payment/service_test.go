package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/payment"
	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

type fixture struct {
	clock    time.Time
	plan     plan.Plan
	subs     *subscription.Service
	payments *payment.Service
	sub      *subscription.Subscription
	gateway  *stubGateway
}

func newFixture(t *testing.T, cashAutoApprove bool) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		clock: ts(2024, time.June, 1),
		plan: plan.Plan{
			ID:              uuid.New(),
			Slug:            "pro",
			Name:            l10n.New("en", "Pro"),
			Active:          true,
			Price:           plan.Money{Amount: 1990, Currency: "USD"},
			InvoicePeriod:   1,
			InvoiceInterval: period.IntervalMonth,
			CashAutoApprove: cashAutoApprove,
		},
	}
	now := func() time.Time { return f.clock }

	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(f.plan))
	require.NoError(t, err)

	f.subs = subscription.NewService(
		subscription.NewInMemStore(),
		catalog,
		subscription.WithClock(now),
	)

	registry := payment.NewRegistry(map[string]bool{payment.GatewayStripe: true})
	require.NoError(t, registry.Register(payment.NewCashGateway()))
	f.gateway = &stubGateway{name: payment.GatewayStripe}
	require.NoError(t, registry.Register(f.gateway))

	f.payments = payment.NewService(
		payment.NewInMemStore(),
		registry,
		f.subs,
		payment.WithClock(now),
	)

	f.sub, err = f.subs.Subscribe(ctx, subscription.Subscriber{Kind: "user", ID: "1"}, &f.plan, nil)
	require.NoError(t, err)
	return f
}

func TestInitiate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cash requires approval by default", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.True(t, p.RequiresApproval)
		assert.Equal(t, f.plan.Price, p.Amount)
	})

	t.Run("cash auto-approve skips the approval flag", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, true)

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
		require.NoError(t, err)
		assert.False(t, p.RequiresApproval)
	})

	t.Run("online methods never require approval", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
		require.NoError(t, err)
		assert.False(t, p.RequiresApproval)
	})

	t.Run("rejects unregistered gateway", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)

		_, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayPayPal, payment.MethodOnline)
		assert.ErrorIs(t, err, payment.ErrGatewayNotAllowed)
	})

	t.Run("rejects gateway outside the plan allow-list", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)

		restricted := f.plan
		restricted.AllowedGateways = []string{payment.GatewayStripe}
		_, err := f.payments.Initiate(ctx, f.sub.ID, &restricted, payment.GatewayCash, payment.MethodCash)
		assert.ErrorIs(t, err, payment.ErrGatewayNotAllowed)
	})
}

func TestProcessCashAutoApprove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, true)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)

	result, err := f.payments.Process(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, result.Status)

	settled, err := f.payments.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, settled.IsPaid())
	assert.NotEmpty(t, settled.TransactionID)
}

func TestProcessGuardsApproval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, false)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)

	_, err = f.payments.Process(ctx, p.ID)
	assert.ErrorIs(t, err, payment.ErrApprovalRequired)

	_, err = f.payments.MarkAsPaid(ctx, p.ID)
	assert.ErrorIs(t, err, payment.ErrApprovalRequired)

	// The payment stays pending until someone signs off.
	pending, err := f.payments.PendingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p.ID, pending[0].ID)
}

func TestApproveSettlesAndRenews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, false)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)

	// Let the billing window lapse before the approval lands.
	f.clock = f.sub.EndsAt.Add(72 * time.Hour)

	approved, err := f.payments.Approve(ctx, p.ID, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, approved.IsPaid())
	assert.Equal(t, "admin@example.com", approved.ApprovedBy)

	renewed, err := f.subs.Get(ctx, f.sub.ID)
	require.NoError(t, err)
	assert.True(t, renewed.ActiveAt(f.clock), "approval renews the lapsed subscription")
	assert.Equal(t, f.clock, *renewed.StartsAt, "renewal anchored at approval time")
}

func TestApproveRejectsPlainPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, true)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)

	_, err = f.payments.Approve(ctx, p.ID, "admin")
	assert.ErrorIs(t, err, payment.ErrInvalidStatus)
}

func TestProcessAppliesGatewayResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("failed result", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		f.gateway.result = &payment.Result{Status: payment.StatusFailed, TransactionID: "tx-1"}

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
		require.NoError(t, err)

		_, err = f.payments.Process(ctx, p.ID)
		require.NoError(t, err)

		failed, err := f.payments.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusFailed, failed.Status)
		assert.Equal(t, "tx-1", failed.TransactionID)
	})

	t.Run("pending result keeps the payment open", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		f.gateway.result = &payment.Result{
			Status:      payment.StatusPending,
			CheckoutURL: "https://checkout.example.com/s/abc",
		}

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
		require.NoError(t, err)

		result, err := f.payments.Process(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example.com/s/abc", result.CheckoutURL)

		open, err := f.payments.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, open.IsPending())
	})

	t.Run("transport error surfaces as external gateway failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		f.gateway.err = errors.New("connection reset")

		p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
		require.NoError(t, err)

		_, err = f.payments.Process(ctx, p.ID)
		assert.ErrorIs(t, err, payment.ErrExternalGateway)
	})
}

func TestMarkAsPaidRenews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, false)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
	require.NoError(t, err)

	f.clock = f.sub.EndsAt.Add(time.Hour)

	// A webhook confirming the hosted checkout settles the payment.
	paid, err := f.payments.MarkAsPaid(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())

	renewed, err := f.subs.Get(ctx, f.sub.ID)
	require.NoError(t, err)
	assert.True(t, renewed.ActiveAt(f.clock))
}

func TestRefund(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, true)

	p, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)
	_, err = f.payments.Process(ctx, p.ID)
	require.NoError(t, err)

	refunded, err := f.payments.MarkAsRefunded(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, refunded.Status)
}

func TestHistoryAndLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, true)

	first, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayCash, payment.MethodCash)
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	second, err := f.payments.Initiate(ctx, f.sub.ID, &f.plan, payment.GatewayStripe, payment.MethodOnline)
	require.NoError(t, err)

	history, err := f.payments.History(ctx, f.sub.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "newest first")
	assert.Equal(t, first.ID, history[1].ID)

	latest, err := f.payments.Latest(ctx, f.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}
