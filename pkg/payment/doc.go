// Package payment holds the gateway registry and the payment orchestrator.
//
// # Registry
//
// Adapters satisfy the Gateway contract and register under a short string
// identifier. Registration is gated by configuration: a disabled identifier
// is skipped silently, and an adapter whose construction fails is simply
// never registered, so the registry only ever exposes working gateways.
// Cash is enabled by default, every online gateway is opt-in.
//
// Plans narrow the choice further with an ordered allow-list. An empty list
// means "all registered gateways"; a non-empty one is intersected with the
// registered set in the plan's declared order.
//
// # Orchestration
//
// A payment moves pending to paid or failed, and paid to refunded. Offline
// payments (cash, bank transfer) come out of Initiate flagged
// requires_approval unless the plan auto-approves cash; such payments can
// only reach paid through Approve, which records who signed off and when.
//
// Settlement feeds back into the subscription lifecycle: whenever a payment
// turns paid and the owning subscription's billing window has lapsed, the
// orchestrator renews it.
//
// Hosted checkout gateways (Paddle, Midtrans Snap) cannot settle inline.
// Their adapters report pending with a checkout URL; the webhook layer
// confirms the outcome later through MarkAsPaid or MarkAsFailed.
package payment
