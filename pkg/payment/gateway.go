package payment

import "context"

// Result is what a gateway reports back from a settlement attempt. Hosted
// checkout gateways return StatusPending with a CheckoutURL; settlement then
// arrives out of band and the caller applies it via the orchestrator.
type Result struct {
	Status        Status
	TransactionID string
	CheckoutURL   string
	Response      map[string]any
}

// Gateway is the capability contract every payment adapter satisfies. The
// orchestrator never inspects gateway-specific response shapes; it applies
// the Result and stores the raw response as-is.
//
// ProcessPayment may block on network I/O. The orchestrator imposes no
// timeout or retry policy; adapters and callers own that via ctx.
type Gateway interface {
	Name() string
	ProcessPayment(ctx context.Context, p *Payment) (*Result, error)
}
