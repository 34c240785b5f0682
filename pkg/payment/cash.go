package payment

import (
	"context"

	"github.com/google/uuid"
)

// CashGateway settles offline payments. It never touches the network: a
// payment flagged requires_approval stays pending until a human approves it,
// anything else settles immediately.
type CashGateway struct{}

// NewCashGateway creates the cash adapter. It is always safe to register;
// the registry gate keeps it enabled by default.
func NewCashGateway() *CashGateway {
	return &CashGateway{}
}

func (g *CashGateway) Name() string { return GatewayCash }

func (g *CashGateway) ProcessPayment(ctx context.Context, p *Payment) (*Result, error) {
	if p.RequiresApproval {
		return &Result{Status: StatusPending}, nil
	}
	return &Result{
		Status:        StatusPaid,
		TransactionID: "cash-" + uuid.NewString(),
	}, nil
}
