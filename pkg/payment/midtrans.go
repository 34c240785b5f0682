package payment

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
)

// MidtransConfig holds the Midtrans Snap credentials.
type MidtransConfig struct {
	ServerKey  string `env:"MIDTRANS_SERVER_KEY,required"`
	Production bool   `env:"MIDTRANS_IS_PRODUCTION" envDefault:"false"`

	// FinishURL is where Snap redirects the customer after checkout.
	FinishURL string `env:"MIDTRANS_FINISH_URL"`
}

// MidtransItemResolver names the line item shown on the Snap checkout page,
// typically the plan name in the subscriber's language.
type MidtransItemResolver func(ctx context.Context, p *Payment) (l10n.Text, error)

// MidtransGateway creates Snap checkout sessions. Like every hosted checkout
// the settlement arrives asynchronously; ProcessPayment reports pending with
// the Snap redirect URL and the webhook confirms via the orchestrator.
type MidtransGateway struct {
	client snap.Client
	config MidtransConfig
	items  MidtransItemResolver
}

// NewMidtransGateway creates the Midtrans adapter. A construction failure
// means the gateway simply does not get registered.
func NewMidtransGateway(config MidtransConfig, items MidtransItemResolver) (*MidtransGateway, error) {
	if config.ServerKey == "" {
		return nil, fmt.Errorf("midtrans server key is required")
	}

	env := midtrans.Sandbox
	if config.Production {
		env = midtrans.Production
	}

	g := &MidtransGateway{config: config, items: items}
	g.client.New(config.ServerKey, env)
	return g, nil
}

func (g *MidtransGateway) Name() string { return GatewayMidtrans }

func (g *MidtransGateway) ProcessPayment(ctx context.Context, p *Payment) (*Result, error) {
	itemName := "Subscription"
	if g.items != nil {
		name, err := g.items(ctx, p)
		if err == nil && !name.IsEmpty() {
			itemName = name.String()
		}
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  p.ID.String(),
			GrossAmt: p.Amount.Amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    p.SubscriptionID.String(),
				Price: p.Amount.Amount,
				Qty:   1,
				Name:  itemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if g.config.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: g.config.FinishURL}
	}

	resp, midErr := g.client.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	return &Result{
		Status:        StatusPending,
		TransactionID: p.ID.String(),
		CheckoutURL:   resp.RedirectURL,
		Response: map[string]any{
			"snap_token":        resp.Token,
			"snap_redirect_url": resp.RedirectURL,
		},
	}, nil
}
