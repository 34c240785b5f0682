package payment

// GatewaysConfig is the environment surface controlling which gateways are
// allowed to register. Cash is enabled by default; every online gateway must
// be switched on explicitly.
type GatewaysConfig struct {
	CashEnabled     bool `env:"BILLING_GATEWAY_CASH_ENABLED" envDefault:"true"`
	StripeEnabled   bool `env:"BILLING_GATEWAY_STRIPE_ENABLED" envDefault:"false"`
	PayPalEnabled   bool `env:"BILLING_GATEWAY_PAYPAL_ENABLED" envDefault:"false"`
	PaddleEnabled   bool `env:"BILLING_GATEWAY_PADDLE_ENABLED" envDefault:"false"`
	MidtransEnabled bool `env:"BILLING_GATEWAY_MIDTRANS_ENABLED" envDefault:"false"`
	CustomEnabled   bool `env:"BILLING_GATEWAY_CUSTOM_ENABLED" envDefault:"false"`

	// BillableSubscriberType resolves what kind of record an approver
	// reference points at. Consumed by callers, not by this package.
	BillableSubscriberType string `env:"BILLING_SUBSCRIBER_TYPE" envDefault:"user"`
}

// Enabled builds the registry gate from the environment flags.
func (c GatewaysConfig) Enabled() map[string]bool {
	return map[string]bool{
		GatewayCash:     c.CashEnabled,
		GatewayStripe:   c.StripeEnabled,
		GatewayPayPal:   c.PayPalEnabled,
		GatewayPaddle:   c.PaddleEnabled,
		GatewayMidtrans: c.MidtransEnabled,
		GatewayCustom:   c.CustomEnabled,
	}
}
