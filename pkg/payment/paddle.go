package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds the Paddle API credentials.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddlePriceResolver maps a payment to the Paddle price ID it should be
// billed against, typically by looking up the plan's provider price IDs.
type PaddlePriceResolver func(ctx context.Context, p *Payment) (string, error)

// PaddleGateway creates hosted checkout transactions in Paddle. Settlement
// arrives asynchronously through Paddle webhooks, so ProcessPayment always
// reports pending with a checkout URL; webhook handling applies the final
// status via the orchestrator.
type PaddleGateway struct {
	client *paddle.SDK
	prices PaddlePriceResolver
}

// NewPaddleGateway creates the Paddle adapter. A construction failure means
// the gateway simply does not get registered.
func NewPaddleGateway(config PaddleConfig, prices PaddlePriceResolver) (*PaddleGateway, error) {
	if config.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}
	if prices == nil {
		return nil, errors.New("paddle price resolver is required")
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", config.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleGateway{client: client, prices: prices}, nil
}

func (g *PaddleGateway) Name() string { return GatewayPaddle }

func (g *PaddleGateway) ProcessPayment(ctx context.Context, p *Payment) (*Result, error) {
	priceID, err := g.prices(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paddle price: %w", err)
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceID,
		Quantity: 1,
	})
	transaction, err := g.client.TransactionsClient.CreateTransaction(ctx, &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"payment_id":      p.ID.String(),
			"subscription_id": p.SubscriptionID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	result := &Result{
		Status:        StatusPending,
		TransactionID: transaction.ID,
		Response: map[string]any{
			"paddle_transaction_id": transaction.ID,
		},
	}
	if transaction.Checkout != nil && transaction.Checkout.URL != nil {
		result.CheckoutURL = *transaction.Checkout.URL
		result.Response["checkout_url"] = *transaction.Checkout.URL
	}
	return result, nil
}
