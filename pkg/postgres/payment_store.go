package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingkit/pkg/payment"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

// PaymentStore persists payments in PostgreSQL. It satisfies payment.Store.
type PaymentStore struct {
	pool *pgxpool.Pool
}

// NewPaymentStore creates a payment store backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	if pool == nil {
		panic("postgres: pgxpool is required")
	}
	return &PaymentStore{pool: pool}
}

const paymentColumns = `
	id, subscription_id, gateway, payment_method, amount, currency, status,
	gateway_transaction_id, gateway_response, requires_approval,
	approved_by, approved_at, paid_at, created_at, updated_at, deleted_at`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.SubscriptionID, &p.Gateway, &p.Method,
		&p.Amount.Amount, &p.Amount.Currency, &p.Status,
		&p.TransactionID, &p.GatewayResponse, &p.RequiresApproval,
		&p.ApprovedBy, &p.ApprovedAt, &p.PaidAt,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM subscription_payments WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanPayment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *PaymentStore) Save(ctx context.Context, p *payment.Payment) error {
	const query = `
		INSERT INTO subscription_payments (
			id, subscription_id, gateway, payment_method, amount, currency, status,
			gateway_transaction_id, gateway_response, requires_approval,
			approved_by, approved_at, paid_at, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			gateway_transaction_id = EXCLUDED.gateway_transaction_id,
			gateway_response = EXCLUDED.gateway_response,
			requires_approval = EXCLUDED.requires_approval,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			paid_at = EXCLUDED.paid_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.SubscriptionID, p.Gateway, p.Method,
		p.Amount.Amount, p.Amount.Currency, p.Status,
		p.TransactionID, p.GatewayResponse, p.RequiresApproval,
		p.ApprovedBy, p.ApprovedAt, p.PaidAt,
		p.CreatedAt, p.UpdatedAt, p.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (s *PaymentStore) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM subscription_payments
		WHERE subscription_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return s.list(ctx, query, subscriptionID)
}

func (s *PaymentStore) Latest(ctx context.Context, subscriptionID uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM subscription_payments
		WHERE subscription_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	p, err := scanPayment(s.pool.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("latest payment: %w", err)
	}
	return p, nil
}

func (s *PaymentStore) ListPendingApproval(ctx context.Context) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM subscription_payments
		WHERE status = 'pending' AND requires_approval AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return s.list(ctx, query)
}

func (s *PaymentStore) ListByGateway(ctx context.Context, identifier string) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM subscription_payments
		WHERE gateway = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return s.list(ctx, query, identifier)
}

func (s *PaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE subscription_payments SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (s *PaymentStore) list(ctx context.Context, query string, args ...any) ([]payment.Payment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
