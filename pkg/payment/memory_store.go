package payment

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Payment
}

// NewInMemStore returns an empty in-memory Store. Intended for tests and
// single-process setups.
func NewInMemStore() Store {
	return &inMemStore{rows: make(map[uuid.UUID]Payment)}
}

func (s *inMemStore) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.rows[id]
	if !ok || p.IsDeleted() {
		return nil, ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (s *inMemStore) Save(ctx context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[p.ID] = *clonePayment(*p)
	return nil
}

func (s *inMemStore) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Payment, error) {
	return s.filter(func(p *Payment) bool {
		return p.SubscriptionID == subscriptionID
	})
}

func (s *inMemStore) Latest(ctx context.Context, subscriptionID uuid.UUID) (*Payment, error) {
	rows, err := s.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPaymentNotFound
	}
	return &rows[0], nil
}

func (s *inMemStore) ListPendingApproval(ctx context.Context) ([]Payment, error) {
	return s.filter(func(p *Payment) bool {
		return p.IsPending() && p.RequiresApproval
	})
}

func (s *inMemStore) ListByGateway(ctx context.Context, identifier string) ([]Payment, error) {
	return s.filter(func(p *Payment) bool {
		return p.Gateway == identifier
	})
}

func (s *inMemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[id]
	if !ok || p.IsDeleted() {
		return ErrPaymentNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	s.rows[id] = p
	return nil
}

func (s *inMemStore) filter(keep func(*Payment) bool) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Payment
	for _, p := range s.rows {
		if p.IsDeleted() || !keep(&p) {
			continue
		}
		out = append(out, *clonePayment(p))
	}
	slices.SortFunc(out, func(a, b Payment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func clonePayment(p Payment) *Payment {
	out := p
	out.GatewayResponse = maps.Clone(p.GatewayResponse)
	out.ApprovedAt = cloneTime(p.ApprovedAt)
	out.PaidAt = cloneTime(p.PaidAt)
	out.DeletedAt = cloneTime(p.DeletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
