package entitlement

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type usageKey struct {
	subscriptionID uuid.UUID
	featureID      uuid.UUID
}

type inMemStore struct {
	mu   sync.RWMutex
	rows map[usageKey]Usage
}

// NewInMemStore returns an empty in-memory Store. Intended for tests and
// single-process setups.
func NewInMemStore() Store {
	return &inMemStore{rows: make(map[usageKey]Usage)}
}

func (s *inMemStore) Get(ctx context.Context, subscriptionID, featureID uuid.UUID) (*Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[usageKey{subscriptionID, featureID}]
	if !ok {
		return nil, ErrUsageNotFound
	}
	return cloneUsage(row), nil
}

func (s *inMemStore) Save(ctx context.Context, usage *Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[usageKey{usage.SubscriptionID, usage.FeatureID}] = *cloneUsage(*usage)
	return nil
}

func (s *inMemStore) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Usage
	for key, row := range s.rows {
		if key.subscriptionID == subscriptionID {
			out = append(out, *cloneUsage(row))
		}
	}
	return out, nil
}

func (s *inMemStore) Delete(ctx context.Context, subscriptionID, featureID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{subscriptionID, featureID}
	if _, ok := s.rows[key]; !ok {
		return ErrUsageNotFound
	}
	delete(s.rows, key)
	return nil
}

func cloneUsage(u Usage) *Usage {
	out := u
	if u.ValidUntil != nil {
		t := *u.ValidUntil
		out.ValidUntil = &t
	}
	return &out
}
