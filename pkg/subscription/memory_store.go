package subscription

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

// NewInMemStore returns an empty in-memory Store. Intended for tests and
// single-process setups; the mutex gives the row-level atomicity the
// lifecycle contract requires.
func NewInMemStore() Store {
	return &inMemStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *inMemStore) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok || sub.IsDeleted() {
		return nil, ErrSubscriptionNotFound
	}
	return cloneSubscription(sub), nil
}

func (s *inMemStore) Save(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.ID] = *cloneSubscription(*sub)
	return nil
}

func (s *inMemStore) ListBySubscriber(ctx context.Context, subscriber Subscriber) ([]Subscription, error) {
	return s.filter(func(sub *Subscription) bool {
		return sub.Subscriber == subscriber
	})
}

func (s *inMemStore) ListActive(ctx context.Context, now time.Time) ([]Subscription, error) {
	return s.filter(func(sub *Subscription) bool {
		return sub.ActiveAt(now) && !sub.Canceled()
	})
}

func (s *inMemStore) ListEndingTrials(ctx context.Context, now time.Time, within time.Duration) ([]Subscription, error) {
	limit := now.Add(within)
	return s.filter(func(sub *Subscription) bool {
		return sub.TrialEndsAt != nil && !sub.TrialEndsAt.Before(now) && !sub.TrialEndsAt.After(limit)
	})
}

func (s *inMemStore) ListEndedTrials(ctx context.Context, now time.Time) ([]Subscription, error) {
	return s.filter(func(sub *Subscription) bool {
		return sub.TrialEndsAt != nil && !sub.TrialEndsAt.After(now)
	})
}

func (s *inMemStore) ListEndingPeriods(ctx context.Context, now time.Time, within time.Duration) ([]Subscription, error) {
	limit := now.Add(within)
	return s.filter(func(sub *Subscription) bool {
		return sub.EndsAt != nil && !sub.EndsAt.Before(now) && !sub.EndsAt.After(limit)
	})
}

func (s *inMemStore) ListEndedPeriods(ctx context.Context, now time.Time) ([]Subscription, error) {
	return s.filter(func(sub *Subscription) bool {
		return sub.EndsAt != nil && !sub.EndsAt.After(now)
	})
}

func (s *inMemStore) Delete(ctx context.Context, id uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok || sub.IsDeleted() {
		return ErrSubscriptionNotFound
	}
	now = now.UTC()
	sub.DeletedAt = &now
	sub.UpdatedAt = now
	s.subs[id] = sub
	return nil
}

func (s *inMemStore) filter(keep func(*Subscription) bool) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Subscription
	for _, sub := range s.subs {
		if sub.IsDeleted() || !keep(&sub) {
			continue
		}
		out = append(out, *cloneSubscription(sub))
	}
	return out, nil
}

func cloneSubscription(sub Subscription) *Subscription {
	out := sub
	out.Name = maps.Clone(sub.Name)
	out.Description = maps.Clone(sub.Description)
	out.ProviderRefs = maps.Clone(sub.ProviderRefs)
	out.TrialEndsAt = cloneTime(sub.TrialEndsAt)
	out.StartsAt = cloneTime(sub.StartsAt)
	out.EndsAt = cloneTime(sub.EndsAt)
	out.CancelsAt = cloneTime(sub.CancelsAt)
	out.CanceledAt = cloneTime(sub.CanceledAt)
	out.DeletedAt = cloneTime(sub.DeletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
