package plan

import (
	"context"
	"sync"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory Source holding a deep copy of the given
// plans. Panics if no plans are provided so a catalog is never empty by
// accident. Deep copying keeps later mutations by the caller from leaking in.
func NewInMemSource(plans ...Plan) Source {
	if len(plans) == 0 {
		panic("plan: at least one plan is required")
	}

	copied := make(map[string]Plan, len(plans))
	for _, p := range plans {
		copied[p.Slug] = *clonePlan(p)
	}
	return &inMemSource{plans: copied}
}

// Load returns a deep copy of the held plans.
func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Plan, len(s.plans))
	for slug, p := range s.plans {
		out[slug] = *clonePlan(p)
	}
	return out, nil
}
