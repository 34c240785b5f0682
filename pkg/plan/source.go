package plan

import "context"

// Source loads the plan catalog, features included, keyed by plan slug.
// Implementations must return data the caller is free to retain and mutate.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}
