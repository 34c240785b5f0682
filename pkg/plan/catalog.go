package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Catalog is the read model over a plan Source. It validates the loaded plans
// and indexes them by slug, plan ID, and feature ID so lifecycle and
// entitlement code can resolve references cheaply. Reload swaps the whole
// catalog atomically.
type Catalog struct {
	mu       sync.RWMutex
	source   Source
	bySlug   map[string]Plan
	byID     map[uuid.UUID]Plan
	features map[uuid.UUID]Feature
}

// NewCatalog loads and validates the catalog from src.
// Panics if src is nil to fail fast during initialization.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("plan: Source is required")
	}

	c := &Catalog{source: src}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the source and replaces the indexed catalog. On failure the
// previous catalog stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	loaded, err := c.source.Load(ctx)
	if err != nil {
		return errors.Join(ErrFailedToLoadPlans, err)
	}

	bySlug := make(map[string]Plan, len(loaded))
	byID := make(map[uuid.UUID]Plan, len(loaded))
	features := make(map[uuid.UUID]Feature)

	for slug, p := range loaded {
		if p.Slug != slug {
			return fmt.Errorf("%w: map key %q != plan slug %q", ErrInvalidPlan, slug, p.Slug)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("%w: plan ID %s used twice", ErrInvalidPlan, p.ID)
		}
		bySlug[slug] = p
		byID[p.ID] = p
		for _, f := range p.Features {
			if f.PlanID != p.ID {
				return fmt.Errorf("%w: feature %s belongs to plan %s, not %s", ErrInvalidFeature, f.Slug, f.PlanID, p.ID)
			}
			if _, dup := features[f.ID]; dup {
				return fmt.Errorf("%w: feature ID %s used twice", ErrInvalidFeature, f.ID)
			}
			features[f.ID] = f
		}
	}

	c.mu.Lock()
	c.bySlug = bySlug
	c.byID = byID
	c.features = features
	c.mu.Unlock()
	return nil
}

// Plan returns the plan with the given slug.
func (c *Catalog) Plan(ctx context.Context, slug string) (*Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.bySlug[slug]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return clonePlan(p), nil
}

// PlanByID returns the plan with the given ID.
func (c *Catalog) PlanByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return clonePlan(p), nil
}

// Feature returns the feature with the given ID regardless of owning plan.
func (c *Catalog) Feature(ctx context.Context, id uuid.UUID) (*Feature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.features[id]
	if !ok {
		return nil, ErrFeatureNotFound
	}
	return cloneFeature(f), nil
}

// FeatureBySlug returns the feature with the given slug within a plan.
func (c *Catalog) FeatureBySlug(ctx context.Context, planSlug, featureSlug string) (*Feature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.bySlug[planSlug]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p.FeatureBySlug(featureSlug)
}

// Plans returns all non-deleted plans ordered by sort order, then slug.
// Inactive plans are included; callers filter with Plan.Active as needed.
func (c *Catalog) Plans(ctx context.Context) []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Plan, 0, len(c.bySlug))
	for _, p := range c.bySlug {
		if p.IsDeleted() {
			continue
		}
		out = append(out, *clonePlan(p))
	}
	slices.SortFunc(out, func(a, b Plan) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out
}

func clonePlan(p Plan) *Plan {
	out := p
	out.Name = maps.Clone(p.Name)
	out.Description = maps.Clone(p.Description)
	out.AllowedGateways = slices.Clone(p.AllowedGateways)
	out.ProviderPriceIDs = maps.Clone(p.ProviderPriceIDs)
	out.Features = make([]Feature, len(p.Features))
	for i, f := range p.Features {
		out.Features[i] = *cloneFeature(f)
	}
	return &out
}

func cloneFeature(f Feature) *Feature {
	out := f
	out.Name = maps.Clone(f.Name)
	out.Description = maps.Clone(f.Description)
	return &out
}
