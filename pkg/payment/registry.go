package payment

import (
	"sync"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// Registry holds the named gateway adapters that survived the configuration
// gate. Registration order doubles as display order for plans without an
// explicit allow-list.
type Registry struct {
	mu       sync.RWMutex
	enabled  map[string]bool
	gateways map[string]Gateway
	order    []string
}

// NewRegistry creates a registry gated by the enabled map. Identifiers absent
// from the map are treated as disabled, except cash which defaults to
// enabled.
func NewRegistry(enabled map[string]bool) *Registry {
	gate := make(map[string]bool, len(enabled)+1)
	gate[GatewayCash] = true
	for id, on := range enabled {
		gate[id] = on
	}
	return &Registry{
		enabled:  gate,
		gateways: make(map[string]Gateway),
	}
}

// Register adds a gateway when its identifier is enabled. A disabled gateway
// is silently skipped so callers can attempt registration unconditionally;
// no partial registration state is ever visible. Registering the same
// identifier twice fails with ErrDuplicateGateway.
func (r *Registry) Register(g Gateway) error {
	name := g.Name()
	if !r.enabled[name] {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.gateways[name]; dup {
		return ErrDuplicateGateway
	}
	r.gateways[name] = g
	r.order = append(r.order, name)
	return nil
}

// Get returns the registered gateway for the identifier.
func (r *Registry) Get(identifier string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gateways[identifier]
	if !ok {
		return nil, ErrGatewayNotFound
	}
	return g, nil
}

// AvailableForPlan returns the gateways the plan may be paid with. A plan
// without an allow-list gets every registered gateway in registration order;
// otherwise the allow-list is intersected with the registered set, keeping
// the plan's declared order and silently dropping unknown identifiers.
func (r *Registry) AvailableForPlan(p *plan.Plan) []Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p == nil || len(p.AllowedGateways) == 0 {
		out := make([]Gateway, 0, len(r.order))
		for _, name := range r.order {
			out = append(out, r.gateways[name])
		}
		return out
	}

	var out []Gateway
	seen := make(map[string]struct{}, len(p.AllowedGateways))
	for _, name := range p.AllowedGateways {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if g, ok := r.gateways[name]; ok {
			out = append(out, g)
		}
	}
	return out
}

// IsAvailable re-derives the AvailableForPlan decision for one identifier:
// registered and permitted by the plan's allow-list.
func (r *Registry) IsAvailable(identifier string, p *plan.Plan) bool {
	r.mu.RLock()
	_, registered := r.gateways[identifier]
	r.mu.RUnlock()

	if !registered {
		return false
	}
	return p == nil || p.GatewayAllowed(identifier)
}
