package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
)

// Money is a monetary amount in the smallest currency unit.
// For example, $10.99 USD is Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"` // ISO 4217 code
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Validate checks the amount is non-negative and, for non-zero amounts,
// the currency is a 3-letter code.
func (m Money) Validate() error {
	if m.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidMoney, m.Amount)
	}
	if m.Amount > 0 && len(m.Currency) != 3 {
		return fmt.Errorf("%w: currency %q is not a 3-letter code", ErrInvalidMoney, m.Currency)
	}
	return nil
}

// Plan is a purchasable subscription tier. Plans own their features; a plan
// referenced by subscriptions is soft-deleted, never removed.
type Plan struct {
	ID          uuid.UUID
	Slug        string
	Name        l10n.Text
	Description l10n.Text
	Active      bool
	Price       Money
	SignupFee   Money

	TrialPeriod     int
	TrialInterval   period.Interval
	InvoicePeriod   int
	InvoiceInterval period.Interval
	GracePeriod     int
	GraceInterval   period.Interval

	// CashAutoApprove settles cash payments without a manual approval step.
	CashAutoApprove bool

	// AllowedGateways restricts which payment gateways may fund subscriptions
	// to this plan, in display order. Empty means "all globally enabled".
	AllowedGateways []string

	// ProviderPriceIDs maps a gateway identifier to that provider's price or
	// plan ID (e.g. a Paddle price). Opaque to this core; gateway adapters use
	// it to correlate checkout sessions.
	ProviderPriceIDs map[string]string

	SortOrder int

	Features []Feature

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsFree reports whether the plan has no recurring price.
func (p *Plan) IsFree() bool {
	return p.Price.IsZero()
}

// HasTrial reports whether new subscriptions start with a trial window.
func (p *Plan) HasTrial() bool {
	return p.TrialPeriod > 0
}

// HasGrace reports whether the plan declares a grace buffer after a billing
// period ends. The buffer is declarative; nothing in this core enforces it.
func (p *Plan) HasGrace() bool {
	return p.GracePeriod > 0
}

// IsPaidInFull reports whether the plan has no recurring invoice period.
func (p *Plan) IsPaidInFull() bool {
	return p.InvoicePeriod == 0 || p.InvoiceInterval == ""
}

// IsDeleted reports whether the plan has been soft-deleted.
func (p *Plan) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Activate makes the plan purchasable.
func (p *Plan) Activate() {
	p.Active = true
}

// Deactivate hides the plan from new purchases. Existing subscriptions keep
// their reference.
func (p *Plan) Deactivate() {
	p.Active = false
}

// FeatureBySlug returns the plan's feature with the given slug.
func (p *Plan) FeatureBySlug(slug string) (*Feature, error) {
	for i := range p.Features {
		if p.Features[i].Slug == slug {
			return &p.Features[i], nil
		}
	}
	return nil, ErrFeatureNotFound
}

// GatewayAllowed reports whether the plan permits the gateway identifier.
// An empty allow-list permits every gateway.
func (p *Plan) GatewayAllowed(identifier string) bool {
	if len(p.AllowedGateways) == 0 {
		return true
	}
	for _, id := range p.AllowedGateways {
		if id == identifier {
			return true
		}
	}
	return false
}

// Validate checks plan invariants: non-empty slug, non-negative price and
// periods, valid intervals for declared periods, and valid owned features.
func (p *Plan) Validate() error {
	if p.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrInvalidPlan)
	}
	if err := p.Price.Validate(); err != nil {
		return fmt.Errorf("%w: plan %s price: %w", ErrInvalidPlan, p.Slug, err)
	}
	if err := p.SignupFee.Validate(); err != nil {
		return fmt.Errorf("%w: plan %s signup fee: %w", ErrInvalidPlan, p.Slug, err)
	}

	for _, pp := range []struct {
		name     string
		count    int
		interval period.Interval
	}{
		{"trial", p.TrialPeriod, p.TrialInterval},
		{"invoice", p.InvoicePeriod, p.InvoiceInterval},
		{"grace", p.GracePeriod, p.GraceInterval},
	} {
		if pp.count < 0 {
			return fmt.Errorf("%w: plan %s has negative %s period", ErrInvalidPlan, p.Slug, pp.name)
		}
		if pp.count > 0 && !pp.interval.Valid() {
			return fmt.Errorf("%w: plan %s has invalid %s interval %q", ErrInvalidPlan, p.Slug, pp.name, pp.interval)
		}
	}

	seen := make(map[string]struct{}, len(p.Features))
	for i := range p.Features {
		f := &p.Features[i]
		if _, dup := seen[f.Slug]; dup {
			return fmt.Errorf("%w: plan %s feature %s", ErrDuplicateFeature, p.Slug, f.Slug)
		}
		seen[f.Slug] = struct{}{}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
