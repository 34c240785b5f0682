package plan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
)

// Reserved feature value literals. Boolean and unlimited semantics use
// reserved strings so a numeric value can never be ambiguous.
const (
	ValueUnlimited = "unlimited"
	ValueTrue      = "true"
	ValueFalse     = "false"
)

// Feature is a meterable capability scoped to exactly one plan. Value encodes
// one of three semantics: the literal "unlimited", a boolean gate ("true" /
// "false"), or a non-negative integer limit.
type Feature struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	Slug        string
	Name        l10n.Text
	Description l10n.Text
	Value       string

	// ResettablePeriod and ResettableInterval schedule the usage counter
	// reset window. A zero period means usage never resets.
	ResettablePeriod   int
	ResettableInterval period.Interval

	SortOrder int
}

// IsUnlimited reports whether the feature has no usage bound.
func (f *Feature) IsUnlimited() bool {
	return f.Value == ValueUnlimited
}

// IsBoolean reports whether the feature is an on/off gate.
func (f *Feature) IsBoolean() bool {
	return f.Value == ValueTrue || f.Value == ValueFalse
}

// Enabled reports the truth value of a boolean gate. It is false for
// non-boolean features.
func (f *Feature) Enabled() bool {
	return f.Value == ValueTrue
}

// Limit parses the numeric usage limit. It fails for unlimited and boolean
// features and for values that do not parse as a non-negative integer.
func (f *Feature) Limit() (int64, error) {
	if f.IsUnlimited() || f.IsBoolean() {
		return 0, fmt.Errorf("%w: feature %s value %q has no numeric limit", ErrInvalidFeature, f.Slug, f.Value)
	}
	limit, err := strconv.ParseInt(f.Value, 10, 64)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: feature %s value %q is not a non-negative integer", ErrInvalidFeature, f.Slug, f.Value)
	}
	return limit, nil
}

// Resettable reports whether the feature declares a usage reset window.
func (f *Feature) Resettable() bool {
	return f.ResettablePeriod > 0 && f.ResettableInterval.Valid()
}

// ResetDate computes when a usage counter recorded at now becomes stale.
// The second return value is false for features without a reset window.
func (f *Feature) ResetDate(now time.Time) (time.Time, bool) {
	if !f.Resettable() {
		return time.Time{}, false
	}
	w, err := period.New(f.ResettableInterval, f.ResettablePeriod, now)
	if err != nil {
		return time.Time{}, false
	}
	return w.End, true
}

// Validate checks the value parses into exactly one of the three semantics
// and the reset window, when declared, has a valid interval.
func (f *Feature) Validate() error {
	if f.Slug == "" {
		return fmt.Errorf("%w: empty feature slug", ErrInvalidFeature)
	}
	if !f.IsUnlimited() && !f.IsBoolean() {
		if _, err := f.Limit(); err != nil {
			return err
		}
	}
	if f.ResettablePeriod < 0 {
		return fmt.Errorf("%w: feature %s has negative reset period", ErrInvalidFeature, f.Slug)
	}
	if f.ResettablePeriod > 0 && !f.ResettableInterval.Valid() {
		return fmt.Errorf("%w: feature %s has invalid reset interval %q", ErrInvalidFeature, f.Slug, f.ResettableInterval)
	}
	return nil
}
