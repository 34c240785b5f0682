package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
)

func TestFeatureValueSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		unlimited bool
		boolean   bool
		limit     int64
		limitErr  bool
	}{
		{"unlimited literal", "unlimited", true, false, 0, true},
		{"boolean true", "true", false, true, 0, true},
		{"boolean false", "false", false, true, 0, true},
		{"numeric limit", "100", false, false, 100, false},
		{"zero limit", "0", false, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := plan.Feature{Slug: "f", Value: tt.value}
			assert.Equal(t, tt.unlimited, f.IsUnlimited())
			assert.Equal(t, tt.boolean, f.IsBoolean())

			limit, err := f.Limit()
			if tt.limitErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.limit, limit)
			}
		})
	}
}

func TestFeatureEnabled(t *testing.T) {
	t.Parallel()

	assert.True(t, (&plan.Feature{Value: "true"}).Enabled())
	assert.False(t, (&plan.Feature{Value: "false"}).Enabled())
	assert.False(t, (&plan.Feature{Value: "100"}).Enabled())
}

func TestFeatureValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		feature plan.Feature
		wantErr bool
	}{
		{"unlimited", plan.Feature{Slug: "f", Value: "unlimited"}, false},
		{"boolean", plan.Feature{Slug: "f", Value: "false"}, false},
		{"numeric", plan.Feature{Slug: "f", Value: "42"}, false},
		{"garbage value", plan.Feature{Slug: "f", Value: "forty-two"}, true},
		{"negative number", plan.Feature{Slug: "f", Value: "-1"}, true},
		{"empty value", plan.Feature{Slug: "f", Value: ""}, true},
		{"empty slug", plan.Feature{Value: "10"}, true},
		{"reset without interval", plan.Feature{Slug: "f", Value: "10", ResettablePeriod: 1}, true},
		{
			"resettable",
			plan.Feature{Slug: "f", Value: "10", ResettablePeriod: 1, ResettableInterval: period.IntervalMonth},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.feature.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, plan.ErrInvalidFeature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeatureResetDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	f := plan.Feature{
		Slug: "api-calls", Value: "1000",
		ResettablePeriod: 1, ResettableInterval: period.IntervalMonth,
	}
	reset, ok := f.ResetDate(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC), reset)

	plain := plan.Feature{Slug: "seats", Value: "5"}
	_, ok = plain.ResetDate(now)
	assert.False(t, ok)
}
