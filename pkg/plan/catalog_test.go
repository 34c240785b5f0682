package plan_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
)

func TestCatalogLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pro := validPlan()
	starter := validPlan()
	starter.ID = uuid.New()
	starter.Slug = "starter"
	starter.SortOrder = -1
	starter.Features = nil

	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(pro, starter))
	require.NoError(t, err)

	t.Run("by slug", func(t *testing.T) {
		t.Parallel()
		got, err := catalog.Plan(ctx, "pro")
		require.NoError(t, err)
		assert.Equal(t, pro.ID, got.ID)

		_, err = catalog.Plan(ctx, "enterprise")
		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		got, err := catalog.PlanByID(ctx, starter.ID)
		require.NoError(t, err)
		assert.Equal(t, "starter", got.Slug)

		_, err = catalog.PlanByID(ctx, uuid.New())
		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	})

	t.Run("feature by id", func(t *testing.T) {
		t.Parallel()
		got, err := catalog.Feature(ctx, pro.Features[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "api-calls", got.Slug)

		_, err = catalog.Feature(ctx, uuid.New())
		assert.ErrorIs(t, err, plan.ErrFeatureNotFound)
	})

	t.Run("feature by slug", func(t *testing.T) {
		t.Parallel()
		got, err := catalog.FeatureBySlug(ctx, "pro", "sso")
		require.NoError(t, err)
		assert.Equal(t, "true", got.Value)

		_, err = catalog.FeatureBySlug(ctx, "starter", "sso")
		assert.ErrorIs(t, err, plan.ErrFeatureNotFound)
	})

	t.Run("plans sorted", func(t *testing.T) {
		t.Parallel()
		plans := catalog.Plans(ctx)
		require.Len(t, plans, 2)
		assert.Equal(t, "starter", plans[0].Slug)
		assert.Equal(t, "pro", plans[1].Slug)
	})
}

func TestCatalogRejectsInvalidPlans(t *testing.T) {
	t.Parallel()

	bad := validPlan()
	bad.Features[0].Value = "broken"

	_, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(bad))
	assert.ErrorIs(t, err, plan.ErrInvalidFeature)
}

func TestCatalogReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pro := validPlan()
	pro.Features[0].Name = l10n.New("en", "API calls")
	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(pro))
	require.NoError(t, err)

	first, err := catalog.Plan(ctx, "pro")
	require.NoError(t, err)
	first.Features[0].Value = "tampered"
	first.Features[0].Name["en"] = "tampered"
	first.Name["en"] = "tampered"

	second, err := catalog.Plan(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, "1000", second.Features[0].Value)
	assert.Equal(t, "API calls", second.Features[0].Name.In("en"))
	assert.Equal(t, "Pro", second.Name.In("en"))

	f, err := catalog.Feature(ctx, pro.Features[0].ID)
	require.NoError(t, err)
	f.Name["en"] = "tampered"

	f, err = catalog.Feature(ctx, pro.Features[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "API calls", f.Name.In("en"))
}

const catalogYAML = `
plans:
  - slug: starter
    name:
      en: Starter
      de: Einsteiger
    price:
      amount: 0
      currency: USD
    invoice:
      period: 1
      interval: month
    sort_order: 1
  - id: 0b36530a-54f8-47cd-a82b-9e2f2bfa9b96
    slug: pro
    name:
      en: Pro
    active: true
    price:
      amount: 1990
      currency: USD
    trial:
      period: 14
      interval: day
    invoice:
      period: 1
      interval: month
    cash_auto_approve: true
    allowed_gateways: [cash, stripe]
    provider_price_ids:
      paddle: pri_01h1vjes
    sort_order: 2
    features:
      - slug: api-calls
        name:
          en: API calls
        value: "1000"
        reset:
          period: 1
          interval: month
      - slug: sso
        value: "true"
`

func TestYAMLSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"plans.yml": &fstest.MapFile{Data: []byte(catalogYAML)},
	}

	catalog, err := plan.NewCatalog(ctx, plan.NewYAMLSource(fsys, "plans.yml"))
	require.NoError(t, err)

	pro, err := catalog.Plan(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("0b36530a-54f8-47cd-a82b-9e2f2bfa9b96"), pro.ID)
	assert.Equal(t, int64(1990), pro.Price.Amount)
	assert.Equal(t, 14, pro.TrialPeriod)
	assert.Equal(t, period.IntervalDay, pro.TrialInterval)
	assert.True(t, pro.CashAutoApprove)
	assert.Equal(t, []string{"cash", "stripe"}, pro.AllowedGateways)
	assert.Equal(t, "pri_01h1vjes", pro.ProviderPriceIDs["paddle"])
	require.Len(t, pro.Features, 2)
	assert.Equal(t, pro.ID, pro.Features[0].PlanID)
	assert.True(t, pro.Features[0].Resettable())

	starter, err := catalog.Plan(ctx, "starter")
	require.NoError(t, err)
	assert.True(t, starter.Active, "active defaults to true")
	assert.True(t, starter.IsFree())
	assert.Equal(t, "Einsteiger", starter.Name.In("de"))
}

func TestYAMLSourceMissingFile(t *testing.T) {
	t.Parallel()

	src := plan.NewYAMLSource(fstest.MapFS{}, "plans.yml")
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, plan.ErrFailedToLoadPlans)
}

func TestYAMLSourceDuplicateSlug(t *testing.T) {
	t.Parallel()

	doc := `
plans:
  - slug: pro
    price: {amount: 0, currency: USD}
  - slug: pro
    price: {amount: 0, currency: USD}
`
	src := plan.NewYAMLSource(fstest.MapFS{
		"plans.yml": &fstest.MapFile{Data: []byte(doc)},
	}, "plans.yml")
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, plan.ErrDuplicatePlan)
}
