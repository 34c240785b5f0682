// Package plan defines purchasable subscription tiers and their meterable
// features, plus the catalog that the lifecycle and entitlement packages
// resolve references against.
//
// A Plan declares pricing, trial/invoice/grace windows, the payment gateways
// allowed to fund it, and an ordered set of Features. A Feature's Value string
// encodes one of exactly three semantics:
//
//   - "unlimited": no usage bound
//   - "true" / "false": a boolean gate
//   - any other value: a non-negative integer usage limit
//
// The reserved literals make the encoding unambiguous: a numeric value can
// never collide with a boolean or unlimited value.
//
// Plans are loaded through a Source. Two implementations ship with the
// package: NewInMemSource for tests and static catalogs, and NewYAMLSource
// for file-backed catalogs. The Catalog validates everything it loads and
// serves lookups by slug, plan ID, and feature ID:
//
//	src := plan.NewInMemSource(plan.Plan{
//		ID:   uuid.New(),
//		Slug: "pro",
//		Name: l10n.New("en", "Pro"),
//		Price: plan.Money{Amount: 990, Currency: "USD"},
//		InvoicePeriod:   1,
//		InvoiceInterval: period.IntervalMonth,
//	})
//
//	catalog, err := plan.NewCatalog(ctx, src)
//	if err != nil {
//		// handle error
//	}
//	p, err := catalog.Plan(ctx, "pro")
//
// Catalog implements the PlanResolver and FeatureResolver interfaces consumed
// by the subscription and entitlement packages.
package plan
