// Package postgres implements the billing persistence contracts on
// PostgreSQL using pgx/v5: the plan catalog source, the subscription store,
// the usage counter store, and the payment store, plus the embedded goose
// migrations that create their schema.
//
// The stores translate pgx errors into the domain sentinel errors of the
// packages they serve, so callers never see driver errors for ordinary
// misses. Usage counters rely on the (subscription_id, feature_id) unique
// constraint to make Save an atomic upsert under concurrent recorders.
//
// Wire it together with pkg/pg:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, postgres.Migrations, slog.Default()); err != nil {
//	    return err
//	}
//
//	catalog, err := plan.NewCatalog(ctx, postgres.NewPlanSource(pool))
//	subs := subscription.NewService(postgres.NewSubscriptionStore(pool), catalog)
//	tracker := entitlement.NewTracker(postgres.NewUsageStore(pool), catalog)
package postgres
