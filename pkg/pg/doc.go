// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// retrying startup, embedded goose migrations, a health check closure, and
// error classification helpers.
//
// The package exposes three cooperating building blocks:
//
//   - Config, populated from environment variables via github.com/caarlos0/env,
//     controlling pool limits, health-check cadence and migration settings.
//   - Connect, which opens a *pgxpool.Pool based on Config, retrying with
//     back-off until the database becomes available.
//   - Migrate, which runs goose migrations from an embedded fs.FS against the
//     same pool before the service starts serving traffic.
//
// Basic set-up:
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	ctx := context.Background()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, postgres.Migrations, slog.Default()); err != nil {
//	    panic(err)
//	}
//
//	health := pg.Healthcheck(pool)
//
// Helpers such as [pg.IsDuplicateKeyError] and [pg.IsNotFoundError] unwrap
// pgx and *pgconn.PgError values so business logic can classify failures
// without importing driver internals.
package pg
