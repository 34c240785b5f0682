package postgres

import "embed"

// Migrations holds the embedded goose migration files. Pass it to pg.Migrate
// with MigrationsDir set to "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
