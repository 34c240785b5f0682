// Package config loads environment-based configuration into tagged structs.
// A .env file in the working directory is applied once per process before the
// first parse, so local development does not need exported shell variables.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load populates cfg from environment variables declared via `env` struct tags.
//
// Example:
//
//	type GatewaysConfig struct {
//		CashEnabled   bool `env:"BILLING_GATEWAY_CASH_ENABLED" envDefault:"true"`
//		StripeEnabled bool `env:"BILLING_GATEWAY_STRIPE_ENABLED" envDefault:"false"`
//	}
//
//	var cfg GatewaysConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// The .env file is optional; missing files are not an error.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}
