// Package config parses service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct pointer, using
// `env` tags for the mapping. Typed fields such as time.Duration and string
// slices parse from their usual text forms.
//
// Example:
//
//	type Config struct {
//	    SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
//	    Provider   string        `env:"PAYMENT_PROVIDER" envDefault:"mock"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment config: %w", err)
	}
	return nil
}
