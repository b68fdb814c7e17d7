package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// loadEnv overlays cfg with QUICKFLIP_* variables. Unset variables keep the
// value from earlier sources.
func loadEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}
