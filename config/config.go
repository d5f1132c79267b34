// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server reads from the environment. Flags
// in main override the host, port, and debug settings.
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8080"`

	Debug bool `env:"DEBUG" envDefault:"false"`

	// SnapshotPath is where the session snapshot document is written.
	// Empty disables persistence entirely.
	SnapshotPath     string        `env:"SNAPSHOT_PATH" envDefault:"data/snapshot.json"`
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`

	// FinishedGrace is how long a finished game stays addressable so both
	// clients can render the final state before it is evicted.
	FinishedGrace time.Duration `env:"FINISHED_GRACE" envDefault:"5s"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokAuthtoken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
