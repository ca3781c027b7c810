package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"4000"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:4000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	CodeLength      int           `env:"CODE_LENGTH" envDefault:"5"`
	PublicListLimit int           `env:"PUBLIC_LIST_LIMIT" envDefault:"5"`
	ReconnectGrace  time.Duration `env:"RECONNECT_GRACE" envDefault:"2m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"15s"`
	IntentRate      float64       `env:"INTENT_RATE" envDefault:"10"`
	IntentBurst     int           `env:"INTENT_BURST" envDefault:"20"`
	ExportEnabled   bool          `env:"EXPORT_ENABLED" envDefault:"false"`
	ExportFile      string        `env:"EXPORT_FILE" envDefault:"./whowhatwhere-results.txt"`
}

// FromEnv loads configuration from environment variables and clamps values
// into their usable ranges.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.CodeLength < 4 {
		c.CodeLength = 4
	}
	if c.CodeLength > 6 {
		c.CodeLength = 6
	}
	if c.PublicListLimit <= 0 {
		c.PublicListLimit = 5
	}
	if c.IntentBurst <= 0 {
		c.IntentBurst = 1
	}
	if c.ReconnectGrace < 0 {
		c.ReconnectGrace = 0
	}
}
