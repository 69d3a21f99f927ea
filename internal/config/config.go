// Package config loads server configuration from environment variables.
//
// WHY A STRUCT AND NOT os.Getenv SCATTERED AROUND?
// All knobs live in one place with their defaults next to them, main.go gets
// a single typed value to pass down, and tests can build a Config literal
// without touching the environment at all. Parsing is delegated to
// caarlos0/env, which fills the struct from the tags below.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Port the gateway listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// BackendURL is the base URL of the TubeTip REST backend, including
	// any path prefix (e.g. http://localhost:8000/api/v1).
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8000/api/v1"`

	// TicketSecret signs the browser's session-ticket cookie. Must be at
	// least 16 characters; generate with: openssl rand -hex 32
	TicketSecret string `env:"TICKET_SECRET"`

	// DBPath is the SQLite file holding gateway session records.
	// Use ":memory:" for an ephemeral store.
	DBPath string `env:"DB_PATH" envDefault:"data/tubetip.db"`

	// TemplateDir is where the HTML page templates live.
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.BackendURL == "" {
		return errors.New("BACKEND_URL must not be empty")
	}
	if len(c.TicketSecret) < 16 {
		return errors.New("TICKET_SECRET must be at least 16 characters")
	}
	return nil
}
