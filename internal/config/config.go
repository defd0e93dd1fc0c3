package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, with an optional .env file for
// local development.
type Config struct {
	Port string `envconfig:"PORT" default:"5000"`

	// DBFile is the JSON backing file for the catalog. Ignored when
	// DatabaseURL selects the Postgres store instead.
	DBFile      string `envconfig:"CATALOG_DB_FILE" default:"products-db.json"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// AdminPasswordHash is a bcrypt hash; empty leaves the admin
	// console unprotected.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
	SessionSecret     string `envconfig:"SESSION_SECRET" default:"dev-secret"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
