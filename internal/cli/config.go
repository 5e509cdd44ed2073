package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/syssam/typedsql/dialect"
)

// EnvPrefix prefixes the environment variables read by LoadConfig.
const EnvPrefix = "TYPEDSQL_"

// Config is the configuration shared by the commands. Values come from the
// environment and are overridden by flags.
type Config struct {
	// Definition is the path of the YAML schema definition.
	Definition string `env:"CONFIG" envDefault:"schema.yaml"`
	Out        string `env:"OUT"`
	Package    string `env:"PACKAGE"`
	Workers    int    `env:"WORKERS"`

	Dialect string `env:"DIALECT" envDefault:"postgres"`
	DSN     string `env:"DSN"`
	// Schema is the database schema inspected by validate and inspect.
	Schema string `env:"SCHEMA"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads the TYPEDSQL_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !dialect.Supported(c.Dialect) {
		return fmt.Errorf("unsupported dialect %q: use %s, %s or %s", c.Dialect, dialect.Postgres, dialect.MySQL, dialect.SQLite)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// NewLogger returns a logger writing to w in the given format (text or json)
// from the given level on.
func NewLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q: use text or json", format)
	}
}
