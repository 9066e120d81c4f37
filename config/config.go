package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"teamforge/internal/membership"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration, read from the environment.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Supabase   SupabaseConfig
	Log        LogConfig
	Visibility membership.Policy `env:"VISIBILITY_POLICY" envDefault:"lenient"`
}

// ServerConfig holds the HTTP and gRPC listener settings.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GRPCPort        string        `env:"GRPC_PORT" envDefault:"9090"`
	AllowOrigins    string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL" envDefault:"15s"`
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	Driver     string        `env:"STORE_DRIVER" envDefault:"supabase"`
	SQLitePath string        `env:"SQLITE_PATH" envDefault:"teamforge.db"`
	Timeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

// SupabaseConfig holds the Supabase project credentials.
type SupabaseConfig struct {
	URL        string `env:"SUPABASE_URL"`
	ServiceKey string `env:"SUPABASE_SERVICE_KEY"`
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom is Load over an explicit set of variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set for the supabase store driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the sqlite store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if !c.Visibility.Valid() {
		return fmt.Errorf("unknown VISIBILITY_POLICY %q", c.Visibility)
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}
