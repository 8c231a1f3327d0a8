package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	defaultTokenTTL            = 30 * time.Minute
	defaultProgressionCacheTTL = 10 * time.Minute
	defaultPasswordHashCost    = 10
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// browser origins allowed to call the API, "*" allows any
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage: postgres | memory
	Storage        string `toml:"storage"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// redis, used for the progression cache; leave host empty to disable caching
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// auth
	TokenTTL         Duration `toml:"token_ttl"`
	PasswordHashCost int      `toml:"password_hash_cost"`
	// analytics
	ProgressionCacheTTL Duration `toml:"progression_cache_ttl"`
	ProgressionL1Size   int      `toml:"progression_l1_size"`
}

// Secrets are never read from the config file.
type Secrets struct {
	TokenSecret      string `env:"GYMTRACKER_TOKEN_SECRET, required"`
	PostgresPassword string `env:"GYMTRACKER_POSTGRES_PASS"`
	RedisPassword    string `env:"GYMTRACKER_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombAPIKey  string `env:"HONEYCOMB_API_KEY"`
}

// Duration lets TOML carry values like "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration [%s]: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}
	return fromToml(&t, env)
}

// Parse is like Load, but reads the TOML from a string.
func Parse(env, tomlContent string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(tomlContent, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage == "" {
		c.Storage = StoragePostgres
	}
	if c.TokenTTL.Duration == 0 {
		c.TokenTTL.Duration = defaultTokenTTL
	}
	if c.ProgressionCacheTTL.Duration == 0 {
		c.ProgressionCacheTTL.Duration = defaultProgressionCacheTTL
	}
	if c.PasswordHashCost == 0 {
		c.PasswordHashCost = defaultPasswordHashCost
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return errors.New("postgres storage needs postgres_host, postgres_port and postgres_db_name")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(ctx, &s); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}

// LoadSecretsFrom reads the secrets from the given lookuper, e.g. envconfig.MapLookuper in tests.
func LoadSecretsFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}
