// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for session tokens. Required; startup fails without it.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim set on issued tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTTTL is the session token lifetime (e.g. "24h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// CleanupInterval is how often the expired-revocation sweep runs (e.g. "1h").
	CleanupInterval string `mapstructure:"CLEANUP_INTERVAL"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" when empty.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// OTLPEndpoint is the OTLP collector address for metrics/traces; telemetry is a no-op when empty.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "checador-api")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CLEANUP_INTERVAL", "1h")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	// The signing secret is the root of token trust; refusing to start beats
	// issuing tokens signed with an empty key.
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Origins splits CORSOrigins into a list. Returns ["*"] when unset.
func (c *Config) Origins() []string {
	if strings.TrimSpace(c.CORSOrigins) == "" {
		return []string{"*"}
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SweepInterval parses CleanupInterval as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.CleanupInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
