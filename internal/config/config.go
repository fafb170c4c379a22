package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/secrets"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Backends  BackendsConfig
	Session   SessionConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// BackendsConfig locates the backend configuration records.
type BackendsConfig struct {
	// ConfigDir is the directory of per-backend JSON records
	ConfigDir string
}

// SessionConfig controls backend session lifetimes and the signed tokens
// that reference them.
type SessionConfig struct {
	// TTL is the backend session lifetime in seconds
	TTL int
	// SweepSchedule is the cron expression for the expired-session sweep
	SweepSchedule string
	// TokenSecret signs session tokens; resolved from secrets when empty
	TokenSecret string
	// TokenSecretName is the secret name to resolve TokenSecret from
	TokenSecretName string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment",
	// "vault", or "auto" (environment in development, vault otherwise)
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// TTLDuration returns the session TTL as a duration.
func (s *SessionConfig) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}

// ReadTimeoutDuration returns the read timeout as a duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns the per-request timeout as a duration.
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load reads configuration from the config file and environment variables.
// Secrets are not resolved here; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override the config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Session.TokenSecret == "" {
		cfg.Session.TokenSecret = v.GetString("SESSION_TOKEN_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the session token secret
// from the configured secret source. Backend API credentials are resolved
// separately when the adapter configs are loaded.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, *secrets.Provider, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, err
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.Source(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if cfg.Session.TokenSecret == "" {
		secret, err := provider.GetSecretOrEnv(ctx, cfg.Session.TokenSecretName, "SESSION_TOKEN_SECRET")
		if err != nil {
			if cfg.App.Environment == "staging" || cfg.App.Environment == "production" {
				return nil, nil, fmt.Errorf("failed to resolve session token secret: %w", err)
			}
			// Development convenience: issued tokens stop working on restart
			secret = uuid.NewString()
			logger.Warn("session token secret not configured, generated an ephemeral one")
		}
		cfg.Session.TokenSecret = secret
	}

	return cfg, provider, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ERP Gateway")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Backend config defaults
	v.SetDefault("backends.configDir", "./config/adapters")

	// Session defaults
	v.SetDefault("session.ttl", 3600) // 1 hour
	v.SetDefault("session.sweepSchedule", "@every 5m")
	v.SetDefault("session.tokenSecretName", "session-token-secret")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Session-ID", "X-Adapter-Name", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Retry-After"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/adapters"})
}
