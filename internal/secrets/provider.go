// Package secrets resolves backend API credentials and the session token
// secret from either environment variables or Azure Key Vault, depending on
// the deployment environment.
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Source selects where secrets come from.
type Source string

const (
	// SourceEnvironment reads secrets from environment variables.
	SourceEnvironment Source = "environment"
	// SourceVault reads secrets from Azure Key Vault.
	SourceVault Source = "vault"
	// SourceAuto picks environment in development and vault otherwise.
	SourceAuto Source = "auto"
)

// Provider hides the difference between environment-variable and Key Vault
// secret resolution behind one lookup interface.
type Provider struct {
	source      Source
	vault       *VaultClient
	logger      *zap.Logger
	environment string
}

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	Source       Source
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewProvider builds a provider, resolving the auto source against the
// deployment environment.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := cfg.Source
	if source == SourceAuto {
		switch cfg.Environment {
		case "development", "local", "":
			source = SourceEnvironment
		default:
			source = SourceVault
		}
		logger.Info("resolved secret source",
			zap.String("source", string(source)),
			zap.String("environment", cfg.Environment),
		)
	}

	p := &Provider{
		source:      source,
		logger:      logger,
		environment: cfg.Environment,
	}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	return p, nil
}

// GetSecret resolves a secret by name. In environment mode the name is the
// environment variable; in vault mode it is the Key Vault secret name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv resolves a secret, letting an explicitly set environment
// variable override the configured source.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		return value, nil
	}
	return p.GetSecret(ctx, name)
}

// GetSecretWithDefault resolves a secret, falling back to def on any
// failure.
func (p *Provider) GetSecretWithDefault(ctx context.Context, name, def string) string {
	value, err := p.GetSecret(ctx, name)
	if err != nil {
		p.logger.Debug("using default value for secret", zap.String("secret_name", name))
		return def
	}
	return value
}

// Source returns the resolved secret source.
func (p *Provider) Source() Source { return p.source }

// IsVaultEnabled reports whether secrets come from Key Vault.
func (p *Provider) IsVaultEnabled() bool { return p.source == SourceVault }
