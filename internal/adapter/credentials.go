package adapter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/secrets"
)

// ResolveCredentials fills in missing API credentials on backend configs from
// the secrets provider. The secret names follow the backend name:
// "erp_next" resolves "erp-next-api-key"/"erp-next-api-secret", overridable
// through ERP_NEXT_API_KEY/ERP_NEXT_API_SECRET. Backends that authenticate
// with caller credentials need no static key, so unresolvable secrets are
// logged and skipped rather than fatal; a token-auth backend without
// credentials still fails when its first instance is built.
func ResolveCredentials(ctx context.Context, configs map[string]Config, provider *secrets.Provider, logger *zap.Logger) {
	for name, cfg := range configs {
		slug := strings.ReplaceAll(name, "_", "-")
		envBase := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

		if cfg.APIKey == "" {
			key, err := provider.GetSecretOrEnv(ctx, slug+"-api-key", envBase+"_API_KEY")
			if err == nil {
				cfg.APIKey = key
			} else if cfg.ResolvedAuthMethod() == AuthMethodToken {
				logger.Warn("no API key resolved for token-auth backend",
					zap.String("adapter", name), zap.Error(err))
			}
		}

		if cfg.APISecret == "" {
			secret, err := provider.GetSecretOrEnv(ctx, slug+"-api-secret", envBase+"_API_SECRET")
			if err == nil {
				cfg.APISecret = secret
			} else if cfg.ResolvedAuthMethod() == AuthMethodToken {
				logger.Warn("no API secret resolved for token-auth backend",
					zap.String("adapter", name), zap.Error(err))
			}
		}

		configs[name] = cfg
	}
}
