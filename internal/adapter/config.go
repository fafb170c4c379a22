package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/straye-as/erp-gateway/internal/domain"
)

// Auth methods a backend configuration can declare or imply.
const (
	AuthMethodToken    = "token"
	AuthMethodPassword = "password"
)

// Config is one backend configuration record, loaded from a JSON file in the
// adapters config directory.
type Config struct {
	AdapterName  string            `json:"adapter_name"`
	AdapterType  string            `json:"adapter_type"`
	BaseURL      string            `json:"base_url"`
	APIKey       string            `json:"api_key,omitempty"`
	APISecret    string            `json:"api_secret,omitempty"`
	AuthEndpoint string            `json:"auth_endpoint,omitempty"`
	AuthMethod   string            `json:"auth_method,omitempty"`
	EntityMap    map[string]string `json:"entity_map,omitempty"`
	Endpoints    map[string]string `json:"endpoints,omitempty"`
	// ItemsKey names the list-response field holding the item rows, for
	// backends whose list shape would otherwise need probing.
	ItemsKey string `json:"items_key,omitempty"`
}

// Validate checks the fields every record must carry.
func (c *Config) Validate() error {
	switch {
	case c.AdapterName == "":
		return &domain.ConfigurationError{Message: "adapter config missing adapter_name"}
	case c.AdapterType == "":
		return &domain.ConfigurationError{Message: fmt.Sprintf("adapter %s missing adapter_type", c.AdapterName)}
	case c.BaseURL == "":
		return &domain.ConfigurationError{Message: fmt.Sprintf("adapter %s missing base_url", c.AdapterName)}
	}
	return nil
}

// ResolvedAuthMethod returns the effective auth method. An explicit
// auth_method wins; otherwise a configured auth endpoint implies password
// auth and everything else defaults to token auth.
func (c *Config) ResolvedAuthMethod() string {
	if c.AuthMethod != "" {
		return c.AuthMethod
	}
	if c.AuthEndpoint != "" {
		return AuthMethodPassword
	}
	return AuthMethodToken
}

// ExternalEntityType maps a standardized entity type to the backend's native
// name, falling back to the capitalized standardized name.
func (c *Config) ExternalEntityType(entityType string) string {
	if ext, ok := c.EntityMap[entityType]; ok {
		return ext
	}
	if entityType == "" {
		return entityType
	}
	return strings.ToUpper(entityType[:1]) + entityType[1:]
}

// Endpoint expands the URL template for an operation, substituting the
// {entity_type} and {entity_id} placeholders. Falls back to def when the
// operation has no configured template.
func (c *Config) Endpoint(operation, def, entityType, entityID string) string {
	template, ok := c.Endpoints[operation]
	if !ok {
		template = def
	}
	path := strings.ReplaceAll(template, "{entity_type}", entityType)
	return strings.ReplaceAll(path, "{entity_id}", entityID)
}

// LoadConfigDir reads every *.json file in dir as one backend configuration
// record, keyed by adapter name. Duplicate names and invalid records fail
// the whole load.
func LoadConfigDir(dir string) (map[string]Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("failed to read adapter config directory %s: %v", dir, err),
		}
	}

	configs := make(map[string]Config)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, &domain.ConfigurationError{
				Message: fmt.Sprintf("failed to read adapter config %s: %v", entry.Name(), err),
			}
		}

		var cfg Config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, &domain.ConfigurationError{
				Message: fmt.Sprintf("invalid adapter config %s: %v", entry.Name(), err),
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, exists := configs[cfg.AdapterName]; exists {
			return nil, &domain.ConfigurationError{
				Message: fmt.Sprintf("duplicate adapter name: %s", cfg.AdapterName),
			}
		}

		configs[cfg.AdapterName] = cfg
	}

	return configs, nil
}
