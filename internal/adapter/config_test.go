package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/domain"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "erp_next.json", `{
		"adapter_name": "erp_next",
		"adapter_type": "erpnext",
		"base_url": "https://erp.example.com",
		"api_key": "key",
		"api_secret": "secret"
	}`)
	writeConfig(t, dir, "cloud_erp.json", `{
		"adapter_name": "cloud_erp",
		"adapter_type": "clouderp",
		"base_url": "https://cloud.example.com",
		"auth_endpoint": "/api/auth/login"
	}`)
	writeConfig(t, dir, "README.md", "not a config")

	configs, err := adapter.LoadConfigDir(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "https://erp.example.com", configs["erp_next"].BaseURL)
	assert.Equal(t, "/api/auth/login", configs["cloud_erp"].AuthEndpoint)
}

func TestLoadConfigDirRejectsInvalid(t *testing.T) {
	t.Run("missing base_url", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "bad.json", `{"adapter_name": "x", "adapter_type": "erpnext"}`)

		_, err := adapter.LoadConfigDir(dir)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("duplicate adapter name", func(t *testing.T) {
		dir := t.TempDir()
		record := `{"adapter_name": "x", "adapter_type": "erpnext", "base_url": "https://a"}`
		writeConfig(t, dir, "a.json", record)
		writeConfig(t, dir, "b.json", record)

		_, err := adapter.LoadConfigDir(dir)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "broken.json", `{"adapter_name":`)

		_, err := adapter.LoadConfigDir(dir)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestResolvedAuthMethod(t *testing.T) {
	tests := []struct {
		name string
		cfg  adapter.Config
		want string
	}{
		{"explicit method wins", adapter.Config{AuthMethod: "password"}, adapter.AuthMethodPassword},
		{"auth endpoint implies password", adapter.Config{AuthEndpoint: "/login"}, adapter.AuthMethodPassword},
		{"default is token", adapter.Config{APIKey: "k"}, adapter.AuthMethodToken},
		{"explicit token despite endpoint", adapter.Config{AuthMethod: "token", AuthEndpoint: "/login"}, adapter.AuthMethodToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvedAuthMethod())
		})
	}
}

func TestExternalEntityType(t *testing.T) {
	cfg := adapter.Config{EntityMap: map[string]string{"product": "Item"}}

	assert.Equal(t, "Item", cfg.ExternalEntityType("product"))
	assert.Equal(t, "Customer", cfg.ExternalEntityType("customer"))
}

func TestEndpointExpansion(t *testing.T) {
	cfg := adapter.Config{Endpoints: map[string]string{
		"get_by_id": "/custom/{entity_type}/by-id/{entity_id}",
	}}

	assert.Equal(t, "/custom/Customer/by-id/CUST-1",
		cfg.Endpoint("get_by_id", "/fallback", "Customer", "CUST-1"))
	assert.Equal(t, "/fallback/Customer",
		cfg.Endpoint("search", "/fallback/{entity_type}", "Customer", ""))
}
