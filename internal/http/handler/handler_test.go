package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/auth"
	"github.com/straye-as/erp-gateway/internal/config"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
	"github.com/straye-as/erp-gateway/internal/http/handler"
	"github.com/straye-as/erp-gateway/internal/http/middleware"
	"github.com/straye-as/erp-gateway/internal/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAdapter is a canned backend keyed on magic entity ids: "missing" is not
// found, "ratelimited" trips the backend rate limit, "boom" is a generic
// backend failure. Everything else returns a fixed customer.
type stubAdapter struct {
	name string
	sess *adapter.SessionContext
}

func init() {
	adapter.Register("httpstub", func(cfg adapter.Config, _ *convert.Registry, _ *zap.Logger, sess *adapter.SessionContext) (adapter.Adapter, error) {
		return &stubAdapter{name: cfg.AdapterName, sess: sess}, nil
	})
}

func (s *stubAdapter) Name() string                      { return s.name }
func (s *stubAdapter) Connect(ctx context.Context) error { return nil }
func (s *stubAdapter) Close() error                      { return nil }

func (s *stubAdapter) entity(entityType, entityID string) (domain.Entity, error) {
	switch entityID {
	case "missing":
		return nil, &domain.EntityNotFoundError{EntityType: entityType, EntityID: entityID, System: s.name}
	case "ratelimited":
		return nil, &domain.RateLimitError{System: s.name, RetryAfter: 90}
	case "boom":
		return nil, domain.NewAdapterError("backend exploded", s.name, fmt.Errorf("boom"))
	}
	return &domain.Customer{
		ID:       entityID,
		Name:     "Acme Corporation",
		Status:   "active",
		Metadata: domain.Metadata{SourceSystem: s.name, SourceID: entityID},
	}, nil
}

func (s *stubAdapter) GetByID(ctx context.Context, entityType, entityID string) (domain.Entity, error) {
	return s.entity(entityType, entityID)
}

func (s *stubAdapter) Search(ctx context.Context, entityType string, filters map[string]any, page, pageSize int) (*domain.SearchResult, error) {
	if _, ok := filters["boom"]; ok {
		return nil, domain.NewAdapterError("backend exploded", s.name, fmt.Errorf("boom"))
	}
	item, _ := s.entity(entityType, "CUST-1")
	return &domain.SearchResult{
		Total:      1,
		EntityType: entityType,
		Items:      []domain.Entity{item},
	}, nil
}

func (s *stubAdapter) Create(ctx context.Context, entityType string, data map[string]any) (domain.Entity, error) {
	id, _ := data["id"].(string)
	if id == "" {
		id = "NEW-1"
	}
	return s.entity(entityType, id)
}

func (s *stubAdapter) Update(ctx context.Context, entityType, entityID string, data map[string]any) (domain.Entity, error) {
	return s.entity(entityType, entityID)
}

func (s *stubAdapter) Delete(ctx context.Context, entityType, entityID string) (bool, error) {
	if entityID == "missing" {
		return false, &domain.EntityNotFoundError{EntityType: entityType, EntityID: entityID, System: s.name}
	}
	return true, nil
}

func (s *stubAdapter) Authenticate(ctx context.Context, username, password string) (*adapter.AuthResult, error) {
	if username != "alice" || password != "s3cret" {
		return nil, &domain.AuthenticationError{Message: "invalid credentials", System: s.name}
	}
	return &adapter.AuthResult{
		SessionID: "sess-1",
		Headers:   map[string]string{"Authorization": "Bearer backend-tok"},
	}, nil
}

// newTestHandler wires the full router over the stub backend.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop()

	configs := map[string]adapter.Config{
		"erp_next": {
			AdapterName: "erp_next",
			AdapterType: "httpstub",
			BaseURL:     "http://stub",
			AuthMethod:  adapter.AuthMethodToken,
		},
		"cloud_erp": {
			AdapterName:  "cloud_erp",
			AdapterType:  "httpstub",
			BaseURL:      "http://stub",
			AuthEndpoint: "/api/auth/login",
		},
	}

	registry, err := adapter.NewRegistry(configs, convert.NewRegistry(log), log)
	require.NoError(t, err)
	t.Cleanup(registry.CloseAll)

	sessions := auth.NewManager(registry, log, 0)
	tokens := auth.NewTokenIssuer("test-secret", 0)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "test", Environment: "development"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	rt := router.NewRouter(
		cfg,
		log,
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewEntityHandler(registry, sessions, tokens, log),
		handler.NewAuthHandler(sessions, tokens, log),
		handler.NewHealthHandler(registry, log),
	)
	return rt.Setup()
}
