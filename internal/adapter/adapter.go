// Package adapter defines the backend adapter contract and the registry that
// creates, caches and closes adapter instances from backend configuration
// records. Backend implementations register their constructor by adapter
// type, driver style, and are selected by configuration at runtime.
package adapter

import (
	"context"

	"github.com/straye-as/erp-gateway/internal/domain"
)

// Adapter is the uniform operation surface over one configured ERP backend.
// Implementations convert between backend-native payloads and the
// standardized schema and return only the typed errors from the domain
// package; EntityNotFoundError and AuthenticationError pass through every
// operation unchanged.
type Adapter interface {
	// Name returns the configured backend name (adapter_name).
	Name() string

	// Connect verifies connectivity. Called once when a shared instance is
	// created.
	Connect(ctx context.Context) error

	// GetByID fetches a single entity in standardized form.
	GetByID(ctx context.Context, entityType, entityID string) (domain.Entity, error)

	// Search runs a filtered, paginated query. page is 1-indexed.
	Search(ctx context.Context, entityType string, filters map[string]any, page, pageSize int) (*domain.SearchResult, error)

	// Create writes a new entity and returns the authoritative server state
	// via a read-back of the created record.
	Create(ctx context.Context, entityType string, data map[string]any) (domain.Entity, error)

	// Update modifies an entity and returns the authoritative server state.
	Update(ctx context.Context, entityType, entityID string, data map[string]any) (domain.Entity, error)

	// Delete removes an entity. A missing entity surfaces as
	// EntityNotFoundError, never as a silent false.
	Delete(ctx context.Context, entityType, entityID string) (bool, error)

	// Authenticate performs a credential login against the backend. Only
	// meaningful for password-auth backends; token-auth backends return a
	// ConfigurationError.
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)

	// Close releases the adapter's transport resources.
	Close() error
}

// AuthResult carries what a backend handed back from a credential login.
// The session manager turns it into a tracked session.
type AuthResult struct {
	SessionID string
	Headers   map[string]string
	Cookies   map[string]string
}

// SessionContext is the per-caller credential material attached to a
// password-auth adapter instance. Nil means no session context: the adapter
// runs on its configured static credentials.
type SessionContext struct {
	SessionID string
	Headers   map[string]string
	Cookies   map[string]string
}
