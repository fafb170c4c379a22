package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

// Constructor builds an adapter instance from one configuration record. sess
// is nil for shared instances and carries per-caller credentials for
// session-scoped instances.
type Constructor func(cfg Config, converters *convert.Registry, logger *zap.Logger, sess *SessionContext) (Adapter, error)

var (
	constructorsMu sync.RWMutex
	constructors   = make(map[string]Constructor)
)

// Register makes an adapter constructor available under an adapter type.
// Backend packages call it from init, so importing a backend package is what
// enables its adapter type.
func Register(adapterType string, ctor Constructor) {
	constructorsMu.Lock()
	defer constructorsMu.Unlock()
	if _, dup := constructors[adapterType]; dup {
		panic("adapter: Register called twice for type " + adapterType)
	}
	constructors[adapterType] = ctor
}

func constructor(adapterType string) (Constructor, bool) {
	constructorsMu.RLock()
	defer constructorsMu.RUnlock()
	ctor, ok := constructors[adapterType]
	return ctor, ok
}

// Registry resolves backend names to adapter instances. Token-auth backends
// (and password-auth calls without session context) share one cached
// instance per backend; calls with session context get a per-session
// instance tracked under the session id and never shared between callers.
type Registry struct {
	configs    map[string]Config
	converters *convert.Registry
	logger     *zap.Logger

	mu       sync.Mutex
	shared   map[string]Adapter
	sessions map[string]Adapter
}

// NewRegistry builds a registry over the given configuration records. Every
// record's adapter type must have a registered constructor.
func NewRegistry(configs map[string]Config, converters *convert.Registry, logger *zap.Logger) (*Registry, error) {
	for name, cfg := range configs {
		if _, ok := constructor(cfg.AdapterType); !ok {
			return nil, &domain.ConfigurationError{
				Message: fmt.Sprintf("adapter %s has unknown adapter_type: %s", name, cfg.AdapterType),
			}
		}
	}
	return &Registry{
		configs:    configs,
		converters: converters,
		logger:     logger.Named("adapter"),
		shared:     make(map[string]Adapter),
		sessions:   make(map[string]Adapter),
	}, nil
}

// Config returns the configuration record for a backend name.
func (r *Registry) Config(name string) (Config, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return Config{}, &domain.ConfigurationError{
			Message: fmt.Sprintf("adapter not found: %s", name),
		}
	}
	return cfg, nil
}

// AuthMethod returns the effective auth method for a backend name.
func (r *Registry) AuthMethod(name string) (string, error) {
	cfg, err := r.Config(name)
	if err != nil {
		return "", err
	}
	return cfg.ResolvedAuthMethod(), nil
}

// Names returns the configured backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns an adapter for the named backend. With a nil session context
// the shared instance is returned, created and connected on first use. With
// a session context a fresh instance bound to those credentials is created
// (or reused for the same session id).
func (r *Registry) Get(ctx context.Context, name string, sess *SessionContext) (Adapter, error) {
	cfg, err := r.Config(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess == nil {
		if a, ok := r.shared[name]; ok {
			return a, nil
		}
		a, err := r.build(cfg, nil)
		if err != nil {
			return nil, err
		}
		if err := a.Connect(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		r.shared[name] = a
		r.logger.Info("created shared adapter instance", zap.String("adapter", name))
		return a, nil
	}

	key := name + ":" + sess.SessionID
	if a, ok := r.sessions[key]; ok {
		return a, nil
	}
	a, err := r.build(cfg, sess)
	if err != nil {
		return nil, err
	}
	r.sessions[key] = a
	r.logger.Info("created session-scoped adapter instance",
		zap.String("adapter", name),
		zap.String("session_id", sess.SessionID),
	)
	return a, nil
}

// ReleaseSession closes and forgets every instance bound to a session id.
// Idempotent.
func (r *Registry) ReleaseSession(name, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := name + ":" + sessionID
	if a, ok := r.sessions[key]; ok {
		if err := a.Close(); err != nil {
			r.logger.Warn("failed to close session adapter", zap.String("adapter", name), zap.Error(err))
		}
		delete(r.sessions, key)
	}
}

// CloseAll closes the shared pool and every tracked session instance.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, a := range r.shared {
		if err := a.Close(); err != nil {
			r.logger.Warn("failed to close adapter", zap.String("adapter", name), zap.Error(err))
		}
	}
	for key, a := range r.sessions {
		if err := a.Close(); err != nil {
			r.logger.Warn("failed to close session adapter", zap.String("key", key), zap.Error(err))
		}
	}
	r.shared = make(map[string]Adapter)
	r.sessions = make(map[string]Adapter)
}

func (r *Registry) build(cfg Config, sess *SessionContext) (Adapter, error) {
	ctor, ok := constructor(cfg.AdapterType)
	if !ok {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("adapter %s has unknown adapter_type: %s", cfg.AdapterName, cfg.AdapterType),
		}
	}
	return ctor(cfg, r.converters, r.logger, sess)
}
