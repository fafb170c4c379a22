// Package auth manages caller sessions against password-auth backends and
// the signed tokens that reference them. Sessions live in memory; the
// gateway itself is stateless across restarts.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/domain"
)

// DefaultSessionTTL is how long a backend session stays valid after login.
const DefaultSessionTTL = time.Hour

// Session is one caller's authenticated state against one backend.
type Session struct {
	AdapterName string            `json:"adapter_name"`
	SessionID   string            `json:"session_id"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Active      bool              `json:"active"`
}

// Expired reports whether the session's lifetime has passed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

type sessionKey struct {
	callerID    string
	adapterName string
}

// Manager tracks sessions keyed by (caller, backend). Reads vastly outnumber
// writes, so the map sits behind an RWMutex.
type Manager struct {
	registry *adapter.Registry
	logger   *zap.Logger
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[sessionKey]*Session
}

// NewManager builds a session manager over the adapter registry.
func NewManager(registry *adapter.Registry, logger *zap.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		registry: registry,
		logger:   logger.Named("auth"),
		ttl:      ttl,
		sessions: make(map[sessionKey]*Session),
	}
}

// Authenticate logs the caller in against a password-auth backend and stores
// the resulting session, replacing any previous session for the same pair.
func (m *Manager) Authenticate(ctx context.Context, callerID, adapterName, username, password string) (*Session, error) {
	method, err := m.registry.AuthMethod(adapterName)
	if err != nil {
		return nil, err
	}
	if method != adapter.AuthMethodPassword {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("adapter %s does not use password authentication", adapterName),
		}
	}

	a, err := m.registry.Get(ctx, adapterName, nil)
	if err != nil {
		return nil, err
	}

	result, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &domain.AuthenticationError{
			Message: fmt.Sprintf("authentication failed with %s", adapterName),
			System:  adapterName,
		}
	}

	session := Session{
		AdapterName: adapterName,
		SessionID:   result.SessionID,
		Cookies:     result.Cookies,
		Headers:     result.Headers,
		ExpiresAt:   time.Now().Add(m.ttl),
		Active:      true,
	}

	m.mu.Lock()
	stored := session
	m.sessions[sessionKey{callerID, adapterName}] = &stored
	m.mu.Unlock()

	m.logger.Info("created backend session",
		zap.String("caller_id", callerID),
		zap.String("adapter", adapterName),
		zap.String("session_id", session.SessionID),
	)
	return &session, nil
}

// GetSession returns a copy of the stored session for a (caller, backend)
// pair; the stored state never leaves the mutex. Expired sessions are
// returned deactivated rather than removed, so the caller can distinguish
// "expired" from "never logged in".
func (m *Manager) GetSession(callerID, adapterName string) (*Session, bool) {
	key := sessionKey{callerID, adapterName}

	m.mu.RLock()
	session, ok := m.sessions[key]
	var snapshot Session
	if ok {
		snapshot = *session
	}
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if snapshot.Expired() && snapshot.Active {
		m.mu.Lock()
		session.Active = false
		m.mu.Unlock()
		snapshot.Active = false
		m.logger.Debug("session expired",
			zap.String("caller_id", callerID),
			zap.String("adapter", adapterName),
		)
	}
	return &snapshot, true
}

// active returns the session only when present and still active.
func (m *Manager) active(callerID, adapterName string) (*Session, error) {
	session, ok := m.GetSession(callerID, adapterName)
	if !ok || !session.Active {
		return nil, &domain.AuthenticationError{
			Message: fmt.Sprintf("no active session for adapter %s", adapterName),
			System:  adapterName,
		}
	}
	return session, nil
}

// AuthHeaders returns the headers for an active session.
func (m *Manager) AuthHeaders(callerID, adapterName string) (map[string]string, error) {
	session, err := m.active(callerID, adapterName)
	if err != nil {
		return nil, err
	}
	return session.Headers, nil
}

// AuthCookies returns the cookies for an active session.
func (m *Manager) AuthCookies(callerID, adapterName string) (map[string]string, error) {
	session, err := m.active(callerID, adapterName)
	if err != nil {
		return nil, err
	}
	return session.Cookies, nil
}

// SessionContext packages an active session as adapter credential material.
func (m *Manager) SessionContext(callerID, adapterName string) (*adapter.SessionContext, error) {
	session, err := m.active(callerID, adapterName)
	if err != nil {
		return nil, err
	}
	return &adapter.SessionContext{
		SessionID: session.SessionID,
		Headers:   session.Headers,
		Cookies:   session.Cookies,
	}, nil
}

// SessionContextByID resolves a raw session id against a backend, for
// callers that present the id directly instead of a signed token.
func (m *Manager) SessionContextByID(adapterName, sessionID string) (*adapter.SessionContext, error) {
	m.mu.RLock()
	var found *Session
	for key, session := range m.sessions {
		if key.adapterName == adapterName && session.SessionID == sessionID {
			snapshot := *session
			found = &snapshot
			break
		}
	}
	m.mu.RUnlock()

	if found == nil || found.Expired() || !found.Active {
		return nil, &domain.AuthenticationError{
			Message: fmt.Sprintf("no active session for adapter %s", adapterName),
			System:  adapterName,
		}
	}
	return &adapter.SessionContext{
		SessionID: found.SessionID,
		Headers:   found.Headers,
		Cookies:   found.Cookies,
	}, nil
}

// Invalidate deactivates a session and releases its adapter instance.
// Returns false when no session exists for the pair; repeating the call is
// harmless.
func (m *Manager) Invalidate(callerID, adapterName string) bool {
	m.mu.Lock()
	session, ok := m.sessions[sessionKey{callerID, adapterName}]
	if ok {
		session.Active = false
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	m.registry.ReleaseSession(adapterName, session.SessionID)
	m.logger.Info("invalidated backend session",
		zap.String("caller_id", callerID),
		zap.String("adapter", adapterName),
	)
	return true
}

// SweepExpired removes expired and deactivated sessions and releases their
// adapter instances. Returns the number of sessions removed.
func (m *Manager) SweepExpired() int {
	type victim struct {
		key     sessionKey
		session *Session
	}
	var victims []victim

	m.mu.Lock()
	for key, session := range m.sessions {
		if session.Expired() || !session.Active {
			victims = append(victims, victim{key, session})
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, v := range victims {
		m.registry.ReleaseSession(v.key.adapterName, v.session.SessionID)
	}

	if len(victims) > 0 {
		m.logger.Info("swept expired sessions", zap.Int("removed", len(victims)))
	}
	return len(victims)
}
