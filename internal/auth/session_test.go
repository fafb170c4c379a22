package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/auth"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

// loginAdapter accepts one credential pair and hands out fixed session
// material.
type loginAdapter struct {
	adapter.Adapter
	name string
}

func (f *loginAdapter) Name() string                      { return f.name }
func (f *loginAdapter) Connect(ctx context.Context) error { return nil }
func (f *loginAdapter) Close() error                      { return nil }

func (f *loginAdapter) Authenticate(ctx context.Context, username, password string) (*adapter.AuthResult, error) {
	if username != "alice" || password != "s3cret" {
		return nil, &domain.AuthenticationError{Message: "bad credentials", System: f.name}
	}
	return &adapter.AuthResult{
		SessionID: "sess-1",
		Headers:   map[string]string{"Authorization": "Bearer tok"},
		Cookies:   map[string]string{"erp_session": "abc"},
	}, nil
}

func init() {
	adapter.Register("loginstub", func(cfg adapter.Config, _ *convert.Registry, _ *zap.Logger, _ *adapter.SessionContext) (adapter.Adapter, error) {
		return &loginAdapter{name: cfg.AdapterName}, nil
	})
}

func newManager(t *testing.T, ttl time.Duration) *auth.Manager {
	t.Helper()
	registry, err := adapter.NewRegistry(map[string]adapter.Config{
		"cloud_erp": {AdapterName: "cloud_erp", AdapterType: "loginstub", BaseURL: "https://c", AuthEndpoint: "/login"},
		"erp_next":  {AdapterName: "erp_next", AdapterType: "loginstub", BaseURL: "https://e", APIKey: "k", APISecret: "s"},
	}, convert.NewRegistry(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return auth.NewManager(registry, zap.NewNop(), ttl)
}

func TestAuthenticateLifecycle(t *testing.T) {
	m := newManager(t, time.Hour)

	session, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)
	assert.True(t, session.Active)
	assert.Equal(t, "sess-1", session.SessionID)

	headers, err := m.AuthHeaders("caller-1", "cloud_erp")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", headers["Authorization"])

	cookies, err := m.AuthCookies("caller-1", "cloud_erp")
	require.NoError(t, err)
	assert.Equal(t, "abc", cookies["erp_session"])

	sc, err := m.SessionContext("caller-1", "cloud_erp")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sc.SessionID)

	// Other callers share nothing.
	_, err = m.AuthHeaders("caller-2", "cloud_erp")
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestAuthenticateRejectsTokenBackend(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Authenticate(context.Background(), "caller-1", "erp_next", "alice", "s3cret")
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "wrong")
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	_, ok := m.GetSession("caller-1", "cloud_erp")
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	m := newManager(t, 10*time.Millisecond)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	session, ok := m.GetSession("caller-1", "cloud_erp")
	require.True(t, ok)
	assert.False(t, session.Active)

	_, err = m.AuthHeaders("caller-1", "cloud_erp")
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)

	assert.True(t, m.Invalidate("caller-1", "cloud_erp"))
	assert.True(t, m.Invalidate("caller-1", "cloud_erp"))
	assert.False(t, m.Invalidate("caller-1", "unknown"))

	_, err = m.AuthHeaders("caller-1", "cloud_erp")
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestConcurrentReadsAndInvalidates(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = m.AuthHeaders("caller-1", "cloud_erp")
				_, _ = m.GetSession("caller-1", "cloud_erp")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			m.Invalidate("caller-1", "cloud_erp")
		}
	}()
	wg.Wait()

	_, err = m.AuthHeaders("caller-1", "cloud_erp")
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestSessionSnapshotIsolated(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)

	session, ok := m.GetSession("caller-1", "cloud_erp")
	require.True(t, ok)

	// Mutating the returned copy must not touch the stored session.
	session.Active = false
	headers, err := m.AuthHeaders("caller-1", "cloud_erp")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", headers["Authorization"])
}

func TestSweepExpired(t *testing.T) {
	m := newManager(t, 10*time.Millisecond)

	_, err := m.Authenticate(context.Background(), "caller-1", "cloud_erp", "alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, 0, m.SweepExpired())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, m.SweepExpired())

	_, ok := m.GetSession("caller-1", "cloud_erp")
	assert.False(t, ok)
}
