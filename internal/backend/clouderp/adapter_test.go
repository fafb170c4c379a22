package clouderp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/backend/clouderp"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

func newAdapter(t *testing.T, baseURL string, sess *adapter.SessionContext) adapter.Adapter {
	t.Helper()
	a, err := clouderp.New(adapter.Config{
		AdapterName:  "cloud_erp",
		AdapterType:  clouderp.AdapterType,
		BaseURL:      baseURL,
		AuthEndpoint: "/api/auth/login",
	}, convert.NewRegistry(zap.NewNop()), zap.NewNop(), sess)
	require.NoError(t, err)
	return a
}

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["username"] != "alice" || creds["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "erp_session", Value: "abc123"})
		json.NewEncoder(w).Encode(map[string]any{
			"session_id": "sess-42",
			"token":      "tok-99",
		})
	}))
	defer server.Close()

	t.Run("valid credentials", func(t *testing.T) {
		result, err := newAdapter(t, server.URL, nil).Authenticate(context.Background(), "alice", "s3cret")
		require.NoError(t, err)

		assert.Equal(t, "sess-42", result.SessionID)
		assert.Equal(t, "Bearer tok-99", result.Headers["Authorization"])
		assert.Equal(t, "abc123", result.Cookies["erp_session"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := newAdapter(t, server.URL, nil).Authenticate(context.Background(), "alice", "wrong")

		var authErr *domain.AuthenticationError
		require.ErrorAs(t, err, &authErr)
	})
}

func TestAuthenticateIsolatesCookiesPerLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		// Each login must only see its own cookies, never ones a
		// previous caller's login left behind.
		assert.Empty(t, r.Cookies())

		http.SetCookie(w, &http.Cookie{Name: creds["username"] + "_session", Value: "tok-" + creds["username"]})
		json.NewEncoder(w).Encode(map[string]any{"session_id": "sess-" + creds["username"]})
	}))
	defer server.Close()

	a := newAdapter(t, server.URL, nil)

	first, err := a.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice_session": "tok-alice"}, first.Cookies)

	second, err := a.Authenticate(context.Background(), "bob", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob_session": "tok-bob"}, second.Cookies)
	assert.NotContains(t, second.Cookies, "alice_session")
}

func TestAuthenticateGeneratesSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	result, err := newAdapter(t, server.URL, nil).Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestSessionCredentialsAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-99", r.Header.Get("Authorization"))
		cookie, err := r.Cookie("erp_session")
		require.NoError(t, err)
		assert.Equal(t, "abc123", cookie.Value)
		json.NewEncoder(w).Encode(map[string]any{"customer_id": "C-1", "name": "Acme"})
	}))
	defer server.Close()

	sess := &adapter.SessionContext{
		SessionID: "sess-42",
		Headers:   map[string]string{"Authorization": "Bearer tok-99"},
		Cookies:   map[string]string{"erp_session": "abc123"},
	}

	_, err := newAdapter(t, server.URL, sess).GetByID(context.Background(), domain.EntityCustomer, "C-1")
	require.NoError(t, err)
}

func TestSearchShapeProbing(t *testing.T) {
	rows := []any{
		map[string]any{"customer_id": "C-1", "name": "Acme"},
		map[string]any{"customer_id": "C-2", "name": "Globex"},
	}

	for _, key := range []string{"items", "results", "data"} {
		t.Run(key, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/customers", r.URL.Path)
				assert.Equal(t, "2", r.URL.Query().Get("page"))
				assert.Equal(t, "10", r.URL.Query().Get("page_size"))
				json.NewEncoder(w).Encode(map[string]any{key: rows, "total": 17})
			}))
			defer server.Close()

			result, err := newAdapter(t, server.URL, nil).Search(context.Background(), domain.EntityCustomer, nil, 2, 10)
			require.NoError(t, err)

			assert.Equal(t, 17, result.Total)
			require.Len(t, result.Items, 2)
			assert.Equal(t, "C-1", result.Items[0].EntityID())
		})
	}
}

func TestSearchTotalFallsBackToItemCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []any{map[string]any{"customer_id": "C-1", "name": "Acme"}},
		})
	}))
	defer server.Close()

	result, err := newAdapter(t, server.URL, nil).Search(context.Background(), domain.EntityCustomer, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestCreateProbesIDAndReadsBack(t *testing.T) {
	var posts, gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts++
			assert.Equal(t, "/api/customers", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"customer_id": "C-9"})
		case http.MethodGet:
			gets++
			assert.Equal(t, "/api/customers/C-9", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"customer_id": "C-9", "name": "Acme"})
		}
	}))
	defer server.Close()

	entity, err := newAdapter(t, server.URL, nil).Create(context.Background(), domain.EntityCustomer, map[string]any{
		"name": "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, posts)
	assert.Equal(t, 1, gets)
	assert.Equal(t, "C-9", entity.EntityID())
}

func TestDeleteNotFoundPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newAdapter(t, server.URL, nil).Delete(context.Background(), domain.EntityCustomer, "C-404")

	var nfErr *domain.EntityNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSearchConfiguredItemsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			// The probed keys are decoys here; only the configured one counts
			"items":   []any{map[string]any{"customer_id": "WRONG"}},
			"records": []any{map[string]any{"customer_id": "C-1", "customer_name": "Acme"}},
		})
	}))
	defer server.Close()

	a, err := clouderp.New(adapter.Config{
		AdapterName: "cloud_erp",
		AdapterType: clouderp.AdapterType,
		BaseURL:     server.URL,
		ItemsKey:    "records",
	}, convert.NewRegistry(zap.NewNop()), zap.NewNop(), nil)
	require.NoError(t, err)

	result, err := a.Search(context.Background(), domain.EntityCustomer, nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "C-1", result.Items[0].EntityID())
}
