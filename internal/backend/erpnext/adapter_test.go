package erpnext_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/backend/erpnext"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

func newAdapter(t *testing.T, baseURL string) adapter.Adapter {
	t.Helper()
	a, err := erpnext.New(adapter.Config{
		AdapterName: "erp_next",
		AdapterType: erpnext.AdapterType,
		BaseURL:     baseURL,
		APIKey:      "key",
		APISecret:   "secret",
	}, convert.NewRegistry(zap.NewNop()), zap.NewNop(), nil)
	require.NoError(t, err)
	return a
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := erpnext.New(adapter.Config{
		AdapterName: "erp_next",
		AdapterType: erpnext.AdapterType,
		BaseURL:     "http://erp.test",
	}, convert.NewRegistry(zap.NewNop()), zap.NewNop(), nil)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Customer/CUST-1", r.URL.Path)
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))
		assert.Equal(t, `["*"]`, r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"name":          "CUST-1",
				"customer_name": "Acme Corp",
				"disabled":      0,
			},
		})
	}))
	defer server.Close()

	entity, err := newAdapter(t, server.URL).GetByID(context.Background(), domain.EntityCustomer, "CUST-1")
	require.NoError(t, err)

	customer, ok := entity.(*domain.Customer)
	require.True(t, ok)
	assert.Equal(t, "CUST-1", customer.ID)
	assert.Equal(t, "Acme Corp", customer.Name)
	assert.Equal(t, convert.SystemERPNext, customer.Metadata.SourceSystem)
}

func TestGetByIDNotFoundPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newAdapter(t, server.URL).GetByID(context.Background(), domain.EntityCustomer, "NOPE")

	var nfErr *domain.EntityNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "NOPE", nfErr.EntityID)
}

func TestCreateReadsBack(t *testing.T) {
	var posts, gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts++
			body, _ := io.ReadAll(r.Body)
			var payload map[string]any
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, "Customer", payload["doctype"])
			assert.Equal(t, "Acme Corp", payload["customer_name"])
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"name": "CUST-1"},
			})
		case http.MethodGet:
			gets++
			assert.Equal(t, "/api/resource/Customer/CUST-1", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"name":          "CUST-1",
					"customer_name": "Acme Corp",
					"status":        "Active",
				},
			})
		}
	}))
	defer server.Close()

	entity, err := newAdapter(t, server.URL).Create(context.Background(), domain.EntityCustomer, map[string]any{
		"name": "Acme Corp",
	})
	require.NoError(t, err)

	// Exactly one write and one authoritative read-back.
	assert.Equal(t, 1, posts)
	assert.Equal(t, 1, gets)

	customer := entity.(*domain.Customer)
	assert.Equal(t, "CUST-1", customer.ID)
	assert.Equal(t, "Active", customer.Status)
	assert.Equal(t, "CUST-1", customer.Metadata.SourceID)
}

func TestCreateWithoutIDFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	_, err := newAdapter(t, server.URL).Create(context.Background(), domain.EntityCustomer, map[string]any{
		"name": "Acme Corp",
	})

	var adErr *domain.AdapterError
	require.ErrorAs(t, err, &adErr)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Item", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("limit_start"))
		assert.Equal(t, "20", r.URL.Query().Get("limit_page_length"))

		var filters []any
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters))
		require.Len(t, filters, 1)
		assert.Equal(t, []any{"disabled", "=", false}, filters[0])

		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{
				map[string]any{"name": "ITEM-1", "item_name": "Widget", "item_code": "WID-1"},
				map[string]any{"name": "ITEM-2", "item_name": "Gadget", "item_code": "GAD-1"},
			},
		})
	}))
	defer server.Close()

	result, err := newAdapter(t, server.URL).Search(context.Background(), domain.EntityProduct,
		map[string]any{"is_active": true}, 3, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, domain.EntityProduct, result.EntityType)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "ITEM-1", result.Items[0].EntityID())
}

func TestUpdateReadsBack(t *testing.T) {
	var puts, gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			puts++
			assert.Equal(t, "/api/resource/Customer/CUST-1", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"name": "CUST-1"}})
		case http.MethodGet:
			gets++
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"name": "CUST-1", "customer_name": "Acme Renamed"},
			})
		}
	}))
	defer server.Close()

	entity, err := newAdapter(t, server.URL).Update(context.Background(), domain.EntityCustomer, "CUST-1",
		map[string]any{"name": "Acme Renamed"})
	require.NoError(t, err)

	assert.Equal(t, 1, puts)
	assert.Equal(t, 1, gets)
	assert.Equal(t, "Acme Renamed", entity.(*domain.Customer).Name)
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	ok, err := newAdapter(t, server.URL).Delete(context.Background(), domain.EntityCustomer, "CUST-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthenticateNotSupported(t *testing.T) {
	_, err := newAdapter(t, "http://erp.test").Authenticate(context.Background(), "user", "pass")

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
