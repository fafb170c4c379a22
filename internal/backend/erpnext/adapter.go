// Package erpnext implements the adapter for ERPNext-style backends: static
// token authentication, a data envelope on every response and Frappe
// document semantics.
package erpnext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/backend/rest"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

// AdapterType is the adapter_type value that selects this backend.
const AdapterType = "erpnext"

// Default resource endpoints in Frappe's REST layout. Overridable per
// backend through the endpoints configuration block.
const (
	defaultResourcePath = "/api/resource/{entity_type}"
	defaultDocumentPath = "/api/resource/{entity_type}/{entity_id}"
	defaultConnectPath  = "/api/method/frappe.auth.get_logged_user"
)

// Default document names for the standardized entity types.
var defaultEntityMap = map[string]string{
	domain.EntityCustomer:  "Customer",
	domain.EntityProduct:   "Item",
	domain.EntityQuotation: "Quotation",
	domain.EntityInvoice:   "Sales Invoice",
}

func init() {
	adapter.Register(AdapterType, New)
}

// Adapter talks to one configured ERPNext backend.
type Adapter struct {
	cfg        adapter.Config
	client     *rest.Client
	converters *convert.Registry
	logger     *zap.Logger
}

// New builds an ERPNext adapter from a configuration record. ERPNext auth is
// a static token pair, so api_key and api_secret are required and a session
// context only contributes extra headers.
func New(cfg adapter.Config, converters *convert.Registry, logger *zap.Logger, sess *adapter.SessionContext) (adapter.Adapter, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("adapter %s requires api_key and api_secret", cfg.AdapterName),
		}
	}
	if cfg.EntityMap == nil {
		cfg.EntityMap = defaultEntityMap
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("token %s:%s", cfg.APIKey, cfg.APISecret),
		"Accept":        "application/json",
	}
	if sess != nil {
		for k, v := range sess.Headers {
			headers[k] = v
		}
	}

	return &Adapter{
		cfg:        cfg,
		client:     rest.NewClient(cfg.BaseURL, convert.SystemERPNext, logger, rest.WithHeaders(headers)),
		converters: converters,
		logger:     logger.Named("erpnext").With(zap.String("adapter", cfg.AdapterName)),
	}, nil
}

func (a *Adapter) Name() string { return a.cfg.AdapterName }

// Connect probes the authenticated-user endpoint, which verifies both
// reachability and the token pair.
func (a *Adapter) Connect(ctx context.Context) error {
	if _, err := a.client.Get(ctx, a.cfg.Endpoint("connect", defaultConnectPath, "", ""), nil); err != nil {
		return a.wrap(err, "failed to connect to %s", a.cfg.AdapterName)
	}
	a.logger.Debug("connected")
	return nil
}

func (a *Adapter) GetByID(ctx context.Context, entityType, entityID string) (domain.Entity, error) {
	path := a.cfg.Endpoint("get_by_id", defaultDocumentPath, a.cfg.ExternalEntityType(entityType), entityID)

	params := url.Values{}
	params.Set("fields", `["*"]`)

	resp, err := a.client.Get(ctx, path, params)
	if err != nil {
		return nil, a.wrap(err, "failed to get %s with ID %s", entityType, entityID)
	}

	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	return converter.ExternalToStandard(convert.SystemERPNext, envelope(resp))
}

func (a *Adapter) Search(ctx context.Context, entityType string, filters map[string]any, page, pageSize int) (*domain.SearchResult, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}

	erpFilters, err := converter.ConvertFilters(convert.SystemERPNext, entityType, filters)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(erpFilters)
	if err != nil {
		return nil, domain.NewAdapterError("failed to encode filters", convert.SystemERPNext, err)
	}

	params := url.Values{}
	params.Set("filters", string(encoded))
	params.Set("fields", `["*"]`)
	params.Set("limit_start", strconv.Itoa((page-1)*pageSize))
	params.Set("limit_page_length", strconv.Itoa(pageSize))

	path := a.cfg.Endpoint("search", defaultResourcePath, a.cfg.ExternalEntityType(entityType), "")
	resp, err := a.client.Get(ctx, path, params)
	if err != nil {
		return nil, a.wrap(err, "failed to search for %s", entityType)
	}

	rows, _ := resp["data"].([]any)
	items := make([]domain.Entity, 0, len(rows))
	for _, row := range rows {
		raw, ok := row.(map[string]any)
		if !ok {
			continue
		}
		entity, err := converter.ExternalToStandard(convert.SystemERPNext, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}

	return &domain.SearchResult{
		Total:      len(items),
		EntityType: entityType,
		Items:      items,
	}, nil
}

// Create writes the document, then reads it back so the caller gets the
// server-assigned id and computed fields rather than an echo of the input.
func (a *Adapter) Create(ctx context.Context, entityType string, data map[string]any) (domain.Entity, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	payload, err := converter.StandardToExternal(convert.SystemERPNext, data)
	if err != nil {
		return nil, err
	}

	path := a.cfg.Endpoint("create", defaultResourcePath, a.cfg.ExternalEntityType(entityType), "")
	resp, err := a.client.Post(ctx, path, payload)
	if err != nil {
		return nil, a.wrap(err, "failed to create %s", entityType)
	}

	createdID, _ := envelope(resp)["name"].(string)
	if createdID == "" {
		return nil, domain.NewAdapterError(
			fmt.Sprintf("failed to get ID of created %s", entityType), convert.SystemERPNext, nil)
	}
	return a.GetByID(ctx, entityType, createdID)
}

func (a *Adapter) Update(ctx context.Context, entityType, entityID string, data map[string]any) (domain.Entity, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	payload, err := converter.StandardToExternal(convert.SystemERPNext, data)
	if err != nil {
		return nil, err
	}

	path := a.cfg.Endpoint("update", defaultDocumentPath, a.cfg.ExternalEntityType(entityType), entityID)
	if _, err := a.client.Put(ctx, path, payload); err != nil {
		return nil, a.wrap(err, "failed to update %s with ID %s", entityType, entityID)
	}
	return a.GetByID(ctx, entityType, entityID)
}

func (a *Adapter) Delete(ctx context.Context, entityType, entityID string) (bool, error) {
	path := a.cfg.Endpoint("delete", defaultDocumentPath, a.cfg.ExternalEntityType(entityType), entityID)
	if _, err := a.client.Delete(ctx, path); err != nil {
		return false, a.wrap(err, "failed to delete %s with ID %s", entityType, entityID)
	}
	return true, nil
}

// Authenticate is not supported: ERPNext backends run on a static token
// pair configured per backend, not per caller.
func (a *Adapter) Authenticate(ctx context.Context, username, password string) (*adapter.AuthResult, error) {
	return nil, &domain.ConfigurationError{
		Message: fmt.Sprintf("adapter %s does not use password authentication", a.cfg.AdapterName),
	}
}

func (a *Adapter) Close() error {
	a.client.Close()
	return nil
}

// wrap annotates a generic failure with operation context. Typed errors that
// carry their own semantics pass through untouched.
func (a *Adapter) wrap(err error, format string, args ...any) error {
	var (
		notFound  *domain.EntityNotFoundError
		authErr   *domain.AuthenticationError
		rateLimit *domain.RateLimitError
	)
	if errors.As(err, &notFound) || errors.As(err, &authErr) || errors.As(err, &rateLimit) {
		return err
	}
	return domain.NewAdapterError(fmt.Sprintf(format, args...), convert.SystemERPNext, err)
}

// envelope unwraps Frappe's {"data": {...}} response envelope.
func envelope(resp map[string]any) map[string]any {
	if data, ok := resp["data"].(map[string]any); ok {
		return data
	}
	return map[string]any{}
}
