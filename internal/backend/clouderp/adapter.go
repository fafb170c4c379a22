// Package clouderp implements the adapter for the cloud ERP backend:
// credential login against an auth endpoint, session cookies on subsequent
// requests and loosely specified list responses that need shape probing.
package clouderp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/backend/rest"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/domain"
)

// AdapterType is the adapter_type value that selects this backend.
const AdapterType = "clouderp"

const (
	defaultCollectionPath = "/api/{entity_type}"
	defaultItemPath       = "/api/{entity_type}/{entity_id}"
	defaultAuthPath       = "/api/auth/login"
)

// The cloud backend addresses collections by lowercase plural name.
var defaultEntityMap = map[string]string{
	domain.EntityCustomer:  "customers",
	domain.EntityProduct:   "products",
	domain.EntityQuotation: "quotations",
	domain.EntityInvoice:   "invoices",
}

func init() {
	adapter.Register(AdapterType, New)
}

// Adapter talks to one configured cloud ERP backend.
type Adapter struct {
	cfg        adapter.Config
	client     *rest.Client
	converters *convert.Registry
	logger     *zap.Logger
}

// New builds a cloud ERP adapter. With a session context the instance runs
// on the caller's session credentials; without one it falls back to the
// configured bearer key pair, when present.
func New(cfg adapter.Config, converters *convert.Registry, logger *zap.Logger, sess *adapter.SessionContext) (adapter.Adapter, error) {
	if cfg.EntityMap == nil {
		cfg.EntityMap = defaultEntityMap
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s:%s", cfg.APIKey, cfg.APISecret)
	}
	if sess != nil {
		for k, v := range sess.Headers {
			headers[k] = v
		}
		if cookie := cookieHeader(sess.Cookies); cookie != "" {
			headers["Cookie"] = cookie
		}
	}

	return &Adapter{
		cfg:        cfg,
		client:     rest.NewClient(cfg.BaseURL, convert.SystemCloudERP, logger, rest.WithHeaders(headers), rest.WithCookieJar()),
		converters: converters,
		logger:     logger.Named("clouderp").With(zap.String("adapter", cfg.AdapterName)),
	}, nil
}

func (a *Adapter) Name() string { return a.cfg.AdapterName }

// Connect is a no-op: credential backends only become usable after login,
// and a bearer-configured instance is verified on first use.
func (a *Adapter) Connect(ctx context.Context) error {
	a.logger.Debug("connected")
	return nil
}

func (a *Adapter) GetByID(ctx context.Context, entityType, entityID string) (domain.Entity, error) {
	path := a.cfg.Endpoint("get_by_id", defaultItemPath, a.externalType(entityType), entityID)

	resp, err := a.client.Get(ctx, path, nil)
	if err != nil {
		return nil, a.wrap(err, "failed to get %s with ID %s", entityType, entityID)
	}

	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	return converter.ExternalToStandard(convert.SystemCloudERP, resp)
}

func (a *Adapter) Search(ctx context.Context, entityType string, filters map[string]any, page, pageSize int) (*domain.SearchResult, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}

	cloudFilters, err := converter.ConvertFilters(convert.SystemCloudERP, entityType, filters)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((page-1)*pageSize))
	if len(cloudFilters) > 0 {
		encoded, err := json.Marshal(cloudFilters)
		if err != nil {
			return nil, domain.NewAdapterError("failed to encode filters", convert.SystemCloudERP, err)
		}
		params.Set("filters", string(encoded))
	}

	path := a.cfg.Endpoint("search", defaultCollectionPath, a.externalType(entityType), "")
	resp, err := a.client.Get(ctx, path, params)
	if err != nil {
		return nil, a.wrap(err, "failed to search for %s", entityType)
	}

	rows := a.itemRows(resp)
	items := make([]domain.Entity, 0, len(rows))
	for _, row := range rows {
		raw, ok := row.(map[string]any)
		if !ok {
			continue
		}
		entity, err := converter.ExternalToStandard(convert.SystemCloudERP, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}

	total := len(items)
	if v, ok := resp["total"].(float64); ok {
		total = int(v)
	}

	return &domain.SearchResult{
		Total:      total,
		EntityType: entityType,
		Items:      items,
	}, nil
}

func (a *Adapter) Create(ctx context.Context, entityType string, data map[string]any) (domain.Entity, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	payload, err := converter.StandardToExternal(convert.SystemCloudERP, data)
	if err != nil {
		return nil, err
	}

	path := a.cfg.Endpoint("create", defaultCollectionPath, a.externalType(entityType), "")
	resp, err := a.client.Post(ctx, path, payload)
	if err != nil {
		return nil, a.wrap(err, "failed to create %s", entityType)
	}

	id := createdID(resp)
	if id == "" {
		return nil, domain.NewAdapterError(
			fmt.Sprintf("failed to get ID of created %s", entityType), convert.SystemCloudERP, nil)
	}
	return a.GetByID(ctx, entityType, id)
}

func (a *Adapter) Update(ctx context.Context, entityType, entityID string, data map[string]any) (domain.Entity, error) {
	converter, err := a.converters.Get(entityType)
	if err != nil {
		return nil, err
	}
	payload, err := converter.StandardToExternal(convert.SystemCloudERP, data)
	if err != nil {
		return nil, err
	}

	path := a.cfg.Endpoint("update", defaultItemPath, a.externalType(entityType), entityID)
	if _, err := a.client.Put(ctx, path, payload); err != nil {
		return nil, a.wrap(err, "failed to update %s with ID %s", entityType, entityID)
	}
	return a.GetByID(ctx, entityType, entityID)
}

func (a *Adapter) Delete(ctx context.Context, entityType, entityID string) (bool, error) {
	path := a.cfg.Endpoint("delete", defaultItemPath, a.externalType(entityType), entityID)
	if _, err := a.client.Delete(ctx, path); err != nil {
		return false, a.wrap(err, "failed to delete %s with ID %s", entityType, entityID)
	}
	return true, nil
}

// Authenticate posts the credentials to the configured auth endpoint and
// captures the session id plus whatever cookies and tokens the backend
// handed back. A backend that omits a session id still gets a generated one
// so the session is addressable. The login runs on a throwaway client with
// its own cookie jar: the shared instance's jar must never hold, or hand a
// later caller, another caller's session cookies.
func (a *Adapter) Authenticate(ctx context.Context, username, password string) (*adapter.AuthResult, error) {
	path := a.cfg.AuthEndpoint
	if path == "" {
		path = defaultAuthPath
	}

	login := rest.NewClient(a.cfg.BaseURL, convert.SystemCloudERP, a.logger,
		rest.WithHeaders(map[string]string{"Accept": "application/json"}),
		rest.WithCookieJar())
	defer login.Close()

	resp, err := login.Post(ctx, path, map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &domain.AuthenticationError{
			Message: fmt.Sprintf("authentication with %s failed: %v", a.cfg.AdapterName, err),
			System:  a.cfg.AdapterName,
		}
	}

	sessionID := firstString(resp, "session_id", "sid", "sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	headers := map[string]string{}
	if token := firstString(resp, "token", "access_token"); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	cookies := map[string]string{}
	for _, c := range login.Cookies() {
		cookies[c.Name] = c.Value
	}

	a.logger.Info("authenticated", zap.String("session_id", sessionID))
	return &adapter.AuthResult{
		SessionID: sessionID,
		Headers:   headers,
		Cookies:   cookies,
	}, nil
}

func (a *Adapter) Close() error {
	a.client.Close()
	return nil
}

// externalType maps the standardized type without the capitalize fallback:
// this backend's collections are lowercase plurals.
func (a *Adapter) externalType(entityType string) string {
	if ext, ok := a.cfg.EntityMap[entityType]; ok {
		return ext
	}
	return entityType + "s"
}

func (a *Adapter) wrap(err error, format string, args ...any) error {
	var (
		notFound  *domain.EntityNotFoundError
		authErr   *domain.AuthenticationError
		rateLimit *domain.RateLimitError
	)
	if errors.As(err, &notFound) || errors.As(err, &authErr) || errors.As(err, &rateLimit) {
		return err
	}
	return domain.NewAdapterError(fmt.Sprintf(format, args...), convert.SystemCloudERP, err)
}

// itemRows extracts the item list from a list response. A configured
// items_key wins; otherwise the shapes this backend is known to emit are
// probed in order.
func (a *Adapter) itemRows(resp map[string]any) []any {
	if a.cfg.ItemsKey != "" {
		rows, _ := resp[a.cfg.ItemsKey].([]any)
		return rows
	}
	for _, key := range []string{"items", "results", "data"} {
		if rows, ok := resp[key].([]any); ok {
			return rows
		}
	}
	return nil
}

// createdID probes the creation response for the server-assigned id, both
// at the top level and under a data envelope.
func createdID(resp map[string]any) string {
	if id := firstString(resp, "id", "customer_id", "product_id", "quotation_id", "invoice_id"); id != "" {
		return id
	}
	if data, ok := resp["data"].(map[string]any); ok {
		return firstString(data, "id", "customer_id", "product_id", "quotation_id", "invoice_id")
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func cookieHeader(cookies map[string]string) string {
	pairs := make([]string, 0, len(cookies))
	for name, value := range cookies {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}
