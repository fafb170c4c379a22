// Package rest implements the shared HTTP transport for ERP backends: URL
// assembly, JSON encoding, status-to-error mapping and retry with
// exponential backoff. Backend packages build their protocol specifics on
// top of this client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/straye-as/erp-gateway/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON-over-HTTP client bound to one backend base URL. Every
// request goes through the same error mapping, so callers only ever see the
// typed errors from the domain package.
type Client struct {
	baseURL    string
	system     string
	httpClient *http.Client
	headers    map[string]string
	retry      Policy
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithCookieJar enables cookie persistence across requests, used by backends
// with session-cookie authentication.
func WithCookieJar() Option {
	return func(c *Client) {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
}

// NewClient builds a client for one backend. A trailing slash on baseURL is
// stripped so path joining is uniform.
func NewClient(baseURL, system string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		system:     system,
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    map[string]string{"Content-Type": "application/json"},
		retry:      DefaultPolicy(),
		logger:     logger.Named("rest").With(zap.String("system", system)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cookies returns the cookies the jar currently holds for the backend base
// URL. Empty when the client was built without a jar.
func (c *Client) Cookies() []*http.Cookie {
	if c.httpClient.Jar == nil {
		return nil
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// Get performs a GET request. params may be nil.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (map[string]any, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// do runs one logical request under the retry policy. Only errors the policy
// marks retryable are attempted again; everything else returns immediately.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (map[string]any, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		result, err := c.attempt(ctx, method, path, params, body)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if c.retry.Retryable == nil || !c.retry.Retryable(err) {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		backoff := c.retry.backoffFor(attempt)
		c.logger.Warn("retrying backend request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.retry.MaxAttempts),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if err := sleep(ctx, backoff); err != nil {
			return nil, domain.NewAdapterError("request canceled during retry backoff", c.system, err)
		}
	}

	return nil, lastErr
}

// attempt runs a single HTTP request and maps the response to a result or a
// typed error.
func (c *Client) attempt(ctx context.Context, method, path string, params url.Values, body any) (map[string]any, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domain.NewAdapterError("failed to encode request body", c.system, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, domain.NewAdapterError("failed to build request", c.system, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewAdapterError(
			fmt.Sprintf("request to %s failed", c.system), c.system, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp, path)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewAdapterError("failed to read response body", c.system, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.NewAdapterError("backend returned invalid JSON", c.system, err)
	}
	return result, nil
}

// statusError maps a non-2xx response to the typed error taxonomy.
func (c *Client) statusError(resp *http.Response, path string) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &domain.AuthenticationError{
			Message: fmt.Sprintf("authentication failed with status %d", resp.StatusCode),
			System:  c.system,
		}
	case http.StatusNotFound:
		entityType, entityID := notFoundTarget(path)
		return &domain.EntityNotFoundError{
			EntityType: entityType,
			EntityID:   entityID,
			System:     c.system,
		}
	case http.StatusTooManyRequests:
		return &domain.RateLimitError{
			Message:    "rate limit exceeded",
			System:     c.system,
			RetryAfter: retryAfterSeconds(resp),
		}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return domain.NewAdapterError(
		fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		c.system, nil)
}

// notFoundTarget derives the entity type and id a 404 refers to from the
// last two path segments, e.g. "/api/resource/Customer/CUST-1".
func notFoundTarget(path string) (string, string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch len(segments) {
	case 0:
		return "resource", ""
	case 1:
		return segments[0], ""
	default:
		return segments[len(segments)-2], segments[len(segments)-1]
	}
}

// retryAfterSeconds parses the Retry-After header, defaulting to 60.
func retryAfterSeconds(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return 60
}
