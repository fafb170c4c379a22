package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	body := login(t, h, `{"adapter_name":"cloud_erp","username":"alice","password":"s3cret"}`)

	assert.Equal(t, "authenticated", body["status"])
	assert.Equal(t, "cloud_erp", body["adapter_name"])
	assert.Equal(t, "sess-1", body["session_id"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expires_at"])
}

func TestLoginBadCredentials(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"adapter_name":"cloud_erp","username":"alice","password":"wrong"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "unauthorized", body["type"])
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"adapter_name":"cloud_erp","username":"alice"}`, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "password")
}

func TestLoginTokenAuthBackendRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"adapter_name":"erp_next","username":"alice","password":"s3cret"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["detail"], "password authentication")
}

func TestSessionTokenGrantsAccess(t *testing.T) {
	h := newTestHandler(t)
	body := login(t, h, `{"adapter_name":"cloud_erp","username":"alice","password":"s3cret"}`)
	token := body["token"].(string)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "cloud_erp",
		"Authorization":  "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionTokenWrongAdapter(t *testing.T) {
	h := newTestHandler(t)
	body := login(t, h, `{"adapter_name":"cloud_erp","username":"alice","password":"s3cret"}`)
	token := body["token"].(string)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "erp_next",
		"Authorization":  "Bearer " + token,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRawSessionIDGrantsAccess(t *testing.T) {
	h := newTestHandler(t)
	body := login(t, h, `{"adapter_name":"cloud_erp","username":"alice","password":"s3cret"}`)
	sessionID := body["session_id"].(string)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "cloud_erp",
		"X-Session-ID":   sessionID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownSessionIDRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "cloud_erp",
		"X-Session-ID":   "no-such-session",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)
	body := login(t, h, `{"adapter_name":"cloud_erp","username":"alice","password":"s3cret"}`)
	token := body["token"].(string)
	authz := map[string]string{"Authorization": "Bearer " + token}

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/logout/cloud_erp", "", authz)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logged_out", decodeBody(t, rec)["status"])

	// The token no longer resolves to an active session
	rec = doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "cloud_erp",
		"Authorization":  "Bearer " + token,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out twice is harmless
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/logout/cloud_erp", "", authz)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutWithoutToken(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/logout/cloud_erp", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGarbageBearerToken(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/customer/CUST-1", "", map[string]string{
		"X-Adapter-Name": "cloud_erp",
		"Authorization":  "Bearer not.a.token",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
