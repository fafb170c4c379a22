package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/erp-gateway/internal/auth"
	"go.uber.org/zap"
)

// LoginRequest is the credential login payload.
type LoginRequest struct {
	AdapterName string `json:"adapter_name" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// LoginResponse carries the session reference handed back after login.
type LoginResponse struct {
	Status      string    `json:"status"`
	AdapterName string    `json:"adapter_name"`
	SessionID   string    `json:"session_id"`
	Token       string    `json:"token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthHandler struct {
	sessions *auth.Manager
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

func NewAuthHandler(sessions *auth.Manager, tokens *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login godoc
// @Summary Log in against a backend
// @Description Authenticate against a password-auth backend. The response carries the backend session id and a signed token; send the token as a Bearer header (or the session id as X-Session-ID) on subsequent requests.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Backend credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	// The username doubles as the caller identity; a second login with
	// the same username replaces the previous session.
	session, err := h.sessions.Authenticate(r.Context(), req.Username, req.AdapterName, req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("adapter", req.AdapterName),
			zap.String("username", req.Username),
			zap.Error(err))
		respondDomainError(w, err)
		return
	}

	token, err := h.tokens.Issue(req.Username, req.AdapterName, session.SessionID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Status:      "authenticated",
		AdapterName: req.AdapterName,
		SessionID:   session.SessionID,
		Token:       token,
		ExpiresAt:   session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Log out from a backend
// @Description Invalidate the caller's session for a backend. Requires the Bearer session token from login.
// @Tags Auth
// @Produce json
// @Param adapterName path string true "Backend adapter name"
// @Success 200 {object} map[string]string
// @Failure 401 {object} domain.APIError
// @Router /auth/logout/{adapterName} [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	adapterName := chi.URLParam(r, "adapterName")

	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		respondWithError(w, http.StatusUnauthorized, "Bearer session token required")
		return
	}

	claims, err := h.tokens.Parse(strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if claims.AdapterName != adapterName {
		respondWithError(w, http.StatusUnauthorized, "Session token was issued for a different adapter")
		return
	}

	// Logging out twice is fine
	h.sessions.Invalidate(claims.CallerID, adapterName)

	respondJSON(w, http.StatusOK, map[string]string{
		"status":       "logged_out",
		"adapter_name": adapterName,
	})
}
