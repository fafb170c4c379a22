package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/auth"
	"github.com/straye-as/erp-gateway/internal/domain"
	"github.com/straye-as/erp-gateway/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// query parameters that control the request rather than filter the search
var reservedParams = map[string]bool{
	"page":         true,
	"page_size":    true,
	"adapter_name": true,
}

// EntityHandler serves the standardized CRUD surface. It resolves which
// backend to talk to and hands the request to that adapter; all conversion
// and dispatch lives below it.
type EntityHandler struct {
	registry *adapter.Registry
	sessions *auth.Manager
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

func NewEntityHandler(registry *adapter.Registry, sessions *auth.Manager, tokens *auth.TokenIssuer, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		registry: registry,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// adapterName picks the backend from the X-Adapter-Name header or the
// adapter_name query parameter.
func adapterName(r *http.Request) string {
	if name := r.Header.Get("X-Adapter-Name"); name != "" {
		return name
	}
	return r.URL.Query().Get("adapter_name")
}

// resolveSession builds the credential context for the request. A bearer
// session token wins; a raw X-Session-ID is accepted as a fallback. Requests
// without either run on the backend's static credentials.
func (h *EntityHandler) resolveSession(r *http.Request, name string) (*adapter.SessionContext, error) {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		claims, err := h.tokens.Parse(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			return nil, err
		}
		if claims.AdapterName != name {
			return nil, &domain.AuthenticationError{
				Message: "session token was issued for a different adapter",
				System:  name,
			}
		}
		sess, err := h.sessions.SessionContext(claims.CallerID, claims.AdapterName)
		if err != nil {
			return nil, err
		}
		if sess.SessionID != claims.SessionID {
			return nil, &domain.AuthenticationError{
				Message: "session token does not match the active session",
				System:  name,
			}
		}
		return sess, nil
	}

	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return h.sessions.SessionContextByID(name, sid)
	}

	return nil, nil
}

// resolve returns a ready adapter instance for the request.
func (h *EntityHandler) resolve(r *http.Request) (adapter.Adapter, error) {
	name := adapterName(r)
	if name == "" {
		return nil, &domain.ConfigurationError{
			Message: "adapter name is required: set the X-Adapter-Name header or the adapter_name query parameter",
		}
	}

	sess, err := h.resolveSession(r, name)
	if err != nil {
		return nil, err
	}

	return h.registry.Get(r.Context(), name, sess)
}

func entityTypeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	entityType := chi.URLParam(r, "entityType")
	if !domain.IsEntityType(entityType) {
		respondWithError(w, http.StatusNotFound, "Unknown entity type: "+entityType)
		return "", false
	}
	return entityType, true
}

// Search godoc
// @Summary Search entities
// @Description Search a backend for entities of the given type. Any query parameter that is not page, page_size or adapter_name is treated as a standardized filter field; _gte/_lte/_from/_to/_range suffixes express range filters.
// @Tags Entities
// @Produce json
// @Param entityType path string true "Entity type" Enums(customer, product, quotation, invoice)
// @Param adapter_name query string false "Backend adapter name (alternative to X-Adapter-Name header)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.SearchResult
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 429 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /{entityType} [get]
func (h *EntityHandler) Search(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	a, err := h.resolve(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// Every remaining query parameter is a standardized filter
	filters := make(map[string]any)
	for key, values := range r.URL.Query() {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	result, err := a.Search(r.Context(), entityType, filters, page, pageSize)
	if err != nil {
		logger.WithAdapter(h.logger, a.Name(), entityType).Error("search failed", zap.Error(err))
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get entity by ID
// @Description Fetch a single entity from a backend in standardized form
// @Tags Entities
// @Produce json
// @Param entityType path string true "Entity type" Enums(customer, product, quotation, invoice)
// @Param id path string true "Entity ID in the backend"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /{entityType}/{id} [get]
func (h *EntityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	a, err := h.resolve(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entity, err := a.GetByID(r.Context(), entityType, chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entity)
}

// Create godoc
// @Summary Create entity
// @Description Create an entity in a backend from a standardized payload. The response is the authoritative state read back from the backend.
// @Tags Entities
// @Accept json
// @Produce json
// @Param entityType path string true "Entity type" Enums(customer, product, quotation, invoice)
// @Param body body map[string]interface{} true "Standardized entity fields"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /{entityType} [post]
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	a, err := h.resolve(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entity, err := a.Create(r.Context(), entityType, data)
	if err != nil {
		logger.WithAdapter(h.logger, a.Name(), entityType).Error("create failed", zap.Error(err))
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entity)
}

// Update godoc
// @Summary Update entity
// @Description Update an entity in a backend from a standardized payload. The response is the authoritative state read back from the backend.
// @Tags Entities
// @Accept json
// @Produce json
// @Param entityType path string true "Entity type" Enums(customer, product, quotation, invoice)
// @Param id path string true "Entity ID in the backend"
// @Param body body map[string]interface{} true "Standardized entity fields to update"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /{entityType}/{id} [put]
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	a, err := h.resolve(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entity, err := a.Update(r.Context(), entityType, chi.URLParam(r, "id"), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entity)
}

// Delete godoc
// @Summary Delete entity
// @Description Delete an entity in a backend
// @Tags Entities
// @Produce json
// @Param entityType path string true "Entity type" Enums(customer, product, quotation, invoice)
// @Param id path string true "Entity ID in the backend"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /{entityType}/{id} [delete]
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	a, err := h.resolve(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entityID := chi.URLParam(r, "id")
	deleted, err := a.Delete(r.Context(), entityType, entityID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"deleted":     deleted,
		"entity_type": entityType,
		"entity_id":   entityID,
	})
}
