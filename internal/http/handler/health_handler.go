package handler

import (
	"net/http"

	"github.com/straye-as/erp-gateway/internal/adapter"
	"go.uber.org/zap"
)

type HealthHandler struct {
	registry *adapter.Registry
	logger   *zap.Logger
}

func NewHealthHandler(registry *adapter.Registry, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		logger:   logger,
	}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Adapters godoc
// @Summary List configured backend adapters
// @Description Returns the configured backends with their type and authentication method. No connectivity check is performed.
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/adapters [get]
func (h *HealthHandler) Adapters(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	adapters := make([]map[string]string, 0, len(names))
	for _, name := range names {
		cfg, err := h.registry.Config(name)
		if err != nil {
			continue
		}
		adapters = append(adapters, map[string]string{
			"adapter_name": name,
			"adapter_type": cfg.AdapterType,
			"auth_method":  cfg.ResolvedAuthMethod(),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"adapters": adapters,
	})
}
