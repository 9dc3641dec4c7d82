package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"views-api/internal/repository"
	"views-api/pkg/logger"
)

// HealthHandler reports liveness and storage connectivity
type HealthHandler struct {
	store  repository.VisitStore
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store repository.VisitStore, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: log,
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}

	if err := h.store.Health(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Storage health check failed")
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode health response")
	}
}
