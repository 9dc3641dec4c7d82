package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"views-api/internal/domain"
	"views-api/internal/service"
	apperrors "views-api/pkg/errors"
	"views-api/pkg/logger"
)

// CountHandler serves the unique-visitor counting endpoints
type CountHandler struct {
	service *service.CounterService
	logger  *logger.Logger
}

// NewCountHandler creates a new count handler
func NewCountHandler(svc *service.CounterService, log *logger.Logger) *CountHandler {
	return &CountHandler{
		service: svc,
		logger:  log,
	}
}

// errorResponse is the wire shape for failures
type errorResponse struct {
	Error string `json:"error"`
}

// GetCount handles GET /count?page=. Read-only: returns current counts
// without ever recording a visit, so crawlers and polling stay safe.
func (h *CountHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, counts)
}

// RecordCount handles POST /count?page=. Attempts dedup record creation
// (skipped for bot traffic), then returns the updated counts.
func (h *CountHandler) RecordCount(w http.ResponseWriter, r *http.Request) {
	req := domain.VisitRequest{
		Page:      r.URL.Query().Get("page"),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Timestamp: time.Now().UTC(),
	}

	counts, err := h.service.Record(r.Context(), req)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, counts)
}

// clientIP picks the most trustworthy available signal, in precedence order:
// the proxy-injected real-IP headers, then forwarded-for, then the socket
// address. Never empty; an empty IP would collide every direct visitor into
// one fingerprint.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// May contain a chain; the first entry is the client
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func (h *CountHandler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *CountHandler) sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	h.logger.WithError(err).Error("Request failed")
	h.sendJSON(w, status, errorResponse{Error: message})
}

// RegisterRoutes registers count handler routes with the router
func (h *CountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/count", h.GetCount)
	r.Post("/count", h.RecordCount)
}
