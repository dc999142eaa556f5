// Package httpapi is the UI boundary: it renders the monitor's observable
// state and accepts the only two mutating entry points, the enabled toggle
// and an explicit sync.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roam/internal/monitor"
	"roam/internal/platform/middleware"
	"roam/internal/secrets"
	"roam/internal/store"
)

// Service is the monitor surface the UI consumes.
type Service interface {
	SetEnabled(ctx context.Context, enabled bool) error
	Sync(ctx context.Context) error
	Snapshot() monitor.Snapshot
}

// TokenIssuer mints bearer tokens during device enrollment.
type TokenIssuer interface {
	GenerateToken(subject, deviceID, role string, expiresIn time.Duration) (string, error)
}

// Historian optionally exposes the region-change trail. Only the Postgres
// store keeps one.
type Historian interface {
	History(ctx context.Context, limit int) ([]store.RegionChange, error)
}

// HealthChecker reports reachability of a backing resource.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler is the thin HTTP layer over the monitor.
type Handler struct {
	service           Service
	issuer            TokenIssuer
	validator         middleware.TokenValidator
	logger            *slog.Logger
	pairingSecretHash string
	history           Historian
	health            []HealthChecker
}

type Option func(*Handler)

// WithHistory enables the region-change history endpoint.
func WithHistory(h Historian) Option {
	return func(handler *Handler) {
		handler.history = h
	}
}

// WithHealthChecker adds a resource to the health endpoint.
func WithHealthChecker(h HealthChecker) Option {
	return func(handler *Handler) {
		if h != nil {
			handler.health = append(handler.health, h)
		}
	}
}

func New(
	service Service,
	issuer TokenIssuer,
	validator middleware.TokenValidator,
	pairingSecretHash string,
	logger *slog.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		service:           service,
		issuer:            issuer,
		validator:         validator,
		pairingSecretHash: pairingSecretHash,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the UI routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(api chi.Router) {
		api.Use(middleware.Recovery(h.logger))
		api.Use(middleware.RequestID)
		api.Use(middleware.Logger(h.logger))
		api.Use(middleware.Timeout(30 * time.Second))
		api.Use(middleware.ContentTypeJSON)

		api.Get("/healthz", h.handleHealth)
		api.Post("/enroll", h.handleEnroll)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(h.validator, h.logger))
			authed.Get("/travel/status", h.handleStatus)
			authed.Put("/travel/enabled", h.handleSetEnabled)
			authed.Post("/travel/sync", h.handleSync)
			authed.Get("/travel/history", h.handleHistory)
		})
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"enabled\": bool}"})
		return
	}

	if err := h.service.SetEnabled(r.Context(), *req.Enabled); err != nil {
		// Only a cancelled wait reaches here; the toggle itself is applied by
		// the monitor loop regardless.
		h.logger.WarnContext(r.Context(), "setEnabled wait interrupted", "error", err)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Sync(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "sync wait interrupted", "error", err)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not available with this store backend"})
		return
	}
	changes, err := h.history.History(r.Context(), 50)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if changes == nil {
		changes = []store.RegionChange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

type enrollRequest struct {
	PairingSecret string `json:"pairingSecret"`
	DeviceID      string `json:"deviceId"`
	Role          string `json:"role"`
}

type enrollResponse struct {
	Token string `json:"token"`
}

// handleEnroll exchanges the pairing secret for a bearer token. The secret is
// stored only as a bcrypt hash.
func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	if h.pairingSecretHash == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "enrollment disabled"})
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Role != "device" && req.Role != "ui" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be device or ui"})
		return
	}

	if err := secrets.Verify(req.PairingSecret, h.pairingSecretHash); err != nil {
		h.logger.WarnContext(r.Context(), "enrollment rejected",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid pairing secret"})
		return
	}

	token, err := h.issuer.GenerateToken(req.DeviceID, req.DeviceID, req.Role, 30*24*time.Hour)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, enrollResponse{Token: token})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.health {
		if err := check.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
