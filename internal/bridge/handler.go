package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roam/internal/monitor"
	"roam/internal/permission"
	"roam/internal/platform/middleware"
)

// Handler exposes the device agent's side of the bridge. It is a thin HTTP
// layer over the channel; no business logic lives here.
type Handler struct {
	channel   *Channel
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func NewHandler(channel *Channel, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{channel: channel, validator: validator, logger: logger}
}

// Register mounts the bridge routes. Only device-role tokens are accepted.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(br chi.Router) {
		br.Use(middleware.Recovery(h.logger))
		br.Use(middleware.RequestID)
		br.Use(middleware.Logger(h.logger))
		br.Use(middleware.Timeout(15 * time.Second))
		br.Use(middleware.ContentTypeJSON)
		br.Use(middleware.DeviceContext)
		br.Use(middleware.RequireAuth(h.validator, h.logger))
		br.Use(middleware.RequireRole("device", h.logger))

		br.Get("/bridge/commands", h.handleDrainCommands)
		br.Post("/bridge/authorization", h.handleAuthorizationReport)
		br.Post("/bridge/notification-settings", h.handleNotificationSettings)
		br.Post("/bridge/location", h.handleLocationFix)
	})
}

func (h *Handler) handleDrainCommands(w http.ResponseWriter, r *http.Request) {
	cmds := h.channel.DrainCommands()
	if cmds == nil {
		cmds = []DeviceCommand{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": cmds})
}

type authorizationReport struct {
	Status string `json:"status"`
}

func (h *Handler) handleAuthorizationReport(w http.ResponseWriter, r *http.Request) {
	var report authorizationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	status := permission.LocationAuthorization(report.Status)
	switch status {
	case permission.LocationNotDetermined, permission.LocationWhenInUse,
		permission.LocationAlways, permission.LocationDenied, permission.LocationRestricted:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown authorization status"})
		return
	}

	info := middleware.GetDeviceInfo(r.Context())
	h.logger.InfoContext(r.Context(), "location authorization reported",
		"status", report.Status,
		"platform", info.Platform,
		"os", info.OS,
	)

	h.channel.ReportLocationAuthorization(status)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var report authorizationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	status := permission.NotificationAuthorization(report.Status)
	switch status {
	case permission.NotificationNotDetermined, permission.NotificationAuthorized,
		permission.NotificationProvisional, permission.NotificationDenied:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown authorization status"})
		return
	}

	h.channel.ReportNotificationSettings(status)
	w.WriteHeader(http.StatusAccepted)
}

type locationReport struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) handleLocationFix(w http.ResponseWriter, r *http.Request) {
	var report locationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if report.Latitude < -90 || report.Latitude > 90 || report.Longitude < -180 || report.Longitude > 180 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	h.channel.ReportLocationFix(monitor.Fix{
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		Timestamp: report.Timestamp,
	})
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
