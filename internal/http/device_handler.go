package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
)

type DeviceHandler struct {
	service *service.DeviceService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewDeviceHandler(service *service.DeviceService, auth *middleware.AuthMiddleware, logger logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *DeviceHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/devices.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/devices.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/devices.create", requireAdmin(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/devices.update", requireAdmin(http.HandlerFunc(h.handleUpdate)))
}

func (h *DeviceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	if venueID := query.Get("venue_id"); venueID != "" {
		devices, err := h.service.ListByVenue(r.Context(), venueID)
		if err != nil {
			h.logger.WithField("error", err.Error()).Error("Failed to list devices")
			WriteJSONError(w, "Failed to list devices", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	devices, err := h.service.List(r.Context(), domain.DeviceStatus(query.Get("status")), limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

func (h *DeviceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	id := query.Get("id")
	serial := query.Get("serial")
	if id == "" && serial == "" {
		WriteJSONError(w, "Missing device ID or serial", http.StatusBadRequest)
		return
	}

	var device *domain.Device
	var err error
	if id != "" {
		device, err = h.service.Get(r.Context(), id)
	} else {
		device, err = h.service.GetBySerial(r.Context(), serial)
	}
	if err != nil {
		var notFound *domain.ErrDeviceNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Device not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get device")
		WriteJSONError(w, "Failed to get device", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"device": device})
}

func (h *DeviceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	device, err := h.service.Create(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrVenueNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Venue not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"device": device})
}

func (h *DeviceHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	device, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrDeviceNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Device not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"device": device})
}
