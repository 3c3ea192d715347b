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

type VenueHandler struct {
	service *service.VenueService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewVenueHandler(service *service.VenueService, auth *middleware.AuthMiddleware, logger logger.Logger) *VenueHandler {
	return &VenueHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *VenueHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth

	mux.Handle("/api/venues.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/venues.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/venues.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/venues.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
}

func (h *VenueHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	// an impersonating admin sees the partner's venues only
	partnerID := query.Get("partner_id")
	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		partnerID = impersonated
	}

	if partnerID != "" {
		venues, err := h.service.ListByPartner(r.Context(), partnerID)
		if err != nil {
			h.logger.WithField("error", err.Error()).Error("Failed to list venues")
			WriteJSONError(w, "Failed to list venues", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"venues": venues})
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	venues, err := h.service.List(r.Context(), domain.VenueStatus(query.Get("status")), limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"venues": venues})
}

func (h *VenueHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing venue ID", http.StatusBadRequest)
		return
	}

	venue, err := h.service.Get(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrVenueNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Venue not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get venue")
		WriteJSONError(w, "Failed to get venue", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"venue": venue})
}

func (h *VenueHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		req.PartnerID = impersonated
	}

	venue, err := h.service.Create(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"venue": venue})
}

func (h *VenueHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	venue, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrVenueNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Venue not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"venue": venue})
}
