package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/pkg/logger"
)

type PartnerHandler struct {
	service domain.PartnerServiceInterface
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewPartnerHandler(service domain.PartnerServiceInterface, auth *middleware.AuthMiddleware, logger logger.Logger) *PartnerHandler {
	return &PartnerHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

type deactivatePartnerRequest struct {
	ID string `json:"id"`
}

func (h *PartnerHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/partners.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/partners.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/partners.create", requireAdmin(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/partners.update", requireAdmin(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/partners.deactivate", requireAdmin(http.HandlerFunc(h.handleDeactivate)))
	mux.Handle("/api/partners.transition", requireAdmin(http.HandlerFunc(h.handleTransition)))
}

func (h *PartnerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params domain.PartnerListParams
	if err := params.FromQuery(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.ListPartners(r.Context(), params)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list partners")
		WriteJSONError(w, "Failed to list partners", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *PartnerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing partner ID", http.StatusBadRequest)
		return
	}

	partner, err := h.service.GetPartner(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get partner")
		WriteJSONError(w, "Failed to get partner", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"partner": partner,
	})
}

func (h *PartnerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	partner, err := h.service.CreatePartner(r.Context(), &req)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"partner": partner,
	})
}

func (h *PartnerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	partner, err := h.service.UpdatePartner(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"partner": partner,
	})
}

func (h *PartnerHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deactivatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.DeactivatePartner(r.Context(), req.ID); err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to deactivate partner")
		WriteJSONError(w, "Failed to deactivate partner", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PartnerHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.TransitionPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	partner, err := h.service.TransitionPartner(r.Context(), user.Email, &req)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"partner": partner,
	})
}
