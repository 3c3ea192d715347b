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

type ProspectHandler struct {
	service *service.ProspectService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewProspectHandler(service *service.ProspectService, auth *middleware.AuthMiddleware, logger logger.Logger) *ProspectHandler {
	return &ProspectHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

type updateProspectStatusRequest struct {
	ID     string                `json:"id"`
	Status domain.ProspectStatus `json:"status"`
}

func (h *ProspectHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAdmin := func(next http.Handler) http.Handler {
		return h.auth.RequireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/prospects.list", requireAdmin(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/prospects.get", requireAdmin(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/prospects.create", requireAdmin(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/prospects.updateStatus", requireAdmin(http.HandlerFunc(h.handleUpdateStatus)))
	mux.Handle("/api/prospects.convert", requireAdmin(http.HandlerFunc(h.handleConvert)))
}

func (h *ProspectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	prospects, err := h.service.List(r.Context(), domain.ProspectStatus(query.Get("status")), limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prospects": prospects,
	})
}

func (h *ProspectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing prospect ID", http.StatusBadRequest)
		return
	}

	prospect, err := h.service.Get(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrProspectNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Prospect not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get prospect")
		WriteJSONError(w, "Failed to get prospect", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prospect": prospect,
	})
}

func (h *ProspectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateProspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, err := h.service.Create(r.Context(), &req)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"prospect": prospect,
	})
}

func (h *ProspectHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateProspectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, err := h.service.UpdateStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		var notFound *domain.ErrProspectNotFound
		var converted *domain.ErrProspectAlreadyConverted
		switch {
		case errors.As(err, &notFound):
			WriteJSONError(w, "Prospect not found", http.StatusNotFound)
		case errors.As(err, &converted):
			WriteJSONError(w, err.Error(), http.StatusConflict)
		default:
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prospect": prospect,
	})
}

func (h *ProspectHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ConvertProspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, partner, err := h.service.Convert(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrProspectNotFound
		var converted *domain.ErrProspectAlreadyConverted
		switch {
		case errors.As(err, &notFound):
			WriteJSONError(w, "Prospect not found", http.StatusNotFound)
		case errors.As(err, &converted):
			WriteJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.WithField("error", err.Error()).Error("Failed to convert prospect")
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prospect": prospect,
		"partner":  partner,
	})
}
