package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
)

type CommissionHandler struct {
	service *service.CommissionService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewCommissionHandler(service *service.CommissionService, auth *middleware.AuthMiddleware, logger logger.Logger) *CommissionHandler {
	return &CommissionHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

type computeCommissionsRequest struct {
	Period string `json:"period"`
}

type markCommissionPaidRequest struct {
	ID string `json:"id"`
}

func (h *CommissionHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/commissions.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/commissions.compute", requireAdmin(http.HandlerFunc(h.handleCompute)))
	mux.Handle("/api/commissions.markPaid", requireAdmin(http.HandlerFunc(h.handleMarkPaid)))
}

func (h *CommissionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	partnerID := query.Get("partner_id")
	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		partnerID = impersonated
	}

	if partnerID != "" {
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		commissions, err := h.service.ListByPartner(r.Context(), partnerID, limit, offset)
		if err != nil {
			h.logger.WithField("error", err.Error()).Error("Failed to list commissions")
			WriteJSONError(w, "Failed to list commissions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"commissions": commissions})
		return
	}

	period := query.Get("period")
	if period == "" {
		WriteJSONError(w, "Missing period or partner_id", http.StatusBadRequest)
		return
	}

	commissions, err := h.service.ListByPeriod(r.Context(), period)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"commissions": commissions})
}

func (h *CommissionHandler) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req computeCommissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Period == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ComputePeriod(r.Context(), req.Period); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CommissionHandler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req markCommissionPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkPaid(r.Context(), req.ID); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to mark commission paid")
		WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
