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

type PurchaseRequestHandler struct {
	service *service.PurchaseRequestService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewPurchaseRequestHandler(service *service.PurchaseRequestService, auth *middleware.AuthMiddleware, logger logger.Logger) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

type approvePurchaseRequestRequest struct {
	ID string `json:"id"`
}

type cancelPurchaseRequestRequest struct {
	ID string `json:"id"`
}

func (h *PurchaseRequestHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/purchaseRequests.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/purchaseRequests.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/purchaseRequests.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	// approve does its own admin check so the attempt is observable in the
	// service layer, not swallowed by routing
	mux.Handle("/api/purchaseRequests.approve", requireAuth(http.HandlerFunc(h.handleApprove)))
	mux.Handle("/api/purchaseRequests.transition", requireAdmin(http.HandlerFunc(h.handleTransition)))
	mux.Handle("/api/purchaseRequests.assign", requireAdmin(http.HandlerFunc(h.handleAssign)))
	mux.Handle("/api/purchaseRequests.cancel", requireAuth(http.HandlerFunc(h.handleCancel)))
}

func (h *PurchaseRequestHandler) handleList(w http.ResponseWriter, r *http.Request) {
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
		requests, err := h.service.ListByPartner(r.Context(), partnerID)
		if err != nil {
			h.logger.WithField("error", err.Error()).Error("Failed to list purchase requests")
			WriteJSONError(w, "Failed to list purchase requests", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_requests": requests})
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	requests, err := h.service.List(r.Context(), domain.PurchaseRequestStatus(query.Get("status")), limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_requests": requests})
}

func (h *PurchaseRequestHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing purchase request ID", http.StatusBadRequest)
		return
	}

	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrPurchaseRequestNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Purchase request not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get purchase request")
		WriteJSONError(w, "Failed to get purchase request", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreatePurchaseRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		req.PartnerID = impersonated
	}

	request, err := h.service.Create(r.Context(), &req)
	if err != nil {
		// a missing partner or product is a bad request, not a 404
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req approvePurchaseRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	request, err := h.service.Approve(r.Context(), user, req.ID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.TransitionPurchaseRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	request, err := h.service.Transition(r.Context(), user.Email, &req)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.AssignPurchaseRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	request, err := h.service.Assign(r.Context(), user.Email, &req)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelPurchaseRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	request, err := h.service.Cancel(r.Context(), user.Email, req.ID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"purchase_request": request})
}

func (h *PurchaseRequestHandler) writeTransitionError(w http.ResponseWriter, err error) {
	var notFound *domain.ErrPurchaseRequestNotFound
	var invalid *domain.ErrInvalidStatusTransition
	switch {
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, "Admin access required", http.StatusForbidden)
	case errors.As(err, &notFound):
		WriteJSONError(w, "Purchase request not found", http.StatusNotFound)
	case errors.As(err, &invalid):
		WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	}
}
