package http

import (
	"net/http"
	"strconv"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
)

type PaymentHandler struct {
	service *service.PaymentService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewPaymentHandler(service *service.PaymentService, auth *middleware.AuthMiddleware, logger logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/payments.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/payments.summary", requireAdmin(http.HandlerFunc(h.handleSummary)))
	mux.Handle("/api/payments.reconcile", requireAdmin(http.HandlerFunc(h.handleReconcile)))
}

func (h *PaymentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	params := domain.PaymentListParams{
		PartnerID: query.Get("partner_id"),
		PayeeID:   query.Get("payee_id"),
		Status:    domain.PaymentStatus(query.Get("status")),
		Limit:     limit,
		Offset:    offset,
	}

	// an impersonating admin sees the partner's payments only
	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		params.PartnerID = impersonated
	}

	payments, err := h.service.ListPayments(r.Context(), params)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *PaymentHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get payment summary")
		WriteJSONError(w, "Failed to get payment summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summary": summary})
}

func (h *PaymentHandler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.service.Reconcile(r.Context()); err != nil {
		h.logger.WithField("error", err.Error()).Error("Reconciliation failed")
		WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
