package http

import (
	"net/http"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
)

// WebhookEventHandler exposes the webhook audit trail to admins
type WebhookEventHandler struct {
	service *service.PipelineService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewWebhookEventHandler(service *service.PipelineService, auth *middleware.AuthMiddleware, logger logger.Logger) *WebhookEventHandler {
	return &WebhookEventHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *WebhookEventHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAdmin := func(next http.Handler) http.Handler {
		return h.auth.RequireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/webhookEvents.list", requireAdmin(http.HandlerFunc(h.handleList)))
}

func (h *WebhookEventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params domain.WebhookEventListParams
	if err := params.FromQuery(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.service.ListWebhookEvents(r.Context(), params)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list webhook events")
		WriteJSONError(w, "Failed to list webhook events", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
