package http

import (
	"io"
	"net/http"

	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/service"
	"github.com/skyyield/skyyield/pkg/logger"
)

// WebhookHandler receives provider deliveries. A provider whose verification
// material is missing from configuration is not registered at all; there is
// no unverified fallback path.
type WebhookHandler struct {
	pipeline *service.PipelineService
	calendly *service.CalendlyService
	esign    *service.ESignService
	tipalti  *service.TipaltiService
	payments *service.PaymentService
	stripe   *service.StripeClient
	products *service.ProductService
	users    *service.UserService

	clerkVerifier *svix.Webhook
	logger        logger.Logger
}

func NewWebhookHandler(
	pipeline *service.PipelineService,
	calendly *service.CalendlyService,
	esign *service.ESignService,
	tipalti *service.TipaltiService,
	payments *service.PaymentService,
	stripe *service.StripeClient,
	products *service.ProductService,
	users *service.UserService,
	clerkSecret string,
	logger logger.Logger,
) (*WebhookHandler, error) {
	h := &WebhookHandler{
		pipeline: pipeline,
		calendly: calendly,
		esign:    esign,
		tipalti:  tipalti,
		payments: payments,
		stripe:   stripe,
		products: products,
		users:    users,
		logger:   logger,
	}

	if clerkSecret != "" {
		verifier, err := svix.NewWebhook(clerkSecret)
		if err != nil {
			return nil, err
		}
		h.clerkVerifier = verifier
	}

	return h, nil
}

// RegisterRoutes registers one endpoint per configured provider. Unconfigured
// providers get no route; their deliveries 404.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.calendly != nil {
		mux.HandleFunc("/webhooks/calendly", h.handleCalendly)
	}
	if h.esign != nil {
		mux.HandleFunc("/webhooks/esign", h.handleESign)
	}
	if h.tipalti != nil {
		mux.HandleFunc("/webhooks/tipalti", h.handleTipalti)
	}
	if h.stripe != nil {
		mux.HandleFunc("/webhooks/stripe", h.handleStripe)
	}
	if h.clerkVerifier != nil {
		mux.HandleFunc("/webhooks/clerk", h.handleClerk)
	}
}

func (h *WebhookHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return payload, true
}

func (h *WebhookHandler) handleCalendly(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.calendly.VerifySignature(payload, r.Header.Get("Calendly-Webhook-Signature")); err != nil {
		WriteJSONError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := h.calendly.ParseEvent(payload)
	if err != nil {
		// unsupported event types are acknowledged so the provider stops retrying
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	h.processPipelineEvent(w, r, event, payload)
}

func (h *WebhookHandler) handleESign(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.esign.VerifyToken(r.Header.Get("X-Esign-Token")); err != nil {
		WriteJSONError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	event, err := h.esign.ParseEvent(payload)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	h.processPipelineEvent(w, r, event, payload)
}

func (h *WebhookHandler) handleTipalti(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.tipalti.VerifySignature(payload, r.Header.Get("X-Tipalti-Signature")); err != nil {
		WriteJSONError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	switch h.tipalti.ClassifyEvent(payload) {
	case service.TipaltiEventPayee:
		event, err := h.tipalti.ParsePayeeEvent(payload)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		h.processPipelineEvent(w, r, event, payload)

	case service.TipaltiEventPayment:
		payment, err := h.tipalti.ParsePaymentEvent(payload)
		if err != nil {
			h.logger.WithField("error", err.Error()).Warn("unparseable tipalti payment event")
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.payments.RecordPayment(r.Context(), payment); err != nil {
			h.logger.WithField("ref_code", payment.RefCode).Error("Failed to record payment")
			WriteJSONError(w, "Failed to record payment", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})

	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	}
}

func (h *WebhookHandler) handleStripe(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.stripe.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature")); err != nil {
		WriteJSONError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	record, err := h.products.HandleCheckoutCompleted(r.Context(), payload)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to handle checkout event")
		WriteJSONError(w, "Failed to handle event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(record.Outcome)})
}

func (h *WebhookHandler) handleClerk(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	// Clerk sends svix-prefixed headers in the standard-webhooks format
	headers := http.Header{}
	headers.Set("Webhook-Id", r.Header.Get("Svix-Id"))
	headers.Set("Webhook-Timestamp", r.Header.Get("Svix-Timestamp"))
	headers.Set("Webhook-Signature", r.Header.Get("Svix-Signature"))

	if err := h.clerkVerifier.Verify(payload, headers); err != nil {
		WriteJSONError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	record, err := h.users.HandleClerkDelivery(r.Context(), r.Header.Get("Svix-Id"), payload)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to handle clerk event")
		WriteJSONError(w, "Failed to handle event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(record.Outcome)})
}

func (h *WebhookHandler) processPipelineEvent(w http.ResponseWriter, r *http.Request, event domain.PipelineEvent, payload []byte) {
	record, err := h.pipeline.ProcessEvent(r.Context(), event, payload)
	if err != nil {
		h.logger.WithField("provider", string(event.Provider)).Error("Failed to process pipeline event")
		WriteJSONError(w, "Failed to process event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(record.Outcome)})
}
