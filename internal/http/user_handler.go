package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/pkg/logger"
)

// UserHandler exposes the session endpoints and admin impersonation
type UserHandler struct {
	authService    domain.AuthService
	partnerService domain.PartnerServiceInterface
	auth           *middleware.AuthMiddleware
	secureCookies  bool
	logger         logger.Logger
}

func NewUserHandler(
	authService domain.AuthService,
	partnerService domain.PartnerServiceInterface,
	auth *middleware.AuthMiddleware,
	secureCookies bool,
	logger logger.Logger,
) *UserHandler {
	return &UserHandler{
		authService:    authService,
		partnerService: partnerService,
		auth:           auth,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

type impersonateRequest struct {
	PartnerID string `json:"partner_id"`
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/users.me", requireAuth(http.HandlerFunc(h.handleMe)))
	mux.Handle("/api/users.impersonate", requireAdmin(http.HandlerFunc(h.handleImpersonate)))
	mux.Handle("/api/users.stopImpersonation", requireAuth(http.HandlerFunc(h.handleStopImpersonation)))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	resp := map[string]interface{}{
		"user": user,
	}
	if partnerID, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		resp["impersonated_partner_id"] = partnerID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) handleImpersonate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PartnerID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	partner, err := h.partnerService.GetPartner(r.Context(), req.PartnerID)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Partner not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to look up partner")
		WriteJSONError(w, "Failed to look up partner", http.StatusInternalServerError)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	token, err := h.authService.IssueImpersonationToken(user.ID, partner.ID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to issue impersonation token")
		WriteJSONError(w, "Failed to issue impersonation token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     domain.ImpersonationCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(domain.ImpersonationTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"partner": partner,
	})
}

func (h *UserHandler) handleStopImpersonation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     domain.ImpersonationCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
