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

type ProductHandler struct {
	service *service.ProductService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewProductHandler(service *service.ProductService, auth *middleware.AuthMiddleware, logger logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(h.auth.RequireAdmin(next))
	}

	mux.Handle("/api/products.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/products.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/products.create", requireAdmin(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/products.update", requireAdmin(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/store.checkout", requireAuth(http.HandlerFunc(h.handleCheckout)))
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	// non-admins only ever see the published catalog
	status := domain.ProductStatus(query.Get("status"))
	if user, ok := domain.UserFromContext(r.Context()); !ok || !user.IsAdmin {
		status = domain.ProductStatusPublished
	}

	products, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing product ID", http.StatusBadRequest)
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrProductNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get product")
		WriteJSONError(w, "Failed to get product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrProductNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if impersonated, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
		req.PartnerID = impersonated
	}

	session, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrProductNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Checkout failed")
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}
