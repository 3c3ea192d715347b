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

// BlogHandler serves the marketing site articles. The read side is public;
// authoring is admin only.
type BlogHandler struct {
	service *service.BlogService
	auth    *middleware.AuthMiddleware
	logger  logger.Logger
}

func NewBlogHandler(service *service.BlogService, auth *middleware.AuthMiddleware, logger logger.Logger) *BlogHandler {
	return &BlogHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

type publishBlogPostRequest struct {
	ID string `json:"id"`
}

func (h *BlogHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAdmin := func(next http.Handler) http.Handler {
		return h.auth.RequireAuth(h.auth.RequireAdmin(next))
	}

	mux.HandleFunc("/api/blog.list", h.handleList)
	mux.HandleFunc("/api/blog.get", h.handleGet)
	mux.Handle("/api/blog.create", requireAdmin(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/blog.update", requireAdmin(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/blog.publish", requireAdmin(http.HandlerFunc(h.handlePublish)))
	mux.Handle("/api/blog.listAll", requireAdmin(http.HandlerFunc(h.handleListAll)))
}

// handleList is public and only ever returns published posts
func (h *BlogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	posts, err := h.service.ListPublished(r.Context(), limit, offset)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list blog posts")
		WriteJSONError(w, "Failed to list blog posts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// handleGet is public; unpublished posts behave as not found
func (h *BlogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		WriteJSONError(w, "Missing slug", http.StatusBadRequest)
		return
	}

	post, err := h.service.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		var notFound *domain.ErrBlogPostNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Blog post not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get blog post")
		WriteJSONError(w, "Failed to get blog post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

func (h *BlogHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	posts, err := h.service.List(r.Context(), domain.BlogPostStatus(query.Get("status")), limit, offset)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *BlogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateBlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, _ := domain.UserFromContext(r.Context())
	post, err := h.service.Create(r.Context(), user.ID, &req)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"post": post})
}

func (h *BlogHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateBlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var notFound *domain.ErrBlogPostNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Blog post not found", http.StatusNotFound)
			return
		}
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

func (h *BlogHandler) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req publishBlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.Publish(r.Context(), req.ID)
	if err != nil {
		var notFound *domain.ErrBlogPostNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Blog post not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to publish blog post")
		WriteJSONError(w, "Failed to publish blog post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}
