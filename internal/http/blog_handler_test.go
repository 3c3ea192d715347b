package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
	http_handler "github.com/skyyield/skyyield/internal/http"
	"github.com/skyyield/skyyield/internal/http/middleware"
	"github.com/skyyield/skyyield/internal/service"
	pkgmocks "github.com/skyyield/skyyield/pkg/mocks"
	"github.com/skyyield/skyyield/pkg/ratelimiter"
)

func setupBlogMux(t *testing.T) (*http.ServeMux, *mocks.MockBlogRepository, *mocks.MockAuthService, *gomock.Controller) {
	ctrl := gomock.NewController(t)

	mockRepo := mocks.NewMockBlogRepository(ctrl)
	mockAuthService := mocks.NewMockAuthService(ctrl)

	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	svc := service.NewBlogService(mockRepo, mockLogger)
	t.Cleanup(svc.Stop)
	limiter := ratelimiter.New(10, 5*time.Minute)
	t.Cleanup(limiter.Stop)
	authMiddleware := middleware.NewAuthMiddleware(mockAuthService, limiter, mockLogger)
	handler := http_handler.NewBlogHandler(svc, authMiddleware, mockLogger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, mockRepo, mockAuthService, ctrl
}

func TestBlogHandler_HandleGet(t *testing.T) {
	t.Run("PublishedPostIsPublic", func(t *testing.T) {
		mux, mockRepo, _, ctrl := setupBlogMux(t)
		defer ctrl.Finish()

		mockRepo.EXPECT().GetBySlug(gomock.Any(), "rooftop-coverage-in-2026").Return(&domain.BlogPost{
			ID:     "post-1",
			Slug:   "rooftop-coverage-in-2026",
			Title:  "Rooftop Coverage in 2026",
			Status: domain.BlogStatusPublished,
		}, nil)

		// no Authorization header; the read side requires no session
		req := httptest.NewRequest(http.MethodGet, "/api/blog.get?slug=rooftop-coverage-in-2026", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		post := response["post"].(map[string]interface{})
		assert.Equal(t, "rooftop-coverage-in-2026", post["slug"])
	})

	t.Run("DraftBehavesAsNotFound", func(t *testing.T) {
		mux, mockRepo, _, ctrl := setupBlogMux(t)
		defer ctrl.Finish()

		mockRepo.EXPECT().GetBySlug(gomock.Any(), "unreleased-feature").Return(&domain.BlogPost{
			ID:     "post-2",
			Slug:   "unreleased-feature",
			Status: domain.BlogStatusDraft,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/blog.get?slug=unreleased-feature", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MissingSlug", func(t *testing.T) {
		mux, _, _, ctrl := setupBlogMux(t)
		defer ctrl.Finish()

		req := httptest.NewRequest(http.MethodGet, "/api/blog.get", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBlogHandler_HandleCreate(t *testing.T) {
	t.Run("NonAdminForbidden", func(t *testing.T) {
		mux, _, mockAuthService, ctrl := setupBlogMux(t)
		defer ctrl.Finish()

		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "partner-token").
			Return(&domain.User{ID: "u-1", IsAdmin: false}, nil)

		body, _ := json.Marshal(map[string]string{"title": "Post", "content": "Body"})
		req := httptest.NewRequest(http.MethodPost, "/api/blog.create", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer partner-token")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AdminCreatesDraftWithDerivedSlug", func(t *testing.T) {
		mux, mockRepo, mockAuthService, ctrl := setupBlogMux(t)
		defer ctrl.Finish()

		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "admin-token").
			Return(&domain.User{ID: "admin-1", IsAdmin: true}, nil)

		mockRepo.EXPECT().GetBySlug(gomock.Any(), "rooftop-coverage-in-2026").
			Return(nil, &domain.ErrBlogPostNotFound{Slug: "rooftop-coverage-in-2026"})
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ interface{}, post *domain.BlogPost) error {
				post.ID = "post-1"
				assert.Equal(t, "rooftop-coverage-in-2026", post.Slug)
				assert.Equal(t, domain.BlogStatusDraft, post.Status)
				assert.Equal(t, "admin-1", post.AuthorID)
				return nil
			})

		body, _ := json.Marshal(map[string]string{
			"title":   "Rooftop Coverage in 2026!",
			"content": "Where the network grew this year.",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/blog.create", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer admin-token")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
