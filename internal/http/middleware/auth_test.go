package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
	"github.com/skyyield/skyyield/internal/http/middleware"
	pkgmocks "github.com/skyyield/skyyield/pkg/mocks"
	"github.com/skyyield/skyyield/pkg/ratelimiter"
)

func setupAuthMiddleware(t *testing.T) (*middleware.AuthMiddleware, *mocks.MockAuthService, *pkgmocks.MockLogger, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	mockAuthService := mocks.NewMockAuthService(ctrl)
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	limiter := ratelimiter.New(10, 5*time.Minute)
	t.Cleanup(limiter.Stop)
	return middleware.NewAuthMiddleware(mockAuthService, limiter, mockLogger), mockAuthService, mockLogger, ctrl
}

// echoUser writes back what the middleware stored in the context
func echoUser(t *testing.T, sawUser **domain.User, sawPartner *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := domain.UserFromContext(r.Context()); ok {
			*sawUser = user
		}
		if partnerID, ok := domain.ImpersonatedPartnerFromContext(r.Context()); ok {
			*sawPartner = partnerID
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	t.Run("MissingHeader", func(t *testing.T) {
		mw, _, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
		w := httptest.NewRecorder()

		mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		mw, _, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()

		mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "bad-token").
			Return(nil, domain.ErrSessionInvalid)

		req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid or expired session")
	})

	t.Run("ValidTokenStoresUser", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		user := &domain.User{ID: "u-1", Email: "partner@example.com"}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "good-token").
			Return(user, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		var sawUser *domain.User
		var sawPartner string
		mw.RequireAuth(echoUser(t, &sawUser, &sawPartner)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, user, sawUser)
		assert.Empty(t, sawPartner)
	})

	t.Run("AdminWithImpersonationCookie", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "u-admin", Email: "ops@example.com", IsAdmin: true}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "admin-token").
			Return(admin, nil)
		mockAuthService.EXPECT().
			VerifyImpersonationToken("imp-token").
			Return("partner-7", nil)

		req := httptest.NewRequest(http.MethodGet, "/api/venues.list", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		req.AddCookie(&http.Cookie{Name: domain.ImpersonationCookieName, Value: "imp-token"})
		w := httptest.NewRecorder()

		var sawUser *domain.User
		var sawPartner string
		mw.RequireAuth(echoUser(t, &sawUser, &sawPartner)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "partner-7", sawPartner)
	})

	t.Run("InvalidImpersonationCookieIsIgnored", func(t *testing.T) {
		mw, mockAuthService, mockLogger, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "u-admin", Email: "ops@example.com", IsAdmin: true}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "admin-token").
			Return(admin, nil)
		mockAuthService.EXPECT().
			VerifyImpersonationToken("stale-token").
			Return("", errors.New("token expired"))
		mockLogger.EXPECT().WithField("user_id", "u-admin").Return(mockLogger)
		mockLogger.EXPECT().Warn(gomock.Any())

		req := httptest.NewRequest(http.MethodGet, "/api/venues.list", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		req.AddCookie(&http.Cookie{Name: domain.ImpersonationCookieName, Value: "stale-token"})
		w := httptest.NewRecorder()

		var sawUser *domain.User
		var sawPartner string
		mw.RequireAuth(echoUser(t, &sawUser, &sawPartner)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sawPartner)
	})

	t.Run("RepeatedFailuresLockOutTheAddress", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockAuthService := mocks.NewMockAuthService(ctrl)
		mockLogger := pkgmocks.NewMockLogger(ctrl)
		limiter := ratelimiter.New(3, 5*time.Minute)
		t.Cleanup(limiter.Stop)
		mw := middleware.NewAuthMiddleware(mockAuthService, limiter, mockLogger)

		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "bad-token").
			Return(nil, domain.ErrSessionInvalid).
			Times(3)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		}))

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}

		// the fourth attempt never reaches token verification
		req := httptest.NewRequest(http.MethodGet, "/api/partners.list", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("NonAdminCookieIsNotVerified", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		user := &domain.User{ID: "u-1", Email: "partner@example.com"}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "good-token").
			Return(user, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/venues.list", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		req.AddCookie(&http.Cookie{Name: domain.ImpersonationCookieName, Value: "whatever"})
		w := httptest.NewRecorder()

		var sawUser *domain.User
		var sawPartner string
		mw.RequireAuth(echoUser(t, &sawUser, &sawPartner)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sawPartner)
	})
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	t.Run("AdminPasses", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "u-admin", IsAdmin: true}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "admin-token").
			Return(admin, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/partners.create", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		w := httptest.NewRecorder()

		reached := false
		mw.RequireAuth(mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		}))).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, reached)
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		mw, mockAuthService, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		user := &domain.User{ID: "u-1", IsAdmin: false}
		mockAuthService.EXPECT().
			VerifyToken(gomock.Any(), "user-token").
			Return(user, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/partners.create", nil)
		req.Header.Set("Authorization", "Bearer user-token")
		w := httptest.NewRecorder()

		mw.RequireAuth(mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		}))).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Admin access required")
	})

	t.Run("NoUserInContext", func(t *testing.T) {
		mw, _, _, ctrl := setupAuthMiddleware(t)
		defer ctrl.Finish()

		req := httptest.NewRequest(http.MethodPost, "/api/partners.create", nil)
		w := httptest.NewRecorder()

		mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
