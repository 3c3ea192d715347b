package http_test

import (
	"bytes"
	"context"
	"database/sql"
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

type purchaseRequestHandlerMocks struct {
	repo         *mocks.MockPurchaseRequestRepository
	partnerRepo  *mocks.MockPartnerRepository
	productRepo  *mocks.MockProductRepository
	deviceRepo   *mocks.MockDeviceRepository
	activityRepo *mocks.MockActivityLogRepository
	mailer       *pkgmocks.MockMailer
	authService  *mocks.MockAuthService
}

// setupPurchaseRequestMux wires the handler behind the real auth middleware so
// tests go through the same route stack as production traffic
func setupPurchaseRequestMux(t *testing.T) (*http.ServeMux, *purchaseRequestHandlerMocks, *gomock.Controller) {
	ctrl := gomock.NewController(t)

	m := &purchaseRequestHandlerMocks{
		repo:         mocks.NewMockPurchaseRequestRepository(ctrl),
		partnerRepo:  mocks.NewMockPartnerRepository(ctrl),
		productRepo:  mocks.NewMockProductRepository(ctrl),
		deviceRepo:   mocks.NewMockDeviceRepository(ctrl),
		activityRepo: mocks.NewMockActivityLogRepository(ctrl),
		mailer:       pkgmocks.NewMockMailer(ctrl),
		authService:  mocks.NewMockAuthService(ctrl),
	}

	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	svc := service.NewPurchaseRequestService(
		m.repo,
		m.partnerRepo,
		m.productRepo,
		m.deviceRepo,
		m.activityRepo,
		m.mailer,
		mockLogger,
	)

	limiter := ratelimiter.New(10, 5*time.Minute)
	t.Cleanup(limiter.Stop)
	authMiddleware := middleware.NewAuthMiddleware(m.authService, limiter, mockLogger)
	handler := http_handler.NewPurchaseRequestHandler(svc, authMiddleware, mockLogger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, m, ctrl
}

func expectUser(m *purchaseRequestHandlerMocks, token string, user *domain.User) {
	m.authService.EXPECT().VerifyToken(gomock.Any(), token).Return(user, nil)
}

func postJSON(t *testing.T, mux *http.ServeMux, path, token string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestPurchaseRequestHandler_Approve(t *testing.T) {
	t.Run("NonAdminForbidden", func(t *testing.T) {
		mux, m, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		expectUser(m, "partner-token", &domain.User{ID: "u-1", Email: "partner@example.com", IsAdmin: false})

		w := postJSON(t, mux, "/api/purchaseRequests.approve", "partner-token", map[string]string{"id": "req-1"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Admin access required")
	})

	t.Run("AdminApproves", func(t *testing.T) {
		mux, m, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "admin-1", Email: "ops@example.com", IsAdmin: true}
		expectUser(m, "admin-token", admin)

		request := &domain.DevicePurchaseRequest{
			ID:        "req-1",
			PartnerID: "partner-1",
			Quantity:  2,
			Status:    domain.PurchaseStatusPendingApproval,
		}

		m.repo.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(*sql.Tx) error) error {
				return fn(nil)
			})
		m.repo.EXPECT().GetByIDTx(gomock.Any(), gomock.Nil(), "req-1").Return(request, nil)
		m.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil)
		m.activityRepo.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil)
		m.partnerRepo.EXPECT().GetByID(gomock.Any(), "partner-1").
			Return(&domain.Partner{ID: "partner-1", Email: "partner@example.com", PartnerCode: "LP-2026-0001"}, nil)
		m.mailer.EXPECT().SendPurchaseRequestApproved("partner@example.com", "LP-2026-0001", 2).Return(nil)

		w := postJSON(t, mux, "/api/purchaseRequests.approve", "admin-token", map[string]string{"id": "req-1"})

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		result := response["purchase_request"].(map[string]interface{})
		assert.Equal(t, string(domain.PurchaseStatusApproved), result["status"])
	})

	t.Run("InvalidTransitionConflicts", func(t *testing.T) {
		mux, m, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "admin-1", Email: "ops@example.com", IsAdmin: true}
		expectUser(m, "admin-token", admin)

		m.repo.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(*sql.Tx) error) error {
				return fn(nil)
			})
		m.repo.EXPECT().GetByIDTx(gomock.Any(), gomock.Nil(), "req-1").Return(&domain.DevicePurchaseRequest{
			ID:     "req-1",
			Status: domain.PurchaseStatusShipped,
		}, nil)

		w := postJSON(t, mux, "/api/purchaseRequests.approve", "admin-token", map[string]string{"id": "req-1"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPurchaseRequestHandler_Create(t *testing.T) {
	t.Run("ZeroQuantityRejected", func(t *testing.T) {
		mux, m, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		expectUser(m, "partner-token", &domain.User{ID: "u-1", Email: "partner@example.com"})

		w := postJSON(t, mux, "/api/purchaseRequests.create", "partner-token", map[string]interface{}{
			"partner_id": "partner-1",
			"product_id": "product-1",
			"quantity":   0,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ImpersonationOverridesPartnerID", func(t *testing.T) {
		mux, m, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		admin := &domain.User{ID: "admin-1", Email: "ops@example.com", IsAdmin: true}
		m.authService.EXPECT().VerifyToken(gomock.Any(), "admin-token").Return(admin, nil)
		m.authService.EXPECT().VerifyImpersonationToken("imp-token").Return("partner-9", nil)

		m.partnerRepo.EXPECT().GetByID(gomock.Any(), "partner-9").Return(&domain.Partner{ID: "partner-9"}, nil)
		m.productRepo.EXPECT().GetByID(gomock.Any(), "product-1").Return(&domain.Product{ID: "product-1"}, nil)
		m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, request *domain.DevicePurchaseRequest) error {
				request.ID = "req-1"
				assert.Equal(t, "partner-9", request.PartnerID)
				return nil
			})
		m.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		payload, err := json.Marshal(map[string]interface{}{
			"partner_id": "partner-1",
			"product_id": "product-1",
			"quantity":   2,
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/purchaseRequests.create", bytes.NewReader(payload))
		req.Header.Set("Authorization", "Bearer admin-token")
		req.AddCookie(&http.Cookie{Name: domain.ImpersonationCookieName, Value: "imp-token"})
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mux, _, ctrl := setupPurchaseRequestMux(t)
		defer ctrl.Finish()

		req := httptest.NewRequest(http.MethodPost, "/api/purchaseRequests.create", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
