package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

// fakeCheckoutProvider records the params it was called with
type fakeCheckoutProvider struct {
	params  CheckoutSessionParams
	session *domain.CheckoutSession
	err     error
}

func (f *fakeCheckoutProvider) CreateCheckoutSession(_ context.Context, params CheckoutSessionParams) (*domain.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func newProductService(ctrl *gomock.Controller, checkout CheckoutProvider) (*ProductService, *mocks.MockProductRepository, *mocks.MockWebhookEventRepository, *purchaseRequestMocks) {
	productRepo := mocks.NewMockProductRepository(ctrl)
	webhookRepo := mocks.NewMockWebhookEventRepository(ctrl)
	purchaseSvc, prMocks := newPurchaseRequestService(ctrl)
	svc := NewProductService(productRepo, purchaseSvc, checkout, webhookRepo, newTestLogger(ctrl))
	return svc, productRepo, webhookRepo, prMocks
}

func TestProductServiceCheckout(t *testing.T) {
	req := &domain.CheckoutRequest{
		ProductID:  "product-1",
		PartnerID:  "partner-1",
		Quantity:   3,
		SuccessURL: "https://skyyield.io/store/success",
		CancelURL:  "https://skyyield.io/store/cancel",
	}

	t.Run("PublishedProduct", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := &fakeCheckoutProvider{session: &domain.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/cs_123"}}
		svc, productRepo, _, _ := newProductService(ctrl, provider)

		productRepo.EXPECT().GetByID(gomock.Any(), "product-1").Return(&domain.Product{
			ID:            "product-1",
			Status:        domain.ProductStatusPublished,
			StripePriceID: "price_abc",
		}, nil)

		session, err := svc.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "cs_123", session.ID)
		assert.Equal(t, "price_abc", provider.params.PriceID)
		assert.Equal(t, 3, provider.params.Quantity)
		assert.Equal(t, map[string]string{
			"partner_id": "partner-1",
			"product_id": "product-1",
			"quantity":   "3",
		}, provider.params.Metadata)
	})

	t.Run("DraftProductRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, productRepo, _, _ := newProductService(ctrl, &fakeCheckoutProvider{})

		productRepo.EXPECT().GetByID(gomock.Any(), "product-1").Return(&domain.Product{
			ID:     "product-1",
			Status: domain.ProductStatusDraft,
		}, nil)

		_, err := svc.Checkout(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available for purchase")
	})

	t.Run("MissingPriceRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, productRepo, _, _ := newProductService(ctrl, &fakeCheckoutProvider{})

		productRepo.EXPECT().GetByID(gomock.Any(), "product-1").Return(&domain.Product{
			ID:     "product-1",
			Status: domain.ProductStatusPublished,
		}, nil)

		_, err := svc.Checkout(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no checkout price")
	})
}

func TestProductServiceHandleCheckoutCompleted(t *testing.T) {
	completedPayload := `{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_123",
			"metadata": {"partner_id": "partner-1", "product_id": "product-1", "quantity": "2"}
		}}
	}`

	t.Run("CreatesApprovedRequest", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, webhookRepo, prMocks := newProductService(ctrl, &fakeCheckoutProvider{})

		webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_1").Return(false, nil)
		prMocks.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, request *domain.DevicePurchaseRequest) error {
				request.ID = "req-1"
				assert.Equal(t, domain.PurchaseStatusApproved, request.Status)
				assert.Equal(t, 2, request.Quantity)
				assert.Contains(t, request.Notes, "cs_123")
				return nil
			})
		prMocks.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		webhookRepo.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, record *domain.WebhookEventRecord) error {
				assert.Equal(t, domain.WebhookProviderStripe, record.Provider)
				assert.Equal(t, domain.WebhookOutcomeProcessed, record.Outcome)
				return nil
			})

		record, err := svc.HandleCheckoutCompleted(context.Background(), []byte(completedPayload))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeProcessed, record.Outcome)
		assert.Equal(t, "evt_1", record.ExternalID)
		require.NotNil(t, record.PartnerID)
		assert.Equal(t, "partner-1", *record.PartnerID)
	})

	t.Run("RedeliveredEventCreatesNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, webhookRepo, prMocks := newProductService(ctrl, &fakeCheckoutProvider{})

		gomock.InOrder(
			webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_1").Return(false, nil),
			webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_1").Return(true, nil),
		)
		// the purchase request is created once; the retry only leaves an audit row
		prMocks.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		prMocks.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		webhookRepo.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		first, err := svc.HandleCheckoutCompleted(context.Background(), []byte(completedPayload))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeProcessed, first.Outcome)

		second, err := svc.HandleCheckoutCompleted(context.Background(), []byte(completedPayload))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeDuplicate, second.Outcome)
	})

	t.Run("OtherEventTypesSkipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, webhookRepo, _ := newProductService(ctrl, &fakeCheckoutProvider{})

		webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_2").Return(false, nil)
		webhookRepo.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

		record, err := svc.HandleCheckoutCompleted(context.Background(), []byte(`{"id":"evt_2","type":"payment_intent.succeeded"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeSkipped, record.Outcome)
	})

	t.Run("MissingMetadataUnmatched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, webhookRepo, _ := newProductService(ctrl, &fakeCheckoutProvider{})

		webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_3").Return(false, nil)
		webhookRepo.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

		payload := `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_456","metadata":{}}}}`
		record, err := svc.HandleCheckoutCompleted(context.Background(), []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeUnmatched, record.Outcome)
		assert.NotEmpty(t, record.Error)
	})

	t.Run("CreateFailureRecorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, webhookRepo, prMocks := newProductService(ctrl, &fakeCheckoutProvider{})

		webhookRepo.EXPECT().HasExternalID(gomock.Any(), domain.WebhookProviderStripe, "evt_1").Return(false, nil)
		prMocks.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(fmt.Errorf("connection refused"))
		webhookRepo.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

		record, err := svc.HandleCheckoutCompleted(context.Background(), []byte(completedPayload))
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookOutcomeFailed, record.Outcome)
		assert.Contains(t, record.Error, "connection refused")
	})
}

func TestProductServiceCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, productRepo, _, _ := newProductService(ctrl, &fakeCheckoutProvider{})

	productRepo.EXPECT().GetBySKU(gomock.Any(), "SKY-DEV-1").
		Return(nil, &domain.ErrProductNotFound{ID: "SKY-DEV-1"})
	productRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, product *domain.Product) error {
			assert.Equal(t, domain.ProductStatusDraft, product.Status)
			assert.Equal(t, "usd", product.Currency)
			return nil
		})

	product, err := svc.Create(context.Background(), &domain.CreateProductRequest{
		Name:       "SkyYield Gateway",
		SKU:        "SKY-DEV-1",
		PriceCents: 49900,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusDraft, product.Status)
}
