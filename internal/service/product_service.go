package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// CheckoutProvider is the slice of the payment provider the store needs
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*domain.CheckoutSession, error)
}

// ProductService manages the store catalog and checkout
type ProductService struct {
	repo            domain.ProductRepository
	purchaseService *PurchaseRequestService
	checkout        CheckoutProvider
	audit           webhookAudit
	logger          logger.Logger
}

func NewProductService(repo domain.ProductRepository, purchaseService *PurchaseRequestService, checkout CheckoutProvider, webhookRepo domain.WebhookEventRepository, logger logger.Logger) *ProductService {
	return &ProductService{
		repo:            repo,
		purchaseService: purchaseService,
		checkout:        checkout,
		audit:           webhookAudit{repo: webhookRepo, logger: logger},
		logger:          logger,
	}
}

// Create adds a draft product to the catalog
func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, fmt.Errorf("product with sku %s already exists", req.SKU)
	}

	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Status:      domain.ProductStatusDraft,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Get retrieves a product by id
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the mutable product fields
func (s *ProductService) Update(ctx context.Context, req *domain.UpdateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves products, optionally filtered by status
func (s *ProductService) List(ctx context.Context, status domain.ProductStatus, limit, offset int) ([]*domain.Product, error) {
	if status != "" && !domain.ValidProductStatus(status) {
		return nil, fmt.Errorf("invalid product status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Checkout starts a hosted checkout session for a published product. The
// partner and product ids travel in the session metadata so the completion
// webhook can create the purchase request.
func (s *ProductService) Checkout(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != domain.ProductStatusPublished {
		return nil, fmt.Errorf("product %s is not available for purchase", product.ID)
	}
	if product.StripePriceID == "" {
		return nil, fmt.Errorf("product %s has no checkout price configured", product.ID)
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, CheckoutSessionParams{
		PriceID:    product.StripePriceID,
		Quantity:   req.Quantity,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Metadata: map[string]string{
			"partner_id": req.PartnerID,
			"product_id": product.ID,
			"quantity":   strconv.Itoa(req.Quantity),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

// HandleCheckoutCompleted turns a checkout.session.completed event into an
// approved purchase request; payment replaces the manual approval gate.
// Deliveries are deduplicated on the event id and recorded in the webhook
// audit trail, so a retried event never creates a second purchase request.
func (s *ProductService) HandleCheckoutCompleted(ctx context.Context, payload []byte) (*domain.WebhookEventRecord, error) {
	body := gjson.ParseBytes(payload)

	record := &domain.WebhookEventRecord{
		Provider:   domain.WebhookProviderStripe,
		EventType:  body.Get("type").String(),
		ExternalID: body.Get("id").String(),
		RawPayload: string(payload),
	}

	seen, err := s.audit.seen(ctx, domain.WebhookProviderStripe, record.ExternalID)
	if err != nil {
		return nil, err
	}
	if seen {
		record.Outcome = domain.WebhookOutcomeDuplicate
		return s.audit.store(ctx, record, nil)
	}

	if body.Get("type").String() != "checkout.session.completed" {
		record.Outcome = domain.WebhookOutcomeSkipped
		return s.audit.store(ctx, record, nil)
	}

	session := body.Get("data.object")
	partnerID := session.Get("metadata.partner_id").String()
	productID := session.Get("metadata.product_id").String()
	quantity := int(session.Get("metadata.quantity").Int())

	if partnerID == "" || productID == "" || quantity <= 0 {
		record.Outcome = domain.WebhookOutcomeUnmatched
		record.Error = "session metadata is missing partner_id, product_id or quantity"
		return s.audit.store(ctx, record, nil)
	}
	record.PartnerID = &partnerID

	detail := fmt.Sprintf("paid via checkout session %s", session.Get("id").String())
	if _, err := s.purchaseService.CreateApproved(ctx, partnerID, productID, quantity, detail); err != nil {
		record.Outcome = domain.WebhookOutcomeFailed
		record.Error = err.Error()
		return s.audit.store(ctx, record, nil)
	}

	record.Outcome = domain.WebhookOutcomeProcessed
	return s.audit.store(ctx, record, nil)
}
