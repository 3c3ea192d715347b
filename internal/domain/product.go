package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_product_repository.go -package mocks github.com/skyyield/skyyield/internal/domain ProductRepository

// ProductStatus is the catalog status of a store product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// ValidProductStatus reports whether s is a known product status
func ValidProductStatus(s ProductStatus) bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a store catalog entry, mirrored to Stripe for checkout
type Product struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	SKU             string        `json:"sku"`
	PriceCents      int64         `json:"price_cents"`
	Currency        string        `json:"currency"`
	Status          ProductStatus `json:"status"`
	StripeProductID string        `json:"stripe_product_id,omitempty"`
	StripePriceID   string        `json:"stripe_price_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ErrProductNotFound is returned when a product is not found
type ErrProductNotFound struct {
	ID string
}

func (e *ErrProductNotFound) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

// CreateProductRequest defines the parameters for creating a product
type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SKU         string `json:"sku"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency,omitempty"`
}

func (r *CreateProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if r.PriceCents <= 0 {
		return fmt.Errorf("price_cents must be positive")
	}
	if r.Currency == "" {
		r.Currency = "usd"
	}
	return nil
}

// UpdateProductRequest defines the mutable product fields
type UpdateProductRequest struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	PriceCents  *int64         `json:"price_cents,omitempty"`
	Status      *ProductStatus `json:"status,omitempty"`
}

func (r *UpdateProductRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.PriceCents != nil && *r.PriceCents <= 0 {
		return fmt.Errorf("price_cents must be positive")
	}
	if r.Status != nil && !ValidProductStatus(*r.Status) {
		return fmt.Errorf("invalid product status: %s", *r.Status)
	}
	return nil
}

// CheckoutRequest starts a Stripe checkout session for a product
type CheckoutRequest struct {
	ProductID  string `json:"product_id"`
	PartnerID  string `json:"partner_id"`
	Quantity   int    `json:"quantity"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (r *CheckoutRequest) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if r.PartnerID == "" {
		return fmt.Errorf("partner_id is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if !govalidator.IsURL(r.SuccessURL) {
		return fmt.Errorf("invalid success_url")
	}
	if !govalidator.IsURL(r.CancelURL) {
		return fmt.Errorf("invalid cancel_url")
	}
	return nil
}

// CheckoutSession is the provider session returned to the client
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProductRepository is the interface for product persistence
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Update(ctx context.Context, product *Product) error
	List(ctx context.Context, status ProductStatus, limit, offset int) ([]*Product, error)
}
