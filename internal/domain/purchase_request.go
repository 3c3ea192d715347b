package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_purchase_request_repository.go -package mocks github.com/skyyield/skyyield/internal/domain PurchaseRequestRepository

// PurchaseRequestStatus is the state of a device purchase request
type PurchaseRequestStatus string

const (
	PurchaseStatusPendingApproval PurchaseRequestStatus = "pending_approval"
	PurchaseStatusApproved        PurchaseRequestStatus = "approved"
	PurchaseStatusOrdered         PurchaseRequestStatus = "ordered"
	PurchaseStatusShipped         PurchaseRequestStatus = "shipped"
	PurchaseStatusReceived        PurchaseRequestStatus = "received"
	PurchaseStatusAssigned        PurchaseRequestStatus = "assigned"
	PurchaseStatusCancelled       PurchaseRequestStatus = "cancelled"
)

// purchaseTransitions guards every status change; re-entering a state is not
// a legal transition. Cancellation is allowed from any non-terminal state.
var purchaseTransitions = map[PurchaseRequestStatus][]PurchaseRequestStatus{
	PurchaseStatusPendingApproval: {PurchaseStatusApproved, PurchaseStatusCancelled},
	PurchaseStatusApproved:        {PurchaseStatusOrdered, PurchaseStatusCancelled},
	PurchaseStatusOrdered:         {PurchaseStatusShipped, PurchaseStatusCancelled},
	PurchaseStatusShipped:         {PurchaseStatusReceived, PurchaseStatusCancelled},
	PurchaseStatusReceived:        {PurchaseStatusAssigned, PurchaseStatusCancelled},
	PurchaseStatusAssigned:        {},
	PurchaseStatusCancelled:       {},
}

// ValidPurchaseStatus reports whether s is a known status
func ValidPurchaseStatus(s PurchaseRequestStatus) bool {
	_, ok := purchaseTransitions[s]
	return ok
}

// CanTransition reports whether moving from -> to is legal
func CanTransition(from, to PurchaseRequestStatus) bool {
	for _, next := range purchaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidStatusTransition is returned for illegal purchase request moves
type ErrInvalidStatusTransition struct {
	From PurchaseRequestStatus
	To   PurchaseRequestStatus
}

func (e *ErrInvalidStatusTransition) Error() string {
	return fmt.Sprintf("cannot transition purchase request from %s to %s", e.From, e.To)
}

// DevicePurchaseRequest is a partner's request to buy devices. Fulfilment is
// a status machine; the assigned transition creates the device rows.
type DevicePurchaseRequest struct {
	ID         string                `json:"id"`
	PartnerID  string                `json:"partner_id"`
	ProductID  string                `json:"product_id"`
	VenueID    *string               `json:"venue_id,omitempty"`
	Quantity   int                   `json:"quantity"`
	Status     PurchaseRequestStatus `json:"status"`
	Notes      string                `json:"notes,omitempty"`
	ApprovedBy *string               `json:"approved_by,omitempty"`
	ApprovedAt *time.Time            `json:"approved_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ErrPurchaseRequestNotFound is returned when a purchase request is not found
type ErrPurchaseRequestNotFound struct {
	ID string
}

func (e *ErrPurchaseRequestNotFound) Error() string {
	return fmt.Sprintf("purchase request %s not found", e.ID)
}

// CreatePurchaseRequestRequest defines the parameters for submitting a request
type CreatePurchaseRequestRequest struct {
	PartnerID string  `json:"partner_id"`
	ProductID string  `json:"product_id"`
	VenueID   *string `json:"venue_id,omitempty"`
	Quantity  int     `json:"quantity"`
	Notes     string  `json:"notes,omitempty"`
}

func (r *CreatePurchaseRequestRequest) Validate() error {
	if r.PartnerID == "" {
		return fmt.Errorf("partner_id is required")
	}
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be at least 1")
	}
	return nil
}

// TransitionPurchaseRequestRequest moves a request to a new status
type TransitionPurchaseRequestRequest struct {
	ID     string                `json:"id"`
	Status PurchaseRequestStatus `json:"status"`
}

func (r *TransitionPurchaseRequestRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !ValidPurchaseStatus(r.Status) {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}

// AssignPurchaseRequestRequest fulfils a received request by creating devices
type AssignPurchaseRequestRequest struct {
	ID      string   `json:"id"`
	VenueID *string  `json:"venue_id,omitempty"`
	Serials []string `json:"serials"`
}

func (r *AssignPurchaseRequestRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(r.Serials) == 0 {
		return fmt.Errorf("serials are required")
	}
	return nil
}

// PurchaseRequestRepository is the interface for purchase request persistence
type PurchaseRequestRepository interface {
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error

	Create(ctx context.Context, request *DevicePurchaseRequest) error
	GetByID(ctx context.Context, id string) (*DevicePurchaseRequest, error)
	// GetByIDTx locks the request row FOR UPDATE so concurrent transitions
	// serialize instead of double-applying
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*DevicePurchaseRequest, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, request *DevicePurchaseRequest) error
	ListByPartner(ctx context.Context, partnerID string) ([]*DevicePurchaseRequest, error)
	List(ctx context.Context, status PurchaseRequestStatus, limit, offset int) ([]*DevicePurchaseRequest, error)
}
