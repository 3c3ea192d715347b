package domain

import (
	"context"
	"database/sql"
	"time"
)

//go:generate mockgen -destination mocks/mock_activity_repository.go -package mocks github.com/skyyield/skyyield/internal/domain ActivityLogRepository

// ActivityEntry is one audit trail row. Entries for state mutations are
// inserted in the same transaction as the mutation itself, so an audit row
// exists if and only if the change committed.
type ActivityEntry struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entity types used in the activity log
const (
	EntityPartner         = "partner"
	EntityVenue           = "venue"
	EntityDevice          = "device"
	EntityPurchaseRequest = "purchase_request"
	EntityPayment         = "payment"
	EntityProspect        = "prospect"
	EntityBlogPost        = "blog_post"
	EntityProduct         = "product"
	EntityUser            = "user"
)

// SystemActor is recorded when a change is driven by a webhook or job
// rather than an interactive user
const SystemActor = "system"

// ActivityLogRepository persists the audit trail
type ActivityLogRepository interface {
	Insert(ctx context.Context, entry *ActivityEntry) error
	// InsertTx records the entry inside the caller's transaction
	InsertTx(ctx context.Context, tx *sql.Tx, entry *ActivityEntry) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*ActivityEntry, error)
}
