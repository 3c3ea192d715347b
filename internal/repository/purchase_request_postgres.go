package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type purchaseRequestRepository struct {
	db *sql.DB
}

// NewPurchaseRequestRepository creates a new PostgreSQL repository for device purchase requests
func NewPurchaseRequestRepository(db *sql.DB) domain.PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

const purchaseRequestColumns = `id, partner_id, product_id, venue_id, quantity, status,
	notes, approved_by, approved_at, created_at, updated_at`

func scanPurchaseRequest(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.DevicePurchaseRequest, error) {
	var req domain.DevicePurchaseRequest
	var venueID, notes, approvedBy sql.NullString
	var approvedAt sql.NullTime

	err := scanner.Scan(
		&req.ID,
		&req.PartnerID,
		&req.ProductID,
		&venueID,
		&req.Quantity,
		&req.Status,
		&notes,
		&approvedBy,
		&approvedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if venueID.Valid {
		req.VenueID = &venueID.String
	}
	if notes.Valid {
		req.Notes = notes.String
	}
	if approvedBy.Valid {
		req.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Time
	}

	return &req, nil
}

// WithTransaction executes a function within a transaction
func (r *purchaseRequestRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Create persists a new purchase request
func (r *purchaseRequestRepository) Create(ctx context.Context, request *domain.DevicePurchaseRequest) error {
	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	request.CreatedAt = now
	request.UpdatedAt = now

	query := `
		INSERT INTO device_purchase_requests (
			id, partner_id, product_id, venue_id, quantity, status,
			notes, approved_by, approved_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.PartnerID,
		request.ProductID,
		request.VenueID,
		request.Quantity,
		request.Status,
		nullString(request.Notes),
		request.ApprovedBy,
		request.ApprovedAt,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase request: %w", err)
	}

	return nil
}

// GetByID retrieves a purchase request by its ID
func (r *purchaseRequestRepository) GetByID(ctx context.Context, id string) (*domain.DevicePurchaseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM device_purchase_requests WHERE id = $1`, purchaseRequestColumns)

	request, err := scanPurchaseRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrPurchaseRequestNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get purchase request: %w", err)
	}

	return request, nil
}

// GetByIDTx retrieves a purchase request within a transaction, locking the row
func (r *purchaseRequestRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*domain.DevicePurchaseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM device_purchase_requests WHERE id = $1 FOR UPDATE`, purchaseRequestColumns)

	request, err := scanPurchaseRequest(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrPurchaseRequestNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get purchase request: %w", err)
	}

	return request, nil
}

// UpdateTx persists the purchase request within a transaction
func (r *purchaseRequestRepository) UpdateTx(ctx context.Context, tx *sql.Tx, request *domain.DevicePurchaseRequest) error {
	request.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE device_purchase_requests SET
			venue_id = $2,
			quantity = $3,
			status = $4,
			notes = $5,
			approved_by = $6,
			approved_at = $7,
			updated_at = $8
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query,
		request.ID,
		request.VenueID,
		request.Quantity,
		request.Status,
		nullString(request.Notes),
		request.ApprovedBy,
		request.ApprovedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrPurchaseRequestNotFound{ID: request.ID}
	}

	return nil
}

// ListByPartner retrieves all purchase requests submitted by a partner
func (r *purchaseRequestRepository) ListByPartner(ctx context.Context, partnerID string) ([]*domain.DevicePurchaseRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM device_purchase_requests
		WHERE partner_id = $1
		ORDER BY created_at DESC
	`, purchaseRequestColumns)

	rows, err := r.db.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	defer rows.Close()

	return collectPurchaseRequests(rows)
}

// List retrieves purchase requests, optionally filtered by status
func (r *purchaseRequestRepository) List(ctx context.Context, status domain.PurchaseRequestStatus, limit, offset int) ([]*domain.DevicePurchaseRequest, error) {
	builder := sq.Select(purchaseRequestColumns).
		From("device_purchase_requests").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build purchase request list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	defer rows.Close()

	return collectPurchaseRequests(rows)
}

func collectPurchaseRequests(rows *sql.Rows) ([]*domain.DevicePurchaseRequest, error) {
	var requests []*domain.DevicePurchaseRequest
	for rows.Next() {
		request, err := scanPurchaseRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase request row: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through purchase requests: %w", err)
	}
	return requests, nil
}
