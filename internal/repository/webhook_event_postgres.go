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

type webhookEventRepository struct {
	db *sql.DB
}

// NewWebhookEventRepository creates a new PostgreSQL repository for the webhook audit trail
func NewWebhookEventRepository(db *sql.DB) domain.WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

const webhookEventColumns = `id, provider, event_type, external_id, partner_id,
	outcome, error, raw_payload, created_at`

// Store persists a received webhook delivery. Every delivery is stored
// regardless of outcome.
func (r *webhookEventRepository) Store(ctx context.Context, record *domain.WebhookEventRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO webhook_events (
			id, provider, event_type, external_id, partner_id,
			outcome, error, raw_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Provider,
		record.EventType,
		nullString(record.ExternalID),
		record.PartnerID,
		record.Outcome,
		nullString(record.Error),
		record.RawPayload,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store webhook event: %w", err)
	}

	return nil
}

// HasExternalID reports whether a processed delivery with this provider and
// external id was already recorded
func (r *webhookEventRepository) HasExternalID(ctx context.Context, provider domain.WebhookProvider, externalID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM webhook_events
			WHERE provider = $1 AND external_id = $2 AND outcome = 'processed'
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, provider, externalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}

	return exists, nil
}

// List retrieves webhook deliveries matching the filter params
func (r *webhookEventRepository) List(ctx context.Context, params domain.WebhookEventListParams) ([]*domain.WebhookEventRecord, error) {
	builder := sq.Select(webhookEventColumns).
		From("webhook_events").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	if params.Provider != "" {
		builder = builder.Where(sq.Eq{"provider": params.Provider})
	}
	if params.Outcome != "" {
		builder = builder.Where(sq.Eq{"outcome": params.Outcome})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook event list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}
	defer rows.Close()

	var records []*domain.WebhookEventRecord
	for rows.Next() {
		var record domain.WebhookEventRecord
		var externalID, errText, partnerID sql.NullString
		err := rows.Scan(
			&record.ID,
			&record.Provider,
			&record.EventType,
			&externalID,
			&partnerID,
			&record.Outcome,
			&errText,
			&record.RawPayload,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook event row: %w", err)
		}
		record.ExternalID = externalID.String
		record.Error = errText.String
		if partnerID.Valid {
			record.PartnerID = &partnerID.String
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through webhook events: %w", err)
	}

	return records, nil
}
