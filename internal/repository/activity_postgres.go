package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type activityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new PostgreSQL repository for the audit trail
func NewActivityLogRepository(db *sql.DB) domain.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

const insertActivityQuery = `
	INSERT INTO activity_log (id, entity_type, entity_id, action, actor, detail, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func prepareActivityEntry(entry *domain.ActivityEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now().UTC()
}

// Insert records an audit entry
func (r *activityLogRepository) Insert(ctx context.Context, entry *domain.ActivityEntry) error {
	prepareActivityEntry(entry)

	_, err := r.db.ExecContext(ctx, insertActivityQuery,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action,
		entry.Actor, nullString(entry.Detail), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}

	return nil
}

// InsertTx records an audit entry inside the caller's transaction, so the
// entry commits atomically with the mutation it describes
func (r *activityLogRepository) InsertTx(ctx context.Context, tx *sql.Tx, entry *domain.ActivityEntry) error {
	prepareActivityEntry(entry)

	_, err := tx.ExecContext(ctx, insertActivityQuery,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action,
		entry.Actor, nullString(entry.Detail), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}

	return nil
}

// ListByEntity retrieves the audit trail for one entity, newest first
func (r *activityLogRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.ActivityEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, actor, detail, created_at
		FROM activity_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityEntry
	for rows.Next() {
		var entry domain.ActivityEntry
		var detail sql.NullString
		err := rows.Scan(&entry.ID, &entry.EntityType, &entry.EntityID,
			&entry.Action, &entry.Actor, &detail, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry row: %w", err)
		}
		entry.Detail = detail.String
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through activity entries: %w", err)
	}

	return entries, nil
}
