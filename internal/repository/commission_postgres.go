package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type commissionRepository struct {
	db *sql.DB
}

// NewCommissionRepository creates a new PostgreSQL repository for monthly commissions
func NewCommissionRepository(db *sql.DB) domain.CommissionRepository {
	return &commissionRepository{db: db}
}

const commissionColumns = `id, partner_id, period, device_count, amount_cents, status, created_at, updated_at`

func scanCommission(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.MonthlyCommission, error) {
	var c domain.MonthlyCommission
	err := scanner.Scan(
		&c.ID,
		&c.PartnerID,
		&c.Period,
		&c.DeviceCount,
		&c.AmountCents,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts or replaces the commission for (partner_id, period). A paid
// commission is never overwritten by a recomputation.
func (r *commissionRepository) Upsert(ctx context.Context, commission *domain.MonthlyCommission) error {
	now := time.Now().UTC()
	if commission.ID == "" {
		commission.ID = uuid.New().String()
	}
	commission.CreatedAt = now
	commission.UpdatedAt = now

	query := `
		INSERT INTO monthly_commissions (
			id, partner_id, period, device_count, amount_cents, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (partner_id, period) DO UPDATE SET
			device_count = EXCLUDED.device_count,
			amount_cents = EXCLUDED.amount_cents,
			updated_at = EXCLUDED.updated_at
		WHERE monthly_commissions.status <> 'paid'
	`

	_, err := r.db.ExecContext(ctx, query,
		commission.ID,
		commission.PartnerID,
		commission.Period,
		commission.DeviceCount,
		commission.AmountCents,
		commission.Status,
		commission.CreatedAt,
		commission.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert commission: %w", err)
	}

	return nil
}

// ListByPartner retrieves a partner's commissions, newest period first
func (r *commissionRepository) ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]*domain.MonthlyCommission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM monthly_commissions
		WHERE partner_id = $1
		ORDER BY period DESC
		LIMIT $2 OFFSET $3
	`, commissionColumns)

	rows, err := r.db.QueryContext(ctx, query, partnerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	defer rows.Close()

	var commissions []*domain.MonthlyCommission
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission row: %w", err)
		}
		commissions = append(commissions, commission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through commissions: %w", err)
	}

	return commissions, nil
}

// ListByPeriod retrieves all commissions for one period
func (r *commissionRepository) ListByPeriod(ctx context.Context, period string) ([]*domain.MonthlyCommission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM monthly_commissions
		WHERE period = $1
		ORDER BY partner_id
	`, commissionColumns)

	rows, err := r.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions for period: %w", err)
	}
	defer rows.Close()

	var commissions []*domain.MonthlyCommission
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission row: %w", err)
		}
		commissions = append(commissions, commission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through commissions: %w", err)
	}

	return commissions, nil
}

// MarkPaid flags a commission as paid out
func (r *commissionRepository) MarkPaid(ctx context.Context, id string) error {
	query := `UPDATE monthly_commissions SET status = 'paid', updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark commission paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("commission %s not found", id)
	}

	return nil
}
