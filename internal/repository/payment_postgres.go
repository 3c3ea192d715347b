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

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PostgreSQL repository for payout payments
func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, ref_code, payee_id, partner_id, amount_cents, currency,
	status, failure_code, submitted_at, completed_at, created_at, updated_at`

func scanPayment(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Payment, error) {
	var p domain.Payment
	var partnerID, failureCode sql.NullString
	var submittedAt, completedAt sql.NullTime

	err := scanner.Scan(
		&p.ID,
		&p.RefCode,
		&p.PayeeID,
		&partnerID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&failureCode,
		&submittedAt,
		&completedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if partnerID.Valid {
		p.PartnerID = &partnerID.String
	}
	if failureCode.Valid {
		p.FailureCode = failureCode.String
	}
	if submittedAt.Valid {
		p.SubmittedAt = &submittedAt.Time
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}

	return &p, nil
}

// Upsert inserts the payment or updates its status fields when the ref code
// already exists. Webhook redeliveries are therefore idempotent: the same
// ref_code always resolves to a single row.
func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	now := time.Now().UTC()
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now

	query := `
		INSERT INTO tipalti_payments (
			id, ref_code, payee_id, partner_id, amount_cents, currency,
			status, failure_code, submitted_at, completed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (ref_code) DO UPDATE SET
			status = EXCLUDED.status,
			failure_code = EXCLUDED.failure_code,
			amount_cents = EXCLUDED.amount_cents,
			submitted_at = COALESCE(tipalti_payments.submitted_at, EXCLUDED.submitted_at),
			completed_at = COALESCE(EXCLUDED.completed_at, tipalti_payments.completed_at),
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.RefCode,
		payment.PayeeID,
		payment.PartnerID,
		payment.AmountCents,
		payment.Currency,
		payment.Status,
		nullString(payment.FailureCode),
		payment.SubmittedAt,
		payment.CompletedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	return nil
}

// GetByRefCode retrieves a payment by the provider's reference code
func (r *paymentRepository) GetByRefCode(ctx context.Context, refCode string) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM tipalti_payments WHERE ref_code = $1`, paymentColumns)

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, refCode))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payment %s not found", refCode)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// List retrieves payments matching the filter params
func (r *paymentRepository) List(ctx context.Context, params domain.PaymentListParams) ([]*domain.Payment, error) {
	builder := sq.Select(paymentColumns).
		From("tipalti_payments").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	if params.PartnerID != "" {
		builder = builder.Where(sq.Eq{"partner_id": params.PartnerID})
	}
	if params.PayeeID != "" {
		builder = builder.Where(sq.Eq{"payee_id": params.PayeeID})
	}
	if params.Status != "" {
		builder = builder.Where(sq.Eq{"status": params.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through payments: %w", err)
	}

	return payments, nil
}

// Summary aggregates payment totals for the admin dashboard
func (r *paymentRepository) Summary(ctx context.Context) (*domain.PaymentSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE status = 'completed'), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE status = 'submitted'), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE status = 'failed'), 0),
			COUNT(DISTINCT payee_id),
			COUNT(*)
		FROM tipalti_payments
	`

	var summary domain.PaymentSummary
	err := r.db.QueryRowContext(ctx, query).Scan(
		&summary.TotalPaidCents,
		&summary.TotalPendingCents,
		&summary.TotalFailedCents,
		&summary.PayeeCount,
		&summary.PaymentCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}

	return &summary, nil
}
