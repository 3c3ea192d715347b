package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
)

func TestPaymentRepository_Upsert_Redelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	submitted := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	payment := &domain.Payment{
		RefCode:     "PAY-001",
		PayeeID:     "payee-9",
		AmountCents: 125000,
		Currency:    "USD",
		Status:      domain.PaymentStatusSubmitted,
		SubmittedAt: &submitted,
	}

	// both deliveries hit the same ON CONFLICT upsert, leaving one row
	mock.ExpectExec(`INSERT INTO tipalti_payments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tipalti_payments`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), payment))
	firstID := payment.ID
	assert.NotEmpty(t, firstID)

	require.NoError(t, repo.Upsert(context.Background(), payment))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByRefCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "ref_code", "payee_id", "partner_id", "amount_cents", "currency",
		"status", "failure_code", "submitted_at", "completed_at", "created_at", "updated_at",
	}).AddRow(
		"pay-1", "PAY-001", "payee-9", nil, int64(125000), "USD",
		"completed", nil, now, now, now, now,
	)

	mock.ExpectQuery(`SELECT (.+) FROM tipalti_payments WHERE ref_code = \$1`).
		WithArgs("PAY-001").
		WillReturnRows(rows)

	payment, err := repo.GetByRefCode(context.Background(), "PAY-001")
	require.NoError(t, err)
	assert.Equal(t, int64(125000), payment.AmountCents)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	assert.Nil(t, payment.PartnerID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_Summary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"paid", "pending", "failed", "payees", "payments",
		}).AddRow(int64(500000), int64(125000), int64(0), 3, 7))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500000), summary.TotalPaidCents)
	assert.Equal(t, int64(125000), summary.TotalPendingCents)
	assert.Equal(t, 3, summary.PayeeCount)
	assert.Equal(t, 7, summary.PaymentCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommissionRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommissionRepository(db)

	mock.ExpectExec(`INSERT INTO monthly_commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &domain.MonthlyCommission{
		PartnerID:   "partner-1",
		Period:      "2026-08",
		DeviceCount: 4,
		AmountCents: 10000,
		Status:      domain.CommissionStatusPending,
	})
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
