package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
)

func purchaseRequestRows(status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "partner_id", "product_id", "venue_id", "quantity", "status",
		"notes", "approved_by", "approved_at", "created_at", "updated_at",
	}).AddRow(
		"req-1", "partner-1", "product-1", nil, 4, status,
		nil, nil, nil, now, now,
	)
}

func TestPurchaseRequestRepository_GetByIDTx_LocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM device_purchase_requests WHERE id = \$1 FOR UPDATE`).
		WithArgs("req-1").
		WillReturnRows(purchaseRequestRows("pending_approval"))
	mock.ExpectCommit()

	err = repo.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		request, err := repo.GetByIDTx(context.Background(), tx, "req-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PurchaseStatusPendingApproval, request.Status)
		assert.Equal(t, 4, request.Quantity)
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRequestRepository_UpdateTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE device_purchase_requests SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		return repo.UpdateTx(context.Background(), tx, &domain.DevicePurchaseRequest{
			ID:     "missing",
			Status: domain.PurchaseStatusApproved,
		})
	})
	require.Error(t, err)

	var notFound *domain.ErrPurchaseRequestNotFound
	assert.True(t, errors.As(err, &notFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRequestRepository_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPurchaseRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err = repo.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
