package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

// fakeProviderClient stands in for the payout provider API
type fakeProviderClient struct {
	mu       sync.Mutex
	payments map[string][]*domain.Payment
	calls    []string
	err      error
}

func (f *fakeProviderClient) ListPayeePayments(_ context.Context, payeeID string) ([]*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, payeeID)
	if f.err != nil {
		return nil, f.err
	}
	return f.payments[payeeID], nil
}

func TestPaymentServiceRecordPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	svc := NewPaymentService(paymentRepo, partnerRepo, &fakeProviderClient{}, newTestLogger(ctrl))

	payment := &domain.Payment{
		RefCode:     "ref-100",
		PayeeID:     "LP-2026-0042",
		AmountCents: 12550,
		Currency:    "USD",
		Status:      domain.PaymentStatusCompleted,
	}

	partnerRepo.EXPECT().GetByPartnerCode(gomock.Any(), "LP-2026-0042").
		Return(&domain.Partner{ID: "partner-1"}, nil)
	paymentRepo.EXPECT().Upsert(gomock.Any(), payment).Return(nil)

	require.NoError(t, svc.RecordPayment(context.Background(), payment))
	require.NotNil(t, payment.PartnerID)
	assert.Equal(t, "partner-1", *payment.PartnerID)
}

func TestPaymentServiceRecordPaymentUnknownPayee(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	svc := NewPaymentService(paymentRepo, partnerRepo, &fakeProviderClient{}, newTestLogger(ctrl))

	payment := &domain.Payment{RefCode: "ref-101", PayeeID: "unknown", Status: domain.PaymentStatusSubmitted}

	// the payment is still recorded when the payee does not map to a partner
	partnerRepo.EXPECT().GetByPartnerCode(gomock.Any(), "unknown").
		Return(nil, &domain.ErrPartnerNotFound{ID: "unknown"})
	paymentRepo.EXPECT().Upsert(gomock.Any(), payment).Return(nil)

	require.NoError(t, svc.RecordPayment(context.Background(), payment))
	assert.Nil(t, payment.PartnerID)
}

func TestPaymentServiceGetSummaryCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	svc := NewPaymentService(paymentRepo, partnerRepo, &fakeProviderClient{}, newTestLogger(ctrl))

	summary := &domain.PaymentSummary{TotalPaidCents: 500000, PaymentCount: 12}
	paymentRepo.EXPECT().Summary(gomock.Any()).Return(summary, nil).Times(1)

	first, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	second, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestPaymentServiceRecordPaymentInvalidatesSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	svc := NewPaymentService(paymentRepo, partnerRepo, &fakeProviderClient{}, newTestLogger(ctrl))

	paymentRepo.EXPECT().Summary(gomock.Any()).Return(&domain.PaymentSummary{PaymentCount: 1}, nil)
	_, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	partnerRepo.EXPECT().GetByPartnerCode(gomock.Any(), "LP-2026-0042").
		Return(&domain.Partner{ID: "partner-1"}, nil)
	paymentRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, svc.RecordPayment(context.Background(), &domain.Payment{RefCode: "ref-1", PayeeID: "LP-2026-0042"}))

	// the cached summary was dropped, so the repo is hit again
	paymentRepo.EXPECT().Summary(gomock.Any()).Return(&domain.PaymentSummary{PaymentCount: 2}, nil)
	refreshed, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.PaymentCount)
}

func TestPaymentServiceReconcile(t *testing.T) {
	t.Run("UpsertsAllPayeePayments", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		paymentRepo := mocks.NewMockPaymentRepository(ctrl)
		partnerRepo := mocks.NewMockPartnerRepository(ctrl)

		payeeA := "LP-2026-0001"
		payeeB := "LP-2026-0002"
		provider := &fakeProviderClient{
			payments: map[string][]*domain.Payment{
				payeeA: {
					{RefCode: "ref-a1", PayeeID: payeeA, Status: domain.PaymentStatusCompleted},
					{RefCode: "ref-a2", PayeeID: payeeA, Status: domain.PaymentStatusSubmitted},
				},
				payeeB: {
					{RefCode: "ref-b1", PayeeID: payeeB, Status: domain.PaymentStatusFailed},
				},
			},
		}
		svc := NewPaymentService(paymentRepo, partnerRepo, provider, newTestLogger(ctrl))

		partnerRepo.EXPECT().ListPayees(gomock.Any()).Return([]*domain.Partner{
			{ID: "partner-a", TipaltiPayeeID: &payeeA},
			{ID: "partner-b", TipaltiPayeeID: &payeeB},
		}, nil)

		var mu sync.Mutex
		byPartner := map[string]int{}
		paymentRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, payment *domain.Payment) error {
				mu.Lock()
				defer mu.Unlock()
				require.NotNil(t, payment.PartnerID)
				byPartner[*payment.PartnerID]++
				return nil
			}).Times(3)

		require.NoError(t, svc.Reconcile(context.Background()))
		assert.Equal(t, 2, byPartner["partner-a"])
		assert.Equal(t, 1, byPartner["partner-b"])
	})

	t.Run("ProviderErrorFailsRun", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		paymentRepo := mocks.NewMockPaymentRepository(ctrl)
		partnerRepo := mocks.NewMockPartnerRepository(ctrl)
		payeeA := "LP-2026-0001"
		provider := &fakeProviderClient{err: fmt.Errorf("provider unavailable")}
		svc := NewPaymentService(paymentRepo, partnerRepo, provider, newTestLogger(ctrl))

		partnerRepo.EXPECT().ListPayees(gomock.Any()).Return([]*domain.Partner{
			{ID: "partner-a", TipaltiPayeeID: &payeeA},
		}, nil)

		err := svc.Reconcile(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciliation failed")
	})
}
