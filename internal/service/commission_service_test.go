package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

func newCommissionService(ctrl *gomock.Controller) (*CommissionService, *mocks.MockCommissionRepository, *mocks.MockPartnerRepository, *mocks.MockDeviceRepository) {
	commissionRepo := mocks.NewMockCommissionRepository(ctrl)
	partnerRepo := mocks.NewMockPartnerRepository(ctrl)
	deviceRepo := mocks.NewMockDeviceRepository(ctrl)
	svc := NewCommissionService(commissionRepo, partnerRepo, deviceRepo, 2500, newTestLogger(ctrl))
	return svc, commissionRepo, partnerRepo, deviceRepo
}

func TestCommissionServiceComputePeriod(t *testing.T) {
	t.Run("FlatRatePerActiveDevice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, commissionRepo, partnerRepo, deviceRepo := newCommissionService(ctrl)

		partnerRepo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params domain.PartnerListParams) (*domain.PartnerListResult, error) {
				assert.Equal(t, domain.StageActive, params.Stage)
				require.NotNil(t, params.Active)
				assert.True(t, *params.Active)
				return &domain.PartnerListResult{
					Partners: []*domain.Partner{
						{ID: "partner-a"},
						{ID: "partner-b"},
						{ID: "partner-c"},
					},
					Total: 3,
				}, nil
			})
		deviceRepo.EXPECT().CountActiveByPartner(gomock.Any(), "partner-a").Return(4, nil)
		deviceRepo.EXPECT().CountActiveByPartner(gomock.Any(), "partner-b").Return(0, nil)
		deviceRepo.EXPECT().CountActiveByPartner(gomock.Any(), "partner-c").Return(1, nil)

		var upserted []*domain.MonthlyCommission
		commissionRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, commission *domain.MonthlyCommission) error {
				upserted = append(upserted, commission)
				return nil
			}).Times(2)

		require.NoError(t, svc.ComputePeriod(context.Background(), "2026-07"))

		// partner-b has no active devices and earns nothing
		require.Len(t, upserted, 2)
		assert.Equal(t, "partner-a", upserted[0].PartnerID)
		assert.Equal(t, 4, upserted[0].DeviceCount)
		assert.Equal(t, int64(10000), upserted[0].AmountCents)
		assert.Equal(t, domain.CommissionStatusPending, upserted[0].Status)
		assert.Equal(t, "2026-07", upserted[0].Period)
		assert.Equal(t, int64(2500), upserted[1].AmountCents)
	})

	t.Run("PagesThroughPartners", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, commissionRepo, partnerRepo, deviceRepo := newCommissionService(ctrl)

		firstPage := make([]*domain.Partner, 100)
		for i := range firstPage {
			firstPage[i] = &domain.Partner{ID: "partner-a"}
		}

		gomock.InOrder(
			partnerRepo.EXPECT().List(gomock.Any(), gomock.Any()).
				Return(&domain.PartnerListResult{Partners: firstPage, Total: 101}, nil),
			partnerRepo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, params domain.PartnerListParams) (*domain.PartnerListResult, error) {
					assert.Equal(t, 100, params.Offset)
					return &domain.PartnerListResult{
						Partners: []*domain.Partner{{ID: "partner-z"}},
						Total:    101,
					}, nil
				}),
		)
		deviceRepo.EXPECT().CountActiveByPartner(gomock.Any(), gomock.Any()).Return(0, nil).Times(100)
		deviceRepo.EXPECT().CountActiveByPartner(gomock.Any(), "partner-z").Return(2, nil)
		commissionRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, svc.ComputePeriod(context.Background(), "2026-07"))
	})

	t.Run("RejectsMalformedPeriod", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _, _, _ := newCommissionService(ctrl)

		assert.Error(t, svc.ComputePeriod(context.Background(), "2026-13"))
		assert.Error(t, svc.ComputePeriod(context.Background(), "July 2026"))
		assert.Error(t, svc.ComputePeriod(context.Background(), ""))
	})
}

func TestCommissionServiceListByPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, commissionRepo, _, _ := newCommissionService(ctrl)

	commissionRepo.EXPECT().ListByPeriod(gomock.Any(), "2026-07").
		Return([]*domain.MonthlyCommission{{ID: "com-1"}}, nil)

	commissions, err := svc.ListByPeriod(context.Background(), "2026-07")
	require.NoError(t, err)
	assert.Len(t, commissions, 1)

	_, err = svc.ListByPeriod(context.Background(), "bad-period")
	assert.Error(t, err)
}
