package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

type prospectMocks struct {
	repo         *mocks.MockProspectRepository
	partnerSvc   *mocks.MockPartnerServiceInterface
	activityRepo *mocks.MockActivityLogRepository
}

func newProspectService(ctrl *gomock.Controller) (*ProspectService, *prospectMocks) {
	m := &prospectMocks{
		repo:         mocks.NewMockProspectRepository(ctrl),
		partnerSvc:   mocks.NewMockPartnerServiceInterface(ctrl),
		activityRepo: mocks.NewMockActivityLogRepository(ctrl),
	}
	svc := NewProspectService(m.repo, m.partnerSvc, m.activityRepo, newTestLogger(ctrl))
	return svc, m
}

func TestProspectServiceCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newProspectService(ctrl)

	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, prospect *domain.Prospect) error {
			prospect.ID = "prospect-1"
			assert.Equal(t, domain.ProspectStatusNew, prospect.Status)
			return nil
		})
	m.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.ActivityEntry) error {
			assert.Equal(t, "prospect.created", entry.Action)
			assert.Equal(t, "prospect-1", entry.EntityID)
			assert.Equal(t, "source referral", entry.Detail)
			return nil
		})

	prospect, err := svc.Create(context.Background(), &domain.CreateProspectRequest{
		ContactName: "Dana Wells",
		Email:       "dana@venues.test",
		CompanyName: "Wells Venues",
		Source:      "referral",
	})
	require.NoError(t, err)
	assert.Equal(t, "prospect-1", prospect.ID)

	_, err = svc.Create(context.Background(), &domain.CreateProspectRequest{
		ContactName: "No Email",
		Email:       "not-an-email",
	})
	assert.Error(t, err)
}

func TestProspectServiceUpdateStatus(t *testing.T) {
	t.Run("MovesToQualified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-1").
			Return(&domain.Prospect{ID: "prospect-1", Status: domain.ProspectStatusContacted}, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, prospect *domain.Prospect) error {
				assert.Equal(t, domain.ProspectStatusQualified, prospect.Status)
				return nil
			})

		prospect, err := svc.UpdateStatus(context.Background(), "prospect-1", domain.ProspectStatusQualified)
		require.NoError(t, err)
		assert.Equal(t, domain.ProspectStatusQualified, prospect.Status)
	})

	t.Run("ConvertedIsNotAStatusUpdate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _ := newProspectService(ctrl)

		_, err := svc.UpdateStatus(context.Background(), "prospect-1", domain.ProspectStatusConverted)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "convert operation")
	})

	t.Run("AlreadyConvertedIsFrozen", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-1").
			Return(&domain.Prospect{ID: "prospect-1", Status: domain.ProspectStatusConverted}, nil)

		_, err := svc.UpdateStatus(context.Background(), "prospect-1", domain.ProspectStatusLost)
		var convErr *domain.ErrProspectAlreadyConverted
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, "prospect-1", convErr.ID)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _ := newProspectService(ctrl)

		_, err := svc.UpdateStatus(context.Background(), "prospect-1", "archived")
		assert.Error(t, err)
	})
}

func TestProspectServiceConvert(t *testing.T) {
	t.Run("CreatesPartnerAndMarksConverted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-1").Return(&domain.Prospect{
			ID:          "prospect-1",
			ContactName: "Dana Wells",
			Email:       "dana@venues.test",
			Phone:       "+1 555 0101",
			CompanyName: "Wells Venues",
			Status:      domain.ProspectStatusQualified,
		}, nil)
		m.partnerSvc.EXPECT().CreatePartner(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *domain.CreatePartnerRequest) (*domain.Partner, error) {
				assert.Equal(t, "Dana Wells", req.ContactName)
				assert.Equal(t, "dana@venues.test", req.Email)
				assert.Equal(t, "Wells Venues", req.CompanyName)
				return &domain.Partner{ID: "partner-1", PartnerCode: "LP-2026-0042"}, nil
			})
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, prospect *domain.Prospect) error {
				assert.Equal(t, domain.ProspectStatusConverted, prospect.Status)
				require.NotNil(t, prospect.ConvertedPartnerID)
				assert.Equal(t, "partner-1", *prospect.ConvertedPartnerID)
				return nil
			})
		m.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, entry *domain.ActivityEntry) error {
				assert.Equal(t, "prospect.converted", entry.Action)
				assert.Equal(t, "partner LP-2026-0042", entry.Detail)
				return nil
			})

		prospect, partner, err := svc.Convert(context.Background(), &domain.ConvertProspectRequest{ID: "prospect-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.ProspectStatusConverted, prospect.Status)
		assert.Equal(t, "LP-2026-0042", partner.PartnerCode)
	})

	t.Run("CompanyNameFallsBackToContact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-2").Return(&domain.Prospect{
			ID:          "prospect-2",
			ContactName: "Sole Trader",
			Email:       "sole@trader.test",
			Status:      domain.ProspectStatusNew,
		}, nil)
		m.partnerSvc.EXPECT().CreatePartner(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *domain.CreatePartnerRequest) (*domain.Partner, error) {
				assert.Equal(t, "Sole Trader", req.CompanyName)
				return &domain.Partner{ID: "partner-2", PartnerCode: "LP-2026-0043"}, nil
			})
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.activityRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, _, err := svc.Convert(context.Background(), &domain.ConvertProspectRequest{ID: "prospect-2"})
		require.NoError(t, err)
	})

	t.Run("AlreadyConverted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-1").
			Return(&domain.Prospect{ID: "prospect-1", Status: domain.ProspectStatusConverted}, nil)

		_, _, err := svc.Convert(context.Background(), &domain.ConvertProspectRequest{ID: "prospect-1"})
		var convErr *domain.ErrProspectAlreadyConverted
		assert.ErrorAs(t, err, &convErr)
	})

	t.Run("UpdateFailureSurfacesInconsistency", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newProspectService(ctrl)

		m.repo.EXPECT().GetByID(gomock.Any(), "prospect-1").Return(&domain.Prospect{
			ID:          "prospect-1",
			ContactName: "Dana Wells",
			Email:       "dana@venues.test",
			Status:      domain.ProspectStatusQualified,
		}, nil)
		m.partnerSvc.EXPECT().CreatePartner(gomock.Any(), gomock.Any()).
			Return(&domain.Partner{ID: "partner-1", PartnerCode: "LP-2026-0042"}, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(fmt.Errorf("connection refused"))

		_, _, err := svc.Convert(context.Background(), &domain.ConvertProspectRequest{ID: "prospect-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "partner partner-1 created but prospect update failed")
	})
}

func TestProspectServiceList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newProspectService(ctrl)

	m.repo.EXPECT().List(gomock.Any(), domain.ProspectStatusNew, 50, 0).
		Return([]*domain.Prospect{{ID: "prospect-1"}}, nil)

	prospects, err := svc.List(context.Background(), domain.ProspectStatusNew, 0, -3)
	require.NoError(t, err)
	assert.Len(t, prospects, 1)

	_, err = svc.List(context.Background(), "archived", 10, 0)
	assert.Error(t, err)
}
