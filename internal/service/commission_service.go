package service

import (
	"context"
	"fmt"
	"time"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// CommissionService computes and exposes monthly partner commissions
type CommissionService struct {
	commissionRepo domain.CommissionRepository
	partnerRepo    domain.PartnerRepository
	deviceRepo     domain.DeviceRepository
	centsPerDevice int64
	logger         logger.Logger
}

func NewCommissionService(
	commissionRepo domain.CommissionRepository,
	partnerRepo domain.PartnerRepository,
	deviceRepo domain.DeviceRepository,
	centsPerDevice int64,
	logger logger.Logger,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		partnerRepo:    partnerRepo,
		deviceRepo:     deviceRepo,
		centsPerDevice: centsPerDevice,
		logger:         logger,
	}
}

// ComputePeriod computes commissions for one YYYY-MM period. Each active
// partner earns a flat amount per active device. The upsert keys on
// (partner, period), so recomputing a period is safe.
func (s *CommissionService) ComputePeriod(ctx context.Context, period string) error {
	if !domain.ValidCommissionPeriod(period) {
		return fmt.Errorf("invalid commission period: %s", period)
	}

	active := true
	result, err := s.partnerRepo.List(ctx, domain.PartnerListParams{
		Stage:  domain.StageActive,
		Active: &active,
		Limit:  100,
	})
	if err != nil {
		return fmt.Errorf("failed to list active partners: %w", err)
	}

	partners := result.Partners
	for offset := 100; len(partners) < result.Total; offset += 100 {
		page, err := s.partnerRepo.List(ctx, domain.PartnerListParams{
			Stage:  domain.StageActive,
			Active: &active,
			Limit:  100,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("failed to list active partners: %w", err)
		}
		if len(page.Partners) == 0 {
			break
		}
		partners = append(partners, page.Partners...)
	}

	var computed int
	for _, partner := range partners {
		count, err := s.deviceRepo.CountActiveByPartner(ctx, partner.ID)
		if err != nil {
			return fmt.Errorf("failed to count devices for partner %s: %w", partner.ID, err)
		}
		if count == 0 {
			continue
		}

		err = s.commissionRepo.Upsert(ctx, &domain.MonthlyCommission{
			PartnerID:   partner.ID,
			Period:      period,
			DeviceCount: count,
			AmountCents: int64(count) * s.centsPerDevice,
			Status:      domain.CommissionStatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert commission for partner %s: %w", partner.ID, err)
		}
		computed++
	}

	s.logger.WithFields(map[string]interface{}{
		"period":   period,
		"partners": computed,
	}).Info("monthly commissions computed")

	return nil
}

// ComputePreviousMonth computes commissions for the month before now
func (s *CommissionService) ComputePreviousMonth(ctx context.Context) error {
	period := time.Now().UTC().AddDate(0, -1, 0).Format("2006-01")
	return s.ComputePeriod(ctx, period)
}

// ListByPartner retrieves a partner's commission history
func (s *CommissionService) ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]*domain.MonthlyCommission, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	if offset < 0 {
		offset = 0
	}
	return s.commissionRepo.ListByPartner(ctx, partnerID, limit, offset)
}

// ListByPeriod retrieves all commissions for one period
func (s *CommissionService) ListByPeriod(ctx context.Context, period string) ([]*domain.MonthlyCommission, error) {
	if !domain.ValidCommissionPeriod(period) {
		return nil, fmt.Errorf("invalid commission period: %s", period)
	}
	return s.commissionRepo.ListByPeriod(ctx, period)
}

// MarkPaid flags a commission as paid out
func (s *CommissionService) MarkPaid(ctx context.Context, id string) error {
	return s.commissionRepo.MarkPaid(ctx, id)
}
