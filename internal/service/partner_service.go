package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// PartnerService implements partner CRM operations
type PartnerService struct {
	repo         domain.PartnerRepository
	activityRepo domain.ActivityLogRepository
	logger       logger.Logger
}

func NewPartnerService(repo domain.PartnerRepository, activityRepo domain.ActivityLogRepository, logger logger.Logger) *PartnerService {
	return &PartnerService{
		repo:         repo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// CreatePartner creates a partner at the application stage. The partner code
// sequence is reserved in the same transaction as the insert, so two
// concurrent creates of the same type can never share a code.
func (s *PartnerService) CreatePartner(ctx context.Context, req *domain.CreatePartnerRequest) (*domain.Partner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("partner with email %s already exists", req.Email)
	}

	partner := &domain.Partner{
		ID:                  uuid.New().String(),
		Type:                req.Type,
		ContactName:         req.ContactName,
		Email:               req.Email,
		Phone:               req.Phone,
		CompanyName:         req.CompanyName,
		Stage:               domain.StageApplication,
		DiscoveryCallStatus: domain.CallStatusNone,
		LOIStatus:           domain.DocumentStatusNone,
		ContractStatus:      domain.DocumentStatusNone,
		TipaltiStatus:       domain.PayeeStatusNone,
		Active:              true,
	}

	year := time.Now().UTC().Year()

	err := s.repo.WithTransaction(ctx, func(tx *sql.Tx) error {
		seq, err := s.repo.NextSequenceTx(ctx, tx, req.Type.CodePrefix(), year)
		if err != nil {
			return err
		}
		partner.PartnerCode = domain.FormatPartnerCode(req.Type, year, seq)

		if err := s.repo.CreateTx(ctx, tx, partner); err != nil {
			return err
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPartner,
			EntityID:   partner.ID,
			Action:     "partner.created",
			Actor:      domain.SystemActor,
			Detail:     fmt.Sprintf("code %s, type %s", partner.PartnerCode, partner.Type),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"partner_id":   partner.ID,
		"partner_code": partner.PartnerCode,
	}).Info("partner created")

	return partner, nil
}

// GetPartner retrieves a partner by id
func (s *PartnerService) GetPartner(ctx context.Context, id string) (*domain.Partner, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePartner applies the mutable contact fields
func (s *PartnerService) UpdatePartner(ctx context.Context, req *domain.UpdatePartnerRequest) (*domain.Partner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var partner *domain.Partner
	err := s.repo.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		partner, err = s.repo.GetByIDTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}

		if req.ContactName != nil {
			partner.ContactName = *req.ContactName
		}
		if req.Phone != nil {
			partner.Phone = *req.Phone
		}
		if req.CompanyName != nil {
			partner.CompanyName = *req.CompanyName
		}
		if req.TipaltiPayeeID != nil {
			partner.TipaltiPayeeID = req.TipaltiPayeeID
		}

		if err := s.repo.UpdateTx(ctx, tx, partner); err != nil {
			return err
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPartner,
			EntityID:   partner.ID,
			Action:     "partner.updated",
			Actor:      domain.SystemActor,
		})
	})
	if err != nil {
		return nil, err
	}

	return partner, nil
}

// DeactivatePartner soft-deactivates a partner
func (s *PartnerService) DeactivatePartner(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityPartner,
		EntityID:   id,
		Action:     "partner.deactivated",
		Actor:      domain.SystemActor,
	}); err != nil {
		s.logger.WithField("partner_id", id).Error(fmt.Sprintf("failed to record deactivation: %v", err))
	}

	return nil
}

// ListPartners retrieves partners matching the filter params
func (s *PartnerService) ListPartners(ctx context.Context, params domain.PartnerListParams) (*domain.PartnerListResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, params)
}

// TransitionPartner moves a partner to a new stage manually. This is the
// admin override path; webhook-driven changes go through the pipeline service.
func (s *PartnerService) TransitionPartner(ctx context.Context, actor string, req *domain.TransitionPartnerRequest) (*domain.Partner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var partner *domain.Partner
	err := s.repo.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		partner, err = s.repo.GetByIDTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}

		from := partner.Stage
		partner.Stage = req.Stage
		if req.Stage == domain.StageActive && partner.ActivatedAt == nil {
			now := time.Now().UTC()
			partner.ActivatedAt = &now
		}

		if err := s.repo.UpdateTx(ctx, tx, partner); err != nil {
			return err
		}

		detail := fmt.Sprintf("%s -> %s", from, req.Stage)
		if req.Reason != "" {
			detail = fmt.Sprintf("%s (%s)", detail, req.Reason)
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPartner,
			EntityID:   partner.ID,
			Action:     "partner.stage_changed",
			Actor:      actor,
			Detail:     detail,
		})
	})
	if err != nil {
		return nil, err
	}

	return partner, nil
}
