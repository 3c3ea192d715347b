package service

import (
	"context"
	"fmt"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// ProspectService manages CRM leads and their conversion into partners
type ProspectService struct {
	repo           domain.ProspectRepository
	partnerService domain.PartnerServiceInterface
	activityRepo   domain.ActivityLogRepository
	logger         logger.Logger
}

func NewProspectService(repo domain.ProspectRepository, partnerService domain.PartnerServiceInterface, activityRepo domain.ActivityLogRepository, logger logger.Logger) *ProspectService {
	return &ProspectService{
		repo:           repo,
		partnerService: partnerService,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// Create records a new lead
func (s *ProspectService) Create(ctx context.Context, req *domain.CreateProspectRequest) (*domain.Prospect, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prospect := &domain.Prospect{
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Source:      req.Source,
		Notes:       req.Notes,
		Status:      domain.ProspectStatusNew,
	}

	if err := s.repo.Create(ctx, prospect); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityProspect,
		EntityID:   prospect.ID,
		Action:     "prospect.created",
		Actor:      domain.SystemActor,
		Detail:     fmt.Sprintf("source %s", prospect.Source),
	}); err != nil {
		s.logger.WithField("prospect_id", prospect.ID).Error(fmt.Sprintf("failed to record creation: %v", err))
	}

	return prospect, nil
}

// Get retrieves a prospect by id
func (s *ProspectService) Get(ctx context.Context, id string) (*domain.Prospect, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves a prospect through the lead statuses. Conversion has
// its own operation because it creates a partner.
func (s *ProspectService) UpdateStatus(ctx context.Context, id string, status domain.ProspectStatus) (*domain.Prospect, error) {
	if !domain.ValidProspectStatus(status) {
		return nil, fmt.Errorf("invalid prospect status: %s", status)
	}
	if status == domain.ProspectStatusConverted {
		return nil, fmt.Errorf("use the convert operation to convert a prospect")
	}

	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prospect.Status == domain.ProspectStatusConverted {
		return nil, &domain.ErrProspectAlreadyConverted{ID: id}
	}

	prospect.Status = status
	if err := s.repo.Update(ctx, prospect); err != nil {
		return nil, err
	}

	return prospect, nil
}

// Convert turns a qualified prospect into a partner at the application stage
func (s *ProspectService) Convert(ctx context.Context, req *domain.ConvertProspectRequest) (*domain.Prospect, *domain.Partner, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	prospect, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, nil, err
	}
	if prospect.Status == domain.ProspectStatusConverted {
		return nil, nil, &domain.ErrProspectAlreadyConverted{ID: req.ID}
	}

	companyName := prospect.CompanyName
	if companyName == "" {
		companyName = prospect.ContactName
	}

	partner, err := s.partnerService.CreatePartner(ctx, &domain.CreatePartnerRequest{
		ContactName: prospect.ContactName,
		Email:       prospect.Email,
		Phone:       prospect.Phone,
		CompanyName: companyName,
		Type:        req.Type,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert prospect: %w", err)
	}

	prospect.Status = domain.ProspectStatusConverted
	prospect.ConvertedPartnerID = &partner.ID
	if err := s.repo.Update(ctx, prospect); err != nil {
		// the partner exists; surface the inconsistency instead of hiding it
		return nil, nil, fmt.Errorf("partner %s created but prospect update failed: %w", partner.ID, err)
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityProspect,
		EntityID:   prospect.ID,
		Action:     "prospect.converted",
		Actor:      domain.SystemActor,
		Detail:     fmt.Sprintf("partner %s", partner.PartnerCode),
	}); err != nil {
		s.logger.WithField("prospect_id", prospect.ID).Error(fmt.Sprintf("failed to record conversion: %v", err))
	}

	return prospect, partner, nil
}

// List retrieves prospects, optionally filtered by status
func (s *ProspectService) List(ctx context.Context, status domain.ProspectStatus, limit, offset int) ([]*domain.Prospect, error) {
	if status != "" && !domain.ValidProspectStatus(status) {
		return nil, fmt.Errorf("invalid prospect status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}
