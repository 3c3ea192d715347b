package service

import (
	"context"
	"fmt"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// VenueService manages partner venues
type VenueService struct {
	repo         domain.VenueRepository
	partnerRepo  domain.PartnerRepository
	activityRepo domain.ActivityLogRepository
	logger       logger.Logger
}

func NewVenueService(repo domain.VenueRepository, partnerRepo domain.PartnerRepository, activityRepo domain.ActivityLogRepository, logger logger.Logger) *VenueService {
	return &VenueService{
		repo:         repo,
		partnerRepo:  partnerRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Create adds a venue for a partner in pending status
func (s *VenueService) Create(ctx context.Context, req *domain.CreateVenueRequest) (*domain.Venue, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.partnerRepo.GetByID(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	venue := &domain.Venue{
		PartnerID:    req.PartnerID,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Region:       req.Region,
		Postcode:     req.Postcode,
		Country:      req.Country,
		Status:       domain.VenueStatusPending,
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityVenue,
		EntityID:   venue.ID,
		Action:     "venue.created",
		Actor:      domain.SystemActor,
		Detail:     fmt.Sprintf("%s, %s", venue.Name, venue.City),
	}); err != nil {
		s.logger.WithField("venue_id", venue.ID).Error(fmt.Sprintf("failed to record creation: %v", err))
	}

	return venue, nil
}

// Get retrieves a venue by id
func (s *VenueService) Get(ctx context.Context, id string) (*domain.Venue, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the mutable venue fields
func (s *VenueService) Update(ctx context.Context, req *domain.UpdateVenueRequest) (*domain.Venue, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	venue, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.AddressLine1 != nil {
		venue.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		venue.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		venue.City = *req.City
	}
	if req.Region != nil {
		venue.Region = *req.Region
	}
	if req.Postcode != nil {
		venue.Postcode = *req.Postcode
	}
	if req.Country != nil {
		venue.Country = *req.Country
	}

	statusChanged := req.Status != nil && *req.Status != venue.Status
	if req.Status != nil {
		venue.Status = *req.Status
	}

	if err := s.repo.Update(ctx, venue); err != nil {
		return nil, err
	}

	if statusChanged {
		if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
			EntityType: domain.EntityVenue,
			EntityID:   venue.ID,
			Action:     "venue.status_changed",
			Actor:      domain.SystemActor,
			Detail:     string(venue.Status),
		}); err != nil {
			s.logger.WithField("venue_id", venue.ID).Error(fmt.Sprintf("failed to record status change: %v", err))
		}
	}

	return venue, nil
}

// ListByPartner retrieves a partner's venues
func (s *VenueService) ListByPartner(ctx context.Context, partnerID string) ([]*domain.Venue, error) {
	return s.repo.ListByPartner(ctx, partnerID)
}

// List retrieves venues, optionally filtered by status
func (s *VenueService) List(ctx context.Context, status domain.VenueStatus, limit, offset int) ([]*domain.Venue, error) {
	if status != "" && !domain.ValidVenueStatus(status) {
		return nil, fmt.Errorf("invalid venue status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}
