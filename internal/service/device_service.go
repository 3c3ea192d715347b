package service

import (
	"context"
	"fmt"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// DeviceService manages the device fleet
type DeviceService struct {
	repo         domain.DeviceRepository
	venueRepo    domain.VenueRepository
	activityRepo domain.ActivityLogRepository
	logger       logger.Logger
}

func NewDeviceService(repo domain.DeviceRepository, venueRepo domain.VenueRepository, activityRepo domain.ActivityLogRepository, logger logger.Logger) *DeviceService {
	return &DeviceService{
		repo:         repo,
		venueRepo:    venueRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Create registers a device directly, used for company-owned hardware
func (s *DeviceService) Create(ctx context.Context, req *domain.CreateDeviceRequest) (*domain.Device, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.VenueID != nil {
		if _, err := s.venueRepo.GetByID(ctx, *req.VenueID); err != nil {
			return nil, err
		}
	}

	device := &domain.Device{
		VenueID:    req.VenueID,
		Serial:     req.Serial,
		MACAddress: req.MACAddress,
		Ownership:  req.Ownership,
		Status:     domain.DeviceStatusProvisioning,
	}

	if err := s.repo.Create(ctx, device); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityDevice,
		EntityID:   device.ID,
		Action:     "device.created",
		Actor:      domain.SystemActor,
		Detail:     fmt.Sprintf("serial %s", device.Serial),
	}); err != nil {
		s.logger.WithField("device_id", device.ID).Error(fmt.Sprintf("failed to record creation: %v", err))
	}

	return device, nil
}

// Get retrieves a device by id
func (s *DeviceService) Get(ctx context.Context, id string) (*domain.Device, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySerial retrieves a device by serial number
func (s *DeviceService) GetBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	return s.repo.GetBySerial(ctx, serial)
}

// Update applies the mutable device fields
func (s *DeviceService) Update(ctx context.Context, req *domain.UpdateDeviceRequest) (*domain.Device, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	device, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.VenueID != nil {
		if _, err := s.venueRepo.GetByID(ctx, *req.VenueID); err != nil {
			return nil, err
		}
		device.VenueID = req.VenueID
	}
	if req.MACAddress != nil {
		device.MACAddress = *req.MACAddress
	}

	statusChanged := req.Status != nil && *req.Status != device.Status
	if req.Status != nil {
		device.Status = *req.Status
	}

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, err
	}

	if statusChanged {
		if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
			EntityType: domain.EntityDevice,
			EntityID:   device.ID,
			Action:     "device.status_changed",
			Actor:      domain.SystemActor,
			Detail:     string(device.Status),
		}); err != nil {
			s.logger.WithField("device_id", device.ID).Error(fmt.Sprintf("failed to record status change: %v", err))
		}
	}

	return device, nil
}

// ListByVenue retrieves devices installed at a venue
func (s *DeviceService) ListByVenue(ctx context.Context, venueID string) ([]*domain.Device, error) {
	return s.repo.ListByVenue(ctx, venueID)
}

// List retrieves devices, optionally filtered by status
func (s *DeviceService) List(ctx context.Context, status domain.DeviceStatus, limit, offset int) ([]*domain.Device, error) {
	if status != "" && !domain.ValidDeviceStatus(status) {
		return nil, fmt.Errorf("invalid device status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}
