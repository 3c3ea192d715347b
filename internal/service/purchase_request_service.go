package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
	"github.com/skyyield/skyyield/pkg/mailer"
)

// PurchaseRequestService drives the device purchase fulfilment flow
type PurchaseRequestService struct {
	repo         domain.PurchaseRequestRepository
	partnerRepo  domain.PartnerRepository
	productRepo  domain.ProductRepository
	deviceRepo   domain.DeviceRepository
	activityRepo domain.ActivityLogRepository
	mailer       mailer.Mailer
	logger       logger.Logger
}

func NewPurchaseRequestService(
	repo domain.PurchaseRequestRepository,
	partnerRepo domain.PartnerRepository,
	productRepo domain.ProductRepository,
	deviceRepo domain.DeviceRepository,
	activityRepo domain.ActivityLogRepository,
	mailer mailer.Mailer,
	logger logger.Logger,
) *PurchaseRequestService {
	return &PurchaseRequestService{
		repo:         repo,
		partnerRepo:  partnerRepo,
		productRepo:  productRepo,
		deviceRepo:   deviceRepo,
		activityRepo: activityRepo,
		mailer:       mailer,
		logger:       logger,
	}
}

// Create submits a new purchase request in pending approval
func (s *PurchaseRequestService) Create(ctx context.Context, req *domain.CreatePurchaseRequestRequest) (*domain.DevicePurchaseRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.partnerRepo.GetByID(ctx, req.PartnerID); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	request := &domain.DevicePurchaseRequest{
		PartnerID: req.PartnerID,
		ProductID: req.ProductID,
		VenueID:   req.VenueID,
		Quantity:  req.Quantity,
		Status:    domain.PurchaseStatusPendingApproval,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityPurchaseRequest,
		EntityID:   request.ID,
		Action:     "purchase_request.created",
		Actor:      req.PartnerID,
		Detail:     fmt.Sprintf("%d x product %s", req.Quantity, req.ProductID),
	}); err != nil {
		s.logger.WithField("request_id", request.ID).Error(fmt.Sprintf("failed to record creation: %v", err))
	}

	return request, nil
}

// CreateApproved records a request that is already paid for, used by the
// store checkout flow. Paid requests skip the approval gate.
func (s *PurchaseRequestService) CreateApproved(ctx context.Context, partnerID, productID string, quantity int, detail string) (*domain.DevicePurchaseRequest, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	now := time.Now().UTC()
	request := &domain.DevicePurchaseRequest{
		PartnerID:  partnerID,
		ProductID:  productID,
		Quantity:   quantity,
		Status:     domain.PurchaseStatusApproved,
		Notes:      detail,
		ApprovedAt: &now,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Insert(ctx, &domain.ActivityEntry{
		EntityType: domain.EntityPurchaseRequest,
		EntityID:   request.ID,
		Action:     "purchase_request.paid",
		Actor:      domain.SystemActor,
		Detail:     detail,
	}); err != nil {
		s.logger.WithField("request_id", request.ID).Error(fmt.Sprintf("failed to record paid request: %v", err))
	}

	return request, nil
}

// Get retrieves a purchase request by id
func (s *PurchaseRequestService) Get(ctx context.Context, id string) (*domain.DevicePurchaseRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPartner retrieves a partner's purchase requests
func (s *PurchaseRequestService) ListByPartner(ctx context.Context, partnerID string) ([]*domain.DevicePurchaseRequest, error) {
	return s.repo.ListByPartner(ctx, partnerID)
}

// List retrieves purchase requests, optionally filtered by status
func (s *PurchaseRequestService) List(ctx context.Context, status domain.PurchaseRequestStatus, limit, offset int) ([]*domain.DevicePurchaseRequest, error) {
	if status != "" && !domain.ValidPurchaseStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Approve moves a pending request to approved. Only admins may approve.
func (s *PurchaseRequestService) Approve(ctx context.Context, user *domain.User, id string) (*domain.DevicePurchaseRequest, error) {
	if user == nil || !user.IsAdmin {
		return nil, domain.ErrForbidden
	}

	request, err := s.transition(ctx, user.ID, id, domain.PurchaseStatusApproved, func(r *domain.DevicePurchaseRequest) {
		now := time.Now().UTC()
		r.ApprovedBy = &user.ID
		r.ApprovedAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.notifyApproved(ctx, request)
	return request, nil
}

// Transition moves a request to ordered, shipped, received or cancelled
func (s *PurchaseRequestService) Transition(ctx context.Context, actor string, req *domain.TransitionPurchaseRequestRequest) (*domain.DevicePurchaseRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// approval and assignment carry extra side effects and have their own paths
	if req.Status == domain.PurchaseStatusApproved || req.Status == domain.PurchaseStatusAssigned {
		return nil, fmt.Errorf("status %s requires the dedicated operation", req.Status)
	}

	return s.transition(ctx, actor, req.ID, req.Status, nil)
}

// Cancel cancels a request from any non-terminal state
func (s *PurchaseRequestService) Cancel(ctx context.Context, actor, id string) (*domain.DevicePurchaseRequest, error) {
	return s.transition(ctx, actor, id, domain.PurchaseStatusCancelled, nil)
}

func (s *PurchaseRequestService) transition(
	ctx context.Context,
	actor, id string,
	to domain.PurchaseRequestStatus,
	mutate func(*domain.DevicePurchaseRequest),
) (*domain.DevicePurchaseRequest, error) {
	var request *domain.DevicePurchaseRequest

	err := s.repo.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		request, err = s.repo.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if !domain.CanTransition(request.Status, to) {
			return &domain.ErrInvalidStatusTransition{From: request.Status, To: to}
		}

		from := request.Status
		request.Status = to
		if mutate != nil {
			mutate(request)
		}

		if err := s.repo.UpdateTx(ctx, tx, request); err != nil {
			return err
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPurchaseRequest,
			EntityID:   request.ID,
			Action:     "purchase_request.status_changed",
			Actor:      actor,
			Detail:     fmt.Sprintf("%s -> %s", from, to),
		})
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Assign fulfils a received request: device rows are created and the request
// moves to assigned, all in one transaction
func (s *PurchaseRequestService) Assign(ctx context.Context, actor string, req *domain.AssignPurchaseRequestRequest) (*domain.DevicePurchaseRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var request *domain.DevicePurchaseRequest

	err := s.repo.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		request, err = s.repo.GetByIDTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(request.Status, domain.PurchaseStatusAssigned) {
			return &domain.ErrInvalidStatusTransition{From: request.Status, To: domain.PurchaseStatusAssigned}
		}
		if len(req.Serials) != request.Quantity {
			return fmt.Errorf("expected %d serials, got %d", request.Quantity, len(req.Serials))
		}

		venueID := req.VenueID
		if venueID == nil {
			venueID = request.VenueID
		}

		for _, serial := range req.Serials {
			device := &domain.Device{
				VenueID:           venueID,
				Serial:            serial,
				Ownership:         domain.DeviceOwnedByPartner,
				Status:            domain.DeviceStatusProvisioning,
				PurchaseRequestID: &request.ID,
			}
			if err := s.deviceRepo.CreateTx(ctx, tx, device); err != nil {
				return err
			}
		}

		request.Status = domain.PurchaseStatusAssigned
		request.VenueID = venueID
		if err := s.repo.UpdateTx(ctx, tx, request); err != nil {
			return err
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPurchaseRequest,
			EntityID:   request.ID,
			Action:     "purchase_request.assigned",
			Actor:      actor,
			Detail:     fmt.Sprintf("%d devices created", len(req.Serials)),
		})
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (s *PurchaseRequestService) notifyApproved(ctx context.Context, request *domain.DevicePurchaseRequest) {
	if s.mailer == nil {
		return
	}

	partner, err := s.partnerRepo.GetByID(ctx, request.PartnerID)
	if err != nil {
		s.logger.WithField("request_id", request.ID).
			Error(fmt.Sprintf("failed to load partner for approval email: %v", err))
		return
	}

	if err := s.mailer.SendPurchaseRequestApproved(partner.Email, partner.PartnerCode, request.Quantity); err != nil {
		s.logger.WithField("request_id", request.ID).
			Error(fmt.Sprintf("failed to send approval email: %v", err))
	}
}
