package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// UserService syncs portal accounts from Clerk webhooks
type UserService struct {
	repo   domain.UserRepository
	audit  webhookAudit
	logger logger.Logger
}

func NewUserService(repo domain.UserRepository, webhookRepo domain.WebhookEventRepository, logger logger.Logger) *UserService {
	return &UserService{
		repo:   repo,
		audit:  webhookAudit{repo: webhookRepo, logger: logger},
		logger: logger,
	}
}

// HandleClerkDelivery processes a verified Clerk delivery end to end: dedupe
// on the delivery id, apply the user event, and record the outcome in the
// webhook audit trail.
func (s *UserService) HandleClerkDelivery(ctx context.Context, deliveryID string, payload []byte) (*domain.WebhookEventRecord, error) {
	record := &domain.WebhookEventRecord{
		Provider:   domain.WebhookProviderClerk,
		ExternalID: deliveryID,
		RawPayload: string(payload),
	}

	seen, err := s.audit.seen(ctx, domain.WebhookProviderClerk, deliveryID)
	if err != nil {
		return nil, err
	}
	if seen {
		record.Outcome = domain.WebhookOutcomeDuplicate
		return s.audit.store(ctx, record, nil)
	}

	event, err := s.ParseClerkEvent(payload)
	if err != nil {
		record.Outcome = domain.WebhookOutcomeSkipped
		record.Error = err.Error()
		return s.audit.store(ctx, record, nil)
	}
	record.EventType = event.Type

	if err := s.HandleClerkEvent(ctx, event); err != nil {
		record.Outcome = domain.WebhookOutcomeFailed
		record.Error = err.Error()
		return s.audit.store(ctx, record, nil)
	}

	record.Outcome = domain.WebhookOutcomeProcessed
	return s.audit.store(ctx, record, nil)
}

// ParseClerkEvent extracts the user fields from a Clerk webhook payload
func (s *UserService) ParseClerkEvent(payload []byte) (*domain.ClerkUserEvent, error) {
	body := gjson.ParseBytes(payload)

	event := &domain.ClerkUserEvent{
		Type:        body.Get("type").String(),
		ClerkUserID: body.Get("data.id").String(),
		Email:       body.Get("data.email_addresses.0.email_address").String(),
	}

	first := body.Get("data.first_name").String()
	last := body.Get("data.last_name").String()
	switch {
	case first != "" && last != "":
		event.Name = first + " " + last
	case first != "":
		event.Name = first
	default:
		event.Name = last
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// HandleClerkEvent applies a validated Clerk user event
func (s *UserService) HandleClerkEvent(ctx context.Context, event *domain.ClerkUserEvent) error {
	switch event.Type {
	case "user.created", "user.updated":
		return s.repo.Upsert(ctx, &domain.User{
			ClerkUserID: event.ClerkUserID,
			Email:       event.Email,
			Name:        event.Name,
		})
	case "user.deleted":
		err := s.repo.Delete(ctx, event.ClerkUserID)
		var notFound *domain.ErrUserNotFound
		if err != nil && !errors.As(err, &notFound) {
			return err
		}
		// deleting an unknown user is fine; Clerk may retry deliveries
		return nil
	}
	return fmt.Errorf("unsupported clerk event type: %s", event.Type)
}

// GetByClerkID resolves a portal user by the Clerk identity
func (s *UserService) GetByClerkID(ctx context.Context, clerkUserID string) (*domain.User, error) {
	return s.repo.GetByClerkID(ctx, clerkUserID)
}
