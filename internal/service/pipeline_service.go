package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
	"github.com/skyyield/skyyield/pkg/mailer"
)

// PipelineService applies normalized pipeline events to partners. Provider
// webhook services translate payloads into PipelineEvents; all stage logic
// lives in the domain transition table.
type PipelineService struct {
	partnerRepo  domain.PartnerRepository
	activityRepo domain.ActivityLogRepository
	webhookRepo  domain.WebhookEventRepository
	audit        webhookAudit
	mailer       mailer.Mailer
	opsEmail     string
	logger       logger.Logger
}

func NewPipelineService(
	partnerRepo domain.PartnerRepository,
	activityRepo domain.ActivityLogRepository,
	webhookRepo domain.WebhookEventRepository,
	mailer mailer.Mailer,
	opsEmail string,
	logger logger.Logger,
) *PipelineService {
	return &PipelineService{
		partnerRepo:  partnerRepo,
		activityRepo: activityRepo,
		webhookRepo:  webhookRepo,
		audit:        webhookAudit{repo: webhookRepo, logger: logger},
		mailer:       mailer,
		opsEmail:     opsEmail,
		logger:       logger,
	}
}

// ProcessEvent applies a pipeline event and records the delivery in the
// webhook audit trail. Every delivery leaves exactly one audit row; the
// outcome distinguishes applied events from skipped, unmatched and duplicate
// ones.
func (s *PipelineService) ProcessEvent(ctx context.Context, event domain.PipelineEvent, rawPayload []byte) (*domain.WebhookEventRecord, error) {
	record := &domain.WebhookEventRecord{
		Provider:   event.Provider,
		EventType:  string(event.Type),
		ExternalID: event.ExternalID,
		RawPayload: string(rawPayload),
	}

	if err := event.Validate(); err != nil {
		record.Outcome = domain.WebhookOutcomeFailed
		record.Error = err.Error()
		return s.audit.store(ctx, record, nil)
	}

	seen, err := s.audit.seen(ctx, event.Provider, event.ExternalID)
	if err != nil {
		return nil, err
	}
	if seen {
		record.Outcome = domain.WebhookOutcomeDuplicate
		return s.audit.store(ctx, record, nil)
	}

	partner, err := s.matchPartner(ctx, event)
	if err != nil {
		var notFound *domain.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			record.Outcome = domain.WebhookOutcomeUnmatched
			record.Error = err.Error()
			return s.audit.store(ctx, record, nil)
		}
		return nil, err
	}
	record.PartnerID = &partner.ID

	var transition domain.Transition
	var applied bool

	err = s.partnerRepo.WithTransaction(ctx, func(tx *sql.Tx) error {
		// re-read under lock; the stage may have moved since the match
		locked, err := s.partnerRepo.GetByIDTx(ctx, tx, partner.ID)
		if err != nil {
			return err
		}

		var ok bool
		transition, ok = domain.ResolveTransition(locked.Stage, event)
		if !ok {
			return nil
		}

		from := locked.Stage
		transition.Apply(locked, event)
		applied = true
		partner = locked

		if err := s.partnerRepo.UpdateTx(ctx, tx, locked); err != nil {
			return err
		}

		return s.activityRepo.InsertTx(ctx, tx, &domain.ActivityEntry{
			EntityType: domain.EntityPartner,
			EntityID:   locked.ID,
			Action:     fmt.Sprintf("pipeline.%s", event.Type),
			Actor:      domain.SystemActor,
			Detail:     fmt.Sprintf("%s -> %s via %s", from, locked.Stage, event.Provider),
		})
	})
	if err != nil {
		record.Outcome = domain.WebhookOutcomeFailed
		record.Error = err.Error()
		return s.audit.store(ctx, record, nil)
	}

	if !applied {
		record.Outcome = domain.WebhookOutcomeSkipped
		return s.audit.store(ctx, record, nil)
	}

	record.Outcome = domain.WebhookOutcomeProcessed

	if transition.NotifyOps {
		s.notifyOps(partner)
	}

	return s.audit.store(ctx, record, nil)
}

// matchPartner resolves the partner an event refers to, preferring the
// partner code carried in provider metadata over the email fallback
func (s *PipelineService) matchPartner(ctx context.Context, event domain.PipelineEvent) (*domain.Partner, error) {
	if event.PartnerCode != "" {
		partner, err := s.partnerRepo.GetByPartnerCode(ctx, event.PartnerCode)
		if err == nil {
			return partner, nil
		}
		var notFound *domain.ErrPartnerNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// fall through to email match
	}
	if event.Email == "" {
		return nil, &domain.ErrPartnerNotFound{ID: event.PartnerCode}
	}
	return s.partnerRepo.GetByEmail(ctx, event.Email)
}

func (s *PipelineService) notifyOps(partner *domain.Partner) {
	if s.mailer == nil || s.opsEmail == "" {
		return
	}
	err := s.mailer.SendStageNotification(s.opsEmail, partner.PartnerCode, partner.CompanyName, string(partner.Stage))
	if err != nil {
		s.logger.WithField("partner_code", partner.PartnerCode).
			Error(fmt.Sprintf("failed to send stage notification: %v", err))
	}
}

// ListWebhookEvents exposes the audit trail to the admin API
func (s *PipelineService) ListWebhookEvents(ctx context.Context, params domain.WebhookEventListParams) ([]*domain.WebhookEventRecord, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.webhookRepo.List(ctx, params)
}
