package service

import (
	"context"
	"fmt"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// webhookAudit is the shared tail of webhook processing: dedupe on the
// provider's external event id and persist one audit record per delivery.
// Every provider path, pipeline or not, finishes a delivery through store.
type webhookAudit struct {
	repo   domain.WebhookEventRepository
	logger logger.Logger
}

// seen reports whether a delivery with this external id was already applied.
// Deliveries without an external id are never deduplicated.
func (a webhookAudit) seen(ctx context.Context, provider domain.WebhookProvider, externalID string) (bool, error) {
	if externalID == "" {
		return false, nil
	}
	seen, err := a.repo.HasExternalID(ctx, provider, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate delivery: %w", err)
	}
	return seen, nil
}

// store persists the audit record. Storing the record must not mask the
// processing outcome, so storage errors are logged and the record returned.
func (a webhookAudit) store(ctx context.Context, record *domain.WebhookEventRecord, processingErr error) (*domain.WebhookEventRecord, error) {
	if err := a.repo.Store(ctx, record); err != nil {
		a.logger.WithFields(map[string]interface{}{
			"provider": record.Provider,
			"outcome":  record.Outcome,
		}).Error(fmt.Sprintf("failed to store webhook event: %v", err))
	}

	a.logger.WithFields(map[string]interface{}{
		"provider":    record.Provider,
		"event_type":  record.EventType,
		"external_id": record.ExternalID,
		"outcome":     record.Outcome,
	}).Info("webhook delivery processed")

	return record, processingErr
}
