package domain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

//go:generate mockgen -destination mocks/mock_webhook_event_repository.go -package mocks github.com/skyyield/skyyield/internal/domain WebhookEventRepository

// WebhookProvider identifies the upstream system a webhook came from
type WebhookProvider string

const (
	WebhookProviderCalendly WebhookProvider = "calendly"
	WebhookProviderDocuSeal WebhookProvider = "docuseal"
	WebhookProviderPandaDoc WebhookProvider = "pandadoc"
	WebhookProviderTipalti  WebhookProvider = "tipalti"
	WebhookProviderStripe   WebhookProvider = "stripe"
	WebhookProviderClerk    WebhookProvider = "clerk"
)

// WebhookOutcome records what processing a delivery resulted in. Every
// delivery is persisted, including the ones the original system silently
// dropped (no partner match, no legal transition).
type WebhookOutcome string

const (
	// WebhookOutcomeProcessed means the event was applied
	WebhookOutcomeProcessed WebhookOutcome = "processed"
	// WebhookOutcomeSkipped means no legal transition existed for the
	// partner's current stage
	WebhookOutcomeSkipped WebhookOutcome = "skipped"
	// WebhookOutcomeUnmatched means no partner matched the payload
	WebhookOutcomeUnmatched WebhookOutcome = "unmatched"
	// WebhookOutcomeDuplicate means the external event id was seen before
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	// WebhookOutcomeFailed means processing errored
	WebhookOutcomeFailed WebhookOutcome = "failed"
)

// WebhookEventRecord is the audit envelope stored for every received delivery
type WebhookEventRecord struct {
	ID         string          `json:"id"`
	Provider   WebhookProvider `json:"provider"`
	EventType  string          `json:"event_type"`
	ExternalID string          `json:"external_id,omitempty"`
	PartnerID  *string         `json:"partner_id,omitempty"`
	Outcome    WebhookOutcome  `json:"outcome"`
	Error      string          `json:"error,omitempty"`
	RawPayload string          `json:"raw_payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ErrWebhookEventNotFound is returned when a webhook event is not found
type ErrWebhookEventNotFound struct {
	ID string
}

func (e *ErrWebhookEventNotFound) Error() string {
	return fmt.Sprintf("webhook event %s not found", e.ID)
}

// WebhookEventListParams filters the webhook event audit trail
type WebhookEventListParams struct {
	Provider WebhookProvider `json:"provider,omitempty"`
	Outcome  WebhookOutcome  `json:"outcome,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// FromQuery creates WebhookEventListParams from HTTP query parameters
func (p *WebhookEventListParams) FromQuery(query url.Values) error {
	p.Provider = WebhookProvider(query.Get("provider"))
	p.Outcome = WebhookOutcome(query.Get("outcome"))

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("invalid limit value: %s", limitStr)
		}
		p.Limit = limit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return fmt.Errorf("invalid offset value: %s", offsetStr)
		}
		p.Offset = offset
	}
	return p.Validate()
}

func (p *WebhookEventListParams) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	return nil
}

// WebhookEventRepository persists the webhook audit trail
type WebhookEventRepository interface {
	Store(ctx context.Context, record *WebhookEventRecord) error
	// HasExternalID reports whether a processed delivery with this provider
	// and external id already exists
	HasExternalID(ctx context.Context, provider WebhookProvider, externalID string) (bool, error)
	List(ctx context.Context, params WebhookEventListParams) ([]*WebhookEventRecord, error)
}
