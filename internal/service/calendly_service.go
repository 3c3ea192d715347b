package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/crypto"
	"github.com/skyyield/skyyield/pkg/logger"
)

// CalendlyService verifies and parses Calendly webhook deliveries into
// pipeline events
type CalendlyService struct {
	secret string
	logger logger.Logger
}

func NewCalendlyService(secret string, logger logger.Logger) *CalendlyService {
	return &CalendlyService{secret: secret, logger: logger}
}

// VerifySignature checks the Calendly-Webhook-Signature header, which is
// formatted "t=<timestamp>,v1=<hex hmac of timestamp.payload>"
func (s *CalendlyService) VerifySignature(payload []byte, header string) error {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return fmt.Errorf("malformed signature header")
	}

	signed := fmt.Sprintf("%s.%s", timestamp, payload)
	if !crypto.VerifyHMAC([]byte(signed), signature, s.secret) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

// ParseEvent translates a Calendly invitee payload into a pipeline event.
// The partner code travels in the UTM content field of the scheduling link;
// the invitee email is the fallback match.
func (s *CalendlyService) ParseEvent(payload []byte) (domain.PipelineEvent, error) {
	body := gjson.ParseBytes(payload)

	event := domain.PipelineEvent{
		Provider:    domain.WebhookProviderCalendly,
		ExternalID:  body.Get("payload.uri").String(),
		Email:       body.Get("payload.email").String(),
		PartnerCode: body.Get("payload.tracking.utm_content").String(),
	}

	if createdAt := body.Get("created_at").String(); createdAt != "" {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			event.OccurredAt = t.UTC()
		}
	}

	switch body.Get("event").String() {
	case "invitee.created":
		event.Type = domain.EventDiscoveryScheduled
	case "invitee.canceled":
		event.Type = domain.EventDiscoveryCanceled
	default:
		return domain.PipelineEvent{}, fmt.Errorf("unsupported calendly event: %s", body.Get("event").String())
	}

	return event, nil
}
