package service

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// ESignService verifies and parses e-signature webhook deliveries. DocuSeal
// and PandaDoc post to the same endpoint; payload shape determines the
// provider, and both normalize to the same document events.
type ESignService struct {
	token  string
	logger logger.Logger
}

func NewESignService(token string, logger logger.Logger) *ESignService {
	return &ESignService{token: token, logger: logger}
}

// VerifyToken compares the shared token sent in the X-Esign-Token header
func (s *ESignService) VerifyToken(header string) error {
	if subtle.ConstantTimeCompare([]byte(header), []byte(s.token)) != 1 {
		return fmt.Errorf("token mismatch")
	}
	return nil
}

// ParseEvent translates a DocuSeal or PandaDoc payload into a pipeline event
func (s *ESignService) ParseEvent(payload []byte) (domain.PipelineEvent, error) {
	body := gjson.ParseBytes(payload)

	if body.Get("event_type").Exists() {
		return s.parseDocuSeal(body)
	}
	if body.Get("event").String() == "document_state_changed" {
		return s.parsePandaDoc(body)
	}

	return domain.PipelineEvent{}, fmt.Errorf("unrecognized e-sign payload")
}

func (s *ESignService) parseDocuSeal(body gjson.Result) (domain.PipelineEvent, error) {
	event := domain.PipelineEvent{
		Provider:    domain.WebhookProviderDocuSeal,
		ExternalID:  body.Get("data.id").String(),
		Email:       body.Get("data.email").String(),
		PartnerCode: body.Get("data.metadata.partner_code").String(),
		Document:    classifyDocument(body.Get("data.template.name").String()),
	}

	if ts := body.Get("timestamp").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			event.OccurredAt = t.UTC()
		}
	}

	switch body.Get("event_type").String() {
	case "form.started", "submission.created":
		event.Type = domain.EventDocumentSent
	case "form.viewed":
		event.Type = domain.EventDocumentViewed
	case "form.completed", "submission.completed":
		event.Type = domain.EventDocumentCompleted
	default:
		return domain.PipelineEvent{}, fmt.Errorf("unsupported docuseal event: %s", body.Get("event_type").String())
	}

	return event, nil
}

func (s *ESignService) parsePandaDoc(body gjson.Result) (domain.PipelineEvent, error) {
	data := body.Get("data")

	event := domain.PipelineEvent{
		Provider:    domain.WebhookProviderPandaDoc,
		ExternalID:  data.Get("id").String(),
		Email:       data.Get("recipients.0.email").String(),
		PartnerCode: data.Get("metadata.partner_code").String(),
		Document:    classifyDocument(data.Get("name").String()),
	}

	if ts := data.Get("date_modified").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			event.OccurredAt = t.UTC()
		}
	}

	switch data.Get("status").String() {
	case "document.sent":
		event.Type = domain.EventDocumentSent
	case "document.viewed":
		event.Type = domain.EventDocumentViewed
	case "document.completed":
		event.Type = domain.EventDocumentCompleted
	default:
		return domain.PipelineEvent{}, fmt.Errorf("unsupported pandadoc status: %s", data.Get("status").String())
	}

	return event, nil
}

// classifyDocument decides whether a document name refers to the letter of
// intent or the partner contract
func classifyDocument(name string) domain.DocumentType {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "letter of intent") || strings.Contains(lower, "loi") {
		return domain.DocumentLOI
	}
	return domain.DocumentContract
}
