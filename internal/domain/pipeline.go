package domain

import (
	"fmt"
	"time"
)

// PipelineEventType identifies an external signal that can move a partner
// through the pipeline
type PipelineEventType string

const (
	// EventDiscoveryScheduled fires when a discovery call is booked
	EventDiscoveryScheduled PipelineEventType = "discovery.scheduled"
	// EventDiscoveryCanceled fires when a booked discovery call is canceled
	EventDiscoveryCanceled PipelineEventType = "discovery.canceled"
	// EventDocumentSent fires when a signature document is sent to the partner
	EventDocumentSent PipelineEventType = "document.sent"
	// EventDocumentViewed fires when the partner opens the document
	EventDocumentViewed PipelineEventType = "document.viewed"
	// EventDocumentCompleted fires when all parties have signed
	EventDocumentCompleted PipelineEventType = "document.completed"
	// EventPayeeOnboarded fires when payout onboarding completes
	EventPayeeOnboarded PipelineEventType = "payee.onboarded"
)

// DocumentType distinguishes the signature documents tracked on a partner
type DocumentType string

const (
	DocumentNone     DocumentType = ""
	DocumentLOI      DocumentType = "loi"
	DocumentContract DocumentType = "contract"
)

// PipelineEvent is a normalized external event, produced by the provider
// webhook parsers after payload validation.
type PipelineEvent struct {
	Type       PipelineEventType
	Document   DocumentType
	Provider   WebhookProvider
	ExternalID string
	// PartnerCode is the partner code carried in provider metadata, if any
	PartnerCode string
	// Email is the fallback used to match the partner when no code is present
	Email      string
	OccurredAt time.Time
}

// StageAny matches any current stage in the transition table
const StageAny PipelineStage = "*"

// transitionKey is (current stage, event type, document type)
type transitionKey struct {
	stage    PipelineStage
	event    PipelineEventType
	document DocumentType
}

// Transition describes the effect of an event on a partner. Zero-valued
// fields leave the corresponding partner field untouched; NextStage empty
// keeps the current stage.
type Transition struct {
	NextStage      PipelineStage
	CallStatus     CallStatus
	LOIStatus      DocumentStatus
	ContractStatus DocumentStatus
	PayeeStatus    PayeeStatus
	// NotifyOps sends a milestone email to the operations inbox after commit
	NotifyOps bool
}

// transitionTable is the single source of truth for webhook-driven stage
// changes. Per-provider handlers only translate payloads into PipelineEvents;
// they never encode stage logic themselves.
var transitionTable = map[transitionKey]Transition{
	// discovery call scheduling
	{StageApplication, EventDiscoveryScheduled, DocumentNone}:   {NextStage: StageDiscoveryScheduled, CallStatus: CallStatusScheduled},
	{StageInitialReview, EventDiscoveryScheduled, DocumentNone}: {NextStage: StageDiscoveryScheduled, CallStatus: CallStatusScheduled},
	{StageDiscoveryScheduled, EventDiscoveryCanceled, DocumentNone}: {NextStage: StageInitialReview, CallStatus: CallStatusCanceled},

	// letter of intent
	{StageDiscoveryScheduled, EventDocumentSent, DocumentLOI}: {NextStage: StageLOISent, LOIStatus: DocumentStatusSent},
	{StageDiscoveryCompleted, EventDocumentSent, DocumentLOI}: {NextStage: StageLOISent, LOIStatus: DocumentStatusSent},
	{StageLOISent, EventDocumentViewed, DocumentLOI}:          {LOIStatus: DocumentStatusViewed},
	{StageLOISent, EventDocumentCompleted, DocumentLOI}:       {NextStage: StageLOISigned, LOIStatus: DocumentStatusSigned, NotifyOps: true},

	// contract
	{StageLOISigned, EventDocumentSent, DocumentContract}:    {NextStage: StageContractSent, ContractStatus: DocumentStatusSent},
	{StageTrial, EventDocumentSent, DocumentContract}:        {NextStage: StageContractSent, ContractStatus: DocumentStatusSent},
	{StageContractSent, EventDocumentViewed, DocumentContract}:    {ContractStatus: DocumentStatusViewed},
	{StageContractSent, EventDocumentCompleted, DocumentContract}: {NextStage: StageContractSigned, ContractStatus: DocumentStatusSigned, NotifyOps: true},

	// payout onboarding; only a signed contract advances the stage
	{StageContractSigned, EventPayeeOnboarded, DocumentNone}: {NextStage: StageActive, PayeeStatus: PayeeStatusCompleted, NotifyOps: true},
	{StageAny, EventPayeeOnboarded, DocumentNone}:            {PayeeStatus: PayeeStatusCompleted},
}

// ResolveTransition looks up the transition for the partner's current stage
// and the incoming event. An exact stage match wins over a StageAny wildcard.
func ResolveTransition(stage PipelineStage, event PipelineEvent) (Transition, bool) {
	if t, ok := transitionTable[transitionKey{stage, event.Type, event.Document}]; ok {
		return t, true
	}
	if t, ok := transitionTable[transitionKey{StageAny, event.Type, event.Document}]; ok {
		return t, true
	}
	return Transition{}, false
}

// Apply mutates the partner according to the transition and stamps the
// milestone timestamps. The caller is responsible for persisting the partner
// and its activity entry in the same transaction.
func (t Transition) Apply(p *Partner, event PipelineEvent) {
	now := event.OccurredAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if t.NextStage != "" {
		p.Stage = t.NextStage
	}
	if t.CallStatus != "" {
		p.DiscoveryCallStatus = t.CallStatus
		if t.CallStatus == CallStatusScheduled {
			p.DiscoveryCallAt = &now
		}
	}
	if t.LOIStatus != "" {
		p.LOIStatus = t.LOIStatus
		if t.LOIStatus == DocumentStatusSigned {
			p.LOISignedAt = &now
		}
	}
	if t.ContractStatus != "" {
		p.ContractStatus = t.ContractStatus
		if t.ContractStatus == DocumentStatusSigned {
			p.ContractSignedAt = &now
		}
	}
	if t.PayeeStatus != "" {
		p.TipaltiStatus = t.PayeeStatus
	}
	if t.NextStage == StageActive {
		p.ActivatedAt = &now
	}
	p.UpdatedAt = time.Now().UTC()
}

func (e *PipelineEvent) Validate() error {
	switch e.Type {
	case EventDiscoveryScheduled, EventDiscoveryCanceled, EventPayeeOnboarded:
		if e.Document != DocumentNone {
			return fmt.Errorf("event %s does not carry a document type", e.Type)
		}
	case EventDocumentSent, EventDocumentViewed, EventDocumentCompleted:
		if e.Document != DocumentLOI && e.Document != DocumentContract {
			return fmt.Errorf("event %s requires a document type", e.Type)
		}
	default:
		return fmt.Errorf("unknown pipeline event type: %s", e.Type)
	}
	if e.PartnerCode == "" && e.Email == "" {
		return fmt.Errorf("event carries neither a partner code nor an email")
	}
	return nil
}
