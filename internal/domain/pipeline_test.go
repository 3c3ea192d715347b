package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTransition(t *testing.T) {
	t.Run("discovery scheduled from application", func(t *testing.T) {
		tr, ok := ResolveTransition(StageApplication, PipelineEvent{Type: EventDiscoveryScheduled})
		require.True(t, ok)
		assert.Equal(t, StageDiscoveryScheduled, tr.NextStage)
		assert.Equal(t, CallStatusScheduled, tr.CallStatus)
	})

	t.Run("discovery scheduled from initial review", func(t *testing.T) {
		tr, ok := ResolveTransition(StageInitialReview, PipelineEvent{Type: EventDiscoveryScheduled})
		require.True(t, ok)
		assert.Equal(t, StageDiscoveryScheduled, tr.NextStage)
	})

	t.Run("no transition for discovery scheduling in later stages", func(t *testing.T) {
		_, ok := ResolveTransition(StageContractSent, PipelineEvent{Type: EventDiscoveryScheduled})
		assert.False(t, ok)
	})

	t.Run("loi completion advances and notifies", func(t *testing.T) {
		tr, ok := ResolveTransition(StageLOISent, PipelineEvent{Type: EventDocumentCompleted, Document: DocumentLOI})
		require.True(t, ok)
		assert.Equal(t, StageLOISigned, tr.NextStage)
		assert.Equal(t, DocumentStatusSigned, tr.LOIStatus)
		assert.True(t, tr.NotifyOps)
	})

	t.Run("document viewed keeps the stage", func(t *testing.T) {
		tr, ok := ResolveTransition(StageLOISent, PipelineEvent{Type: EventDocumentViewed, Document: DocumentLOI})
		require.True(t, ok)
		assert.Empty(t, tr.NextStage)
		assert.Equal(t, DocumentStatusViewed, tr.LOIStatus)
	})

	t.Run("payee onboarding exact match beats wildcard", func(t *testing.T) {
		tr, ok := ResolveTransition(StageContractSigned, PipelineEvent{Type: EventPayeeOnboarded})
		require.True(t, ok)
		assert.Equal(t, StageActive, tr.NextStage)
	})

	t.Run("payee onboarding wildcard only updates the payee status", func(t *testing.T) {
		tr, ok := ResolveTransition(StageTrial, PipelineEvent{Type: EventPayeeOnboarded})
		require.True(t, ok)
		assert.Empty(t, tr.NextStage)
		assert.Equal(t, PayeeStatusCompleted, tr.PayeeStatus)
	})
}

func TestTransitionApply(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("discovery scheduling stamps the call time", func(t *testing.T) {
		p := &Partner{Stage: StageApplication, DiscoveryCallStatus: CallStatusNone}
		event := PipelineEvent{Type: EventDiscoveryScheduled, OccurredAt: occurred, Email: "jane@x.com"}
		tr, ok := ResolveTransition(p.Stage, event)
		require.True(t, ok)

		tr.Apply(p, event)
		assert.Equal(t, StageDiscoveryScheduled, p.Stage)
		assert.Equal(t, CallStatusScheduled, p.DiscoveryCallStatus)
		require.NotNil(t, p.DiscoveryCallAt)
		assert.Equal(t, occurred, *p.DiscoveryCallAt)
	})

	t.Run("contract completion stamps signature and activation advances", func(t *testing.T) {
		p := &Partner{Stage: StageContractSent}
		event := PipelineEvent{Type: EventDocumentCompleted, Document: DocumentContract, OccurredAt: occurred, Email: "jane@x.com"}
		tr, ok := ResolveTransition(p.Stage, event)
		require.True(t, ok)
		tr.Apply(p, event)
		assert.Equal(t, StageContractSigned, p.Stage)
		require.NotNil(t, p.ContractSignedAt)

		onboard := PipelineEvent{Type: EventPayeeOnboarded, OccurredAt: occurred.Add(time.Hour), Email: "jane@x.com"}
		tr, ok = ResolveTransition(p.Stage, onboard)
		require.True(t, ok)
		tr.Apply(p, onboard)
		assert.Equal(t, StageActive, p.Stage)
		assert.Equal(t, PayeeStatusCompleted, p.TipaltiStatus)
		require.NotNil(t, p.ActivatedAt)
	})

	t.Run("untouched fields stay untouched", func(t *testing.T) {
		p := &Partner{Stage: StageLOISent, ContractStatus: DocumentStatusNone}
		event := PipelineEvent{Type: EventDocumentViewed, Document: DocumentLOI, OccurredAt: occurred, Email: "jane@x.com"}
		tr, _ := ResolveTransition(p.Stage, event)
		tr.Apply(p, event)
		assert.Equal(t, StageLOISent, p.Stage)
		assert.Equal(t, DocumentStatusNone, p.ContractStatus)
	})
}

func TestPipelineEventValidate(t *testing.T) {
	t.Run("document events require a document type", func(t *testing.T) {
		err := (&PipelineEvent{Type: EventDocumentSent, Email: "jane@x.com"}).Validate()
		assert.Error(t, err)
	})

	t.Run("discovery events must not carry a document type", func(t *testing.T) {
		err := (&PipelineEvent{Type: EventDiscoveryScheduled, Document: DocumentLOI, Email: "jane@x.com"}).Validate()
		assert.Error(t, err)
	})

	t.Run("an identifier is required", func(t *testing.T) {
		err := (&PipelineEvent{Type: EventDiscoveryScheduled}).Validate()
		assert.Error(t, err)
	})

	t.Run("valid event", func(t *testing.T) {
		err := (&PipelineEvent{Type: EventDocumentCompleted, Document: DocumentContract, PartnerCode: "LP-2026-0001"}).Validate()
		assert.NoError(t, err)
	})
}
