package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := []struct {
		from, to PurchaseRequestStatus
	}{
		{PurchaseStatusPendingApproval, PurchaseStatusApproved},
		{PurchaseStatusApproved, PurchaseStatusOrdered},
		{PurchaseStatusOrdered, PurchaseStatusShipped},
		{PurchaseStatusShipped, PurchaseStatusReceived},
		{PurchaseStatusReceived, PurchaseStatusAssigned},
		{PurchaseStatusPendingApproval, PurchaseStatusCancelled},
		{PurchaseStatusReceived, PurchaseStatusCancelled},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from, to PurchaseRequestStatus
	}{
		// re-entry
		{PurchaseStatusOrdered, PurchaseStatusOrdered},
		// skipping a step
		{PurchaseStatusApproved, PurchaseStatusShipped},
		// going backwards
		{PurchaseStatusShipped, PurchaseStatusApproved},
		// out of terminal states
		{PurchaseStatusAssigned, PurchaseStatusCancelled},
		{PurchaseStatusCancelled, PurchaseStatusPendingApproval},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestCreatePurchaseRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := &CreatePurchaseRequestRequest{PartnerID: "p1", ProductID: "prod1", Quantity: 2}
		assert.NoError(t, req.Validate())
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		req := &CreatePurchaseRequestRequest{PartnerID: "p1", ProductID: "prod1", Quantity: 0}
		assert.Error(t, req.Validate())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		req := &CreatePurchaseRequestRequest{PartnerID: "p1", ProductID: "prod1", Quantity: -3}
		assert.Error(t, req.Validate())
	})

	t.Run("missing product rejected", func(t *testing.T) {
		req := &CreatePurchaseRequestRequest{PartnerID: "p1", Quantity: 1}
		assert.Error(t, req.Validate())
	})
}
