package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/pkg/crypto"
)

func TestStripeClientCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "price_abc", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "3", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "partner-1", r.PostForm.Get("metadata[partner_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cs_123", "url": "https://checkout.stripe.com/pay/cs_123"}`))
	}))
	defer server.Close()

	client := NewStripeClient("sk_test_123", "whsec_test")
	client.baseURL = server.URL

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		PriceID:    "price_abc",
		Quantity:   3,
		SuccessURL: "https://skyyield.io/store/success",
		CancelURL:  "https://skyyield.io/store/cancel",
		Metadata:   map[string]string{"partner_id": "partner-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", session.URL)
}

func TestStripeClientCreateCheckoutSessionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "No such price"}}`))
	}))
	defer server.Close()

	client := NewStripeClient("sk_test_123", "whsec_test")
	client.baseURL = server.URL

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{PriceID: "price_missing", Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestStripeClientVerifyWebhookSignature(t *testing.T) {
	client := NewStripeClient("sk_test_123", "whsec_test")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	sign := func(ts int64) string {
		signed := fmt.Sprintf("%d.%s", ts, payload)
		return crypto.ComputeHMAC256([]byte(signed), "whsec_test")
	}

	t.Run("Valid", func(t *testing.T) {
		ts := time.Now().Unix()
		header := fmt.Sprintf("t=%d,v1=%s", ts, sign(ts))
		assert.NoError(t, client.VerifyWebhookSignature(payload, header))
	})

	t.Run("SecondSignatureAccepted", func(t *testing.T) {
		// Stripe sends multiple v1 entries during secret rotation
		ts := time.Now().Unix()
		header := fmt.Sprintf("t=%d,v1=%s,v1=%s", ts, "0000", sign(ts))
		assert.NoError(t, client.VerifyWebhookSignature(payload, header))
	})

	t.Run("StaleTimestamp", func(t *testing.T) {
		ts := time.Now().Add(-10 * time.Minute).Unix()
		header := fmt.Sprintf("t=%d,v1=%s", ts, sign(ts))
		err := client.VerifyWebhookSignature(payload, header)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside tolerance")
	})

	t.Run("WrongSecret", func(t *testing.T) {
		ts := time.Now().Unix()
		signed := fmt.Sprintf("%d.%s", ts, payload)
		header := fmt.Sprintf("t=%d,v1=%s", ts, crypto.ComputeHMAC256([]byte(signed), "whsec_other"))
		assert.Error(t, client.VerifyWebhookSignature(payload, header))
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		assert.Error(t, client.VerifyWebhookSignature(payload, "garbage"))
		assert.Error(t, client.VerifyWebhookSignature(payload, "t=notanumber,v1=abcd"))
	})
}
