package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/crypto"
)

func TestTipaltiServiceVerifySignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewTipaltiService("tipalti-secret", "", "", "SkyYield", newTestLogger(ctrl))

	payload := []byte(`{"type":"payment_completed"}`)
	signature := crypto.ComputeHMAC256(payload, "tipalti-secret")

	assert.NoError(t, svc.VerifySignature(payload, signature))
	assert.Error(t, svc.VerifySignature([]byte(`{"type":"tampered"}`), signature))
	assert.Error(t, svc.VerifySignature(payload, "deadbeef"))
}

func TestTipaltiServiceClassifyEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewTipaltiService("s", "", "", "SkyYield", newTestLogger(ctrl))

	assert.Equal(t, TipaltiEventPayee, svc.ClassifyEvent([]byte(`{"type":"payee_onboarding_completed"}`)))
	assert.Equal(t, TipaltiEventPayee, svc.ClassifyEvent([]byte(`{"type":"payee_details_changed"}`)))
	assert.Equal(t, TipaltiEventPayment, svc.ClassifyEvent([]byte(`{"type":"payment_submitted"}`)))
	assert.Equal(t, TipaltiEventPayment, svc.ClassifyEvent([]byte(`{"type":"payment_failed"}`)))
	assert.Equal(t, TipaltiEventUnknown, svc.ClassifyEvent([]byte(`{"type":"funds_added"}`)))
}

func TestTipaltiServiceParsePayeeEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewTipaltiService("s", "", "", "SkyYield", newTestLogger(ctrl))

	t.Run("OnboardingCompleted", func(t *testing.T) {
		payload := `{
			"type": "payee_onboarding_completed",
			"event_id": "evt-1",
			"payee_id": "LP-2026-0042",
			"email": "jordan@acme.test",
			"occurred_at": "2026-05-01T12:00:00Z"
		}`
		event, err := svc.ParsePayeeEvent([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, domain.EventPayeeOnboarded, event.Type)
		assert.Equal(t, "LP-2026-0042", event.PartnerCode)
		assert.Equal(t, domain.WebhookProviderTipalti, event.Provider)
	})

	t.Run("DetailsChangedPayable", func(t *testing.T) {
		event, err := svc.ParsePayeeEvent([]byte(`{"type":"payee_details_changed","payable":true,"payee_id":"LP-2026-0042"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.EventPayeeOnboarded, event.Type)
	})

	t.Run("NotPayableYet", func(t *testing.T) {
		_, err := svc.ParsePayeeEvent([]byte(`{"type":"payee_details_changed","payable":false,"payee_id":"LP-2026-0042"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not payable")
	})
}

func TestTipaltiServiceParsePaymentEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewTipaltiService("s", "", "", "SkyYield", newTestLogger(ctrl))

	t.Run("Completed", func(t *testing.T) {
		payload := `{
			"type": "payment_completed",
			"ref_code": "ref-200",
			"payee_id": "LP-2026-0042",
			"amount": "1250.50",
			"currency": "usd"
		}`
		payment, err := svc.ParsePaymentEvent([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, int64(125050), payment.AmountCents)
		assert.Equal(t, "USD", payment.Currency)
		assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
		assert.NotNil(t, payment.CompletedAt)
		assert.Nil(t, payment.SubmittedAt)
	})

	t.Run("FailedCarriesErrorCode", func(t *testing.T) {
		payload := `{"type":"payment_failed","ref_code":"ref-201","payee_id":"LP-2026-0042","amount":"50","error_code":"ACCOUNT_CLOSED"}`
		payment, err := svc.ParsePaymentEvent([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusFailed, payment.Status)
		assert.Equal(t, "ACCOUNT_CLOSED", payment.FailureCode)
		assert.Equal(t, int64(5000), payment.AmountCents)
	})

	t.Run("MissingRefCode", func(t *testing.T) {
		_, err := svc.ParsePaymentEvent([]byte(`{"type":"payment_completed","amount":"10.00"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no ref_code")
	})
}

func TestTipaltiServiceListPayeePayments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payees/LP-2026-0042/payments", r.URL.Path)
		assert.Equal(t, "SkyYield", r.URL.Query().Get("payer"))
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"payments": [
				{"refCode": "ref-1", "payeeId": "LP-2026-0042", "amount": "100.00", "currency": "usd", "status": "Paid", "submittedDate": "2026-05-01T00:00:00Z", "completedDate": "2026-05-03T00:00:00Z"},
				{"refCode": "ref-2", "payeeId": "LP-2026-0042", "amount": "25.5", "currency": "usd", "status": "Scheduled"},
				{"refCode": "ref-3", "payeeId": "LP-2026-0042", "amount": "bogus", "status": "Paid"}
			]
		}`))
	}))
	defer server.Close()

	svc := NewTipaltiService("s", server.URL, "api-key", "SkyYield", newTestLogger(ctrl))

	payments, err := svc.ListPayeePayments(context.Background(), "LP-2026-0042")
	require.NoError(t, err)

	// the unparseable row is skipped, not fatal
	require.Len(t, payments, 2)
	assert.Equal(t, int64(10000), payments[0].AmountCents)
	assert.Equal(t, domain.PaymentStatusCompleted, payments[0].Status)
	assert.NotNil(t, payments[0].CompletedAt)
	assert.Equal(t, int64(2550), payments[1].AmountCents)
	assert.Equal(t, domain.PaymentStatusSubmitted, payments[1].Status)
}

func TestTipaltiServiceListPayeePaymentsAPIError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewTipaltiService("s", server.URL, "bad-key", "SkyYield", newTestLogger(ctrl))

	_, err := svc.ListPayeePayments(context.Background(), "LP-2026-0042")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		amount  string
		want    int64
		wantErr bool
	}{
		{"1250.50", 125050, false},
		{"0.05", 5, false},
		{"100", 10000, false},
		{"25.5", 2550, false},
		{".99", 99, false},
		{"-10.25", -1025, false},
		{"", 0, true},
		{"1.005", 0, true},
		{"12a.00", 0, true},
		{"9999999999999999.99", 999999999999999999, false},
		{"99999999999999999.99", 0, true},
		{"99999999999999999999999999999999999999.99", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			got, err := parseAmountCents(tc.amount)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
