package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/crypto"
	"github.com/skyyield/skyyield/pkg/logger"
)

// TipaltiService verifies and parses payout provider webhooks and wraps the
// provider's payments API for reconciliation
type TipaltiService struct {
	secret     string
	apiBaseURL string
	apiKey     string
	payerName  string
	httpClient *http.Client
	logger     logger.Logger
}

func NewTipaltiService(secret, apiBaseURL, apiKey, payerName string, logger logger.Logger) *TipaltiService {
	return &TipaltiService{
		secret:     secret,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		apiKey:     apiKey,
		payerName:  payerName,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// VerifySignature checks the hex HMAC the provider sends in X-Tipalti-Signature
func (s *TipaltiService) VerifySignature(payload []byte, header string) error {
	if !crypto.VerifyHMAC(payload, header, s.secret) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// EventKind distinguishes the two webhook families the provider sends
type TipaltiEventKind int

const (
	TipaltiEventUnknown TipaltiEventKind = iota
	TipaltiEventPayee
	TipaltiEventPayment
)

// ClassifyEvent inspects the payload type field
func (s *TipaltiService) ClassifyEvent(payload []byte) TipaltiEventKind {
	switch gjson.GetBytes(payload, "type").String() {
	case "payee_details_changed", "payee_onboarding_completed":
		return TipaltiEventPayee
	case "payment_submitted", "payment_completed", "payment_failed":
		return TipaltiEventPayment
	}
	return TipaltiEventUnknown
}

// ParsePayeeEvent translates a payee onboarding payload into a pipeline
// event. The payee id is the partner code, assigned at invite time.
func (s *TipaltiService) ParsePayeeEvent(payload []byte) (domain.PipelineEvent, error) {
	body := gjson.ParseBytes(payload)

	if !body.Get("payable").Bool() && body.Get("type").String() != "payee_onboarding_completed" {
		return domain.PipelineEvent{}, fmt.Errorf("payee is not payable yet")
	}

	event := domain.PipelineEvent{
		Type:        domain.EventPayeeOnboarded,
		Provider:    domain.WebhookProviderTipalti,
		ExternalID:  body.Get("event_id").String(),
		PartnerCode: body.Get("payee_id").String(),
		Email:       body.Get("email").String(),
	}

	if ts := body.Get("occurred_at").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			event.OccurredAt = t.UTC()
		}
	}

	return event, nil
}

// ParsePaymentEvent translates a payment payload into a Payment row. The
// provider reports decimal amounts; they are converted to integer cents here
// and never handled as floats.
func (s *TipaltiService) ParsePaymentEvent(payload []byte) (*domain.Payment, error) {
	body := gjson.ParseBytes(payload)

	refCode := body.Get("ref_code").String()
	if refCode == "" {
		return nil, fmt.Errorf("payment payload has no ref_code")
	}

	cents, err := parseAmountCents(body.Get("amount").String())
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount: %w", err)
	}

	payment := &domain.Payment{
		RefCode:     refCode,
		PayeeID:     body.Get("payee_id").String(),
		AmountCents: cents,
		Currency:    strings.ToUpper(body.Get("currency").String()),
		FailureCode: body.Get("error_code").String(),
	}
	if payment.Currency == "" {
		payment.Currency = "USD"
	}

	now := time.Now().UTC()
	switch body.Get("type").String() {
	case "payment_submitted":
		payment.Status = domain.PaymentStatusSubmitted
		payment.SubmittedAt = &now
	case "payment_completed":
		payment.Status = domain.PaymentStatusCompleted
		payment.CompletedAt = &now
	case "payment_failed":
		payment.Status = domain.PaymentStatusFailed
	default:
		return nil, fmt.Errorf("unsupported payment event: %s", body.Get("type").String())
	}

	return payment, nil
}

// tipaltiPayment is the API's payment list item
type tipaltiPayment struct {
	RefCode     string `json:"refCode"`
	PayeeID     string `json:"payeeId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	ErrorCode   string `json:"errorCode"`
	SubmittedAt string `json:"submittedDate"`
	CompletedAt string `json:"completedDate"`
}

// ListPayeePayments fetches all payments for a payee from the provider API
func (s *TipaltiService) ListPayeePayments(ctx context.Context, payeeID string) ([]*domain.Payment, error) {
	url := fmt.Sprintf("%s/api/v1/payees/%s/payments?payer=%s", s.apiBaseURL, payeeID, s.payerName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payments request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments for payee %s: %w", payeeID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payments API returned status %d for payee %s", resp.StatusCode, payeeID)
	}

	var body struct {
		Payments []tipaltiPayment `json:"payments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode payments response: %w", err)
	}

	payments := make([]*domain.Payment, 0, len(body.Payments))
	for _, item := range body.Payments {
		payment, err := s.convertAPIPayment(item)
		if err != nil {
			s.logger.WithField("ref_code", item.RefCode).
				Warn(fmt.Sprintf("skipping unparseable payment: %v", err))
			continue
		}
		payments = append(payments, payment)
	}

	return payments, nil
}

func (s *TipaltiService) convertAPIPayment(item tipaltiPayment) (*domain.Payment, error) {
	cents, err := parseAmountCents(item.Amount)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		RefCode:     item.RefCode,
		PayeeID:     item.PayeeID,
		AmountCents: cents,
		Currency:    strings.ToUpper(item.Currency),
		FailureCode: item.ErrorCode,
	}

	switch strings.ToLower(item.Status) {
	case "submitted", "scheduled":
		payment.Status = domain.PaymentStatusSubmitted
	case "paid", "completed":
		payment.Status = domain.PaymentStatusCompleted
	case "error", "rejected", "failed":
		payment.Status = domain.PaymentStatusFailed
	default:
		return nil, fmt.Errorf("unknown payment status: %s", item.Status)
	}

	if t, err := time.Parse(time.RFC3339, item.SubmittedAt); err == nil {
		utc := t.UTC()
		payment.SubmittedAt = &utc
	}
	if t, err := time.Parse(time.RFC3339, item.CompletedAt); err == nil {
		utc := t.UTC()
		payment.CompletedAt = &utc
	}

	return payment, nil
}

// parseAmountCents converts a decimal amount string like "1250.50" to integer
// cents without going through floating point
func parseAmountCents(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(amount, "-") {
		negative = true
		amount = amount[1:]
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("more than two decimal places: %s", amount)
	}

	// 18 digits of cents stays within int64
	if len(whole)+len(frac) > 18 {
		return 0, fmt.Errorf("amount out of range: %s", amount)
	}

	var cents int64
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount: %s", amount)
		}
		cents = cents*10 + int64(r-'0')
	}

	if negative {
		cents = -cents
	}
	return cents, nil
}
