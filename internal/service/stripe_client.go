package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/crypto"
)

const stripeAPIBaseURL = "https://api.stripe.com/v1"

// stripeSignatureTolerance bounds how old a webhook timestamp may be
const stripeSignatureTolerance = 5 * time.Minute

// StripeClient is a thin client for the parts of the Stripe API the store
// uses: checkout sessions and webhook signature verification
type StripeClient struct {
	apiKey        string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewStripeClient(apiKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeAPIBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckoutSessionParams are the inputs for creating a hosted checkout session
type CheckoutSessionParams struct {
	PriceID    string
	Quantity   int
	SuccessURL string
	CancelURL  string
	// Metadata is echoed back on the checkout.session.completed webhook
	Metadata map[string]string
}

// CreateCheckoutSession creates a hosted checkout session
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", strconv.Itoa(params.Quantity))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call checkout API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("checkout API returned status %d: %s", resp.StatusCode, body)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}

	return &domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header, formatted
// "t=<timestamp>,v1=<hex hmac of timestamp.payload>", and rejects stale
// timestamps
func (c *StripeClient) VerifyWebhookSignature(payload []byte, header string) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	age := time.Since(time.Unix(ts, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	signed := fmt.Sprintf("%s.%s", timestamp, payload)
	for _, signature := range signatures {
		if crypto.VerifyHMAC([]byte(signed), signature, c.webhookSecret) {
			return nil
		}
	}

	return fmt.Errorf("signature mismatch")
}
