package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

//go:generate mockgen -destination mocks/mock_payment_repository.go -package mocks github.com/skyyield/skyyield/internal/domain PaymentRepository
//go:generate mockgen -destination mocks/mock_commission_repository.go -package mocks github.com/skyyield/skyyield/internal/domain CommissionRepository

// PaymentStatus mirrors the payout provider's payment lifecycle
type PaymentStatus string

const (
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment mirrors one payout provider payment. All amounts are integer
// cents; the provider's decimal amounts are converted at the edge and never
// handled as floats internally.
type Payment struct {
	ID          string        `json:"id"`
	RefCode     string        `json:"ref_code"`
	PayeeID     string        `json:"payee_id"`
	PartnerID   *string       `json:"partner_id,omitempty"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	FailureCode string        `json:"failure_code,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PaymentSummary aggregates payments for the admin dashboard
type PaymentSummary struct {
	TotalPaidCents    int64 `json:"total_paid_cents"`
	TotalPendingCents int64 `json:"total_pending_cents"`
	TotalFailedCents  int64 `json:"total_failed_cents"`
	PayeeCount        int   `json:"payee_count"`
	PaymentCount      int   `json:"payment_count"`
}

var commissionPeriodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidCommissionPeriod reports whether period is formatted YYYY-MM
func ValidCommissionPeriod(period string) bool {
	return commissionPeriodRe.MatchString(period)
}

// CommissionStatus is the payment status of a monthly commission
type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "pending"
	CommissionStatusPaid    CommissionStatus = "paid"
)

// MonthlyCommission is the commission owed to a partner for one period.
// One row per (partner, period); the computation job upserts.
type MonthlyCommission struct {
	ID          string           `json:"id"`
	PartnerID   string           `json:"partner_id"`
	Period      string           `json:"period"` // YYYY-MM
	DeviceCount int              `json:"device_count"`
	AmountCents int64            `json:"amount_cents"`
	Status      CommissionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PaymentListParams filters payment lists
type PaymentListParams struct {
	PartnerID string        `json:"partner_id,omitempty"`
	PayeeID   string        `json:"payee_id,omitempty"`
	Status    PaymentStatus `json:"status,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Offset    int           `json:"offset,omitempty"`
}

func (p *PaymentListParams) Validate() error {
	if p.Status != "" {
		switch p.Status {
		case PaymentStatusSubmitted, PaymentStatusCompleted, PaymentStatusFailed:
		default:
			return fmt.Errorf("invalid payment status: %s", p.Status)
		}
	}
	if p.Limit < 0 || p.Offset < 0 {
		return fmt.Errorf("limit and offset cannot be negative")
	}
	if p.Limit == 0 || p.Limit > 100 {
		p.Limit = 100
	}
	return nil
}

// PaymentRepository persists payout provider payments
type PaymentRepository interface {
	// Upsert inserts the payment or, when ref_code exists, updates its
	// status fields. Redelivered webhooks therefore leave one row.
	Upsert(ctx context.Context, payment *Payment) error
	GetByRefCode(ctx context.Context, refCode string) (*Payment, error)
	List(ctx context.Context, params PaymentListParams) ([]*Payment, error)
	Summary(ctx context.Context) (*PaymentSummary, error)
}

// CommissionRepository persists monthly commissions
type CommissionRepository interface {
	// Upsert inserts or replaces the commission for (partner_id, period)
	Upsert(ctx context.Context, commission *MonthlyCommission) error
	ListByPartner(ctx context.Context, partnerID string, limit, offset int) ([]*MonthlyCommission, error)
	ListByPeriod(ctx context.Context, period string) ([]*MonthlyCommission, error)
	MarkPaid(ctx context.Context, id string) error
}
