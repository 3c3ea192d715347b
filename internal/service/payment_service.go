package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

const (
	paymentSummaryCacheKey = "payment_summary"
	paymentSummaryCacheTTL = 5 * time.Minute

	// reconcileConcurrency bounds parallel provider API calls
	reconcileConcurrency = 5
)

// PaymentProviderClient is the slice of the payout provider API the payment
// service needs
type PaymentProviderClient interface {
	ListPayeePayments(ctx context.Context, payeeID string) ([]*domain.Payment, error)
}

// PaymentService records payout payments and reconciles them against the
// provider API
type PaymentService struct {
	paymentRepo domain.PaymentRepository
	partnerRepo domain.PartnerRepository
	provider    PaymentProviderClient
	cache       *cache.Cache
	logger      logger.Logger
}

func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	partnerRepo domain.PartnerRepository,
	provider PaymentProviderClient,
	logger logger.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		partnerRepo: partnerRepo,
		provider:    provider,
		cache:       cache.New(paymentSummaryCacheTTL, 10*time.Minute),
		logger:      logger,
	}
}

// RecordPayment upserts a payment reported by a webhook, resolving the
// partner from the payee id when possible
func (s *PaymentService) RecordPayment(ctx context.Context, payment *domain.Payment) error {
	if payment.PartnerID == nil && payment.PayeeID != "" {
		// payee ids are partner codes, assigned at invite time
		if partner, err := s.partnerRepo.GetByPartnerCode(ctx, payment.PayeeID); err == nil {
			payment.PartnerID = &partner.ID
		}
	}

	if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
		return err
	}

	s.cache.Delete(paymentSummaryCacheKey)
	return nil
}

// ListPayments retrieves payments matching the filter params
func (s *PaymentService) ListPayments(ctx context.Context, params domain.PaymentListParams) ([]*domain.Payment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.paymentRepo.List(ctx, params)
}

// GetSummary returns the aggregated payment totals, cached for five minutes
func (s *PaymentService) GetSummary(ctx context.Context) (*domain.PaymentSummary, error) {
	if cached, found := s.cache.Get(paymentSummaryCacheKey); found {
		return cached.(*domain.PaymentSummary), nil
	}

	summary, err := s.paymentRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(paymentSummaryCacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

// Reconcile pulls the full payment history for every configured payee from
// the provider API and upserts it. Upserts are idempotent by ref code, so
// reconciliation can run at any time without creating duplicates.
func (s *PaymentService) Reconcile(ctx context.Context) error {
	payees, err := s.partnerRepo.ListPayees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payees: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, partner := range payees {
		partner := partner
		g.Go(func() error {
			payments, err := s.provider.ListPayeePayments(gctx, *partner.TipaltiPayeeID)
			if err != nil {
				return err
			}
			for _, payment := range payments {
				payment.PartnerID = &partner.ID
				if err := s.paymentRepo.Upsert(gctx, payment); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("payment reconciliation failed: %w", err)
	}

	s.cache.Delete(paymentSummaryCacheKey)
	s.logger.WithField("payees", len(payees)).Info("payment reconciliation completed")
	return nil
}
