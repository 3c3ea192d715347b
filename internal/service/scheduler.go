package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skyyield/skyyield/pkg/logger"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 10 * time.Minute

// Scheduler runs the recurring jobs: monthly commission computation and
// payment reconciliation, both at 02:00 UTC on the first of the month.
type Scheduler struct {
	cron        *cron.Cron
	commissions *CommissionService
	payments    *PaymentService
	logger      logger.Logger
}

func NewScheduler(commissions *CommissionService, payments *PaymentService, logger logger.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		commissions: commissions,
		payments:    payments,
		logger:      logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 2 1 * *", s.runMonthly)
	if err != nil {
		return fmt.Errorf("failed to schedule monthly job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runMonthly() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.payments.Reconcile(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("scheduled payment reconciliation failed: %v", err))
	}

	if err := s.commissions.ComputePreviousMonth(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("scheduled commission computation failed: %v", err))
	}
}
