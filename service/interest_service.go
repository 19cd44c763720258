package service

import (
	"context"
	"fmt"

	"corebank/events"
	"corebank/models"
	log "github.com/sirupsen/logrus"
)

type interestService struct {
	uowFactory UnitOfWorkFactory
	engine     PostingEngine
	clock      Clock
	dayCount   models.DayCountConvention
	auditSink  AuditSink
	metrics    RunMetrics
}

// NewInterestService creates the accrual run orchestrator. auditSink and
// metrics may be nil.
func NewInterestService(uowFactory UnitOfWorkFactory, engine PostingEngine, clock Clock, dayCount models.DayCountConvention, auditSink AuditSink, metrics RunMetrics) InterestService {
	return &interestService{
		uowFactory: uowFactory,
		engine:     engine,
		clock:      clock,
		dayCount:   dayCount,
		auditSink:  auditSink,
		metrics:    metrics,
	}
}

// Run iterates all eligible accounts and posts interest for the period.
// A missing rate for any involved tier aborts before any posting happens;
// individual posting failures are isolated and collected in the summary.
// Cancellation between accounts is safe: posted accounts stay posted and a
// re-run skips them.
func (s *interestService) Run(ctx context.Context, period models.AccrualPeriod, filter *AccountFilter) (*models.RunSummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	accounts, table, err := s.loadRunInputs(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Rates are resolved as of the period start. Resolving every involved
	// tier up front means a configuration hole aborts the run before any
	// account is touched.
	rates := make(map[models.AccountTier]int64)
	for _, account := range accounts {
		if _, ok := rates[account.Tier]; ok {
			continue
		}
		rate, err := table.RateFor(account.Tier, period.Start)
		if err != nil {
			return nil, err
		}
		rates[account.Tier] = rate
	}

	summary := &models.RunSummary{
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		StartedAt:   s.clock.Now(),
	}

	log.WithFields(log.Fields{
		"period":   period.String(),
		"accounts": len(accounts),
	}).Info("Starting interest accrual run")

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = s.clock.Now()
			log.WithField("period", period.String()).Warn("Interest run cancelled between accounts")
			return summary, err
		}

		rate := rates[account.Tier]
		amount := ComputeInterest(account.Balance, rate, period, s.dayCount)

		result, err := s.engine.Post(ctx, account.ID, period, amount, rate)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, models.AccountFailure{
				AccountID: account.ID,
				Reason:    err.Error(),
			})
			log.WithFields(log.Fields{
				"accountID": account.ID,
				"period":    period.String(),
				"error":     err,
			}).Error("Interest posting failed for account")
			continue
		}

		switch result.Status {
		case models.PostingStatusPosted:
			summary.Credited++
			summary.TotalCredited += result.Amount
		case models.PostingStatusSkipped:
			summary.Skipped++
		}
	}

	summary.FinishedAt = s.clock.Now()

	s.recordRun(ctx, summary)
	if s.metrics != nil {
		s.metrics.ObserveRun(summary)
	}
	if s.auditSink != nil {
		if err := s.auditSink.PublishRunSummary(ctx, summary); err != nil {
			log.WithField("error", err).Warn("Failed to publish run summary to audit sink")
		}
	}

	log.WithFields(log.Fields{
		"period":        period.String(),
		"credited":      summary.Credited,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
		"totalCredited": summary.TotalCredited,
	}).Info("Interest accrual run completed")

	return summary, nil
}

// CurrentPeriod derives the period a run triggered now would cover: the most
// recent fully completed calendar month.
func (s *interestService) CurrentPeriod() models.AccrualPeriod {
	return models.PreviousMonthPeriod(s.clock.Now())
}

// HasRunFor reports whether any run has been recorded for the period.
func (s *interestService) HasRunFor(ctx context.Context, period models.AccrualPeriod) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	run, err := uow.InterestRunRepository().GetByPeriod(ctx, period)
	if err != nil {
		return false, fmt.Errorf("failed to look up run for period %s: %w", period, err)
	}
	return run != nil, nil
}

// GetRateSchedule returns the published rate schedule.
func (s *interestService) GetRateSchedule(ctx context.Context) ([]*models.RateEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.RateScheduleRepository().ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate schedule: %w", err)
	}
	return entries, nil
}

// loadRunInputs reads the eligible accounts and the rate schedule in one
// read-only transaction.
func (s *interestService) loadRunInputs(ctx context.Context, filter *AccountFilter) ([]*models.Account, *RateTable, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().ListEligible(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list eligible accounts: %w", err)
	}

	entries, err := uow.RateScheduleRepository().ListEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rate schedule: %w", err)
	}

	return accounts, NewRateTable(entries), nil
}

// recordRun persists the run record and publishes the run-completed event.
// Best effort: the summary is still returned to the caller if the insert
// fails. The event rides the same transaction as the record, so subscribers
// only hear about runs that were durably recorded.
func (s *interestService) recordRun(ctx context.Context, summary *models.RunSummary) {
	run := &models.InterestRun{
		PeriodStart:   summary.PeriodStart,
		PeriodEnd:     summary.PeriodEnd,
		Credited:      summary.Credited,
		Skipped:       summary.Skipped,
		Failed:        summary.Failed,
		TotalCredited: summary.TotalCredited,
		Summary: map[string]any{
			"started_at":  summary.StartedAt,
			"finished_at": summary.FinishedAt,
			"failures":    summary.Failures,
		},
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithField("error", err).Warn("Failed to begin transaction for run record")
		return
	}
	defer uow.Rollback()

	if err := uow.InterestRunRepository().Create(ctx, run); err != nil {
		log.WithField("error", err).Warn("Failed to persist interest run record")
		return
	}

	uow.EventBus().Publish(events.InterestRunCompletedEvent{
		PeriodStart:   summary.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     summary.PeriodEnd.Format("2006-01-02"),
		Credited:      summary.Credited,
		Skipped:       summary.Skipped,
		Failed:        summary.Failed,
		TotalCredited: summary.TotalCredited,
	})

	if err := uow.Commit(); err != nil {
		log.WithField("error", err).Warn("Failed to commit interest run record")
	}
}
