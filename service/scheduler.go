package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// AccrualScheduler periodically checks whether the most recent completed
// calendar month has been credited yet and triggers a run if not. Because
// posting is idempotent, a tick racing a manual trigger is harmless.
type AccrualScheduler struct {
	interest InterestService
	clock    Clock
	interval time.Duration
}

// NewAccrualScheduler creates a scheduler that checks every interval.
func NewAccrualScheduler(interest InterestService, clock Clock, interval time.Duration) *AccrualScheduler {
	return &AccrualScheduler{
		interest: interest,
		clock:    clock,
		interval: interval,
	}
}

// Start runs the scheduler loop until the context is cancelled. It blocks;
// callers run it in a goroutine.
func (s *AccrualScheduler) Start(ctx context.Context) {
	log.WithField("interval", s.interval).Info("Starting accrual scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("Accrual scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *AccrualScheduler) tick(ctx context.Context) {
	period := s.interest.CurrentPeriod()

	done, err := s.interest.HasRunFor(ctx, period)
	if err != nil {
		log.WithFields(log.Fields{
			"period": period.String(),
			"error":  err,
		}).Error("Failed to check for existing interest run")
		return
	}
	if done {
		return
	}

	log.WithField("period", period.String()).Info("Scheduler triggering interest run")
	if _, err := s.interest.Run(ctx, period, nil); err != nil {
		log.WithFields(log.Fields{
			"period": period.String(),
			"error":  err,
		}).Error("Scheduled interest run failed")
	}
}
