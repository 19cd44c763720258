package cmd

import (
	"context"
	"fmt"
	"time"

	"corebank/api"
	"corebank/audit"
	"corebank/config"
	"corebank/database"
	"corebank/events"
	"corebank/metrics"
	"corebank/repository"
	"corebank/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.WithField("environment", cfg.Environment).Info("Starting corebank")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	eventBus.Subscribe(events.EventTypeInterestRunCompleted, func(ctx context.Context, event events.Event) {
		completed, ok := event.(events.InterestRunCompletedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"periodStart":   completed.PeriodStart,
			"periodEnd":     completed.PeriodEnd,
			"credited":      completed.Credited,
			"skipped":       completed.Skipped,
			"failed":        completed.Failed,
			"totalCredited": completed.TotalCredited,
		}).Info("Interest run recorded")
	})
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		change, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"accountID": change.AccountID,
			"type":      change.TransactionType,
			"change":    change.ChangeAmount,
		}).Debug("Balance changed")
	})
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	collector := metrics.NewCollector()
	clock := service.NewSystemClock()

	// Run summaries always go to the log; NATS is added when configured.
	sinks := []audit.Sink{audit.NewLogSink()}
	var natsSink *audit.NATSSink
	if cfg.NATSURL != "" {
		natsSink, err = audit.NewNATSSink(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to initialize NATS audit sink: %w", err)
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
		log.WithField("url", cfg.NATSURL).Info("NATS audit sink enabled")
	}
	auditSink := audit.NewMultiSink(sinks...)

	engine := service.NewPostingEngine(uowFactory)
	interestService := service.NewInterestService(uowFactory, engine, clock, cfg.DayCount, auditSink, collector)
	accountService := service.NewAccountService(uowFactory)
	transferService := service.NewTransferService(uowFactory)

	if cfg.SchedulerEnabled {
		scheduler := service.NewAccrualScheduler(interestService, clock, cfg.SchedulerInterval)
		go scheduler.Start(ctx)
	}

	handler := api.NewHandler(accountService, transferService, interestService, cfg.AdminToken)
	server := api.NewServer(cfg.APIAddr, handler, collector.Handler())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Warn("HTTP server shutdown failed")
	}

	return nil
}
