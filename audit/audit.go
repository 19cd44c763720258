package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"corebank/models"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// RunSummarySubject is the NATS subject accrual run summaries are published to.
const RunSummarySubject = "corebank.interest.runs"

// Sink receives the summary of every completed accrual run
type Sink interface {
	PublishRunSummary(ctx context.Context, summary *models.RunSummary) error
}

// LogSink writes run summaries to the structured log
type LogSink struct{}

// NewLogSink creates a log-backed audit sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) PublishRunSummary(_ context.Context, summary *models.RunSummary) error {
	log.WithFields(log.Fields{
		"periodStart":   summary.PeriodStart.Format("2006-01-02"),
		"periodEnd":     summary.PeriodEnd.Format("2006-01-02"),
		"credited":      summary.Credited,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
		"totalCredited": summary.TotalCredited,
	}).Info("Audit: interest accrual run recorded")
	return nil
}

// NATSSink publishes run summaries to a NATS subject for downstream consumers
type NATSSink struct {
	conn *nats.Conn
}

// NewNATSSink connects to the NATS server at url
func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("corebank-audit"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &NATSSink{conn: conn}, nil
}

func (s *NATSSink) PublishRunSummary(_ context.Context, summary *models.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := s.conn.Publish(RunSummarySubject, payload); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	return nil
}

// Close drains the NATS connection
func (s *NATSSink) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// MultiSink fans a run summary out to several sinks. Every sink is attempted;
// the first error is returned.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that forwards to all the given sinks
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) PublishRunSummary(ctx context.Context, summary *models.RunSummary) error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.PublishRunSummary(ctx, summary); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
