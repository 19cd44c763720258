package metrics

import (
	"net/http"

	"corebank/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records accrual run outcomes on a private registry so tests can
// create as many collectors as they like without duplicate registration.
type Collector struct {
	registry              *prometheus.Registry
	runsTotal             prometheus.Counter
	accountsCredited      prometheus.Counter
	accountsSkipped       prometheus.Counter
	accountsFailed        prometheus.Counter
	interestCreditedMinor prometheus.Counter
	runDuration           prometheus.Histogram
}

// NewCollector creates a metrics collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		runsTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "interest_runs_total",
			Help: "Total number of completed interest accrual runs",
		}),
		accountsCredited: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "interest_accounts_credited_total",
			Help: "Total number of accounts credited across all runs",
		}),
		accountsSkipped: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "interest_accounts_skipped_total",
			Help: "Total number of accounts skipped across all runs",
		}),
		accountsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "interest_accounts_failed_total",
			Help: "Total number of per-account posting failures across all runs",
		}),
		interestCreditedMinor: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "interest_credited_minor_units_total",
			Help: "Total interest credited, in minor currency units",
		}),
		runDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "interest_run_duration_seconds",
			Help:    "Wall clock duration of interest accrual runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records the outcome of one accrual run
func (c *Collector) ObserveRun(summary *models.RunSummary) {
	c.runsTotal.Inc()
	c.accountsCredited.Add(float64(summary.Credited))
	c.accountsSkipped.Add(float64(summary.Skipped))
	c.accountsFailed.Add(float64(summary.Failed))
	c.interestCreditedMinor.Add(float64(summary.TotalCredited))
	c.runDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
}

// Handler returns an HTTP handler exposing this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
