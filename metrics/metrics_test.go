package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corebank/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveRun(t *testing.T) {
	collector := NewCollector()

	started := time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)
	collector.ObserveRun(&models.RunSummary{
		Credited:      3,
		Skipped:       1,
		Failed:        2,
		TotalCredited: 5000,
		StartedAt:     started,
		FinishedAt:    started.Add(2 * time.Second),
	})
	collector.ObserveRun(&models.RunSummary{
		Credited:      1,
		TotalCredited: 100,
		StartedAt:     started,
		FinishedAt:    started.Add(time.Second),
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.runsTotal))
	assert.Equal(t, float64(4), testutil.ToFloat64(collector.accountsCredited))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.accountsSkipped))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.accountsFailed))
	assert.Equal(t, float64(5100), testutil.ToFloat64(collector.interestCreditedMinor))
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector()
	collector.ObserveRun(&models.RunSummary{Credited: 1, TotalCredited: 125})

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Two collectors must not clash on metric registration
	first := NewCollector()
	second := NewCollector()

	first.ObserveRun(&models.RunSummary{Credited: 1})
	assert.Equal(t, float64(1), testutil.ToFloat64(first.runsTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(second.runsTotal))
}
