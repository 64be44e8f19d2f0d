package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(normalized bool) *allocation.Result {
	return &allocation.Result{
		Strategy: "ai-ml-momentum",
		Decisions: []allocation.TickerDecision{
			{Ticker: "NVDA", Outcome: allocation.OutcomeAllocated, RawWeight: 0.4, Weight: 0.4},
			{Ticker: "IBM", Outcome: allocation.OutcomeNotBullish},
			{Ticker: "MSFT", Outcome: allocation.OutcomeNoData},
		},
		RawSum:     0.4,
		Sum:        0.4,
		Normalized: normalized,
	}
}

func TestRecordEvaluation(t *testing.T) {
	m := NewRegistry()

	m.RecordEvaluation(sampleResult(false), 2*time.Millisecond)
	m.RecordEvaluation(sampleResult(true), 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("allocated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("no_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Normalizations))
	assert.Equal(t, 0.4, testutil.ToFloat64(m.InvestedFraction))
	assert.Equal(t, 0.4, testutil.ToFloat64(m.TickerWeight.WithLabelValues("NVDA")))

	// MSFT has no entry in the target allocation
	assert.Equal(t, 2, testutil.CollectAndCount(m.TickerWeight))
}

func TestRecordFailure(t *testing.T) {
	m := NewRegistry()

	m.RecordFailure("load")
	m.RecordFailure("load")
	m.RecordFailure("save")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Failures.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("save")))
}

func TestHandler(t *testing.T) {
	m := NewRegistry()
	m.RecordEvaluation(sampleResult(false), time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "momentum_evaluations_total 1")
	assert.Contains(t, string(body), `momentum_ticker_weight{ticker="NVDA"} 0.4`)
}

func TestRegistrySatisfiesRecorder(t *testing.T) {
	var _ allocation.MetricsRecorder = NewRegistry()
}
