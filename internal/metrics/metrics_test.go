package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveExtraction("quicket", ResultSuccess, 150*time.Millisecond)
	m.ObserveExtraction("quicket", ResultSuccess, time.Second)
	m.ObserveExtraction("howler", ResultFailed, time.Second)
	m.IncItem(ResultSuccess)
	m.IncItem(ResultFailed)
	m.IncItem(ResultFailed)
	m.IncBatch(ResultSuccess)

	require.Equal(t, 2.0, testutil.ToFloat64(m.extractions.WithLabelValues("quicket", ResultSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("howler", ResultFailed)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.pipelineItems.WithLabelValues(ResultFailed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.pipelineBatches.WithLabelValues(ResultSuccess)))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.ObserveExtraction("quicket", ResultSuccess, time.Second)
		m.IncItem(ResultSuccess)
		m.IncBatch(ResultCancelled)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncBatch(ResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `pipeline_batches_total{result="success"} 1`))
}
