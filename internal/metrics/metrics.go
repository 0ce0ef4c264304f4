package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Результаты извлечения и обработки.
const (
	ResultSuccess     = "success"
	ResultFailed      = "failed"
	ResultUnsupported = "unsupported"
	ResultCancelled   = "cancelled"
)

// Metrics — набор коллекторов сервиса на собственном реестре.
// Все методы допускают nil-получатель и тогда ничего не делают.
type Metrics struct {
	registry *prometheus.Registry

	extractions        *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	pipelineItems      *prometheus.CounterVec
	pipelineBatches    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.extractions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "extractions_total",
		Help:      "Number of event page extractions by source and result",
	}, []string{"source", "result"})
	m.extractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scraper",
		Name:      "extraction_duration_seconds",
		Help:      "Time spent extracting a single event page",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"source"})
	m.pipelineItems = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pipeline",
		Name:      "items_total",
		Help:      "Number of processed batch items by status",
	}, []string{"status"})
	m.pipelineBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pipeline",
		Name:      "batches_total",
		Help:      "Number of finished batches by result",
	}, []string{"result"})

	m.registry.MustRegister(
		m.extractions, m.extractionDuration,
		m.pipelineItems, m.pipelineBatches,
	)

	return m
}

// Handler отдаёт метрики в формате prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveExtraction(source, result string, d time.Duration) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.extractions.WithLabelValues(source, result).Inc()
	m.extractionDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ExtractionsCounter возвращает счётчик извлечений для пары (source, result).
func (m *Metrics) ExtractionsCounter(source, result string) prometheus.Counter {
	return m.extractions.WithLabelValues(source, result)
}

func (m *Metrics) IncItem(status string) {
	if m == nil {
		return
	}
	m.pipelineItems.WithLabelValues(status).Inc()
}

func (m *Metrics) IncBatch(result string) {
	if m == nil {
		return
	}
	m.pipelineBatches.WithLabelValues(result).Inc()
}
