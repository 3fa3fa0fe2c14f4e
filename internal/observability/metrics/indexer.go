package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IndexerMetrics struct {
	registry *prometheus.Registry

	rebuildTotal     *prometheus.CounterVec
	rebuildDuration  *prometheus.HistogramVec
	chunksIndexed    prometheus.Gauge
	documentsSkipped *prometheus.CounterVec
}

func NewIndexerMetrics(service string) *IndexerMetrics {
	registry := prometheus.NewRegistry()

	rebuildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "indexer",
			Name:      "rebuild_total",
			Help:      "Total index rebuilds by status.",
		},
		[]string{"service", "status"},
	)
	rebuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "indexer",
			Name:      "rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	chunksIndexed := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ia",
			Subsystem: "indexer",
			Name:      "chunks_indexed",
			Help:      "Number of clause chunks written by the last successful rebuild.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "indexer",
			Name:      "documents_skipped_total",
			Help:      "Total source documents skipped as unreadable or empty.",
		},
		[]string{"service"},
	)

	registry.MustRegister(rebuildTotal, rebuildDuration, chunksIndexed, documentsSkipped)

	return &IndexerMetrics{
		registry:         registry,
		rebuildTotal:     rebuildTotal,
		rebuildDuration:  rebuildDuration,
		chunksIndexed:    chunksIndexed,
		documentsSkipped: documentsSkipped,
	}
}

func (m *IndexerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IndexerMetrics) FinishRebuild(service string, chunks int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.rebuildTotal.WithLabelValues(service, status).Inc()
	m.rebuildDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.chunksIndexed.Set(float64(chunks))
	}
}

func (m *IndexerMetrics) SkipDocument(service string) {
	m.documentsSkipped.WithLabelValues(service).Inc()
}
