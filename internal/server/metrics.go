package server

import (
	"errors"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
	"github.com/MeKo-Tech/linecrop/internal/pdf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecrop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linecrop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Dataset build metrics
	documentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecrop_documents_total",
			Help: "Total number of processed documents",
		},
		[]string{"status"}, // status: ok, failed, encrypted
	)

	pagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecrop_pages_total",
			Help: "Total number of rasterized pages paired with text geometry",
		},
	)

	linesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecrop_lines_total",
			Help: "Total number of line clusters",
		},
		[]string{"outcome"}, // outcome: written, skipped
	)

	documentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linecrop_document_duration_seconds",
			Help:    "Per-document processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	runInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linecrop_run_documents_pending",
			Help: "Documents of the current run not yet finished",
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linecrop_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecrop_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, dropped
	)
)

// RecordDocument adds one finished document to the run metrics.
func RecordDocument(res *dataset.DocumentResult) {
	if res == nil {
		return
	}
	documentsTotal.WithLabelValues(documentStatus(res)).Inc()
	pagesTotal.Add(float64(res.Pages))
	linesTotal.WithLabelValues("written").Add(float64(res.Lines))
	linesTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
	documentDuration.Observe(res.Duration.Seconds())
}

func documentStatus(res *dataset.DocumentResult) string {
	switch {
	case res.Err == nil:
		return "ok"
	case errors.Is(res.Err, pdf.ErrEncrypted):
		return "encrypted"
	default:
		return "failed"
	}
}
