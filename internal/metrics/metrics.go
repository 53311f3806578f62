package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	glossaryMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glossary_mutations_total",
			Help: "Admin mutations of the glossary by action and outcome",
		},
		[]string{"action", "status"},
	)

	glossaryUploadRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glossary_upload_rows_total",
			Help: "Rows processed by CSV uploads",
		},
		[]string{"result"},
	)

	glossaryStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glossary_store_duration_seconds",
			Help:    "Store load/save duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
		[]string{"backend", "op", "status"},
	)

	glossarySearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glossary_search_total",
			Help: "Glossary searches by whether anything matched",
		},
		[]string{"matched"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordMutation counts an add, edit, delete or upload.
func RecordMutation(action string, err error) {
	glossaryMutationsTotal.WithLabelValues(action, status(err)).Inc()
}

// RecordUploadRows counts the outcome of every row in an upload.
func RecordUploadRows(added, updated, skipped int) {
	glossaryUploadRowsTotal.WithLabelValues("added").Add(float64(added))
	glossaryUploadRowsTotal.WithLabelValues("updated").Add(float64(updated))
	glossaryUploadRowsTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveStore records the duration of a store call started at start.
func ObserveStore(backend, op string, start time.Time, err error) {
	glossaryStoreDuration.WithLabelValues(backend, op, status(err)).Observe(time.Since(start).Seconds())
}

func RecordSearch(matched bool) {
	m := "false"
	if matched {
		m = "true"
	}
	glossarySearchTotal.WithLabelValues(m).Inc()
}
