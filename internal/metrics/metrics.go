package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smilecare",
			Name:      "booking_created_total",
			Help:      "Count of booking requests by outcome.",
		},
		[]string{"status"},
	)

	stageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smilecare",
			Name:      "pipeline_stage_failures_total",
			Help:      "Count of booking pipeline stage failures.",
		},
		[]string{"stage"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smilecare",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Time spent in each booking pipeline stage.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5, 10},
		},
		[]string{"stage"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smilecare",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, stageFailures, stageDuration, httpRequests)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncStageFailure(stage string) {
	stageFailures.WithLabelValues(stage).Inc()
}

func ObserveStageDuration(stage string, seconds float64) {
	stageDuration.WithLabelValues(stage).Observe(seconds)
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
