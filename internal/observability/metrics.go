package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "exercise_tracker"

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "users",
		Name:      "created_total",
		Help:      "Number of users registered.",
	})

	exercisesRecordedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "recorded_total",
		Help:      "Number of exercises persisted.",
	})

	lastExerciseGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "last_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted.",
	})

	logQueriesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "logs",
		Name:      "queries_total",
		Help:      "Number of exercise log queries served.",
	})

	storeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Number of store failures grouped by operation.",
	}, []string{"operation"})

	publishFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Number of exercise events that could not be published.",
	})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		usersCreatedCounter,
		exercisesRecordedCounter,
		lastExerciseGauge,
		logQueriesCounter,
		storeErrorCounter,
		publishFailureCounter,
		requestDuration,
	)
}

// RecordUserCreated counts a registration.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExerciseRecorded counts an exercise and moves the watermark gauge.
func RecordExerciseRecorded(ts time.Time) {
	exercisesRecordedCounter.Inc()
	if ts.IsZero() {
		return
	}
	lastExerciseGauge.Set(float64(ts.Unix()))
}

// RecordLogQuery counts a served log query.
func RecordLogQuery() {
	logQueriesCounter.Inc()
}

// RecordStoreError counts a store failure for the named operation.
func RecordStoreError(operation string) {
	storeErrorCounter.WithLabelValues(operation).Inc()
}

// RecordPublishFailure counts an event that was dropped.
func RecordPublishFailure() {
	publishFailureCounter.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
