package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	patientsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitals_patients_created_total",
			Help: "Total number of patients created",
		},
	)

	readingsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_readings_recorded_total",
			Help: "Total number of vital-sign readings recorded",
		},
		[]string{"kind"},
	)

	bmiClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_bmi_classifications_total",
			Help: "BMI categories attached to hydrated patients",
		},
		[]string{"category"},
	)

	hydrationDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_hydration_degraded_total",
			Help: "Latest-reading lookups that failed and were treated as absent",
		},
		[]string{"kind"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies labelled by the matched
// route template, so path parameters do not explode label cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil && status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// --- Business metric helpers ---

// RecordPatientCreated records a patient creation.
func RecordPatientCreated() {
	patientsCreated.Inc()
}

// RecordReading records a persisted reading of the given kind ("weight", "temperature").
func RecordReading(kind string) {
	readingsRecorded.WithLabelValues(kind).Inc()
}

// RecordBMIClassification records the category attached during hydration.
func RecordBMIClassification(category string) {
	bmiClassifications.WithLabelValues(category).Inc()
}

// RecordHydrationDegraded records a latest-reading lookup that failed.
func RecordHydrationDegraded(kind string) {
	hydrationDegraded.WithLabelValues(kind).Inc()
}

// ObserveDBQuery records the duration of a database operation started at start.
// Intended for use as `defer metrics.ObserveDBQuery("op", time.Now())`.
func ObserveDBQuery(operation string, start time.Time) {
	dbQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
