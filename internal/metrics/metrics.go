package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the Prometheus collectors used across the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	generations      *prometheus.CounterVec
	generationTime   *prometheus.HistogramVec
	notifications    *prometheus.CounterVec
	sessionsStarted  prometheus.Counter
	sessionsComplete *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_generations_total",
			Help: "Quiz generation attempts by source and result.",
		}, []string{"source", "result"}),
		generationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_generation_duration_seconds",
			Help:    "Latency of quiz generation calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"source"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Host notifications by outcome and result.",
		}, []string{"outcome", "result"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions loaded from a handoff.",
		}),
		sessionsComplete: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Quiz sessions that reached the results phase, by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.generations,
		m.generationTime,
		m.notifications,
		m.sessionsStarted,
		m.sessionsComplete,
		m.httpDuration,
	)
	return m
}

// ObserveGeneration records one generation call.
func (m *Metrics) ObserveGeneration(source string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(source, result(err)).Inc()
	m.generationTime.WithLabelValues(source).Observe(took.Seconds())
}

// ObserveNotification records one notification dispatch.
func (m *Metrics) ObserveNotification(outcome string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome, result(err)).Inc()
}

// SessionStarted counts a freshly loaded session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// SessionCompleted counts a session entering the results phase.
func (m *Metrics) SessionCompleted(outcome string) {
	if m == nil {
		return
	}
	m.sessionsComplete.WithLabelValues(outcome).Inc()
}

// Middleware times every request, labelled by the matched mux pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
