package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the API collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	pruned   prometheus.Counter
}

// NewMetrics registers the API collectors with reg. workspaces reports the
// number of live workspaces at scrape time.
func NewMetrics(reg prometheus.Registerer, workspaces func() int) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costplan",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests broken down by route and result.",
		}, []string{"route", "result"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "costplan",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route", "result"}),
		pruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "costplan",
			Name:      "workspaces_pruned_total",
			Help:      "Idle workspaces dropped by the janitor.",
		}),
	}
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "costplan",
		Name:      "workspaces",
		Help:      "Workspaces currently held in memory.",
	}, func() float64 { return float64(workspaces()) })
	return m
}

// Pruned records n workspaces dropped for being idle.
func (m *Metrics) Pruned(n int) {
	m.pruned.Add(float64(n))
}

// Instrument must wrap the ServeMux directly: the route label is the pattern
// the mux matched, which it records on the request.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		result := "2xx"
		switch {
		case sr.statusCode >= 500:
			result = "5xx"
		case sr.statusCode >= 400:
			result = "4xx"
		case sr.statusCode >= 300:
			result = "3xx"
		}
		m.requests.WithLabelValues(route, result).Inc()
		m.latency.WithLabelValues(route, result).Observe(time.Since(start).Seconds())
	})
}
