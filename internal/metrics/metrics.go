package metrics

import (
	"net/http"
	"strconv"
	"time"

	"starsystem-server/internal/shared/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const outcomeOK = "ok"

// Collector owns the server's Prometheus metrics. Each collector registers on
// its own registry so tests can build as many as they need.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
	Operations    *prometheus.CounterVec
	Sessions      prometheus.Gauge
}

func New(reg *prometheus.Registry) (*Collector, error) {
	c := &Collector{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starsystem_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "code"},
		),
		HTTPDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "starsystem_http_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starsystem_operations_total",
				Help: "Star system operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starsystem_sessions",
			Help: "Star system sessions currently held in memory.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.HTTPRequests, c.HTTPDurations, c.Operations, c.Sessions} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewDefault builds a collector on a fresh registry that also exposes the Go
// runtime and process collectors.
func NewDefault() (*Collector, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return New(reg)
}

// Handler returns the Prometheus metrics HTTP handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordOperation counts one domain operation under its error type, or "ok".
func (c *Collector) RecordOperation(operation string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(errors.GetType(err))
	}
	c.Operations.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) SetSessions(n int) {
	c.Sessions.Set(float64(n))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request. Requests
// are labelled with the matched route pattern, not the raw path.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		c.HTTPRequests.WithLabelValues(path, r.Method, code).Inc()
		c.HTTPDurations.WithLabelValues(path, r.Method).Observe(duration)
	})
}
