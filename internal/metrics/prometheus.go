package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "featherbook"

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	notes         *prometheus.CounterVec
	syntheses     *prometheus.CounterVec
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	rateLimited   prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with its own registry, including the
// Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		notes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_total",
			Help:      "Note mutations by operation.",
		}, []string{"operation"}),
		syntheses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syntheses_total",
			Help:      "Synthesis mutations by operation.",
		}, []string{"operation"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registered user accounts.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.notes,
		r.syntheses,
		r.registrations,
		r.logins,
		r.rateLimited,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) IncNoteCreated()         { r.notes.WithLabelValues("create").Inc() }
func (r *PrometheusRecorder) IncNoteUpdated()         { r.notes.WithLabelValues("update").Inc() }
func (r *PrometheusRecorder) IncNoteDeleted()         { r.notes.WithLabelValues("delete").Inc() }
func (r *PrometheusRecorder) IncSynthesisCreated()    { r.syntheses.WithLabelValues("create").Inc() }
func (r *PrometheusRecorder) IncSynthesisDeleted()    { r.syntheses.WithLabelValues("delete").Inc() }
func (r *PrometheusRecorder) IncRegistration()        { r.registrations.Inc() }
func (r *PrometheusRecorder) IncLogin(outcome string) { r.logins.WithLabelValues(outcome).Inc() }
func (r *PrometheusRecorder) IncRateLimited()         { r.rateLimited.Inc() }

// ObserveHTTPRequest records request latency. route should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (r *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
