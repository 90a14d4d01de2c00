package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fxgallery"

// Registry holds all application metrics.
//
// Record methods are safe on a nil *Registry, so components can be built
// without metrics in tests.
type Registry struct {
	registry *prometheus.Registry

	// Token metrics
	TokensEncoded *prometheus.CounterVec
	TokenDecodes  *prometheus.CounterVec

	// Access metrics
	AccessGrants  *prometheus.CounterVec
	ExportsDenied prometheus.Counter

	// Payment metrics
	Webhooks *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the application metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		TokensEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_encoded_total",
			Help:      "Tokens produced, by artwork kind and variant (plain or sealed).",
		}, []string{"kind", "variant"}),

		TokenDecodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_decodes_total",
			Help:      "Token decode attempts by result: ok or the failure reason.",
		}, []string{"result"}),

		AccessGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_grants_total",
			Help:      "Access grant calls by source and whether a new grant was created.",
		}, []string{"source", "created"}),

		ExportsDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_denied_total",
			Help:      "Export requests refused because the e-mail has no access.",
		}),

		Webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhooks_total",
			Help:      "Payment webhooks by event type and outcome.",
		}, []string{"type", "outcome"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.TokensEncoded,
		r.TokenDecodes,
		r.AccessGrants,
		r.ExportsDenied,
		r.Webhooks,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the underlying registry for components that register
// their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordEncode counts a produced token.
func (r *Registry) RecordEncode(kind string, sealed bool) {
	if r == nil {
		return
	}
	variant := "plain"
	if sealed {
		variant = "sealed"
	}
	r.TokensEncoded.WithLabelValues(kind, variant).Inc()
}

// RecordDecode counts a decode attempt. An empty reason means success.
func (r *Registry) RecordDecode(reason string) {
	if r == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	r.TokenDecodes.WithLabelValues(reason).Inc()
}

// RecordGrant counts a grant call.
func (r *Registry) RecordGrant(source string, created bool) {
	if r == nil {
		return
	}
	r.AccessGrants.WithLabelValues(source, strconv.FormatBool(created)).Inc()
}

// IncExportDenied counts a refused export.
func (r *Registry) IncExportDenied() {
	if r == nil {
		return
	}
	r.ExportsDenied.Inc()
}

// RecordWebhook counts a payment webhook.
func (r *Registry) RecordWebhook(eventType, outcome string) {
	if r == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	r.Webhooks.WithLabelValues(eventType, outcome).Inc()
}

// ObserveRequest records an HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
