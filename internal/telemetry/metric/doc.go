// Package metric provides Prometheus metrics for fxgallery.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: Custom collector for access grant counts
//
// Metrics include:
//
//   - Token encode and decode counters, decode failures by reason
//   - Access grants and denied exports
//   - Payment webhook outcomes
//   - HTTP request counters and latency histograms
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
