// Package metric provides Prometheus metrics for ssmproxy.
//
//   - prometheus.go: the application registry and the /metrics handler
//   - collector.go: a collector reading live receiver and session counts
//
// All metrics live on a private registry rather than the global default so
// tests can create as many as they like.
package metric
