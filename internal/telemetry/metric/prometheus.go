package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ssmproxy"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Failure reports by domain error code.
	Failures *prometheus.CounterVec

	// License traffic by framing kind.
	LicenseRequests  *prometheus.CounterVec
	LicenseResponses *prometheus.CounterVec

	// SSM backend calls by operation and result.
	SSMCalls        *prometheus.CounterVec
	SSMCallDuration *prometheus.HistogramVec

	// HTTP surface.
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the Go and process collectors plus
// the ssmproxy metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		reg: reg,
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Reported failures by error code.",
		}, []string{"code"}),
		LicenseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_requests_total",
			Help:      "Transformed license requests by framing kind.",
		}, []string{"kind"}),
		LicenseResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_responses_total",
			Help:      "License responses by interpretation (raw or envelope).",
		}, []string{"kind"}),
		SSMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ssm",
			Name:      "calls_total",
			Help:      "SSM backend calls by operation and result.",
		}, []string{"op", "result"}),
		SSMCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ssm",
			Name:      "call_duration_seconds",
			Help:      "SSM backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.Failures,
		r.LicenseRequests,
		r.LicenseResponses,
		r.SSMCalls,
		r.SSMCallDuration,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveSSMCall records one SSM backend call.
func (r *Registry) ObserveSSMCall(op string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.SSMCalls.WithLabelValues(op, result).Inc()
	r.SSMCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
