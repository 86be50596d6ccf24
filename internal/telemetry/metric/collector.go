package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// StatsSource provides live counts at scrape time.
type StatsSource interface {
	// Len returns the number of registered receivers.
	Len() int
	// SessionStates returns the number of current sessions per state.
	SessionStates() map[domain.SessionState]int
}

// Collector reports receiver and session gauges from a StatsSource.
type Collector struct {
	src       StatsSource
	receivers *prometheus.Desc
	sessions  *prometheus.Desc
}

// NewCollector creates a collector reading from src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		receivers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "receivers"),
			"Registered receivers.",
			nil, nil,
		),
		sessions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions"),
			"Current playback sessions by state.",
			[]string{"state"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.receivers
	ch <- c.sessions
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.receivers, prometheus.GaugeValue, float64(c.src.Len()))

	counts := c.src.SessionStates()
	for _, st := range []domain.SessionState{
		domain.SessionUnestablished,
		domain.SessionEstablished,
		domain.SessionTornDown,
	} {
		ch <- prometheus.MustNewConstMetric(c.sessions, prometheus.GaugeValue, float64(counts[st]), string(st))
	}
}
