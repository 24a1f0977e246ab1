package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PortalMetrics exposes counters/histograms for page rendering and
// upstream API traffic.
type PortalMetrics struct {
	pageRenders     *prometheus.CounterVec
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "web",
			Name:      "page_renders_total",
			Help:      "Total rendered pages",
		}, []string{"page", "outcome"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests to the appointment API",
		}, []string{"op", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "request_seconds",
			Help:      "Latency of appointment API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pageRenders, m.upstreamTotal, m.upstreamLatency)
	return m
}

func (m *PortalMetrics) ObservePageRender(page, outcome string) {
	if m == nil {
		return
	}
	m.pageRenders.WithLabelValues(page, outcome).Inc()
}

func (m *PortalMetrics) ObserveUpstream(op, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(op, status).Inc()
	m.upstreamLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}
