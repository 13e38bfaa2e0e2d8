package metric

import "github.com/prometheus/client_golang/prometheus"

// Stats is a point-in-time view reported by Collector.
type Stats struct {
	Authenticated   bool
	MustRotate      bool
	RevealActive    bool
	RevealRemaining int
}

// Collector reports live state through a callback on every scrape.
type Collector struct {
	stats func() Stats

	authenticated   *prometheus.Desc
	mustRotate      *prometheus.Desc
	revealActive    *prometheus.Desc
	revealRemaining *prometheus.Desc
}

// NewCollector creates a collector backed by stats.
func NewCollector(stats func() Stats) *Collector {
	return &Collector{
		stats: stats,
		authenticated: prometheus.NewDesc(
			namespace+"_session_authenticated", "1 when a session is logged in.", nil, nil),
		mustRotate: prometheus.NewDesc(
			namespace+"_session_must_rotate", "1 when the password must be changed.", nil, nil),
		revealActive: prometheus.NewDesc(
			namespace+"_reveal_active", "1 while a secret is displayed.", nil, nil),
		revealRemaining: prometheus.NewDesc(
			namespace+"_reveal_remaining_seconds", "Seconds left in the reveal window.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.mustRotate
	ch <- c.revealActive
	ch <- c.revealRemaining
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var s Stats
	if c.stats != nil {
		s = c.stats()
	}
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, boolValue(s.Authenticated))
	ch <- prometheus.MustNewConstMetric(c.mustRotate, prometheus.GaugeValue, boolValue(s.MustRotate))
	ch <- prometheus.MustNewConstMetric(c.revealActive, prometheus.GaugeValue, boolValue(s.RevealActive))
	ch <- prometheus.MustNewConstMetric(c.revealRemaining, prometheus.GaugeValue, float64(s.RevealRemaining))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
