package metric

import (
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "companylock"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Client request pipeline
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthFailures    prometheus.Counter
	Notices         *prometheus.CounterVec

	// Flows
	Issuance    *prometheus.CounterVec
	Redemptions *prometheus.CounterVec

	// Development server
	ServerRequests *prometheus.CounterVec
	TokensIssued   prometheus.Counter
	TokensConsumed prometheus.Counter
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent to the remote service by method, route and status class.",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of requests to the remote service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "auth_failures_total",
			Help:      "Responses that forced a logout.",
		}),

		Notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "notices_total",
			Help:      "User-visible notices by level.",
		}, []string{"level"}),

		Issuance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issuance_total",
			Help:      "Token issuance attempts by outcome.",
		}, []string{"outcome"}),

		Redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Token redemption attempts by outcome.",
		}, []string{"outcome"}),

		ServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "devserver",
			Name:      "requests_total",
			Help:      "Requests served by the development server.",
		}, []string{"method", "code"}),

		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "devserver",
			Name:      "tokens_issued_total",
			Help:      "Access tokens minted.",
		}),

		TokensConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "devserver",
			Name:      "tokens_consumed_total",
			Help:      "Access tokens redeemed.",
		}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.AuthFailures,
		r.Notices,
		r.Issuance,
		r.Redemptions,
		r.ServerRequests,
		r.TokensIssued,
		r.TokensConsumed,
	)
	return r
}

// WithProcessCollectors adds Go runtime and process metrics.
func (r *Registry) WithProcessCollectors() *Registry {
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registerer exposes the underlying registry for extra collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the underlying registry for tests and dumps.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// WriteText writes every gathered family in the text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// StatusClass folds an HTTP status into "2xx", "4xx", ... or "error".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
