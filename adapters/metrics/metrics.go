// Package metrics provides Prometheus metrics collection for wxgate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the webhook gateway.
type Collector struct {
	// Inbound message metrics
	MessagesTotal *prometheus.CounterVec
	ParseErrors   prometheus.Counter

	// Outbound reply metrics
	RepliesTotal *prometheus.CounterVec
	RenderErrors prometheus.Counter

	// Callback metrics
	SignatureFailures prometheus.Counter
	HandleDuration    *prometheus.HistogramVec
	HandlerErrors     prometheus.Counter
}

// New creates a collector registered on its own registry, returned
// alongside so the HTTP adapter can expose it.
func New() (*Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	c := &Collector{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "messages_total",
				Help:      "Inbound messages parsed, by wire type",
			},
			[]string{"type"},
		),
		ParseErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "parse_errors_total",
				Help:      "Envelope or field decode failures on inbound messages",
			},
		),
		RepliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "replies_total",
				Help:      "Outbound replies rendered, by wire type",
			},
			[]string{"type"},
		),
		RenderErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "render_errors_total",
				Help:      "Reply construction or render failures",
			},
		),
		SignatureFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "signature_failures_total",
				Help:      "Callbacks rejected for an invalid signature",
			},
		),
		HandleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wxgate",
				Name:      "handle_duration_seconds",
				Help:      "Webhook handling duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"type"},
		),
		HandlerErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wxgate",
				Name:      "handler_errors_total",
				Help:      "User handler failures",
			},
		),
	}
	reg.MustRegister(
		c.MessagesTotal,
		c.ParseErrors,
		c.RepliesTotal,
		c.RenderErrors,
		c.SignatureFailures,
		c.HandleDuration,
		c.HandlerErrors,
	)
	return c, reg
}
