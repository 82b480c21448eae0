// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shower",
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Verified payment-provider webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	WebhookRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shower",
		Subsystem: "billing",
		Name:      "webhook_rejected_total",
		Help:      "Webhook deliveries rejected by signature verification.",
	})

	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shower",
		Subsystem: "billing",
		Name:      "checkout_sessions_total",
		Help:      "Checkout session creation attempts by result.",
	}, []string{"result"})

	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shower",
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "Generative AI provider calls by kind and result.",
	}, []string{"kind", "result"})

	AILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shower",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Generative AI provider call latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"kind"})
)
