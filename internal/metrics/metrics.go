package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider call outcomes
const (
	OutcomeOK            = "ok"
	OutcomeError         = "error"
	OutcomeNotApplicable = "not_applicable"
	OutcomePanic         = "panic"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cti_provider_requests_total",
			Help: "Threat intel provider checks by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cti_provider_request_duration_seconds",
			Help:    "Threat intel provider check latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cti_verdicts_total",
			Help: "Aggregated verdicts returned to callers",
		},
		[]string{"verdict"},
	)
)
