package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisions counts authorization decisions by mutation and outcome
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"mutation", "outcome"},
	)

	// VerificationAttempts counts challenge-response attempts by method and outcome
	VerificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_verification_attempts_total",
			Help: "Total number of transaction verification attempts",
		},
		[]string{"method", "outcome"},
	)

	// PortalRequests counts portal API calls by operation and status
	PortalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_portal_requests_total",
			Help: "Total number of portal API requests",
		},
		[]string{"operation", "status"},
	)

	// MiningWaitDuration tracks how long callers wait for transactions to mine
	MiningWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_mining_wait_duration_seconds",
			Help:    "Time spent waiting for transaction receipts",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		},
	)

	// IndexWaitAttempts tracks how many polls the index wait needed
	IndexWaitAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_index_wait_attempts",
			Help:    "Number of read-model polls before a record appeared or the budget ran out",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 30},
		},
	)
)
