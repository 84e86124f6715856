// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CheckoutTransitions counts checkout state transitions.
var CheckoutTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "checkout",
	Name:      "transitions_total",
	Help:      "Checkout workflow transitions by source and target state.",
}, []string{"from", "to"})

// CheckoutSideEffectFailures counts best-effort side effects that failed.
var CheckoutSideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "checkout",
	Name:      "side_effect_failures_total",
	Help:      "Best-effort checkout side effects that failed, by task.",
}, []string{"task"})

// CheckoutDiagnosticsDropped counts diagnostics dropped because the channel was full.
var CheckoutDiagnosticsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "checkout",
	Name:      "diagnostics_dropped_total",
	Help:      "Diagnostics dropped because no consumer kept up.",
})

// ActiveTransactions tracks open checkout transactions.
var ActiveTransactions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pos",
	Subsystem: "checkout",
	Name:      "active_transactions",
	Help:      "Checkout transactions currently open on this terminal.",
})

// CRMRequests counts outbound CRM requests by method and status class.
var CRMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "crm",
	Name:      "requests_total",
	Help:      "Outbound CRM requests.",
}, []string{"method", "status"})

// SessionsCleared counts sessions cleared after a CRM 401.
var SessionsCleared = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "crm",
	Name:      "sessions_cleared_total",
	Help:      "Operator sessions cleared because the CRM answered 401.",
})

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on; 0 is "error".
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
