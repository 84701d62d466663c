// Package metrics defines the Prometheus instruments of the rollcall client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API call metrics
var (
	// AuthRequestsTotal tracks register/login/external-auth calls by operation and status.
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_auth_requests_total",
			Help: "Auth API calls by operation and status",
		},
		[]string{"operation", "status"},
	)

	// AttendanceFetchesTotal tracks attendance fetches by status.
	AttendanceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_attendance_fetches_total",
			Help: "Attendance fetches by status",
		},
		[]string{"status"},
	)

	// SessionExpiries counts 401-triggered session teardowns.
	SessionExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rollcall_session_expiries_total",
			Help: "Sessions torn down after a 401 response",
		},
	)
)

// Session store metrics
var (
	// StoreOpsTotal tracks session store operations by operation and status.
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_store_operations_total",
			Help: "Session store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreOpDuration tracks session store operation latency in seconds.
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollcall_store_operation_duration_seconds",
			Help:    "Session store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// StoreConnectionErrors tracks failed connection attempts to the session store.
	StoreConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rollcall_store_connection_errors_total",
			Help: "Total session store connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks breaker state transitions by new state.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks the current breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rollcall_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
