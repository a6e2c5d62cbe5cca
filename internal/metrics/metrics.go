package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts bridging runs by final status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submitter_runs_total",
			Help: "Total number of bridging runs",
		},
		[]string{"status"},
	)

	// RunDuration tracks end-to-end run time, completion wait included
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submitter_run_duration_seconds",
			Help:    "Bridging run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"status"},
	)

	// ActiveRuns tracks runs currently in progress
	ActiveRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_submitter_active_runs",
			Help: "Number of bridging runs in progress",
		},
	)

	// StepsTotal counts steps by kind and outcome
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submitter_steps_total",
			Help: "Total number of planned steps by outcome",
		},
		[]string{"step", "status"},
	)

	// StepDuration tracks how long a step takes to be submitted and mined
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submitter_step_duration_seconds",
			Help:    "Step submission duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	// EstimatedGas tracks estimated gas units per step and estimate source
	EstimatedGas = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submitter_estimated_gas",
			Help:    "Estimated gas units per step",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
		[]string{"step", "source"},
	)

	// InsufficientBalanceTotal counts runs rejected by the balance check
	InsufficientBalanceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_submitter_insufficient_balance_total",
			Help: "Total number of runs rejected for insufficient native balance",
		},
	)

	// CompletionWaitDuration tracks time spent waiting for the completion event
	CompletionWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submitter_completion_wait_seconds",
			Help:    "Time spent waiting for the completion event",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"state"},
	)

	// GasUsed tracks gas used by mined step transactions
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submitter_gas_used",
			Help:    "Gas used by mined transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
		[]string{"step"},
	)

	// EventsDetected counts completion events seen by the subscriber
	EventsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submitter_events_detected_total",
			Help: "Total number of completion events detected",
		},
		[]string{"event_type"},
	)

	// ErrorsTotal counts errors by component and kind
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submitter_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// HTTPRequestsTotal counts API requests by route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submitter_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "code"},
	)
)
