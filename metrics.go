package main

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal       *prometheus.CounterVec
	runFailures     *prometheus.CounterVec
	incrementsTotal *prometheus.CounterVec
	runDuration     *prometheus.GaugeVec
	counterValue    *prometheus.GaugeVec

	badRequest prometheus.Counter
)

func initMetrics(namespace string) {
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of executed runs",
		},
		[]string{"run", "strategy"},
	)

	runFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Number of runs which failed or ended with an unexpected counter value",
		},
		[]string{"run", "strategy"},
	)

	incrementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "increments_total",
			Help:      "Total number of increments performed by successful runs",
		},
		[]string{"strategy"},
	)

	runDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run between the start and the stop barrier",
		},
		[]string{"run", "strategy"},
	)

	counterValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_value",
			Help:      "Counter value read at the end of the last run",
		},
		[]string{"run", "strategy"},
	)

	badRequest = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bad_request_total",
		Help:      "Total number of unsupported requests",
	})
}

func registerMetrics(namespace string) {
	initMetrics(namespace)
	prometheus.MustRegister(runsTotal, runFailures, incrementsTotal, runDuration, counterValue, badRequest)
}
