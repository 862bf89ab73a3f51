package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contractflow",
		Subsystem: "scheduler",
		Name:      "runs_total",
		Help:      "Scheduling passes started, per store.",
	}, []string{"store"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contractflow",
		Subsystem: "scheduler",
		Name:      "commands_total",
		Help:      "Per-contract scheduling outcomes.",
	}, []string{"outcome"})
)
