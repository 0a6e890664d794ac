package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFloorGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_floor_grants_total",
		Help: "Total speaking claims granted the floor",
	})

	metricFloorIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_floor_busy_ignored_total",
		Help: "Speaking claims ignored because another speaker held the floor",
	})

	metricFloorWithheld = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_floor_fairness_withheld_total",
		Help: "Speaking claims withheld by the fairness policy",
	})

	metricStaleEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_floor_stale_events_total",
		Help: "Mode-change events dropped as stale or from unknown participants",
	})

	metricStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_session_transitions_total",
		Help: "Practice session lifecycle transitions",
	}, []string{"from", "to"})
)
