// Package metrics holds the Prometheus collectors of the progression engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the engine's collectors.
	Registry = prometheus.NewRegistry()

	eventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "progress",
			Name:      "events_total",
			Help:      "Gameplay events recorded by the progress tracker.",
		},
		[]string{"event"},
	)

	claims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "progress",
			Name:      "claims_total",
			Help:      "Mission claims by mission kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	rewardGrants = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "reward",
			Name:      "grants_total",
			Help:      "Reward grants dispatched to the ledger by result.",
		},
		[]string{"result"},
	)

	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Swallowed durable store failures by operation.",
		},
		[]string{"op"},
	)

	dailyResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "daily",
			Name:      "resets_total",
			Help:      "Daily mission regenerations performed.",
		},
	)

	toolUses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "critterdex",
			Subsystem: "tools",
			Name:      "uses_total",
			Help:      "Consumable tool activations.",
		},
		[]string{"tool"},
	)
)

func init() {
	Registry.MustRegister(
		eventsRecorded,
		claims,
		rewardGrants,
		persistenceFailures,
		dailyResets,
		toolUses,
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveEvent counts one recorded gameplay event.
func ObserveEvent(event string) {
	eventsRecorded.WithLabelValues(event).Inc()
}

// ObserveClaim counts one claim. Terminal claims retire the mission.
func ObserveClaim(kind string, terminal bool) {
	outcome := "advanced"
	if terminal {
		outcome = "retired"
	}
	claims.WithLabelValues(kind, outcome).Inc()
}

// ObserveGrant counts one ledger grant attempt.
func ObserveGrant(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	rewardGrants.WithLabelValues(result).Inc()
}

// ObservePersistenceFailure counts one swallowed store failure.
func ObservePersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// ObserveDailyReset counts one daily regeneration.
func ObserveDailyReset() {
	dailyResets.Inc()
}

// ObserveToolUse counts one tool activation.
func ObserveToolUse(tool string) {
	toolUses.WithLabelValues(tool).Inc()
}
