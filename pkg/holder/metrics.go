package holder

import "github.com/prometheus/client_golang/prometheus"

var entitiesDiscoveredMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "xfactor_holder_entities_discovered_total",
		Help: "number of entity states created by the broadcast holders",
	})

var computeFailuresMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "xfactor_holder_compute_failures_total",
		Help: "number of per-entity computations turned into missing values",
	})

func init() {
	prometheus.MustRegister(
		entitiesDiscoveredMetrics,
		computeFailuresMetrics,
	)
}
