package traversal

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StepsTotal counts committed BFS expansion steps.
	StepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wavefront_steps_total",
			Help: "Total number of committed traversal steps",
		},
	)

	// NodesVisited tracks the length of the visited sequence.
	NodesVisited = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wavefront_nodes_visited",
			Help: "Number of nodes discovered by the current traversal",
		},
	)

	// FrontierSize tracks the length of the frontier queue.
	FrontierSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wavefront_frontier_size",
			Help: "Number of nodes awaiting expansion",
		},
	)
)

func init() {
	prometheus.MustRegister(StepsTotal)
	prometheus.MustRegister(NodesVisited)
	prometheus.MustRegister(FrontierSize)
}
