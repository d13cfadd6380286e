package cmd

import "github.com/prometheus/client_golang/prometheus"

var replayTicksPushedMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "xfactor_replay_ticks_pushed_total",
		Help: "number of ticks pushed into the factor holders by the replay command",
	})

func init() {
	prometheus.MustRegister(replayTicksPushedMetrics)
}
