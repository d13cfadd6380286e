package tickstream

import "github.com/prometheus/client_golang/prometheus"

var ticksDecodedMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "xfactor_tickstream_ticks_decoded_total",
		Help: "number of ticks decoded from the stream",
	})

func init() {
	prometheus.MustRegister(ticksDecodedMetrics)
}
