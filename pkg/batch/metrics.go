package batch

import "github.com/prometheus/client_golang/prometheus"

var rowsTransformedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "xfactor_batch_rows_transformed_total",
		Help: "number of output rows produced by the batch transform",
	}, []string{"factor"})

var rowsDroppedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "xfactor_batch_rows_dropped_total",
		Help: "number of input rows dropped because the factor had no value",
	}, []string{"factor"})

func init() {
	prometheus.MustRegister(
		rowsTransformedMetrics,
		rowsDroppedMetrics,
	)
}
