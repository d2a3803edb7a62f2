//nolint:gochecknoglobals
package command

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linesMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "command",
		Name:      "lines_total",
		Help:      "The total number of command lines forwarded",
	})

	dropMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "command",
		Name:      "dropped_total",
		Help:      "The total number of discarded reads or lines",
	}, []string{"reason"})

	connectionsMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mchub",
		Subsystem: "command",
		Name:      "connections",
		Help:      "The number of open command connections",
	})

	submittedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "command",
		Name:      "submitted_total",
		Help:      "The total number of payload commands submitted through the API",
	})
)
