//nolint:gochecknoglobals
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	packetsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "telemetry",
		Name:      "packets_total",
		Help:      "The total number of decoded telemetry packets",
	})

	dropMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "telemetry",
		Name:      "dropped_total",
		Help:      "The total number of discarded datagrams",
	}, []string{"reason"})
)
