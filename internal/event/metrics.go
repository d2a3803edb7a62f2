//nolint:gochecknoglobals
package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mchub",
		Name:      "events_published_total",
		Help:      "The total number of events accepted by the bus",
	}, []string{"source"})

	droppedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mchub",
		Name:      "events_dropped_total",
		Help:      "The total number of events the bus could not deliver",
	}, []string{"reason"})

	subscribersMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mchub",
		Name:      "event_subscribers",
		Help:      "The number of connected frontends",
	})
)
