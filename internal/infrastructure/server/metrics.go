package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "npmdiffscan"

// metrics holds the Prometheus collectors of the background server.
type metrics struct {
	messagesTotal   *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	rejectedTotal   prometheus.Counter
}

func newMetrics(registry prometheus.Registerer, pageCount func() int) *metrics {
	factory := promauto.With(registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "pages_attached",
		Help:      "Number of page scans subscribed to the background",
	}, func() float64 { return float64(pageCount()) })

	return &metrics{
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_total",
			Help:      "Total number of boundary messages handled, by action and outcome",
		}, []string{"action", "outcome"}),

		messageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "message_duration_seconds",
			Help:      "Message handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),

		rejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_rejected_total",
			Help:      "Total number of requests that did not decode into a message",
		}),
	}
}
