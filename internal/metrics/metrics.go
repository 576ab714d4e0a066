// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "beacon"

// Registry is the Prometheus registry for all beacon metrics.
var Registry = prometheus.NewRegistry()

// EventsPublished counts events pushed through the change notifier, by
// event name.
var EventsPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Events published to the change notifier",
	},
	[]string{"event"},
)

// DeliveriesDropped counts per-subscriber deliveries discarded because a
// subscriber queue was full.
var DeliveriesDropped = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_dropped_total",
		Help:      "Event deliveries dropped on full subscriber queues",
	},
)

// Subscribers tracks currently registered change-notifier subscribers.
var Subscribers = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Currently registered change-notifier subscribers",
	},
)

// HTTPRequests counts requests by method and status.
var HTTPRequests = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests processed",
	},
	[]string{"method", "status"},
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
