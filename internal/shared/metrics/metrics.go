package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "channel_watch"

// Metrics holds the process collectors on a private registry.
type Metrics struct {
	Registry         *prometheus.Registry
	MessagesObserved prometheus.Counter
	MatchesFound     prometheus.Counter
	ChannelsWatched  prometheus.Gauge
	Deliveries       *prometheus.CounterVec
	Fallbacks        prometheus.Counter
}

// New creates the collectors and registers them together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		MessagesObserved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_observed_total",
			Help:      "Channel messages received from watched channels.",
		}),
		MatchesFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_found_total",
			Help:      "Messages that matched at least one keyword.",
		}),
		ChannelsWatched: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels_watched",
			Help:      "Channels resolved from the watch list.",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Per-recipient notification attempts by method and result.",
		}, []string{"method", "result"}),
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_fallbacks_total",
			Help:      "Media deliveries that degraded to plain text.",
		}),
	}
}
