package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// CollectorMetrics holds all Prometheus metrics for the collector. They are
// registered on a private registry so one-shot runs can push a clean group
// to a Pushgateway without dragging default-registry collectors along.
type CollectorMetrics struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	EventsFetched  prometheus.Counter
	EventsNew      prometheus.Counter
	EventsWritten  prometheus.Counter
	RecordsSkipped prometheus.Counter
	TrackedIDs     prometheus.Gauge
	LastRunUnix    prometheus.Gauge
}

// NewCollectorMetrics initializes and registers the Prometheus metrics.
func NewCollectorMetrics() *CollectorMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &CollectorMetrics{
		registry: registry,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "runs_total",
			Help:      "Total number of collection cycles by status.",
		}, []string{"status"}), // status: success, failed
		EventsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "events_fetched_total",
			Help:      "Total number of events returned by the feed.",
		}),
		EventsNew: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "events_new_total",
			Help:      "Total number of events that passed the recency filter.",
		}),
		EventsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "events_written_total",
			Help:      "Total number of events persisted to partition objects.",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped for unusable timestamps.",
		}),
		TrackedIDs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "tracked_ids",
			Help:      "Number of event IDs currently held by the recency index.",
		}),
		LastRunUnix: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "polisen",
			Subsystem: "collector",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed collection cycle.",
		}),
	}
}

// Handler exposes the registry for scraping in interval mode.
func (m *CollectorMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push replaces the collector's metric group on a Pushgateway. Used after
// one-shot runs where nothing stays up long enough to be scraped.
func (m *CollectorMetrics) Push(gatewayURL string) error {
	return push.New(gatewayURL, "polisen_collector").Gatherer(m.registry).Push()
}
