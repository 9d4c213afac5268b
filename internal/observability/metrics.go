package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// track engine.
type Metrics struct {
	DecksFetched  prometheus.Counter
	FetchErrors   prometheus.Counter
	RecordsParsed prometheus.Counter
	StoreLoaded   prometheus.Gauge

	// Derived product metrics.
	ProductBuilds        *prometheus.CounterVec   // labels: product={track,geojson,isotachs,swaths}, outcome={success,error}
	ProductBuildDuration *prometheus.HistogramVec // label: product

	// Kafka sink metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DecksFetched,
		m.FetchErrors,
		m.RecordsParsed,
		m.StoreLoaded,
		m.ProductBuilds,
		m.ProductBuildDuration,
		m.MessagesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DecksFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "decks_fetched_total",
			Help:      "Total ATCF deck files successfully retrieved.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "fetch_errors_total",
			Help:      "Total deck retrieval failures.",
		}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "records_parsed_total",
			Help:      "Total ATCF records decoded into the canonical table.",
		}),
		StoreLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vortex_track",
			Name:      "store_loaded",
			Help:      "1 once the track store has loaded a deck.",
		}),
		ProductBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "product_builds_total",
			Help:      "Derived product builds by product and outcome.",
		}, []string{"product", "outcome"}),
		ProductBuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vortex_track",
			Name:      "product_build_duration_seconds",
			Help:      "Time spent building a derived product.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"product"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "messages_published_total",
			Help:      "Total product messages written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex_track",
			Name:      "publish_errors_total",
			Help:      "Total Kafka publish failures.",
		}),
	}
}
