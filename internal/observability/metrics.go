package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "treemap"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline stages.
type Metrics struct {
	RowsRead        *prometheus.CounterVec // labels: stage
	FeaturesEmitted prometheus.Counter
	RowsSkipped     *prometheus.CounterVec // labels: reason={invalid_coordinates,placeholder_species}
	RowsDropped     *prometheus.CounterVec // labels: reason={empty,placeholder}
	Genera          prometheus.Gauge
	SpeciesCache    *prometheus.CounterVec // labels: result={hit,miss}
	StageDuration   *prometheus.HistogramVec

	// Distribution metrics.
	MessagesPublished prometheus.Counter
	UploadedBytes     prometheus.Counter
}

// NewMetricsWithRegistry creates the pipeline metrics on a fresh registry that
// also carries the Go runtime and process collectors. Commands use the
// registry both for /metrics and for the textfile dump.
func NewMetricsWithRegistry() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total CSV rows read, by stage.",
		}, []string{"stage"}),
		FeaturesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_emitted_total",
			Help:      "Total tree features written to GeoJSON.",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Rows that produced no feature, by reason.",
		}, []string{"reason"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed by the clean stage, by reason.",
		}, []string{"reason"}),
		Genera: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "genera",
			Help:      "Number of distinct genera colored in the last run.",
		}),
		SpeciesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "species_cache_total",
			Help:      "Species parse cache lookups by result.",
		}, []string{"result"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of a complete stage run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Total feature messages written to Kafka.",
		}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Total artifact bytes uploaded to object storage.",
		}),
	}

	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.FeaturesEmitted,
		m.RowsSkipped,
		m.RowsDropped,
		m.Genera,
		m.SpeciesCache,
		m.StageDuration,
		m.MessagesPublished,
		m.UploadedBytes,
	}
}
