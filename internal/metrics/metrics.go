package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the client.
// It includes counters for save pipelines, individual write attempts, confirmation reads
// and degraded fields, plus histograms for pipeline and storage latency.
type Metrics struct {
	Saves                 *prometheus.CounterVec
	WriteAttempts         *prometheus.CounterVec
	Confirmations         *prometheus.CounterVec
	SaveDuration          *prometheus.HistogramVec
	RecordsListed         *prometheus.CounterVec
	LastSuccessfulSave    *prometheus.GaugeVec
	NormalizeDegradations prometheus.Counter
	CacheOpDuration       *prometheus.HistogramVec
	DBQueryDuration       *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Saves: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_saves_total",
			Help: "Total save pipelines that ended in a confirmed record or a failure.",
		}, []string{"facet", "status"}),
		WriteAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_write_attempts_total",
			Help: "Total write attempts against the remote store, by verb and outcome.",
		}, []string{"method", "outcome"}),
		Confirmations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_confirmations_total",
			Help: "Total confirmation reads, by the lookup that located the record.",
		}, []string{"result"}), // result: 'by_id', 'collection', 'failed'
		SaveDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "staffdir_save_duration_seconds",
			Help: "Measures how long a save pipeline takes from validation to confirmation.",
		}, []string{"facet"}),
		RecordsListed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_records_listed_total",
			Help: "Total number of directory records fetched and shown.",
		}, []string{"stage"}), // stage: 'fetched', 'visible'
		LastSuccessfulSave: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "staffdir_last_successful_save_timestamp",
			Help: "Last time a save was confirmed",
		}, []string{"facet"}),
		NormalizeDegradations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "staffdir_normalize_degradations_total",
			Help: "Total number of list fields that could not be interpreted and degraded to empty.",
		}),
		CacheOpDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staffdir_cache_store_duration_seconds",
			Help:    "Duration of cache store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}), // operation: 'load', 'save', 'delete'
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staffdir_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}),
	}

	for _, facet := range []string{"profile", "details"} {
		metrics.Saves.WithLabelValues(facet, "success")
		metrics.Saves.WithLabelValues(facet, "failure")
	}

	return metrics
}
