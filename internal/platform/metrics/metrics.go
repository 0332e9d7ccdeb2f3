package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus metrics. A nil *Metrics is valid and
// records nothing, so units can construct services without a registry.
type Metrics struct {
	DomainsCreated          prometheus.Counter
	EndorsementsRecorded    prometheus.Counter
	ActivitiesRecorded      prometheus.Counter
	VerificationsIssued     prometheus.Counter
	ScoreRecomputeDuration  prometheus.Histogram
	ScoreCacheHits          prometheus.Counter
	ScoreCacheMisses        prometheus.Counter
	RequestDurationByRoute  *prometheus.HistogramVec
}

// New creates and registers all engine metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		DomainsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_domains_created_total",
			Help: "Total number of reputation domains created",
		}),
		EndorsementsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_endorsements_recorded_total",
			Help: "Total number of endorsement upserts (new and overwrite)",
		}),
		ActivitiesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_activities_recorded_total",
			Help: "Total number of activities recorded",
		}),
		VerificationsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_verifications_issued_total",
			Help: "Total number of verifications issued",
		}),
		ScoreRecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "repute_score_recompute_duration_seconds",
			Help:    "Duration of reputation score recomputations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ScoreCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_score_cache_hits_total",
			Help: "Reputation score reads served from the cache",
		}),
		ScoreCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repute_score_cache_misses_total",
			Help: "Reputation score reads that missed the cache",
		}),
		RequestDurationByRoute: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repute_http_request_duration_seconds",
			Help:    "HTTP request duration by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method"}),
	}
}

// IncDomainsCreated records a successful domain creation.
func (m *Metrics) IncDomainsCreated() {
	if m != nil {
		m.DomainsCreated.Inc()
	}
}

// IncEndorsementsRecorded records an endorsement upsert.
func (m *Metrics) IncEndorsementsRecorded() {
	if m != nil {
		m.EndorsementsRecorded.Inc()
	}
}

// IncActivitiesRecorded records a recorded activity.
func (m *Metrics) IncActivitiesRecorded() {
	if m != nil {
		m.ActivitiesRecorded.Inc()
	}
}

// IncVerificationsIssued records an issued verification.
func (m *Metrics) IncVerificationsIssued() {
	if m != nil {
		m.VerificationsIssued.Inc()
	}
}

// ObserveScoreRecompute records the duration of one score recomputation.
func (m *Metrics) ObserveScoreRecompute(start time.Time) {
	if m != nil {
		m.ScoreRecomputeDuration.Observe(time.Since(start).Seconds())
	}
}

// IncScoreCacheHit records a cache hit on the score read path.
func (m *Metrics) IncScoreCacheHit() {
	if m != nil {
		m.ScoreCacheHits.Inc()
	}
}

// IncScoreCacheMiss records a cache miss on the score read path.
func (m *Metrics) IncScoreCacheMiss() {
	if m != nil {
		m.ScoreCacheMisses.Inc()
	}
}

// ObserveRequest records an HTTP request duration for a route pattern.
func (m *Metrics) ObserveRequest(route, method string, start time.Time) {
	if m != nil {
		m.RequestDurationByRoute.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
