package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the Prometheus side of a briefing run. A nil *Recorder is valid
// and records nothing, which keeps tests free of registry plumbing.
type Recorder struct {
	fetches     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	cache       *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	briefings   prometheus.Counter
	lastSuccess prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cortexbrief_source_fetches_total",
				Help: "Source adapter invocations by outcome",
			},
			[]string{"source", "status", "cause"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cortexbrief_source_duration_seconds",
				Help:    "Duration of source adapter invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cortexbrief_http_cache_requests_total",
				Help: "Outbound HTTP requests seen by the response cache",
			},
			[]string{"result"},
		),
		skipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cortexbrief_watchlist_skipped_total",
				Help: "Watchlist symbols that produced no snapshot",
			},
			[]string{"symbol"},
		),
		briefings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cortexbrief_briefings_total",
				Help: "Briefings assembled",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cortexbrief_last_briefing_timestamp_seconds",
				Help: "Unix time of the last assembled briefing",
			},
		),
	}
}

func (r *Recorder) RecordFetch(source, status, cause string, seconds float64) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(source, status, cause).Inc()
	r.latency.WithLabelValues(source).Observe(seconds)
}

func (r *Recorder) RecordCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordSkipped(symbol string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordBriefing(unix float64) {
	if r == nil {
		return
	}
	r.briefings.Inc()
	r.lastSuccess.Set(unix)
}
