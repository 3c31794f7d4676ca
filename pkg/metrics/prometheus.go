package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	engineCalls   *prometheus.CounterVec
	engineLatency *prometheus.HistogramVec
	commits       *prometheus.CounterVec
	loading       prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	events        *prometheus.CounterVec
}

// New registers the dashboard collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		engineCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filinglens_engine_requests_total",
				Help: "Requests sent to the analytics engine",
			},
			[]string{"operation", "result"},
		),
		engineLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filinglens_engine_request_duration_seconds",
				Help:    "Analytics engine request latency",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		commits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filinglens_view_commits_total",
				Help: "View model commit attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		loading: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "filinglens_view_loading",
				Help: "1 while a full query is in flight",
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filinglens_engine_cache_lookups_total",
				Help: "Engine cache lookups by operation and result",
			},
			[]string{"operation", "result"},
		),
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filinglens_event_delivery_total",
				Help: "Dashboard events by delivery result",
			},
			[]string{"result"},
		),
	}
}

// RecordEngineCall records one engine request.
func (r *Recorder) RecordEngineCall(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.engineCalls.WithLabelValues(op, result).Inc()
	r.engineLatency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordCommit counts a commit attempt: kind is batch|heatmap|prediction,
// outcome is committed|stale|failed.
func (r *Recorder) RecordCommit(kind, outcome string) {
	r.commits.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) SetLoading(loading bool) {
	if loading {
		r.loading.Set(1)
		return
	}
	r.loading.Set(0)
}

func (r *Recorder) RecordCacheLookup(op string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(op, result).Inc()
}

// RecordEventDelivery counts one event: published, buffered, retried or dropped.
func (r *Recorder) RecordEventDelivery(result string) {
	r.events.WithLabelValues(result).Inc()
}
