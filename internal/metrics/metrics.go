// Package metrics exposes Prometheus instruments for the scoreboard.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blaze"

// Match event labels
const (
	EventRegister         = "register"
	EventRegisterExternal = "register_external"
	EventKill             = "kill"
	EventDeath            = "death"
	EventEndMatch         = "end_match"
	EventReset            = "reset"
	EventRemovePlayer     = "remove_player"
	EventClearTeam        = "clear_team"
)

// Recorder holds the registered collectors
type Recorder struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	persistRetries  prometheus.Counter
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
	roster          *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry, including Go runtime collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_events_total",
			Help:      "Match store operations applied, by event.",
		}, []string{"event"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_events_rejected_total",
			Help:      "Match store operations rejected before mutation, by event.",
		}, []string{"event"}),
		persistRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_retries_total",
			Help:      "Match document writes retried after a failure.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Match mutations rolled back because every write attempt failed.",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Time spent writing the match document, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		roster: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_players",
			Help:      "Players currently on the roster, by team.",
		}, []string{"team"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.events,
		r.rejected,
		r.persistRetries,
		r.persistFailures,
		r.persistDuration,
		r.roster,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Event counts an applied match operation
func (r *Recorder) Event(event string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(event).Inc()
}

// Rejected counts an operation refused by validation or lookup
func (r *Recorder) Rejected(event string) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(event).Inc()
}

// PersistRetry counts a retried document write
func (r *Recorder) PersistRetry() {
	if r == nil {
		return
	}
	r.persistRetries.Inc()
}

// PersistResult records the outcome and latency of a document write
func (r *Recorder) PersistResult(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.persistDuration.Observe(d.Seconds())
	if err != nil {
		r.persistFailures.Inc()
	}
}

// Roster sets the per-team roster gauges
func (r *Recorder) Roster(team1, team2 int) {
	if r == nil {
		return
	}
	r.roster.WithLabelValues("team1").Set(float64(team1))
	r.roster.WithLabelValues("team2").Set(float64(team2))
}

// HTTPRequest records a served request
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
