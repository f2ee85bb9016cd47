// Package metrics defines the Prometheus instruments of detail-view sessions.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "subview"

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeEmpty       = "empty"
	OutcomeStale       = "stale"
	OutcomeReady       = "ready"
	OutcomeNotFound    = "not_found"
	OutcomeServerError = "server_error"
	OutcomeUnchanged   = "unchanged"
	OutcomeChanged     = "changed"
)

// Metrics holds the session instruments.
type Metrics struct {
	SectionFetchesTotal   *prometheus.CounterVec
	SectionFetchDuration  *prometheus.HistogramVec
	RootLoadsTotal        *prometheus.CounterVec
	EnrichmentsTotal      *prometheus.CounterVec
	SharedStoreWrites     *prometheus.CounterVec
	PollTicksTotal        *prometheus.CounterVec
	PollEscalationsTotal  prometheus.Counter
	ActivePolls           prometheus.Gauge
	SectionsLoadingActive *prometheus.GaugeVec
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SectionFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "section_fetches_total",
				Help:      "Section fetches by section and outcome",
			},
			[]string{"section", "outcome"},
		),
		SectionFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "section_fetch_duration_seconds",
				Help:      "Section fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"section"},
		),
		RootLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "root_loads_total",
				Help:      "Subscription root loads by variant and outcome",
			},
			[]string{"variant", "outcome"},
		),
		EnrichmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichments_total",
				Help:      "Directory enrichment lookups by section and outcome",
			},
			[]string{"section", "outcome"},
		),
		SharedStoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shared_store_writes_total",
				Help:      "Billing slot writes by operation",
			},
			[]string{"operation"},
		),
		PollTicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_ticks_total",
				Help:      "Activation poll ticks by outcome",
			},
			[]string{"outcome"},
		),
		PollEscalationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_escalations_total",
				Help:      "Polls that detected a change and forced a reload",
			},
		),
		ActivePolls: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_polls",
				Help:      "Activation timers and polls currently armed",
			},
		),
		SectionsLoadingActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "section_requests_in_flight",
				Help:      "Section requests in flight",
			},
			[]string{"section"},
		),
	}

	reg.MustRegister(
		m.SectionFetchesTotal,
		m.SectionFetchDuration,
		m.RootLoadsTotal,
		m.EnrichmentsTotal,
		m.SharedStoreWrites,
		m.PollTicksTotal,
		m.PollEscalationsTotal,
		m.ActivePolls,
		m.SectionsLoadingActive,
	)
	return m
}

// Handler serves the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveSectionFetch records one finished section fetch.
func (m *Metrics) ObserveSectionFetch(section, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.SectionFetchesTotal.WithLabelValues(section, outcome).Inc()
	m.SectionFetchDuration.WithLabelValues(section).Observe(took.Seconds())
}

// SectionInFlight adjusts the in-flight gauge of a section by delta.
func (m *Metrics) SectionInFlight(section string, delta float64) {
	if m == nil {
		return
	}
	m.SectionsLoadingActive.WithLabelValues(section).Add(delta)
}

// ObserveRootLoad records a finished root load.
func (m *Metrics) ObserveRootLoad(variant, outcome string) {
	if m == nil {
		return
	}
	m.RootLoadsTotal.WithLabelValues(variant, outcome).Inc()
}

// ObserveEnrichment records a directory lookup.
func (m *Metrics) ObserveEnrichment(section, outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentsTotal.WithLabelValues(section, outcome).Inc()
}

// ObserveSharedWrite records a billing slot publish or clear.
func (m *Metrics) ObserveSharedWrite(operation string) {
	if m == nil {
		return
	}
	m.SharedStoreWrites.WithLabelValues(operation).Inc()
}

// ObservePollTick records a poll tick.
func (m *Metrics) ObservePollTick(outcome string) {
	if m == nil {
		return
	}
	m.PollTicksTotal.WithLabelValues(outcome).Inc()
}

// ObserveEscalation records a poll-triggered reload.
func (m *Metrics) ObserveEscalation() {
	if m == nil {
		return
	}
	m.PollEscalationsTotal.Inc()
}

// PollArmed adjusts the active poll gauge by delta.
func (m *Metrics) PollArmed(delta float64) {
	if m == nil {
		return
	}
	m.ActivePolls.Add(delta)
}
