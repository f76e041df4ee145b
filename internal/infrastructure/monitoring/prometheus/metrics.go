package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
)

// Default buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultMoleculeDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultVariantCountBuckets     = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// Molecule outcome labels.
const (
	StatusVariants   = "variants"
	StatusNoVariants = "no_variants"
	StatusFailed     = "failed"
)

// VariantMetrics holds every instrument the variant service reports.  It
// satisfies minorchanges.Observer so an Engine can feed it directly.
type VariantMetrics struct {
	MoleculesProcessed  CounterVec
	ProcessDuration     HistogramVec
	VariantsPerMolecule HistogramVec
	VariantsGenerated   CounterVec
	CandidatesRejected  CounterVec
	ActiveWorkers       GaugeVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	SinkErrorsTotal  CounterVec

	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

var _ minorchanges.Observer = (*VariantMetrics)(nil)

// NewVariantMetrics registers all instruments on collector.
func NewVariantMetrics(collector MetricsCollector) *VariantMetrics {
	m := &VariantMetrics{}

	m.MoleculesProcessed = collector.RegisterCounter("molecules_processed_total", "Molecules processed by outcome", "status")
	m.ProcessDuration = collector.RegisterHistogram("process_duration_seconds", "Variant generation time per molecule", DefaultMoleculeDurationBuckets)
	m.VariantsPerMolecule = collector.RegisterHistogram("variants_per_molecule", "Accepted variants per molecule", DefaultVariantCountBuckets)
	m.VariantsGenerated = collector.RegisterCounter("variants_generated_total", "Accepted variants by rule", "rule")
	m.CandidatesRejected = collector.RegisterCounter("invalid_candidates_total", "Candidates rejected for bad valence by rule", "rule")
	m.ActiveWorkers = collector.RegisterGauge("active_workers", "Workers currently processing a molecule")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Variant cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Variant cache misses", "cache")
	m.SinkErrorsTotal = collector.RegisterCounter("sink_errors_total", "Failed sink writes", "sink")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	return m
}

// VariantAccepted implements minorchanges.Observer.
func (m *VariantMetrics) VariantAccepted(rule minorchanges.RuleID) {
	m.VariantsGenerated.WithLabelValues(rule.String()).Inc()
}

// CandidateRejected implements minorchanges.Observer.
func (m *VariantMetrics) CandidateRejected(rule minorchanges.RuleID) {
	m.CandidatesRejected.WithLabelValues(rule.String()).Inc()
}

// RecordMolecule records one Engine.Process call; n < 0 marks a failure.
func (m *VariantMetrics) RecordMolecule(n int, d time.Duration) {
	status := StatusVariants
	switch {
	case n < 0:
		status = StatusFailed
	case n == 0:
		status = StatusNoVariants
	}
	m.MoleculesProcessed.WithLabelValues(status).Inc()
	m.ProcessDuration.WithLabelValues().Observe(d.Seconds())
	if n >= 0 {
		m.VariantsPerMolecule.WithLabelValues().Observe(float64(n))
	}
}

func (m *VariantMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func (m *VariantMetrics) RecordSinkError(sink string) {
	m.SinkErrorsTotal.WithLabelValues(sink).Inc()
}

func (m *VariantMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// NewNoopVariantMetrics returns instruments that discard everything.
func NewNoopVariantMetrics() *VariantMetrics {
	return &VariantMetrics{
		MoleculesProcessed:  noopCounterVec{},
		ProcessDuration:     noopHistogramVec{},
		VariantsPerMolecule: noopHistogramVec{},
		VariantsGenerated:   noopCounterVec{},
		CandidatesRejected:  noopCounterVec{},
		ActiveWorkers:       noopGaugeVec{},
		CacheHitsTotal:      noopCounterVec{},
		CacheMissesTotal:    noopCounterVec{},
		SinkErrorsTotal:     noopCounterVec{},
		HTTPRequestsTotal:   noopCounterVec{},
		HTTPRequestDuration: noopHistogramVec{},
	}
}

//Personal.AI order the ending
