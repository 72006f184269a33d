// Package prometheus registers and exposes CaseBridge application metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultBatchSizeBuckets    = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	DefaultScoreBuckets        = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// Metrics holds every metric the platform emits. All vecs are registered on a
// private registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Assignment engine
	AssignmentsTotal        *prometheus.CounterVec
	AssignmentDuration      *prometheus.HistogramVec
	RecommendationScores    *prometheus.HistogramVec
	RuleEvaluationsTotal    *prometheus.CounterVec
	EligibleOrganizations   *prometheus.HistogramVec
	BatchItemsTotal         *prometheus.CounterVec
	BatchSize               prometheus.Histogram
	CapacityRejectionsTotal *prometheus.CounterVec

	// Lifecycle
	StatusTransitionsTotal *prometheus.CounterVec
	FlowRecordsTotal       prometheus.Counter

	// Infrastructure
	DBQueryDuration   *prometheus.HistogramVec
	CacheHitsTotal    *prometheus.CounterVec
	CacheMissesTotal  *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec
}

// NewMetrics registers all application metrics under the given namespace and
// returns the populated Metrics struct.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "casebridge"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	factory := func(name, help string, labels ...string) *prometheus.CounterVec {
		v := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: name, Help: help,
		}, labels)
		reg.MustRegister(v)
		return v
	}
	histo := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		v := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: name, Help: help, Buckets: buckets,
		}, labels)
		reg.MustRegister(v)
		return v
	}

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = factory("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = histo("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.AssignmentsTotal = factory("assignments_total", "Assignment executions", "strategy", "result")
	m.AssignmentDuration = histo("assignment_duration_seconds", "Assignment execution duration", DefaultHTTPDurationBuckets, "strategy")
	m.RecommendationScores = histo("recommendation_scores", "Overall scores of generated recommendations", DefaultScoreBuckets, "rule_id")
	m.RuleEvaluationsTotal = factory("rule_evaluations_total", "Rule evaluation outcomes", "rule_id", "outcome")
	m.EligibleOrganizations = histo("eligible_organizations", "Eligible organization count per evaluation", DefaultBatchSizeBuckets, "rule_id")
	m.BatchItemsTotal = factory("batch_items_total", "Batch assignment item outcomes", "result")
	m.CapacityRejectionsTotal = factory("capacity_rejections_total", "Assignments rejected by the per-organization cap", "rule_id")

	m.BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "batch_size", Help: "Case package count per batch request",
		Buckets: DefaultBatchSizeBuckets,
	})
	reg.MustRegister(m.BatchSize)

	m.StatusTransitionsTotal = factory("status_transitions_total", "Case package status transitions", "from", "to", "event")
	m.FlowRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "flow_records_total", Help: "Appended case flow records",
	})
	reg.MustRegister(m.FlowRecordsTotal)

	m.DBQueryDuration = histo("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = factory("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = factory("cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = factory("events_published_total", "Domain events published to the broker", "topic", "result")

	m.HealthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "health_check_status", Help: "Component health (1=up, 0=down)",
	}, []string{"component"})
	reg.MustRegister(m.HealthCheckStatus)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
