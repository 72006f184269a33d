package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAllVecs(t *testing.T) {
	m := NewMetrics("casebridge_test")
	require.NotNil(t, m)
	require.NotNil(t, m.Registry())

	m.AssignmentsTotal.WithLabelValues("AUTO", "success").Inc()
	m.AssignmentsTotal.WithLabelValues("AUTO", "success").Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AssignmentsTotal.WithLabelValues("AUTO", "success")))

	m.CapacityRejectionsTotal.WithLabelValues("rule-1").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapacityRejectionsTotal.WithLabelValues("rule-1")))

	m.StatusTransitionsTotal.WithLabelValues("DRAFT", "PUBLISHED", "package.published").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitionsTotal.WithLabelValues("DRAFT", "PUBLISHED", "package.published")))

	m.FlowRecordsTotal.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlowRecordsTotal))

	m.HealthCheckStatus.WithLabelValues("postgres").Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthCheckStatus.WithLabelValues("postgres")))
}

func TestNewMetrics_EmptyNamespaceDefaults(t *testing.T) {
	m := NewMetrics("")
	m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200").Inc()
	count, err := testutil.GatherAndCount(m.Registry(), "casebridge_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Handler_ServesExposition(t *testing.T) {
	m := NewMetrics("casebridge_test")
	m.BatchSize.Observe(25)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "casebridge_test_batch_size")
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := NewMetrics("casebridge_test")
	b := NewMetrics("casebridge_test")
	a.FlowRecordsTotal.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FlowRecordsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FlowRecordsTotal))
}
