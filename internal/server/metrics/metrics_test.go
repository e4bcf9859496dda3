package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordQuotaDecision("admitted")
	m.RecordQuotaDecision("admitted")
	m.RecordQuotaDecision("rejected")
	m.RecordCharactersCommitted(42)
	m.RecordSynthesis("success", 0.3)
	m.RecordHTTPRequest("POST", "/api/voice/generate", "200", 0.4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("admitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("rejected")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.charactersCommitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/voice/generate", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.synthesisDuration))
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordQuotaDecision("admitted")
		m.RecordCharactersCommitted(1)
		m.RecordSynthesis("error", 1)
		m.RecordHTTPRequest("GET", "/", "200", 0)
	})
}
