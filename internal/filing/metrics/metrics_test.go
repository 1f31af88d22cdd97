package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementFilingCreated("ec601", false)
	m.IncrementFilingCreated("ec601", true)
	m.IncrementFilingCreated("ec601", true)
	m.IncrementFinalize("ec601", OutcomeFiled)
	m.AddFees("ec601", 150)
	m.AddFees("ec601", 0)
	m.IncrementNotificationFailure()
	m.ObserveFinalize(time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilingsCreated.WithLabelValues("ec601", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilingsCreated.WithLabelValues("ec601", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FinalizeOutcomes.WithLabelValues("ec601", OutcomeFiled)))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.FeesAssessed.WithLabelValues("ec601")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailures))

	n, err := testutil.GatherAndCount(reg, "efile_finalize_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
