package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSagaMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSagaMetrics(reg)

	m.Completed.WithLabelValues("approved").Inc()
	m.Timeouts.WithLabelValues("payment").Add(2)
	m.Active.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completed.WithLabelValues("approved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Timeouts.WithLabelValues("payment")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Active))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewSagaMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSagaMetrics(prometheus.NewRegistry())
		NewSagaMetrics(prometheus.NewRegistry())
	})
}
