package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Registerable(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	for _, c := range m.collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.IncidentsFetched.WithLabelValues("csv").Add(4)
	m.IncidentsDropped.WithLabelValues(DropDuplicate).Inc()

	assert.InDelta(t, 4, testutil.ToFloat64(m.IncidentsFetched.WithLabelValues("csv")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IncidentsDropped.WithLabelValues(DropDuplicate)), 0)
}
