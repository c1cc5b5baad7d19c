// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestNoopMetrics(t *testing.T) {
	assert.Nil(t, HTTPHandler())
	// noop meters accept everything
	Counter("noop").Add(1)
	GaugeVec("noop_vec", []string{"a"}).SetWithLabel(1, map[string]string{"a": "b"})
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	lazy := LazyLoadCounter("lazy_count")
	for i := 0; i < 3; i++ {
		lazy().Add(2)
	}
	assert.Same(t, lazy(), Counter("lazy_count"))

	CounterVec("ops_count", []string{"op"}).AddWithLabel(1, map[string]string{"op": "stake"})
	CounterVec("ops_count", []string{"op"}).AddWithLabel(4, map[string]string{"op": "stake"})
	Gauge("total_staked").Set(42)
	HistogramVec("latency", []string{"op"}, BucketHTTPReqs).ObserveWithLabels(7, map[string]string{"op": "claim"})

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]*dto.MetricFamily{}
	for _, f := range families {
		found[f.GetName()] = f
	}
	require.Contains(t, found, "levr_lazy_count")
	assert.Equal(t, float64(6), found["levr_lazy_count"].Metric[0].GetCounter().GetValue())
	require.Contains(t, found, "levr_ops_count")
	assert.Equal(t, float64(5), found["levr_ops_count"].Metric[0].GetCounter().GetValue())
	require.Contains(t, found, "levr_total_staked")
	assert.Equal(t, float64(42), found["levr_total_staked"].Metric[0].GetGauge().GetValue())
	require.Contains(t, found, "levr_latency")
	assert.Equal(t, uint64(1), found["levr_latency"].Metric[0].GetHistogram().GetSampleCount())
	assert.NotNil(t, HTTPHandler())
}
