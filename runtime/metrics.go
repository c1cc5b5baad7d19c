// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/quantidexyz/levr/metrics"

var (
	metricTxCounter  = metrics.LazyLoadCounterVec("runtime_tx_count", []string{"method", "status"})
	metricTxDuration = metrics.LazyLoadHistogramVec("runtime_tx_duration_ms", []string{"method"}, metrics.BucketHTTPReqs)
	metricHeight     = metrics.LazyLoadGauge("runtime_height")
	metricTotalStake = metrics.LazyLoadGauge("runtime_total_staked_tokens")
)
