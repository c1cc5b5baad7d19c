// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/quantidexyz/levr/metrics"
)

var (
	metricCriteriaLength = metrics.LazyLoadHistogramVec("logdb_criteria_length_bucket", []string{"type"}, []int64{0, 2, 5, 10, 25, 100})
	metricQueryParams    = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrder     = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket    = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricEventsWritten = metrics.LazyLoadCounter("logdb_events_written_count")
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}
	metricCriteriaLength().ObserveWithLabels(int64(len(filter.CriteriaSet)), map[string]string{"type": "event"})

	order := string(ASC)
	if filter.Order == DESC {
		order = string(DESC)
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		limit := min(filter.Options.Limit, 1001)
		metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": "event"})
	}

	for _, c := range filter.CriteriaSet {
		var used []string
		if c.Name != nil {
			used = append(used, "name")
		}
		if c.Account != nil {
			used = append(used, "account")
		}
		if c.Token != nil {
			used = append(used, "token")
		}
		if c.TxID != nil {
			used = append(used, "txID")
		}
		metricQueryParams().AddWithLabel(1, map[string]string{"parameters": strings.Join(used, ",")})
	}
}
