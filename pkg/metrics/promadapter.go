// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CounterCollector adapts a *Counter to prometheus.Collector, so `cmd/isg`
// can expose it on a /metrics endpoint via promhttp.Handler().
type CounterCollector struct {
	counter *Counter
	desc    *prometheus.Desc
}

// NewCounterCollector wraps c for registration against a prometheus.Registerer.
func NewCounterCollector(c *Counter, help string) *CounterCollector {
	return &CounterCollector{
		counter: c,
		desc:    prometheus.NewDesc("isgraph_"+c.Name(), help, nil, nil),
	}
}

func (cc *CounterCollector) Describe(ch chan<- *prometheus.Desc) { ch <- cc.desc }

func (cc *CounterCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(cc.desc, prometheus.CounterValue, float64(cc.counter.Value()))
}

// BudgetCollector exposes a *Budget to Prometheus as an observation counter,
// a gauge holding the configured limit, and p50/p95/p99 latency gauges taken
// from pkg/metrics.Histogram. It exports no latency sum and no violation flag.
type BudgetCollector struct {
	budget     *Budget
	countDesc  *prometheus.Desc
	quantDesc  *prometheus.Desc
	limitDesc  *prometheus.Desc
}

// NewBudgetCollector wraps b for registration.
func NewBudgetCollector(b *Budget) *BudgetCollector {
	name := "isgraph_" + sanitizeMetricName(b.Operation)
	return &BudgetCollector{
		budget:    b,
		countDesc: prometheus.NewDesc(name+"_observations_total", "total observations tracked against this budget", nil, nil),
		quantDesc: prometheus.NewDesc(name+"_latency_seconds", "latency quantile for this budgeted operation", []string{"quantile"}, nil),
		limitDesc: prometheus.NewDesc(name+"_limit_seconds", "configured latency budget for this operation", nil, nil),
	}
}

func (bc *BudgetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bc.countDesc
	ch <- bc.quantDesc
	ch <- bc.limitDesc
}

func (bc *BudgetCollector) Collect(ch chan<- prometheus.Metric) {
	stats := bc.budget.Histogram.Stats()
	ch <- prometheus.MustNewConstMetric(bc.countDesc, prometheus.CounterValue, float64(stats.Count))
	ch <- prometheus.MustNewConstMetric(bc.limitDesc, prometheus.GaugeValue, bc.budget.Limit.Seconds())
	for _, q := range []struct {
		label string
		p     float64
	}{{"0.5", 50}, {"0.95", 95}, {"0.99", 99}} {
		ch <- prometheus.MustNewConstMetric(bc.quantDesc, prometheus.GaugeValue,
			bc.budget.Histogram.Percentile(q.p).Seconds(), q.label)
	}
}

// RegisterBudgets registers a collector per budget against reg, skipping
// (not erroring on) a budget already registered under the same name - a
// caller may call this once per Engine/Index/Store construction and some
// processes build more than one.
func RegisterBudgets(reg prometheus.Registerer, budgets ...*Budget) {
	for _, b := range budgets {
		if b == nil {
			continue
		}
		_ = reg.Register(NewBudgetCollector(b))
	}
}

func sanitizeMetricName(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
