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

// Package metrics is the performance-metrics core: a Counter and a bounded
// Histogram, plus contract-budget enforcement helpers used by pkg/query,
// pkg/store and pkg/discovery.
package metrics

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kraklabs/isgraph/internal/coreerr"
)

// Counter is a monotonic 64-bit counter.
type Counter struct {
	name  string
	value atomic.Uint64
}

// NewCounter creates a named counter starting at zero.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

func (c *Counter) Name() string    { return c.name }
func (c *Counter) Value() uint64   { return c.value.Load() }
func (c *Counter) Increment()       { c.value.Add(1) }
func (c *Counter) Add(n uint64)     { c.value.Add(n) }
func (c *Counter) Reset()           { c.value.Store(0) }

// Histogram is a bounded FIFO ring of duration samples.
type Histogram struct {
	name       string
	mu         sync.Mutex
	samples    []time.Duration
	maxSamples int
}

// NewHistogram creates a named histogram retaining at most maxSamples
// observations, evicting the oldest on overflow.
func NewHistogram(name string, maxSamples int) *Histogram {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &Histogram{name: name, maxSamples: maxSamples}
}

func (h *Histogram) Name() string { return h.name }

// Observe records one duration sample.
func (h *Histogram) Observe(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.samples) >= h.maxSamples {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, d)
}

// HistogramStats summarizes a histogram's current contents.
type HistogramStats struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
}

// Stats computes min/max/mean/median over the current sample window.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return statsLocked(h.samples)
}

func statsLocked(samples []time.Duration) HistogramStats {
	if len(samples) == 0 {
		return HistogramStats{}
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, s := range sorted {
		sum += s
	}
	return HistogramStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / time.Duration(len(sorted)),
		Median: percentileLocked(sorted, 50),
	}
}

// Percentile returns the p-th percentile (0-100) duration over the current
// sample window, using nearest-rank interpolation.
func (h *Histogram) Percentile(p float64) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	sorted := append([]time.Duration(nil), h.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return percentileLocked(sorted, p)
}

func percentileLocked(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := int((p/100)*float64(len(sorted)-1) + 0.5)
	return sorted[rank]
}

// Budget couples an operation name with its latency budget and the
// histogram its observations land in.
type Budget struct {
	Operation string
	Limit     time.Duration
	Histogram *Histogram
}

// NewBudget creates a Budget with its own histogram sized for typical
// graph-query workloads.
func NewBudget(operation string, limit time.Duration) *Budget {
	return &Budget{Operation: operation, Limit: limit, Histogram: NewHistogram(operation, 4096)}
}

// Observe records elapsed against the budget, returning a ContractViolation
// error when the budget was exceeded.
func (b *Budget) Observe(elapsed time.Duration) error {
	b.Histogram.Observe(elapsed)
	if elapsed > b.Limit {
		return coreerr.ContractViolation(b.Operation, float64(elapsed.Microseconds())/1000.0, float64(b.Limit.Microseconds())/1000.0)
	}
	return nil
}

// Track runs fn, timing it against b, and returns fn's error unless the
// budget itself was violated (contract violations take precedence so
// callers never silently swallow a too-slow-but-otherwise-successful call).
func (b *Budget) Track(fn func() error) error {
	start := time.Now()
	fnErr := fn()
	elapsed := time.Since(start)
	if violation := b.Observe(elapsed); violation != nil {
		return violation
	}
	return fnErr
}

// MemoryGuard tracks RSS-style usage against a baseline with a configurable
// percentage-increase ceiling.
type MemoryGuard struct {
	BaselineMB     float64
	MaxIncreasePct float64
}

// Check returns a MemoryLimitExceeded error if currentMB exceeds the
// baseline by more than MaxIncreasePct percent.
func (g MemoryGuard) Check(currentMB float64) error {
	limit := g.BaselineMB * (1 + g.MaxIncreasePct/100)
	if currentMB > limit {
		return &coreerr.Error{Kind: coreerr.KindMemoryLimitExceeded, Message: "memory usage exceeded baseline ceiling",
			Field: "current_mb", Expected: formatMB(limit), Actual: formatMB(currentMB)}
	}
	return nil
}

func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'f', 2, 64) + "MB"
}
