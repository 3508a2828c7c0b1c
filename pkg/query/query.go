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

// Package query is the query engine: forward/reverse dependencies, bounded
// blast radius, cycle-tolerant transitive closure, shortest-path distance,
// and critical-path impact classification. Every operation runs against a
// single uniform Source interface so the same engine works over the
// in-memory ISG or the persistent store. Each traversal keeps a visited
// set plus per-node best distance and walks a plain FIFO queue, rather
// than pulling in a general-purpose graph library for what is, at bottom,
// breadth-first search over ISGL1 keys.
package query

import (
	"context"
	"time"

	"github.com/kraklabs/isgraph/internal/coreerr"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/metrics"
)

// Source abstracts the adjacency lookups the engine needs, implemented by
// both the in-memory graph (non-suspending) and the persistent store
// (suspends at I/O boundaries).
type Source interface {
	Forward(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error)
	Reverse(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error)
}

// GraphSource adapts an in-memory *isg.Graph to Source.
type GraphSource struct {
	Graph *isg.Graph
}

func (s GraphSource) Forward(_ context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	edges := s.Graph.OutEdges(key)
	out := make([]isg.ISGL1Key, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out, nil
}

func (s GraphSource) Reverse(_ context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	edges := s.Graph.InEdges(key)
	out := make([]isg.ISGL1Key, len(edges))
	for i, e := range edges {
		out[i] = e.From
	}
	return out, nil
}

// Engine is the query engine. Each budgeted operation has its own
// histogram; Track wraps execution so a too-slow call returns a
// ContractViolation alongside its result.
type Engine struct {
	source Source

	forwardBudget  *metrics.Budget
	reverseBudget  *metrics.Budget
	blastBudget    *metrics.Budget
	closureBudget  *metrics.Budget
}

// New creates a query engine over source, with budgets tuned for
// interactive use against a reference-sized graph.
func New(source Source) *Engine {
	return &Engine{
		source:        source,
		forwardBudget: metrics.NewBudget("query.forward_dependencies", 20*time.Millisecond),
		reverseBudget: metrics.NewBudget("query.reverse_dependencies", 20*time.Millisecond),
		blastBudget:   metrics.NewBudget("query.blast_radius", 50*time.Millisecond),
		closureBudget: metrics.NewBudget("query.transitive_closure", 100*time.Millisecond),
	}
}

// ForwardDependencies returns the directly-downstream keys of key.
func (e *Engine) ForwardDependencies(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	var out []isg.ISGL1Key
	violation := e.forwardBudget.Track(func() error {
		var err error
		out, err = e.source.Forward(ctx, key)
		return err
	})
	return out, violation
}

// ReverseDependencies returns the directly-upstream keys of key.
func (e *Engine) ReverseDependencies(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	var out []isg.ISGL1Key
	violation := e.reverseBudget.Track(func() error {
		var err error
		out, err = e.source.Reverse(ctx, key)
		return err
	})
	return out, violation
}

// BlastEntry is one member of a blast-radius result: a reachable key and
// its shortest outgoing distance from the seed.
type BlastEntry struct {
	Key      isg.ISGL1Key
	Distance int
}

// BlastRadius returns every key reachable from key within maxHops outgoing
// steps, each labeled with its shortest distance. maxHops=0 returns the
// empty set by definition; the seed itself is never included.
func (e *Engine) BlastRadius(ctx context.Context, key isg.ISGL1Key, maxHops int) ([]BlastEntry, error) {
	var out []BlastEntry
	violation := e.blastBudget.Track(func() error {
		var err error
		out, err = e.blastRadius(ctx, key, maxHops)
		return err
	})
	return out, violation
}

func (e *Engine) blastRadius(ctx context.Context, seed isg.ISGL1Key, maxHops int) ([]BlastEntry, error) {
	if maxHops <= 0 {
		return nil, nil
	}
	bestDist := map[isg.ISGL1Key]int{seed: 0}
	queue := []isg.ISGL1Key{seed}
	var result []BlastEntry

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, coreerr.Cancelled("query.blast_radius")
		}
		cur := queue[0]
		queue = queue[1:]
		dist := bestDist[cur]
		if dist >= maxHops {
			continue
		}
		neighbors, err := e.source.Forward(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			nd := dist + 1
			if existing, ok := bestDist[n]; ok && existing <= nd {
				continue // already visited with an equal-or-shorter distance
			}
			bestDist[n] = nd
			queue = append(queue, n)
		}
	}

	for k, d := range bestDist {
		if k == seed {
			continue
		}
		result = append(result, BlastEntry{Key: k, Distance: d})
	}
	return result, nil
}

// TransitiveClosure returns the unbounded reachable set from key. Cycle
// tolerant: a node may appear in the result even if it is the seed, when
// reachable via a cycle back to itself.
func (e *Engine) TransitiveClosure(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	var out []isg.ISGL1Key
	violation := e.closureBudget.Track(func() error {
		var err error
		out, err = e.transitiveClosure(ctx, key)
		return err
	})
	return out, violation
}

func (e *Engine) transitiveClosure(ctx context.Context, seed isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	visited := make(map[isg.ISGL1Key]bool)
	queue := []isg.ISGL1Key{seed}
	var result []isg.ISGL1Key

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, coreerr.Cancelled("query.transitive_closure")
		}
		cur := queue[0]
		queue = queue[1:]
		neighbors, err := e.source.Forward(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			// seed is not pre-marked visited, so a cycle back to it is
			// recorded once here and not revisited.
			visited[n] = true
			result = append(result, n)
			queue = append(queue, n)
		}
	}
	return result, nil
}

// ShortestPathDistance returns the shortest outgoing-edge hop count from
// from to to, and false if to is unreachable.
func (e *Engine) ShortestPathDistance(ctx context.Context, from, to isg.ISGL1Key) (int, bool, error) {
	if from == to {
		return 0, true, nil
	}
	visited := map[isg.ISGL1Key]int{from: 0}
	queue := []isg.ISGL1Key{from}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, false, coreerr.Cancelled("query.shortest_path_distance")
		}
		cur := queue[0]
		queue = queue[1:]
		dist := visited[cur]
		neighbors, err := e.source.Forward(ctx, cur)
		if err != nil {
			return 0, false, err
		}
		for _, n := range neighbors {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = dist + 1
			if n == to {
				return dist + 1, true, nil
			}
			queue = append(queue, n)
		}
	}
	return 0, false, nil
}

// ImpactLevel buckets a critical-path length into four severity tiers
// (1-2 Low, 3-5 Medium, 6-10 High, >10 Critical).
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "Low"
	ImpactMedium   ImpactLevel = "Medium"
	ImpactHigh     ImpactLevel = "High"
	ImpactCritical ImpactLevel = "Critical"
)

// ClassifyImpact maps a path length to its impact level.
func ClassifyImpact(pathLength int) ImpactLevel {
	switch {
	case pathLength <= 0:
		return ImpactLow
	case pathLength <= 2:
		return ImpactLow
	case pathLength <= 5:
		return ImpactMedium
	case pathLength <= 10:
		return ImpactHigh
	default:
		return ImpactCritical
	}
}

// CriticalPathEntry pairs a blast-radius member with its impact level.
type CriticalPathEntry struct {
	Key         isg.ISGL1Key
	Distance    int
	ImpactLevel ImpactLevel
}

// CriticalPaths runs BlastRadius and labels each member by impact level,
// for the simulator's impact-assessment phase.
func (e *Engine) CriticalPaths(ctx context.Context, seed isg.ISGL1Key, maxHops int) ([]CriticalPathEntry, error) {
	members, err := e.BlastRadius(ctx, seed, maxHops)
	if err != nil {
		return nil, err
	}
	out := make([]CriticalPathEntry, len(members))
	for i, m := range members {
		out[i] = CriticalPathEntry{Key: m.Key, Distance: m.Distance, ImpactLevel: ClassifyImpact(m.Distance)}
	}
	return out, nil
}
