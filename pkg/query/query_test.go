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

package query

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/kraklabs/isgraph/pkg/isg"
)

func mustEntity(t *testing.T, name, path string, line int) isg.Entity {
	t.Helper()
	return isg.NewLocatedEntity(isg.LangGo, isg.KindFunction, name, interning.NameID(0),
		isg.Location{LineStart: line, LineEnd: line}, path, "func "+name+"()", "func "+name+"() {}")
}

func newTestEngine(t *testing.T, entities []isg.Entity, edges []isg.Edge) (*Engine, map[string]isg.ISGL1Key) {
	t.Helper()
	g := isg.NewGraph()
	keys := make(map[string]isg.ISGL1Key, len(entities))
	for _, e := range entities {
		_, err := g.UpsertNode(e)
		require.NoError(t, err)
		keys[e.Name] = e.Key
	}
	for _, e := range edges {
		g.InsertEdge(e)
	}
	return New(GraphSource{Graph: g}), keys
}

func callEdge(from, to isg.ISGL1Key) isg.Edge {
	return isg.Edge{From: from, To: to, Kind: isg.EdgeCalls}
}

// TestChainDependencies reproduces a minimal call chain A -> B -> C.
func TestChainDependencies(t *testing.T) {
	a := mustEntity(t, "A", "chain.go", 1)
	b := mustEntity(t, "B", "chain.go", 5)
	c := mustEntity(t, "C", "chain.go", 10)
	engine, keys := newTestEngine(t, []isg.Entity{a, b, c}, []isg.Edge{
		callEdge(a.Key, b.Key),
		callEdge(b.Key, c.Key),
	})

	fwd, err := engine.ForwardDependencies(t.Context(), keys["A"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []isg.ISGL1Key{keys["B"]}, fwd)

	rev, err := engine.ReverseDependencies(t.Context(), keys["C"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []isg.ISGL1Key{keys["B"]}, rev)

	closure, err := engine.TransitiveClosure(t.Context(), keys["A"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []isg.ISGL1Key{keys["B"], keys["C"]}, closure)

	dist, reachable, err := engine.ShortestPathDistance(t.Context(), keys["A"], keys["C"])
	require.NoError(t, err)
	assert.True(t, reachable)
	assert.Equal(t, 2, dist)
}

// TestDiamondDependencies reproduces a diamond: A -> B, A -> C, B -> D, C -> D.
func TestDiamondDependencies(t *testing.T) {
	a := mustEntity(t, "A", "diamond.go", 1)
	b := mustEntity(t, "B", "diamond.go", 5)
	c := mustEntity(t, "C", "diamond.go", 10)
	d := mustEntity(t, "D", "diamond.go", 15)
	engine, keys := newTestEngine(t, []isg.Entity{a, b, c, d}, []isg.Edge{
		callEdge(a.Key, b.Key), callEdge(a.Key, c.Key),
		callEdge(b.Key, d.Key), callEdge(c.Key, d.Key),
	})

	closure, err := engine.TransitiveClosure(t.Context(), keys["A"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []isg.ISGL1Key{keys["B"], keys["C"], keys["D"]}, closure,
		"D is reachable via two paths but must appear once")

	radius1, err := engine.BlastRadius(t.Context(), keys["A"], 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []BlastEntry{{Key: keys["B"], Distance: 1}, {Key: keys["C"], Distance: 1}}, radius1)

	radius2, err := engine.BlastRadius(t.Context(), keys["A"], 2)
	require.NoError(t, err)
	var dDistance int
	for _, entry := range radius2 {
		if entry.Key == keys["D"] {
			dDistance = entry.Distance
		}
	}
	assert.Equal(t, 2, dDistance, "D's shortest distance from A is 2, not 3")
}

// TestCycleDependencies reproduces a 3-node cycle A -> B -> C -> A.
func TestCycleDependencies(t *testing.T) {
	a := mustEntity(t, "A", "cycle.go", 1)
	b := mustEntity(t, "B", "cycle.go", 5)
	c := mustEntity(t, "C", "cycle.go", 10)
	engine, keys := newTestEngine(t, []isg.Entity{a, b, c}, []isg.Edge{
		callEdge(a.Key, b.Key), callEdge(b.Key, c.Key), callEdge(c.Key, a.Key),
	})

	closure, err := engine.TransitiveClosure(t.Context(), keys["A"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []isg.ISGL1Key{keys["A"], keys["B"], keys["C"]}, closure,
		"a cycle back to the seed must terminate, not loop forever, and the seed reappears once")
}

func TestBlastRadiusZeroHopsIsEmpty(t *testing.T) {
	a := mustEntity(t, "A", "x.go", 1)
	b := mustEntity(t, "B", "x.go", 5)
	engine, keys := newTestEngine(t, []isg.Entity{a, b}, []isg.Edge{callEdge(a.Key, b.Key)})

	radius, err := engine.BlastRadius(t.Context(), keys["A"], 0)
	require.NoError(t, err)
	assert.Empty(t, radius)
}

func TestShortestPathDistanceUnreachable(t *testing.T) {
	a := mustEntity(t, "A", "x.go", 1)
	b := mustEntity(t, "B", "x.go", 5)
	engine, keys := newTestEngine(t, []isg.Entity{a, b}, nil)

	_, reachable, err := engine.ShortestPathDistance(t.Context(), keys["A"], keys["B"])
	require.NoError(t, err)
	assert.False(t, reachable)
}

func TestShortestPathDistanceSameNodeIsZero(t *testing.T) {
	a := mustEntity(t, "A", "x.go", 1)
	engine, keys := newTestEngine(t, []isg.Entity{a}, nil)

	dist, reachable, err := engine.ShortestPathDistance(t.Context(), keys["A"], keys["A"])
	require.NoError(t, err)
	assert.True(t, reachable)
	assert.Equal(t, 0, dist)
}

func TestClassifyImpactBuckets(t *testing.T) {
	cases := []struct {
		length int
		want   ImpactLevel
	}{
		{0, ImpactLow}, {1, ImpactLow}, {2, ImpactLow},
		{3, ImpactMedium}, {5, ImpactMedium},
		{6, ImpactHigh}, {10, ImpactHigh},
		{11, ImpactCritical}, {100, ImpactCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyImpact(tc.length), "pathLength=%d", tc.length)
	}
}

func TestCriticalPathsLabelsEveryBlastRadiusMember(t *testing.T) {
	a := mustEntity(t, "A", "x.go", 1)
	b := mustEntity(t, "B", "x.go", 5)
	c := mustEntity(t, "C", "x.go", 10)
	engine, keys := newTestEngine(t, []isg.Entity{a, b, c}, []isg.Edge{
		callEdge(a.Key, b.Key), callEdge(b.Key, c.Key),
	})

	paths, err := engine.CriticalPaths(t.Context(), keys["A"], 5)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	sort.Slice(paths, func(i, j int) bool { return paths[i].Distance < paths[j].Distance })
	assert.Equal(t, keys["B"], paths[0].Key)
	assert.Equal(t, ImpactLow, paths[0].ImpactLevel)
	assert.Equal(t, keys["C"], paths[1].Key)
	assert.Equal(t, ImpactLow, paths[1].ImpactLevel)
}
