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

package isg

import (
	"sync"

	"github.com/kraklabs/isgraph/internal/coreerr"
)

// UpsertResult tells the caller whether upsert_node inserted a new node or
// updated an existing one.
type UpsertResult uint8

const (
	Inserted UpsertResult = iota
	Updated
)

// Graph is the in-memory ISG: a single reader-writer lock guards node and
// edge storage. Writes acquire the exclusive lock; reads acquire the
// shared lock.
type Graph struct {
	mu sync.RWMutex

	byKey     map[ISGL1Key]*Entity
	byHash    map[string][]ISGL1Key
	byName    map[string][]ISGL1Key
	out       map[ISGL1Key]map[edgeIdentity]Edge
	in        map[ISGL1Key]map[edgeIdentity]Edge
	danglingTo map[ISGL1Key]bool // edge targets recorded but not (yet) present as nodes
}

// NewGraph creates an empty in-memory ISG.
func NewGraph() *Graph {
	return &Graph{
		byKey:      make(map[ISGL1Key]*Entity),
		byHash:     make(map[string][]ISGL1Key),
		byName:     make(map[string][]ISGL1Key),
		out:        make(map[ISGL1Key]map[edgeIdentity]Edge),
		in:         make(map[ISGL1Key]map[edgeIdentity]Edge),
		danglingTo: make(map[ISGL1Key]bool),
	}
}

// UpsertNode inserts or updates a node keyed by its ISGL1 key.
// A node is considered the "same" node across re-ingest when its ISGL1 key
// matches; content_hash is held only in a secondary index, so entities with
// equal content_hash but different keys are stored as separate nodes.
// content_hash changes are tracked in that index so lookups by hash stay
// valid after an update.
func (g *Graph) UpsertNode(e Entity) (UpsertResult, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.byKey[e.Key]
	if ok {
		g.removeFromIndex(g.byHash, existing.ContentHash, e.Key)
		g.removeFromIndex(g.byName, existing.Name, e.Key)
	}

	cp := e
	g.byKey[e.Key] = &cp
	g.byHash[e.ContentHash] = append(g.byHash[e.ContentHash], e.Key)
	g.byName[e.Name] = append(g.byName[e.Name], e.Key)
	delete(g.danglingTo, e.Key)

	if ok {
		return Updated, nil
	}
	return Inserted, nil
}

func (g *Graph) removeFromIndex(index map[string][]ISGL1Key, k string, key ISGL1Key) {
	keys := index[k]
	for i, existingKey := range keys {
		if existingKey == key {
			index[k] = append(keys[:i], keys[i+1:]...)
			return
		}
	}
}

// InsertEdge adds a directed edge between known nodes. If either endpoint
// does not exist as a node, the edge is still recorded (per ISG invariant 2
// - dangling references are flagged, never silently dropped), and the
// missing endpoint is marked dangling.
func (g *Graph) InsertEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.byKey[e.From]; !ok {
		g.danglingTo[e.From] = true
	}
	if _, ok := g.byKey[e.To]; !ok {
		g.danglingTo[e.To] = true
	}

	if g.out[e.From] == nil {
		g.out[e.From] = make(map[edgeIdentity]Edge)
	}
	if g.in[e.To] == nil {
		g.in[e.To] = make(map[edgeIdentity]Edge)
	}
	id := e.identity()
	// Idempotence: duplicate (from,to,kind) edges coalesce, later
	// source_location wins.
	g.out[e.From][id] = e
	g.in[e.To][id] = e
}

// IsDangling reports whether key was referenced by an edge but never
// inserted as a node.
func (g *Graph) IsDangling(key ISGL1Key) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.danglingTo[key]
}

// GetByKey looks up an entity by its ISGL1 key.
func (g *Graph) GetByKey(key ISGL1Key) (*Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byKey[key]
	return e, ok
}

// GetByContentHash returns every entity currently stored under hash.
func (g *Graph) GetByContentHash(hash string) []*Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.byHash[hash]
	out := make([]*Entity, 0, len(keys))
	for _, k := range keys {
		if e, ok := g.byKey[k]; ok {
			out = append(out, e)
		}
	}
	return out
}

// GetByName returns every entity currently stored under name (many-to-many).
func (g *Graph) GetByName(name string) []*Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := g.byName[name]
	out := make([]*Entity, 0, len(keys))
	for _, k := range keys {
		if e, ok := g.byKey[k]; ok {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns the outgoing edges from key.
func (g *Graph) OutEdges(key ISGL1Key) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m := g.out[key]
	out := make([]Edge, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// InEdges returns the incoming edges into key.
func (g *Graph) InEdges(key ISGL1Key) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m := g.in[key]
	out := make([]Edge, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// NodeCount returns the total live node count in O(1).
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byKey)
}

// EdgeCount returns the total live edge count. It sums per-node edge-map
// lengths, so its cost is linear in the number of nodes with outgoing
// edges; no running total is kept.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, m := range g.out {
		n += len(m)
	}
	return n
}

// ApplyTemporalChange updates key's temporal state per the
// TemporalState compatibility matrix and re-validates the result.
func (g *Graph) ApplyTemporalChange(key ISGL1Key, action Action, futureCode *string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.byKey[key]
	if !ok {
		return coreerr.NotFound("no entity with key " + string(key))
	}

	next, err := ApplyChange(e.Temporal, action)
	if err != nil {
		return err
	}

	updated := *e
	updated.Temporal = next
	if futureCode != nil {
		updated.FutureCode = futureCode
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	g.byKey[key] = &updated
	return nil
}

// Keys returns every live ISGL1 key, useful for iteration/snapshots.
func (g *Graph) Keys() []ISGL1Key {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]ISGL1Key, 0, len(g.byKey))
	for k := range g.byKey {
		keys = append(keys, k)
	}
	return keys
}
