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

// Package discovery implements a secondary, rebuilt-whole-under-lock
// entity index: an all-entities list plus file/type indexes over
// pkg/isg.CompactEntity, with sorted-by-name listing and cached type
// counts.
package discovery

import (
	"sort"
	"sync"
	"time"

	"github.com/kraklabs/isgraph/internal/coreerr"
	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/metrics"
)

// EntityInfo is the fully-resolved (non-compact) view returned by queries,
// resolved from a CompactEntity plus the interners.
type EntityInfo struct {
	Name     string
	FilePath string
	Kind     isg.EntityKind
	Line     int // 0 means unknown
	Column   int
}

// Index is the rebuilt-whole discovery structure. It never mutates in
// place; Rebuild swaps in a wholly new snapshot under the write lock.
type Index struct {
	mu sync.RWMutex

	all       []isg.CompactEntity
	fileIndex map[interning.FileID][]int
	typeIndex map[isg.EntityKind][]int
	typeCount map[isg.EntityKind]int

	files *interning.FileInterner
	names *interning.NameInterner

	rebuildBudget *metrics.Budget
}

// New creates an empty index bound to the given interners (so Lookup calls
// can resolve FileID/NameID back to strings).
func New(files *interning.FileInterner, names *interning.NameInterner) *Index {
	return &Index{
		files:         files,
		names:         names,
		fileIndex:     make(map[interning.FileID][]int),
		typeIndex:     make(map[isg.EntityKind][]int),
		typeCount:     make(map[isg.EntityKind]int),
		rebuildBudget: metrics.NewBudget("discovery.rebuild", 5*time.Second),
	}
}

// Rebuild replaces the index wholly from the given entities, tracked
// against its rebuild latency budget.
func (idx *Index) Rebuild(entities []*isg.Entity) error {
	return idx.rebuildBudget.Track(func() error {
		all := make([]isg.CompactEntity, len(entities))
		fileIndex := make(map[interning.FileID][]int)
		typeIndex := make(map[isg.EntityKind][]int)
		typeCount := make(map[isg.EntityKind]int)

		for i, e := range entities {
			ce := isg.ToCompact(e)
			all[i] = ce
			fileIndex[ce.FileID] = append(fileIndex[ce.FileID], i)
			typeIndex[e.Kind] = append(typeIndex[e.Kind], i)
			typeCount[e.Kind]++
		}

		idx.mu.Lock()
		idx.all = all
		idx.fileIndex = fileIndex
		idx.typeIndex = typeIndex
		idx.typeCount = typeCount
		idx.mu.Unlock()
		return nil
	})
}

func (idx *Index) resolve(ce isg.CompactEntity) EntityInfo {
	name, _ := idx.names.Lookup(ce.NameID)
	path, _ := idx.files.Lookup(ce.FileID)
	return EntityInfo{
		Name:     name,
		FilePath: path,
		Kind:     isg.EntityKind(ce.EntityType),
		Line:     int(ce.LineNumber),
		Column:   int(ce.Column),
	}
}

// ListAll returns entities of the given kind (or every kind if kind is nil)
// sorted by name for deterministic output, capped at maxResults (0 = no cap).
func (idx *Index) ListAll(kind *isg.EntityKind, maxResults int) []EntityInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var indices []int
	if kind != nil {
		indices = idx.typeIndex[*kind]
	} else {
		indices = make([]int, len(idx.all))
		for i := range idx.all {
			indices[i] = i
		}
	}

	out := make([]EntityInfo, 0, len(indices))
	for _, i := range indices {
		out = append(out, idx.resolve(idx.all[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// EntitiesInFile returns every entity defined in path, via the file index.
func (idx *Index) EntitiesInFile(path string) []EntityInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	fileID, ok := idx.files.TryLookup(path)
	if !ok {
		return nil
	}
	indices := idx.fileIndex[fileID]
	out := make([]EntityInfo, 0, len(indices))
	for _, i := range indices {
		out = append(out, idx.resolve(idx.all[i]))
	}
	return out
}

// WhereDefined returns the first entity matching name, by file-order
// iteration over the unsorted all_entities list.
func (idx *Index) WhereDefined(name string) (EntityInfo, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, ce := range idx.all {
		info := idx.resolve(ce)
		if info.Name == name {
			return info, nil
		}
	}
	return EntityInfo{}, coreerr.NotFound("no entity named " + name)
}

// CountByType returns the cached per-kind entity counts.
func (idx *Index) CountByType() map[isg.EntityKind]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[isg.EntityKind]int, len(idx.typeCount))
	for k, v := range idx.typeCount {
		out[k] = v
	}
	return out
}

// Iter returns a lazy iterator function over every entity, honoring
// pagination (offset, limit) without materializing an intermediate slice.
func (idx *Index) Iter(offset, limit int) func(yield func(EntityInfo) bool) {
	idx.mu.RLock()
	all := idx.all
	idx.mu.RUnlock()

	return func(yield func(EntityInfo) bool) {
		end := len(all)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		for i := offset; i < end; i++ {
			if !yield(idx.resolve(all[i])) {
				return
			}
		}
	}
}
