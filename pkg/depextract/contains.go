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

package depextract

import "github.com/kraklabs/isgraph/pkg/isg"

// containerKinds is the set of entity kinds that lexically contain other
// entities. Parent-child is approximated with line-range nesting over the
// entities already emitted for the file, which is exact for the common
// one-level nesting of module/class/struct -> function/method.
var containerKinds = map[isg.EntityKind]bool{
	isg.KindModule:    true,
	isg.KindNamespace: true,
	isg.KindClass:     true,
	isg.KindStruct:    true,
	isg.KindTrait:     true,
	isg.KindInterface: true,
	isg.KindImplBlock: true,
}

// ExtractContains emits a Contains edge from each container entity to every
// other entity in the file whose line range it strictly encloses, choosing
// the narrowest enclosing container when several nest.
func ExtractContains(fileEntities []FileEntity) []isg.Edge {
	var edges []isg.Edge
	for _, child := range fileEntities {
		var best *isg.Entity
		bestWidth := -1
		for i := range fileEntities {
			parent := fileEntities[i].Entity
			if parent.Key == child.Entity.Key || !containerKinds[parent.Kind] {
				continue
			}
			if !strictlyEncloses(parent.Location, child.Entity.Location) {
				continue
			}
			width := parent.Location.LineEnd - parent.Location.LineStart
			if best == nil || width < bestWidth {
				p := parent
				best = &p
				bestWidth = width
			}
		}
		if best != nil {
			edges = append(edges, isg.Edge{From: best.Key, To: child.Entity.Key, Kind: isg.EdgeContains})
		}
	}
	return edges
}

func strictlyEncloses(parent, child isg.Location) bool {
	if parent.LineStart == child.LineStart && parent.LineEnd == child.LineEnd {
		return false
	}
	return parent.LineStart <= child.LineStart && child.LineEnd <= parent.LineEnd
}
