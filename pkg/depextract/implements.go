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

import (
	"regexp"

	"github.com/kraklabs/isgraph/pkg/isg"
)

// implementsPatterns recognizes the handful of source shapes that attach an
// impl-like construct to a trait/interface across the supported languages,
// matched against an entity's header signature. A textual
// "X implements/extends/impl Y" scan, rather than full Go method-set
// matching (which would require a full program image), so it works the
// same way across languages without needing full type information.
var implementsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^impl\s+(\w+)\s+for\s+(\w+)`),                 // Rust: impl Trait for Type
	regexp.MustCompile(`class\s+(\w+)\s*:\s*(?:public\s+)?(\w+)`),     // C++/C#: class Type : Iface
	regexp.MustCompile(`class\s+(\w+)\s+implements\s+(\w+)`),         // Java/PHP: class Type implements Iface
	regexp.MustCompile(`class\s+(\w+)(?:<[^>]*>)?\s+implements\s+(\w+)`), // TS generics
}

// ExtractImplements derives Implements edges by matching each entity's
// signature header against implementsPatterns and resolving both sides
// against the file's known entities. Rust's "impl Trait for Type" binds
// (trait, type) in capture order 1,2; the class-based shapes bind
// (type, interface) in order 1,2, so below the two roles are taken from
// the capture positions according to the entity's kind.
func ExtractImplements(fileEntities []FileEntity) []isg.Edge {
	byName := make(map[string]isg.Entity, len(fileEntities))
	for _, fe := range fileEntities {
		byName[fe.Entity.Name] = fe.Entity
	}

	var edges []isg.Edge
	for _, fe := range fileEntities {
		if fe.Entity.Kind != isg.KindImplBlock && fe.Entity.Kind != isg.KindClass {
			continue
		}
		for _, pattern := range implementsPatterns {
			m := pattern.FindStringSubmatch(fe.Entity.Signature.Raw)
			if m == nil {
				continue
			}
			var typeName, ifaceName string
			if fe.Entity.Kind == isg.KindImplBlock {
				ifaceName, typeName = m[1], m[2]
			} else {
				typeName, ifaceName = m[1], m[2]
			}
			typeEntity, typeOK := byName[typeName]
			ifaceEntity, ifaceOK := byName[ifaceName]
			if !typeOK || !ifaceOK {
				continue
			}
			edges = append(edges, isg.Edge{From: typeEntity.Key, To: ifaceEntity.Key, Kind: isg.EdgeImplements})
			break
		}
	}
	return edges
}
