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

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// typeLikeKinds is the set of entity kinds a Uses edge may point at:
// parameter, field, and return types reference types, not functions.
var typeLikeKinds = map[isg.EntityKind]bool{
	isg.KindStruct:    true,
	isg.KindClass:     true,
	isg.KindInterface: true,
	isg.KindTrait:     true,
	isg.KindEnum:      true,
	isg.KindTypedef:   true,
}

// ExtractUses derives Uses edges from the signature text of every function,
// method or field-bearing entity in a file: any type-like entity named in
// the signature is a used type. A plain identifier scan over the signature
// text, rather than per-language receiver/field parsing, so it applies
// uniformly across languages.
func ExtractUses(fileEntities []FileEntity) []isg.Edge {
	typesByName := make(map[string][]isg.Entity)
	for _, fe := range fileEntities {
		if typeLikeKinds[fe.Entity.Kind] {
			typesByName[fe.Entity.Name] = append(typesByName[fe.Entity.Name], fe.Entity)
		}
	}
	if len(typesByName) == 0 {
		return nil
	}

	var edges []isg.Edge
	for _, fe := range fileEntities {
		if typeLikeKinds[fe.Entity.Kind] {
			continue // a type doesn't "use" itself via its own signature
		}
		seen := make(map[isg.ISGL1Key]bool)
		for _, tok := range identifierPattern.FindAllString(fe.Entity.Signature.Raw, -1) {
			if tok == fe.Entity.Name {
				continue
			}
			for _, target := range typesByName[tok] {
				if seen[target.Key] {
					continue
				}
				seen[target.Key] = true
				edges = append(edges, isg.Edge{From: fe.Entity.Key, To: target.Key, Kind: isg.EdgeUses})
			}
		}
	}
	return edges
}
