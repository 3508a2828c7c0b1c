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
	"github.com/kraklabs/isgraph/pkg/interning"
)

// CompactEntity is the 24-byte, 8-byte-aligned form used by the discovery
// index. Field order and types are chosen so the Go compiler
// lays them out with no padding beyond the documented 3-byte pad after
// EntityType: four u32s (16 bytes) + (u8 + 3 pad) + u32 = 24 bytes.
type CompactEntity struct {
	_          [0]uint64 // zero-size; raises the struct's alignment to 8
	NameID     interning.NameID
	FileID     interning.FileID
	LineNumber uint32
	Column     uint32
	EntityType uint8
	_pad       [3]byte
	Reserved   uint32
}

// ToCompact projects a full Entity down to its CompactEntity form for the
// discovery index.
func ToCompact(e *Entity) CompactEntity {
	return CompactEntity{
		NameID:     e.NameID,
		FileID:     e.Location.FileID,
		LineNumber: uint32(e.Location.LineStart),
		Column:     uint32(e.Location.Column),
		EntityType: uint8(e.Kind),
	}
}
