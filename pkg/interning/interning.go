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

// Package interning provides bidirectional string<->integer identity maps
// used to keep file paths and entity names out of hot-path comparisons.
package interning

import "sync"

// FileID identifies an interned file path. NameID identifies an interned
// entity name. They are distinct types so the two interners can't be
// accidentally swapped at a call site.
type FileID uint32
type NameID uint32

// Interner is a generic, thread-safe, append-only string interner. The zero
// value is not usable; use New.
type Interner[ID ~uint32] struct {
	mu      sync.RWMutex
	strToID map[string]ID
	idToStr []string
}

// New creates an empty interner.
func New[ID ~uint32]() *Interner[ID] {
	return &Interner[ID]{
		strToID: make(map[string]ID),
	}
}

// Intern returns the ID for s, assigning a new one on first use. Amortized
// O(1): a read-locked fast path handles repeat lookups, falling back to a
// write lock only when s hasn't been seen before.
func (in *Interner[ID]) Intern(s string) ID {
	in.mu.RLock()
	if id, ok := in.strToID[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.strToID[s]; ok {
		return id
	}
	id := ID(len(in.idToStr))
	in.idToStr = append(in.idToStr, s)
	in.strToID[s] = id
	return id
}

// Lookup returns the string for id. Never panics: an unknown id returns
// ("", false).
func (in *Interner[ID]) Lookup(id ID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	idx := int(id)
	if idx < 0 || idx >= len(in.idToStr) {
		return "", false
	}
	return in.idToStr[idx], true
}

// TryLookup returns the ID already assigned to s, without interning it.
func (in *Interner[ID]) TryLookup(s string) (ID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.strToID[s]
	return id, ok
}

// Len returns the number of distinct strings interned so far.
func (in *Interner[ID]) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.idToStr)
}

// FileInterner interns file paths.
type FileInterner = Interner[FileID]

// NameInterner interns entity names.
type NameInterner = Interner[NameID]

// NewFileInterner creates an empty file-path interner.
func NewFileInterner() *FileInterner { return New[FileID]() }

// NewNameInterner creates an empty entity-name interner.
func NewNameInterner() *NameInterner { return New[NameID]() }
