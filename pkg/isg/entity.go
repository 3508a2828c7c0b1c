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
	"time"

	"github.com/kraklabs/isgraph/internal/coreerr"
	"github.com/kraklabs/isgraph/pkg/interning"
)

// Location pins an entity to a file and line range. FileID is an interned
// index; 0 means unknown for line/column.
type Location struct {
	FileID    interning.FileID
	LineStart int
	LineEnd   int
	Column    int
}

// ImplBlockData carries the fields meaningful only to ImplBlock entities.
type ImplBlockData struct {
	Trait   string // optional; empty means no trait/interface named
	ForType string // required
}

// Entity is the strongly typed, variant-based representation of one code
// node in the graph. KindData is non-nil only for kinds that need extra
// fields (currently ImplBlock); other kinds carry nil.
type Entity struct {
	Key      ISGL1Key
	Kind     EntityKind
	Name     string
	NameID   interning.NameID
	Signature InterfaceSignature
	Location Location
	Language Language

	ContentHash string

	Temporal TemporalState

	CurrentCode *string
	FutureCode  *string

	TddClass  TddClass
	TddScores TddScores

	KindData any // *ImplBlockData for KindImplBlock, nil otherwise

	// Metadata is a free-form escape hatch for entity-level key/value data
	// that doesn't warrant its own typed field.
	Metadata map[string]string
}

// NewLocatedEntity builds an entity discovered during ingest: its key is
// derived from its location, its temporal state is InitialState, and its
// content hash is derived from the signature. currentCode is the entity's
// source body, required because InitialState sets current_ind = true.
func NewLocatedEntity(lang Language, kind EntityKind, name string, nameID interning.NameID, loc Location, path, signature, currentCode string) Entity {
	sig := InterfaceSignature{Raw: signature}
	if lang == LangGo {
		sig.Go = NewGoSignature(signature)
	}
	return Entity{
		Key:         LocatedKey(lang, kind, name, path, loc.LineStart, loc.LineEnd),
		Kind:        kind,
		Name:        name,
		NameID:      nameID,
		Signature:   sig,
		Location:    loc,
		Language:    lang,
		ContentHash: ContentHash(signature),
		Temporal:    InitialState(),
		CurrentCode: &currentCode,
		TddClass:    ClassifyTdd(kind, name, path),
	}
}

// NewProposedEntity builds a not-yet-existing entity (simulator Add/Create
// path): its key carries a content hash over (path, name, kind, timestamp).
func NewProposedEntity(path, name string, kind EntityKind, nameID interning.NameID, lang Language, timestamp time.Time, proposedCode string) Entity {
	return Entity{
		Key:         ProposedKey(path, name, kind, timestamp),
		Kind:        kind,
		Name:        name,
		NameID:      nameID,
		Location:    Location{},
		Language:    lang,
		ContentHash: ContentHash(proposedCode),
		Temporal:    CreateState(),
		FutureCode:  &proposedCode,
		TddClass:    ClassifyTdd(kind, name, path),
	}
}

// Validate is the pure invariant check that must be called after every
// mutation: it checks the temporal-state matrix plus the
// current_code/future_code presence rules.
func (e *Entity) Validate() error {
	if e.Key == "" {
		return coreerr.Validation("isgl1_key", "non-empty", "", "entity has no key")
	}
	if err := e.Temporal.Validate(); err != nil {
		return err
	}
	if e.Temporal.CurrentInd && e.CurrentCode == nil {
		return coreerr.Validation("current_code", "present", "nil", "current_ind is true but current_code is absent")
	}
	if e.Temporal.FutureInd && e.FutureCode == nil {
		return coreerr.Validation("future_code", "present", "nil", "future_ind is true but future_code is absent")
	}
	if e.Kind == KindImplBlock {
		data, ok := e.KindData.(*ImplBlockData)
		if !ok || data == nil || data.ForType == "" {
			return coreerr.Validation("kind_data", "*ImplBlockData with ForType", "missing", "ImplBlock entity requires a for_type")
		}
	}
	if !e.Signature.Go.Valid() {
		return coreerr.Validation("signature.go", "well-formed params/results", "malformed", "Go signature has an untyped parameter or mixed named/unnamed results")
	}
	return nil
}
