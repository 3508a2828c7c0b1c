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
	"fmt"

	"github.com/kraklabs/isgraph/internal/coreerr"
)

// Action is the pending change recorded against an entity's future state.
type Action uint8

const (
	ActionNone Action = iota
	ActionCreate
	ActionEdit
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionCreate:
		return "Create"
	case ActionEdit:
		return "Edit"
	case ActionDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// TemporalState is the (current_ind, future_ind, action) triple governing an
// entity's lifecycle.
type TemporalState struct {
	CurrentInd bool
	FutureInd  bool
	Action     Action
}

// InitialState is the state the parser assigns to every entity discovered
// during ingest: present, future unknown.
func InitialState() TemporalState {
	return TemporalState{CurrentInd: true, FutureInd: false, Action: ActionNone}
}

// Unchanged re-stamps a present entity as known-unchanged going forward.
func Unchanged() TemporalState {
	return TemporalState{CurrentInd: true, FutureInd: true, Action: ActionNone}
}

// CreateState stamps a not-yet-existing entity as proposed for creation.
func CreateState() TemporalState {
	return TemporalState{CurrentInd: false, FutureInd: true, Action: ActionCreate}
}

// EditState stamps a present entity as proposed for modification.
func EditState() TemporalState {
	return TemporalState{CurrentInd: true, FutureInd: true, Action: ActionEdit}
}

// DeleteState stamps a present entity as proposed for removal.
func DeleteState() TemporalState {
	return TemporalState{CurrentInd: true, FutureInd: false, Action: ActionDelete}
}

// Validate checks ts against the (current_ind, future_ind, action)
// compatibility matrix. It does not know about current_code/future_code;
// Entity.Validate checks those.
func (ts TemporalState) Validate() error {
	switch {
	case ts.CurrentInd && ts.FutureInd:
		if ts.Action != ActionNone && ts.Action != ActionEdit {
			return coreerr.Temporal("action", "None or Edit", ts.Action.String(),
				"current=true,future=true allows only None or Edit")
		}
	case ts.CurrentInd && !ts.FutureInd:
		if ts.Action != ActionDelete {
			return coreerr.Temporal("action", "Delete", ts.Action.String(),
				"current=true,future=false allows only Delete")
		}
	case !ts.CurrentInd && ts.FutureInd:
		if ts.Action != ActionCreate {
			return coreerr.Temporal("action", "Create", ts.Action.String(),
				"current=false,future=true allows only Create")
		}
	default: // !current && !future
		return coreerr.Temporal("temporal_state", "current or future true", "both false",
			"(current=false,future=false) is unreachable")
	}
	return nil
}

// ApplyChange computes the next TemporalState for a simulator-driven
// transition: in-memory only, re-stamps temporal_state without touching
// the persistent store.
func ApplyChange(ts TemporalState, action Action) (TemporalState, error) {
	var next TemporalState
	switch action {
	case ActionCreate:
		next = TemporalState{CurrentInd: ts.CurrentInd, FutureInd: true, Action: ActionCreate}
	case ActionEdit:
		next = TemporalState{CurrentInd: true, FutureInd: true, Action: ActionEdit}
	case ActionDelete:
		next = TemporalState{CurrentInd: true, FutureInd: false, Action: ActionDelete}
	case ActionNone:
		next = TemporalState{CurrentInd: ts.CurrentInd, FutureInd: ts.FutureInd, Action: ActionNone}
	default:
		return TemporalState{}, coreerr.Temporal("action", "Create|Edit|Delete|None", fmt.Sprintf("%v", action), "unknown action")
	}
	if err := next.Validate(); err != nil {
		return TemporalState{}, err
	}
	return next, nil
}
