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

// Package store is the persistent store: a CozoDB-backed
// CodeGraph/DependencyEdges relation pair for corpora that outgrow
// comfortable in-memory size. EnsureSchema follows an idempotent
// create-if-absent pattern so repeated Open calls never error.
package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kraklabs/isgraph/internal/coreerr"
	cozo "github.com/kraklabs/isgraph/pkg/cozodb"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/metrics"
)

// Store wraps a CozoDB instance scoped to the CodeGraph/DependencyEdges
// relations (case-sensitive relation names).
type Store struct {
	db      *cozo.DB
	insertB *metrics.Budget
	batchB  *metrics.Budget
}

// Config configures where and how the embedded database is opened.
type Config struct {
	// Path is the application-specified directory CozoDB persists to.
	Path string
	// Engine is "mem", "sqlite" or "rocksdb"; defaults to "rocksdb".
	Engine string
}

// Open opens (creating if absent) the store at cfg.Path and ensures its
// schema exists. Schema creation is idempotent at this boundary: callers
// may call Open/EnsureSchema repeatedly without error.
func Open(cfg Config) (*Store, error) {
	engine := cfg.Engine
	if engine == "" {
		engine = "rocksdb"
	}
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, coreerr.Wrap(coreerr.KindStorage, "create data dir", err)
		}
	}
	db, err := cozo.New(engine, cfg.Path, nil)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindStorage, "open cozodb", err)
	}
	s := &Store{
		db:      &db,
		insertB: metrics.NewBudget("store.insert_entity", 5*time.Millisecond),
		batchB:  metrics.NewBudget("store.batch_insert_edges", 50*time.Millisecond),
	}
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the CodeGraph and DependencyEdges relations if they
// don't exist. Safe to call repeatedly.
func (s *Store) EnsureSchema() error {
	relations := []string{
		`:create CodeGraph {
			isgl1_key: String
			=>
			current_ind: Bool,
			future_ind: Bool,
			future_action: String,
			current_code: String?,
			future_code: String?,
			interface_signature: String,
			tdd_class: String,
			lsp_metadata: String default '',
			content_hash: String,
			created_at: Float,
			modified_at: Float,
		}`,
		`:create DependencyEdges {
			from_key: String,
			to_key: String,
			edge_type: String
			=>
			source_location: String default '',
			created_at: Float,
		}`,
	}
	for _, rel := range relations {
		if _, err := s.db.Run(rel, nil); err != nil {
			if strings.Contains(err.Error(), "already exists") ||
				strings.Contains(err.Error(), "conflicts with an existing one") {
				continue
			}
			return coreerr.Wrap(coreerr.KindStorage, "create relation", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutEntity upserts one entity's row into CodeGraph, tracked against the
// store's single-insert latency budget.
func (s *Store) PutEntity(ctx context.Context, e isg.Entity) error {
	return s.insertB.Track(func() error {
		return s.putEntity(e)
	})
}

func (s *Store) putEntity(e isg.Entity) error {
	now := float64(time.Now().UnixNano()) / 1e9
	params := map[string]any{
		"isgl1_key":            string(e.Key),
		"current_ind":          e.Temporal.CurrentInd,
		"future_ind":           e.Temporal.FutureInd,
		"future_action":        e.Temporal.Action.String(),
		"current_code":         derefOr(e.CurrentCode, ""),
		"future_code":          derefOr(e.FutureCode, ""),
		"interface_signature":  e.Signature.Raw,
		"tdd_class":            e.TddClass.String(),
		"content_hash":         e.ContentHash,
		"created_at":           now,
		"modified_at":          now,
	}
	script := `?[isgl1_key, current_ind, future_ind, future_action, current_code, future_code,
		interface_signature, tdd_class, content_hash, created_at, modified_at] <- [[
		$isgl1_key, $current_ind, $future_ind, $future_action, $current_code, $future_code,
		$interface_signature, $tdd_class, $content_hash, $created_at, $modified_at]]
		:put CodeGraph {
			isgl1_key => current_ind, future_ind, future_action, current_code, future_code,
			interface_signature, tdd_class, content_hash, created_at, modified_at
		}`
	_, err := s.db.Run(script, params)
	if err != nil {
		return coreerr.Wrap(coreerr.KindStorage, "put entity", err)
	}
	return nil
}

// PutEdges batch-inserts edges into DependencyEdges, tracked against the
// store's 50ms batch budget; each call is checked against that limit
// whatever its edge count. Duplicate (from,to,edge_type) rows are
// idempotent by construction: :put overwrites rather than erroring.
func (s *Store) PutEdges(ctx context.Context, edges []isg.Edge) error {
	return s.batchB.Track(func() error {
		now := float64(time.Now().UnixNano()) / 1e9
		for _, e := range edges {
			script := `?[from_key, to_key, edge_type, source_location, created_at] <- [[
				$from_key, $to_key, $edge_type, $source_location, $created_at]]
				:put DependencyEdges { from_key, to_key, edge_type => source_location, created_at }`
			_, err := s.db.Run(script, map[string]any{
				"from_key":        string(e.From),
				"to_key":          string(e.To),
				"edge_type":       e.Kind.String(),
				"source_location": e.SourceLocation,
				"created_at":      now,
			})
			if err != nil {
				return coreerr.Wrap(coreerr.KindStorage, "put edge", err)
			}
		}
		return nil
	})
}

// Forward returns the to_keys of every DependencyEdges row whose from_key
// is key, used by pkg/query when operating in persistent-store mode.
func (s *Store) Forward(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	rows, err := s.db.RunReadOnly(
		`?[to_key] := *DependencyEdges{from_key: $from_key, to_key}`,
		map[string]any{"from_key": string(key)})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindStorage, "forward query", err)
	}
	return keysFromRows(rows)
}

// Reverse returns the from_keys of every DependencyEdges row whose to_key
// is key.
func (s *Store) Reverse(ctx context.Context, key isg.ISGL1Key) ([]isg.ISGL1Key, error) {
	rows, err := s.db.RunReadOnly(
		`?[from_key] := *DependencyEdges{from_key, to_key: $to_key}`,
		map[string]any{"to_key": string(key)})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindStorage, "reverse query", err)
	}
	return keysFromRows(rows)
}

func keysFromRows(rows cozo.Rows) ([]isg.ISGL1Key, error) {
	out := make([]isg.ISGL1Key, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		if len(row) == 0 {
			continue
		}
		s, ok := row[0].(string)
		if !ok {
			return nil, coreerr.Wrap(coreerr.KindStorage, fmt.Sprintf("unexpected row value %v", row[0]), nil)
		}
		out = append(out, isg.ISGL1Key(s))
	}
	return out, nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
