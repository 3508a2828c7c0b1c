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

package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kraklabs/isgraph/pkg/depextract"
	"github.com/kraklabs/isgraph/pkg/discovery"
	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/parsefront"
	"github.com/kraklabs/isgraph/pkg/store"
)

// ProgressCallback reports current/total item counts plus a phase label
// ("parsing", "extracting", "writing") as a run progresses.
type ProgressCallback func(current, total int64, phase string)

// Result summarizes one ingestion run.
type Result struct {
	FilesProcessed   int
	ParseErrors      int
	EntitiesExtracted int
	EdgesExtracted   int
	CallsEdges       int
	UsesEdges        int
	ImplementsEdges  int
	ContainsEdges    int
	ParseDuration    time.Duration
	ExtractDuration  time.Duration
	WriteDuration    time.Duration
	TotalDuration    time.Duration
}

// Pipeline orchestrates local ingestion: load -> parse -> extract edges ->
// upsert into the in-memory ISG -> optional persistent store -> discovery
// index rebuild.
type Pipeline struct {
	config Config
	logger *slog.Logger

	parser *parsefront.Parser
	graph  *isg.Graph
	index  *discovery.Index
	store  *store.Store

	files *interning.FileInterner
	names *interning.NameInterner

	onProgress ProgressCallback

	mu       sync.Mutex
	fileKeys map[string][]isg.ISGL1Key // path -> entity keys last seen there, for delta.go eviction
}

// New creates a Pipeline. A nil logger defaults to slog.Default(); when
// cfg.StorePath is set, New opens the persistent store immediately and
// returns any error from opening it.
func New(cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files := interning.NewFileInterner()
	names := interning.NewNameInterner()

	p := &Pipeline{
		config: cfg,
		logger: logger,
		parser:   parsefront.New(logger),
		graph:    isg.NewGraph(),
		index:    discovery.New(files, names),
		files:    files,
		names:    names,
		fileKeys: make(map[string][]isg.ISGL1Key),
	}

	if cfg.StorePath != "" {
		s, err := store.Open(store.Config{Path: cfg.StorePath})
		if err != nil {
			return nil, err
		}
		p.store = s
	}
	return p, nil
}

// SetProgressCallback installs cb for progress reporting during Run.
func (p *Pipeline) SetProgressCallback(cb ProgressCallback) { p.onProgress = cb }

// Graph returns the in-memory ISG the pipeline writes to, so a caller (e.g.
// pkg/query, pkg/simulate) can run operations against it after Run.
func (p *Pipeline) Graph() *isg.Graph { return p.graph }

// Index returns the discovery index rebuilt by the most recent Run.
func (p *Pipeline) Index() *discovery.Index { return p.index }

// EvictFile marks every entity last seen in path as deleted: transitions
// each to (true,false,Delete) before the entity is dropped from discovery
// on the next Rebuild. Used by delta.go for files git reports as removed.
func (p *Pipeline) EvictFile(path string) error {
	p.mu.Lock()
	keys := p.fileKeys[path]
	delete(p.fileKeys, path)
	p.mu.Unlock()

	for _, k := range keys {
		if err := p.graph.ApplyTemporalChange(k, isg.ActionDelete, nil); err != nil {
			return err
		}
	}
	return nil
}

// liveEntities snapshots every entity currently in the graph except those
// marked for deletion, for a full discovery reindex after an eviction
// changes entities Run didn't itself touch this call.
func (p *Pipeline) liveEntities() []*isg.Entity {
	keys := p.graph.Keys()
	out := make([]*isg.Entity, 0, len(keys))
	for _, k := range keys {
		if e, ok := p.graph.GetByKey(k); ok && e.Temporal.Action != isg.ActionDelete {
			out = append(out, e)
		}
	}
	return out
}

// Close releases the persistent store, if one was opened.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

func (p *Pipeline) report(current, total int64, phase string) {
	if p.onProgress != nil {
		p.onProgress(current, total, phase)
	}
}

// Run ingests files end to end: parse, extract edges, upsert, persist,
// reindex. files is typically the result of WalkLocalPath or ReadCodeDump.
func (p *Pipeline) Run(ctx context.Context, files []SourceFile) (*Result, error) {
	start := time.Now()
	res := &Result{}

	langs := p.config.languageSet()
	numWorkers := p.config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	type parsed struct {
		result   *parsefront.ParseResult
		entities []isg.Entity
		fileEnts []depextract.FileEntity
	}

	parseStart := time.Now()
	outputs := make([]*parsed, len(files))
	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, f := range files {
		lang, ok := detectLanguage(f.Path)
		if !ok || (len(langs) > 0 && !langs[lang]) {
			continue
		}
		i, f, lang := i, f, lang
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := p.parser.ParseFile(ctx, f.Path, lang, f.Content)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.ParseErrors++
				p.logger.Warn("ingest.parse_failed", "path", f.Path, "error", err)
				return
			}
			entities, fileEnts := p.toEntities(result)
			outputs[i] = &parsed{result: result, entities: entities, fileEnts: fileEnts}
			res.FilesProcessed++
			res.EntitiesExtracted += len(entities)
		}()
	}
	wg.Wait()
	res.ParseDuration = time.Since(parseStart)
	p.report(int64(res.FilesProcessed), int64(len(files)), "parsing")

	extractStart := time.Now()
	var allEntities []*isg.Entity
	var allFileEnts []depextract.FileEntity
	for _, o := range outputs {
		if o == nil {
			continue
		}
		for i := range o.entities {
			allEntities = append(allEntities, &o.entities[i])
		}
		allFileEnts = append(allFileEnts, o.fileEnts...)

		calls := depextract.ExtractCalls(o.result, o.fileEnts)
		uses := depextract.ExtractUses(o.fileEnts)
		impls := depextract.ExtractImplements(o.fileEnts)
		contains := depextract.ExtractContains(o.fileEnts)

		res.CallsEdges += len(calls)
		res.UsesEdges += len(uses)
		res.ImplementsEdges += len(impls)
		res.ContainsEdges += len(contains)

		var keys []isg.ISGL1Key
		for _, e := range o.entities {
			if _, err := p.graph.UpsertNode(e); err != nil {
				p.logger.Warn("ingest.upsert_failed", "key", e.Key, "error", err)
				continue
			}
			keys = append(keys, e.Key)
		}
		if len(o.entities) > 0 {
			p.mu.Lock()
			p.fileKeys[o.result.Path] = keys
			p.mu.Unlock()
		}
		for _, edges := range [][]isg.Edge{calls, uses, impls, contains} {
			for _, e := range edges {
				p.graph.InsertEdge(e)
			}
			if p.store != nil {
				if err := p.store.PutEdges(ctx, edges); err != nil {
					return res, err
				}
			}
		}
	}
	res.EdgesExtracted = res.CallsEdges + res.UsesEdges + res.ImplementsEdges + res.ContainsEdges
	res.ExtractDuration = time.Since(extractStart)
	p.report(int64(len(allEntities)), int64(len(allEntities)), "extracting")

	writeStart := time.Now()
	if p.store != nil {
		for _, e := range allEntities {
			if err := p.store.PutEntity(ctx, *e); err != nil {
				return res, err
			}
		}
	}
	if err := p.index.Rebuild(allEntities); err != nil {
		return res, err
	}
	res.WriteDuration = time.Since(writeStart)
	p.report(int64(len(allEntities)), int64(len(allEntities)), "writing")

	res.TotalDuration = time.Since(start)
	return res, nil
}

// toEntities promotes a ParseResult's ExtractedEntity list into isg.Entity
// values plus the FileEntity pairs pkg/depextract needs for pass-2 edge
// walking, interning the file path and each entity's name as it goes.
func (p *Pipeline) toEntities(result *parsefront.ParseResult) ([]isg.Entity, []depextract.FileEntity) {
	fileID := p.files.Intern(result.Path)
	entities := make([]isg.Entity, 0, len(result.Entities))
	fileEnts := make([]depextract.FileEntity, 0, len(result.Entities))

	for _, ex := range result.Entities {
		nameID := p.names.Intern(ex.Name)
		loc := isg.Location{FileID: fileID, LineStart: ex.LineStart, LineEnd: ex.LineEnd, Column: ex.Column}
		currentCode := bodyOf(result.Content, ex.LineStart, ex.LineEnd, p.config.MaxCodeTextBytes)
		e := isg.NewLocatedEntity(result.Language, ex.Kind, ex.Name, nameID, loc, result.Path, ex.Signature, currentCode)
		entities = append(entities, e)
		fileEnts = append(fileEnts, depextract.FileEntity{Entity: e, Node: ex.Node})
	}

	sort.Slice(fileEnts, func(i, j int) bool {
		return fileEnts[i].Entity.Location.LineStart < fileEnts[j].Entity.Location.LineStart
	})
	return entities, fileEnts
}

// bodyOf extracts the 1-indexed, inclusive line range [start,end] from
// content, truncated to maxBytes.
func bodyOf(content []byte, start, end int, maxBytes int64) string {
	lines := splitLines(content)
	if start < 1 || end > len(lines) || start > end {
		return ""
	}
	body := joinLines(lines[start-1 : end])
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		body = body[:maxBytes]
	}
	return body
}

func splitLines(content []byte) []string {
	var lines []string
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, string(content[start:i]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

func joinLines(lines []string) string {
	total := 0
	for _, l := range lines {
		total += len(l) + 1
	}
	out := make([]byte, 0, total)
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return string(out)
}

// detectLanguage maps a file's extension to its isg.Language via the closed
// table in pkg/isg/kind.go.
func detectLanguage(path string) (isg.Language, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	lang, ok := isg.ExtensionLanguage[ext]
	return lang, ok
}
