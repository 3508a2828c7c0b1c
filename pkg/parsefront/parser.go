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

package parsefront

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/isgraph/internal/coreerr"
	"github.com/kraklabs/isgraph/pkg/isg"
)

// ExtractedEntity is one query match, before it is promoted to an isg.Entity.
// Node is kept so pkg/depextract can climb the CST from a call site back to
// its enclosing entity without re-parsing.
type ExtractedEntity struct {
	Kind      isg.EntityKind
	Name      string
	Signature string
	LineStart int
	LineEnd   int
	Column    int
	Node      *sitter.Node
}

// ParseResult is everything pkg/depextract needs from one parsed file: the
// ordered entity list plus the raw tree for pass-2 edge extraction.
type ParseResult struct {
	Path     string
	Language isg.Language
	Content  []byte
	Tree     *sitter.Tree
	Entities []ExtractedEntity
}

// Parser is the query-driven, multi-language CST front-end. One
// *sitter.Parser per language is pooled, since parsers are not safe for
// concurrent use.
type Parser struct {
	logger  *slog.Logger
	pools   map[isg.Language]*sync.Pool
	queries map[isg.Language]*sitter.Query
	initOne sync.Once
}

// New creates a Parser. Parser pools and query compilation are deferred to
// the first ParseFile call, which sets them up for every language at once.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) init() {
	p.initOne.Do(func() {
		p.pools = make(map[isg.Language]*sync.Pool, len(languageQuery))
		p.queries = make(map[isg.Language]*sitter.Query, len(languageQuery))
		for lang, src := range languageQuery {
			lang, src := lang, src
			grammar := sitterLanguage(lang)
			if grammar == nil {
				continue
			}
			p.pools[lang] = &sync.Pool{New: func() any {
				parser := sitter.NewParser()
				parser.SetLanguage(grammar)
				return parser
			}}
			q, err := sitter.NewQuery([]byte(src), grammar)
			if err != nil {
				p.logger.Error("parsefront.query_compile_failed", "language", lang, "error", err)
				continue
			}
			p.queries[lang] = q
		}
	})
}

// ParseFile parses content (already read from disk) as lang and extracts
// entities via the language's declarative query. A language outside the
// closed table returns UnsupportedLanguage; a single file's parse failure
// never aborts the caller's ingest loop - the caller decides whether to
// treat the returned error as fatal for the file.
func (p *Parser) ParseFile(ctx context.Context, path string, lang isg.Language, content []byte) (*ParseResult, error) {
	p.init()

	pool, ok := p.pools[lang]
	if !ok {
		return nil, coreerr.UnsupportedLanguage(string(lang))
	}
	query := p.queries[lang]
	if query == nil {
		return nil, coreerr.UnsupportedLanguage(string(lang))
	}

	parserObj := pool.Get()
	parser, ok := parserObj.(*sitter.Parser)
	if !ok {
		return nil, coreerr.Wrap(coreerr.KindParsing, "invalid parser from pool", nil)
	}
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindParsing, "parse "+path, err)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	type match struct {
		kind      isg.EntityKind
		nameNode  *sitter.Node
		defNode   *sitter.Node
	}
	byDef := make(map[[2]uint32]*match) // keyed by (start byte, end byte) of the def node

	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			name := query.CaptureNameForId(c.Index)
			parts := strings.Split(name, ".")
			if len(parts) < 2 || parts[0] != "entity" {
				continue
			}
			kindTag := parts[1]
			kind, ok := captureKind[kindTag]
			if !ok {
				continue
			}
			if len(parts) == 2 {
				// "entity.<kind>" - the defining node itself.
				key := [2]uint32{c.Node.StartByte(), c.Node.EndByte()}
				mm, ok := byDef[key]
				if !ok {
					mm = &match{kind: kind}
					byDef[key] = mm
				}
				mm.defNode = c.Node
			} else if parts[2] == "name" {
				// "entity.<kind>.name" - find or create the def entry keyed
				// by the span of the name node's parent, so a name pairs
				// with its def when the def node is the name's direct
				// parent. No other matching is done.
				key := [2]uint32{c.Node.Parent().StartByte(), c.Node.Parent().EndByte()}
				mm, ok := byDef[key]
				if !ok {
					mm = &match{kind: kind}
					byDef[key] = mm
				}
				mm.nameNode = c.Node
			}
		}
	}

	entities := make([]ExtractedEntity, 0, len(byDef))
	for _, mm := range byDef {
		def := mm.defNode
		if def == nil {
			def = mm.nameNode
		}
		if def == nil {
			continue
		}
		name := ""
		if mm.nameNode != nil {
			name = mm.nameNode.Content(content)
		}
		if name == "" {
			continue
		}
		entities = append(entities, ExtractedEntity{
			Kind:      mm.kind,
			Name:      name,
			Signature: headerLine(def.Content(content)),
			LineStart: int(def.StartPoint().Row) + 1,
			LineEnd:   int(def.EndPoint().Row) + 1,
			Column:    int(def.StartPoint().Column),
			Node:      def,
		})
	}

	// Ordering rule: by start position, stable by kind tag within a tie.
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].LineStart != entities[j].LineStart {
			return entities[i].LineStart < entities[j].LineStart
		}
		if entities[i].Column != entities[j].Column {
			return entities[i].Column < entities[j].Column
		}
		return entities[i].Kind.Tag() < entities[j].Kind.Tag()
	})

	return &ParseResult{
		Path:     path,
		Language: lang,
		Content:  content,
		Tree:     tree,
		Entities: entities,
	}, nil
}

// headerLine returns the first non-empty line of a definition's source
// text, a reasonable approximation of its "signature" full textual form
// without pulling in the whole body.
func headerLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	if idx := strings.IndexByte(text, '{'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
