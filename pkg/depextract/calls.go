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

// Package depextract is the second-pass dependency extractor: given
// entities already emitted by pkg/parsefront (pass 1), it walks
// call-expression-shaped CST nodes to produce Calls edges, and derives
// Uses/Implements/Contains edges from signature text and lexical nesting.
package depextract

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/parsefront"
)

// callShape names the call-expression-like node type for a language and
// which field (or fallback child search) carries the callee expression.
type callShape struct {
	nodeType      string
	calleeField   string
}

// callShapes is intentionally limited to languages with an unambiguous,
// single call-expression node type; edge extraction for the remaining
// languages is deferred (entity extraction alone still runs for them via
// pkg/parsefront).
var callShapes = map[isg.Language][]callShape{
	isg.LangGo:         {{"call_expression", "function"}},
	isg.LangPython:     {{"call", "function"}},
	isg.LangJavaScript:  {{"call_expression", "function"}},
	isg.LangTypeScript: {{"call_expression", "function"}},
	isg.LangRust:       {{"call_expression", "function"}},
	isg.LangJava:       {{"method_invocation", "name"}},
	isg.LangCpp:        {{"call_expression", "function"}},
}

// FileEntity pairs a pkg/isg Entity with the CST node its def spans, needed
// to find the enclosing entity for a call site and to resolve local names.
type FileEntity struct {
	Entity isg.Entity
	Node   *sitter.Node
}

// ExtractCalls walks result's tree for call-expression-shaped nodes and
// emits a Calls edge for every call whose callee resolves to a local entity
// (by simple name, within the same file). Non-local callees are dropped.
func ExtractCalls(result *parsefront.ParseResult, fileEntities []FileEntity) []isg.Edge {
	shapes, ok := callShapes[result.Language]
	if !ok || len(fileEntities) == 0 {
		return nil
	}

	localByName := make(map[string]FileEntity, len(fileEntities))
	for _, fe := range fileEntities {
		localByName[fe.Entity.Name] = fe
	}

	var edges []isg.Edge
	seen := make(map[isg.ISGL1Key]map[isg.ISGL1Key]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		for _, shape := range shapes {
			if n.Type() != shape.nodeType {
				continue
			}
			calleeNode := n.ChildByFieldName(shape.calleeField)
			name := calleeName(calleeNode, result.Content)
			if name == "" {
				break
			}
			callee, ok := localByName[name]
			if !ok {
				break
			}
			caller, ok := enclosingEntity(n, fileEntities)
			if !ok || caller.Entity.Key == callee.Entity.Key {
				break
			}
			if seen[caller.Entity.Key] == nil {
				seen[caller.Entity.Key] = make(map[isg.ISGL1Key]bool)
			}
			if seen[caller.Entity.Key][callee.Entity.Key] {
				break
			}
			seen[caller.Entity.Key][callee.Entity.Key] = true
			edges = append(edges, isg.Edge{
				From:           caller.Entity.Key,
				To:             callee.Entity.Key,
				Kind:           isg.EdgeCalls,
				SourceLocation: fmt.Sprintf("%s:%d", result.Path, n.StartPoint().Row+1),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(result.Tree.RootNode())
	return edges
}

// calleeName extracts a plausible callee identifier from a call's function
// expression: a bare identifier, or the rightmost segment of a member
// access / field / selector expression (e.g. "pkg.Helper" -> "Helper").
func calleeName(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	switch {
	case strings.HasSuffix(n.Type(), "identifier"):
		return n.Content(content)
	}
	for _, field := range []string{"field", "property", "name", "attribute"} {
		if child := n.ChildByFieldName(field); child != nil {
			return child.Content(content)
		}
	}
	if n.ChildCount() > 0 {
		return calleeName(n.Child(int(n.ChildCount())-1), content)
	}
	return ""
}

// enclosingEntity finds the narrowest fileEntities entry whose def node
// contains n, by climbing n's ancestors and matching node identity.
func enclosingEntity(n *sitter.Node, fileEntities []FileEntity) (FileEntity, bool) {
	nodeSet := make(map[[2]uint32]FileEntity, len(fileEntities))
	for _, fe := range fileEntities {
		if fe.Node == nil {
			continue
		}
		nodeSet[[2]uint32{fe.Node.StartByte(), fe.Node.EndByte()}] = fe
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if fe, ok := nodeSet[[2]uint32{cur.StartByte(), cur.EndByte()}]; ok {
			return fe, true
		}
	}
	return FileEntity{}, false
}
