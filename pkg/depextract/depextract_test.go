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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/parsefront"
)

func entityAt(lang isg.Language, kind isg.EntityKind, name, path, signature string, start, end int) isg.Entity {
	return isg.NewLocatedEntity(lang, kind, name, interning.NameID(0),
		isg.Location{LineStart: start, LineEnd: end}, path, signature, signature)
}

func TestExtractContainsNarrowestEnclosingContainer(t *testing.T) {
	outer := entityAt(isg.LangGo, isg.KindStruct, "Widget", "w.go", "type Widget struct", 1, 20)
	method := entityAt(isg.LangGo, isg.KindMethod, "Render", "w.go", "func (w *Widget) Render()", 5, 8)
	sibling := entityAt(isg.LangGo, isg.KindFunction, "helper", "w.go", "func helper()", 22, 24)

	fileEntities := []FileEntity{{Entity: outer}, {Entity: method}, {Entity: sibling}}
	edges := ExtractContains(fileEntities)

	require.Len(t, edges, 1)
	assert.Equal(t, outer.Key, edges[0].From)
	assert.Equal(t, method.Key, edges[0].To)
	assert.Equal(t, isg.EdgeContains, edges[0].Kind)
}

func TestExtractContainsPicksNarrowestOfNestedContainers(t *testing.T) {
	outer := entityAt(isg.LangGo, isg.KindNamespace, "pkg", "w.go", "package pkg", 1, 100)
	inner := entityAt(isg.LangGo, isg.KindStruct, "Widget", "w.go", "type Widget struct", 5, 20)
	method := entityAt(isg.LangGo, isg.KindMethod, "Render", "w.go", "func (w *Widget) Render()", 8, 10)

	edges := ExtractContains([]FileEntity{{Entity: outer}, {Entity: inner}, {Entity: method}})

	require.Len(t, edges, 2)
	var methodParent isg.ISGL1Key
	for _, e := range edges {
		if e.To == method.Key {
			methodParent = e.From
		}
	}
	assert.Equal(t, inner.Key, methodParent, "method should nest under the narrowest container, not the outer namespace")
}

func TestExtractUsesMatchesTypeNamesInSignature(t *testing.T) {
	widget := entityAt(isg.LangGo, isg.KindStruct, "Widget", "w.go", "type Widget struct", 1, 5)
	render := entityAt(isg.LangGo, isg.KindFunction, "Render", "w.go", "func Render(w *Widget) error", 7, 9)

	edges := ExtractUses([]FileEntity{{Entity: widget}, {Entity: render}})

	require.Len(t, edges, 1)
	assert.Equal(t, render.Key, edges[0].From)
	assert.Equal(t, widget.Key, edges[0].To)
	assert.Equal(t, isg.EdgeUses, edges[0].Kind)
}

func TestExtractUsesSkipsTypeReferencingItself(t *testing.T) {
	widget := entityAt(isg.LangGo, isg.KindStruct, "Widget", "w.go", "type Widget struct { self *Widget }", 1, 5)
	edges := ExtractUses([]FileEntity{{Entity: widget}})
	assert.Empty(t, edges)
}

func TestExtractImplementsRustImplForSyntax(t *testing.T) {
	trait := entityAt(isg.LangRust, isg.KindTrait, "Shape", "s.rs", "trait Shape", 1, 3)
	impl := entityAt(isg.LangRust, isg.KindImplBlock, "Circle", "s.rs", "impl Shape for Circle", 5, 10)
	impl.KindData = &isg.ImplBlockData{Trait: "Shape", ForType: "Circle"}

	edges := ExtractImplements([]FileEntity{{Entity: trait}, {Entity: impl}})

	require.Len(t, edges, 1)
	assert.Equal(t, impl.Key, edges[0].From)
	assert.Equal(t, trait.Key, edges[0].To)
	assert.Equal(t, isg.EdgeImplements, edges[0].Kind)
}

func TestExtractImplementsJavaClassImplementsSyntax(t *testing.T) {
	iface := entityAt(isg.LangJava, isg.KindInterface, "Reader", "r.java", "interface Reader", 1, 3)
	class := entityAt(isg.LangJava, isg.KindClass, "FileReader", "r.java", "class FileReader implements Reader", 5, 20)

	edges := ExtractImplements([]FileEntity{{Entity: iface}, {Entity: class}})

	require.Len(t, edges, 1)
	assert.Equal(t, class.Key, edges[0].From)
	assert.Equal(t, iface.Key, edges[0].To)
}

func TestExtractImplementsIgnoresUnresolvableNames(t *testing.T) {
	class := entityAt(isg.LangJava, isg.KindClass, "FileReader", "r.java", "class FileReader implements Reader", 5, 20)
	edges := ExtractImplements([]FileEntity{{Entity: class}})
	assert.Empty(t, edges, "Reader is never defined in this file, so no edge can resolve")
}

const goCallSample = `package sample

func helper() int {
	return 1
}

func caller() int {
	return helper()
}
`

func TestExtractCallsFindsLocalCallee(t *testing.T) {
	p := parsefront.New(nil)
	result, err := p.ParseFile(t.Context(), "sample.go", isg.LangGo, []byte(goCallSample))
	require.NoError(t, err)
	require.Len(t, result.Entities, 2)

	var fileEntities []FileEntity
	for _, ex := range result.Entities {
		e := entityAt(isg.LangGo, ex.Kind, ex.Name, "sample.go", ex.Signature, ex.LineStart, ex.LineEnd)
		fileEntities = append(fileEntities, FileEntity{Entity: e, Node: ex.Node})
	}

	edges := ExtractCalls(result, fileEntities)
	require.Len(t, edges, 1)
	assert.Equal(t, isg.EdgeCalls, edges[0].Kind)

	var caller, callee FileEntity
	for _, fe := range fileEntities {
		switch fe.Entity.Name {
		case "caller":
			caller = fe
		case "helper":
			callee = fe
		}
	}
	assert.Equal(t, caller.Entity.Key, edges[0].From)
	assert.Equal(t, callee.Entity.Key, edges[0].To)
}

func TestExtractCallsSkipsUnknownLanguage(t *testing.T) {
	result := &parsefront.ParseResult{Language: isg.LangKotlin}
	edges := ExtractCalls(result, []FileEntity{{Entity: entityAt(isg.LangKotlin, isg.KindFunction, "f", "f.kt", "fun f()", 1, 1)}})
	assert.Nil(t, edges)
}
