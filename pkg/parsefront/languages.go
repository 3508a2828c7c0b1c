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

// Package parsefront is the CST-based, query-driven parser front-end: one
// tree-sitter parser per supported language, reused across files via a
// pool, extraction driven by a small declarative query per language rather
// than a hand-written tree walk per construct.
package parsefront

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/isgraph/pkg/isg"
)

// sitterLanguage returns the grammar for lang, covering the full closed
// language table using the smacker/go-tree-sitter grammar bindings.
func sitterLanguage(lang isg.Language) *sitter.Language {
	switch lang {
	case isg.LangGo:
		return golang.GetLanguage()
	case isg.LangPython:
		return python.GetLanguage()
	case isg.LangJavaScript:
		return javascript.GetLanguage()
	case isg.LangTypeScript:
		return typescript.GetLanguage()
	case isg.LangRust:
		return rust.GetLanguage()
	case isg.LangJava:
		return java.GetLanguage()
	case isg.LangCpp:
		return cpp.GetLanguage()
	case isg.LangRuby:
		return ruby.GetLanguage()
	case isg.LangPHP:
		return php.GetLanguage()
	case isg.LangCSharp:
		return csharp.GetLanguage()
	case isg.LangSwift:
		return swift.GetLanguage()
	case isg.LangKotlin:
		return kotlin.GetLanguage()
	case isg.LangScala:
		return scala.GetLanguage()
	default:
		return nil
	}
}

// SupportedLanguages lists every language this front-end has a grammar and
// a query file for.
func SupportedLanguages() []isg.Language {
	return []isg.Language{
		isg.LangRust, isg.LangPython, isg.LangJavaScript, isg.LangTypeScript,
		isg.LangGo, isg.LangJava, isg.LangCpp, isg.LangRuby, isg.LangPHP,
		isg.LangCSharp, isg.LangSwift, isg.LangKotlin, isg.LangScala,
	}
}
