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

import "github.com/kraklabs/isgraph/pkg/isg"

// captureKind maps a query capture name (the part after "entity.") to the
// entity kind it marks. One query file declares all the node shapes that
// matter for a language; the extractor doesn't need to know node-type
// names, only capture names, since each is looked up against this table.
var captureKind = map[string]isg.EntityKind{
	"fn":        isg.KindFunction,
	"method":    isg.KindMethod,
	"struct":    isg.KindStruct,
	"enum":      isg.KindEnum,
	"trait":     isg.KindTrait,
	"interface": isg.KindInterface,
	"class":     isg.KindClass,
	"module":    isg.KindModule,
	"namespace": isg.KindNamespace,
	"typedef":   isg.KindTypedef,
	"impl":      isg.KindImplBlock,
	"macro":     isg.KindMacro,
	"var":       isg.KindVariable,
	"const":     isg.KindConstant,
	"test":      isg.KindTestFunction,
}

// languageQuery is the per-language declarative query: every capture named
// "entity.<kind>" whose sibling "entity.<kind>.name" gives the identifier
// node. Languages without a dedicated node for a kind simply omit it.
var languageQuery = map[isg.Language]string{
	isg.LangGo: `
(function_declaration name: (identifier) @entity.fn.name) @entity.fn
(method_declaration name: (field_identifier) @entity.method.name) @entity.method
(type_spec name: (type_identifier) @entity.struct.name type: (struct_type)) @entity.struct
(type_spec name: (type_identifier) @entity.interface.name type: (interface_type)) @entity.interface
(type_spec name: (type_identifier) @entity.typedef.name) @entity.typedef
(const_spec name: (identifier) @entity.const.name) @entity.const
(var_spec name: (identifier) @entity.var.name) @entity.var
`,
	isg.LangPython: `
(function_definition name: (identifier) @entity.fn.name) @entity.fn
(class_definition name: (identifier) @entity.class.name) @entity.class
`,
	isg.LangJavaScript: `
(function_declaration name: (identifier) @entity.fn.name) @entity.fn
(method_definition name: (property_identifier) @entity.method.name) @entity.method
(class_declaration name: (identifier) @entity.class.name) @entity.class
`,
	isg.LangTypeScript: `
(function_declaration name: (identifier) @entity.fn.name) @entity.fn
(method_definition name: (property_identifier) @entity.method.name) @entity.method
(class_declaration name: (type_identifier) @entity.class.name) @entity.class
(interface_declaration name: (type_identifier) @entity.interface.name) @entity.interface
(type_alias_declaration name: (type_identifier) @entity.typedef.name) @entity.typedef
`,
	isg.LangRust: `
(function_item name: (identifier) @entity.fn.name) @entity.fn
(struct_item name: (type_identifier) @entity.struct.name) @entity.struct
(enum_item name: (type_identifier) @entity.enum.name) @entity.enum
(trait_item name: (type_identifier) @entity.trait.name) @entity.trait
(impl_item type: (type_identifier) @entity.impl.name) @entity.impl
(mod_item name: (identifier) @entity.module.name) @entity.module
(macro_definition name: (identifier) @entity.macro.name) @entity.macro
(const_item name: (identifier) @entity.const.name) @entity.const
`,
	isg.LangJava: `
(method_declaration name: (identifier) @entity.method.name) @entity.method
(class_declaration name: (identifier) @entity.class.name) @entity.class
(interface_declaration name: (identifier) @entity.interface.name) @entity.interface
(enum_declaration name: (identifier) @entity.enum.name) @entity.enum
`,
	isg.LangCpp: `
(function_definition declarator: (function_declarator declarator: (identifier) @entity.fn.name)) @entity.fn
(class_specifier name: (type_identifier) @entity.class.name) @entity.class
(struct_specifier name: (type_identifier) @entity.struct.name) @entity.struct
(namespace_definition name: (identifier) @entity.namespace.name) @entity.namespace
`,
	isg.LangRuby: `
(method name: (identifier) @entity.method.name) @entity.method
(class name: (constant) @entity.class.name) @entity.class
(module name: (constant) @entity.module.name) @entity.module
`,
	isg.LangPHP: `
(function_definition name: (name) @entity.fn.name) @entity.fn
(method_declaration name: (name) @entity.method.name) @entity.method
(class_declaration name: (name) @entity.class.name) @entity.class
(interface_declaration name: (name) @entity.interface.name) @entity.interface
`,
	isg.LangCSharp: `
(method_declaration name: (identifier) @entity.method.name) @entity.method
(class_declaration name: (identifier) @entity.class.name) @entity.class
(interface_declaration name: (identifier) @entity.interface.name) @entity.interface
(struct_declaration name: (identifier) @entity.struct.name) @entity.struct
`,
	isg.LangSwift: `
(function_declaration name: (simple_identifier) @entity.fn.name) @entity.fn
(class_declaration name: (type_identifier) @entity.class.name) @entity.class
(protocol_declaration name: (type_identifier) @entity.trait.name) @entity.trait
`,
	isg.LangKotlin: `
(function_declaration (simple_identifier) @entity.fn.name) @entity.fn
(class_declaration (type_identifier) @entity.class.name) @entity.class
`,
	isg.LangScala: `
(function_definition name: (identifier) @entity.fn.name) @entity.fn
(class_definition name: (identifier) @entity.class.name) @entity.class
(trait_definition name: (identifier) @entity.trait.name) @entity.trait
(object_definition name: (identifier) @entity.module.name) @entity.module
`,
}
