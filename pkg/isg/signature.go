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

import "github.com/kraklabs/isgraph/pkg/sigparse"

// InterfaceSignature is the discriminated variant attached to an entity: a
// language-agnostic raw textual form, plus a structured breakdown for the
// languages that support one. Only the variant matching the entity's
// Language should ever be non-nil.
type InterfaceSignature struct {
	Raw string

	// Go is populated only for Language == LangGo; nil otherwise.
	Go *GoSignature
}

// GoSignature is the structured signature detail for a Go function or
// method: its receiver (nil for a plain function), parameters, and results.
type GoSignature struct {
	Receiver *sigparse.ParamInfo
	Params   []sigparse.ParamInfo
	Results  []sigparse.ParamInfo
}

// Valid reports whether g's parameters and results are well-formed: every
// parameter carries a type, and results are either all named or all
// unnamed, matching what the Go grammar itself allows.
func (g *GoSignature) Valid() bool {
	if g == nil {
		return true
	}
	return sigparse.Parsed{Receiver: g.Receiver, Params: g.Params, Results: g.Results}.Valid()
}

// NewGoSignature parses a full Go function or method declaration into its
// structured form. Returns nil when the parse finds no receiver, parameters
// or results: for a string with no "func" keyword, and also for a
// declaration such as "func f()".
func NewGoSignature(fullSignature string) *GoSignature {
	parsed := sigparse.Parse(fullSignature)
	if parsed.Receiver == nil && parsed.Params == nil && parsed.Results == nil {
		return nil
	}
	return &GoSignature{Receiver: parsed.Receiver, Params: parsed.Params, Results: parsed.Results}
}

// ParseGoSignature returns the flat parameter list for a Go function or
// method declaration, discarding receiver and results. Kept for callers
// that only need to dispatch on parameter types.
func ParseGoSignature(fullSignature string) []sigparse.ParamInfo {
	return sigparse.ParseGoParams(fullSignature)
}
