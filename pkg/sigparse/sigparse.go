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

// Package sigparse breaks a Go function or method declaration into the
// pieces the ISG's structured signature variant cares about: the receiver
// (if any), the parameter list, and the result list. It is dependency-free
// so it can sit underneath the entity model without pulling in a parser.
package sigparse

import "strings"

// ParamInfo holds a parsed parameter or result's name and base type, with
// pointer/slice/variadic/package-qualifier decoration stripped.
type ParamInfo struct {
	Name string // Parameter name, empty for an unnamed result.
	Type string // Base type name, e.g. "Querier" for "*tools.Querier".
}

// Parsed is the structured breakdown of one Go func/method declaration.
type Parsed struct {
	Receiver *ParamInfo // nil for a plain function.
	Params   []ParamInfo
	Results  []ParamInfo
}

// Valid reports whether p looks like it came from an actual declaration:
// every parsed param must have a non-empty type, and a result with a name
// must also carry one (Go rejects mixed named/unnamed result lists).
func (p Parsed) Valid() bool {
	for _, param := range p.Params {
		if param.Type == "" {
			return false
		}
	}
	named, unnamed := 0, 0
	for _, r := range p.Results {
		if r.Name != "" {
			named++
		} else {
			unnamed++
		}
	}
	return named == 0 || unnamed == 0
}

// Parse splits signature into its receiver, parameters, and results. A
// signature with no "func" keyword yields the zero Parsed.
func Parse(signature string) Parsed {
	pos := strings.Index(signature, "func")
	if pos == -1 {
		return Parsed{}
	}
	pos = skipWhitespace(signature, pos+4)

	var receiver *ParamInfo
	if pos < len(signature) && signature[pos] == '(' {
		end := findMatchingParen(signature, pos)
		if end == -1 {
			return Parsed{}
		}
		receiver = parseReceiver(signature[pos+1 : end])
		pos = end + 1
	}

	pos = skipWhitespace(signature, pos)
	for pos < len(signature) && signature[pos] != '(' {
		pos++
	}
	if pos >= len(signature) {
		return Parsed{Receiver: receiver}
	}
	paramsEnd := findMatchingParen(signature, pos)
	if paramsEnd == -1 {
		return Parsed{Receiver: receiver}
	}

	return Parsed{
		Receiver: receiver,
		Params:   parseParamList(signature[pos+1 : paramsEnd]),
		Results:  parseResultList(strings.TrimSpace(signature[paramsEnd+1:])),
	}
}

// ParseGoParams returns just the parameter list for signature, discarding
// any receiver and results — the flat view callers that only dispatch on
// parameter types still want.
func ParseGoParams(signature string) []ParamInfo {
	return Parse(signature).Params
}

// ExtractParamString returns the raw text between a declaration's parameter
// parentheses, e.g. "ctx Context, q Querier" for
// "func (r *Type) Name(ctx Context, q Querier) error".
func ExtractParamString(signature string) string {
	pos := strings.Index(signature, "func")
	if pos == -1 {
		return ""
	}
	pos = skipWhitespace(signature, pos+4)

	if pos < len(signature) && signature[pos] == '(' {
		end := findMatchingParen(signature, pos)
		if end == -1 {
			return ""
		}
		pos = end + 1
	}

	pos = skipWhitespace(signature, pos)
	for pos < len(signature) && signature[pos] != '(' {
		pos++
	}
	if pos >= len(signature) {
		return ""
	}

	end := findMatchingParen(signature, pos)
	if end == -1 {
		return ""
	}
	return signature[pos+1 : end]
}

// NormalizeType reduces a Go type expression to its base name.
//
//	"*Querier"        -> "Querier"
//	"[]Querier"        -> "Querier"
//	"tools.Querier"    -> "Querier"
//	"*tools.Querier"   -> "Querier"
//	"...string"        -> "string"
//	"func(int) error"  -> "func"
func NormalizeType(t string) string {
	t = strings.TrimLeft(t, "*")

	if strings.HasPrefix(t, "[]") {
		t = strings.TrimLeft(t[2:], "*")
	}

	t = strings.TrimPrefix(t, "...")

	if strings.HasPrefix(t, "func") {
		return "func"
	}

	if dot := strings.LastIndex(t, "."); dot >= 0 {
		t = t[dot+1:]
	}

	return t
}

// parseReceiver turns a method receiver's inner text ("s *Server" or just
// "*Server") into a single ParamInfo.
func parseReceiver(recv string) *ParamInfo {
	tokens := splitParamTokens(strings.TrimSpace(recv))
	switch len(tokens) {
	case 0:
		return nil
	case 1:
		return &ParamInfo{Type: NormalizeType(tokens[0])}
	default:
		return &ParamInfo{Name: tokens[0], Type: NormalizeType(tokens[len(tokens)-1])}
	}
}

// parseParamList parses a declaration's full parameter text, honoring Go's
// grouped-parameter shorthand ("a, b int" -> both type int).
func parseParamList(paramStr string) []ParamInfo {
	if paramStr == "" {
		return nil
	}
	parts := splitAtTopLevelCommas(paramStr)

	var params []ParamInfo
	var pendingType string

	// Grouped params borrow their type from the nearest param to their
	// right, so walk right-to-left and fill pendingType as we go.
	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.TrimSpace(parts[i])
		if p == "" {
			continue
		}

		tokens := splitParamTokens(p)
		switch len(tokens) {
		case 0:
			continue
		case 1:
			if pendingType != "" {
				params = append(params, ParamInfo{Name: tokens[0], Type: pendingType})
			}
		default:
			baseType := NormalizeType(tokens[len(tokens)-1])
			pendingType = baseType
			params = append(params, ParamInfo{Name: tokens[0], Type: baseType})
		}
	}

	for i, j := 0, len(params)-1; i < j; i, j = i+1, j-1 {
		params[i], params[j] = params[j], params[i]
	}
	return params
}

// parseResultList parses the text following a declaration's parameter list:
// nothing, a single bare type ("error"), or a parenthesized list that is
// either all bare types ("(int, error)") or all named ("(n int, err error)")
// — Go never mixes the two within one result list.
func parseResultList(resultStr string) []ParamInfo {
	if resultStr == "" {
		return nil
	}
	if !strings.HasPrefix(resultStr, "(") {
		return []ParamInfo{{Type: NormalizeType(resultStr)}}
	}

	end := findMatchingParen(resultStr, 0)
	if end == -1 {
		return nil
	}
	inner := resultStr[1:end]
	if inner == "" {
		return nil
	}
	parts := splitAtTopLevelCommas(inner)

	named := false
	for _, p := range parts {
		if len(splitParamTokens(strings.TrimSpace(p))) >= 2 {
			named = true
			break
		}
	}
	if named {
		return parseParamList(inner)
	}

	results := make([]ParamInfo, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		results = append(results, ParamInfo{Type: NormalizeType(p)})
	}
	return results
}

func findMatchingParen(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitParamTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "...")

	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		if s[i] == '*' || s[i] == '[' {
			tokens = append(tokens, s[start:])
			break
		}
		if strings.HasPrefix(s[i:], "func") {
			tokens = append(tokens, s[start:])
			break
		}

		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			if s[i] == '(' {
				if end := findMatchingParen(s, i); end != -1 {
					i = end + 1
				} else {
					i = len(s)
				}
			} else {
				i++
			}
		}
		if token := s[start:i]; token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func skipWhitespace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n') {
		pos++
	}
	return pos
}
