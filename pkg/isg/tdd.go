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

import "strings"

// TddClass classifies an entity as test or production code.
type TddClass uint8

const (
	TddCodeImplementation TddClass = iota
	TddTestImplementation
)

func (c TddClass) String() string {
	if c == TddTestImplementation {
		return "TestImplementation"
	}
	return "CodeImplementation"
}

// TddScores carries the auxiliary scores attached alongside tdd_class.
type TddScores struct {
	Testability    float64
	Complexity     float64
	DependencyCount int
	Risk           float64
}

// ClassifyTdd is a small heuristic classifier: a test-name pattern or a
// package/file path pattern flips an entity to TestImplementation.
func ClassifyTdd(kind EntityKind, name, path string) TddClass {
	if kind == KindTestFunction {
		return TddTestImplementation
	}
	lowerName := strings.ToLower(name)
	lowerPath := strings.ToLower(path)
	if strings.HasPrefix(lowerName, "test") && kind == KindFunction {
		return TddTestImplementation
	}
	if strings.Contains(lowerPath, "_test.") || strings.Contains(lowerPath, "/test/") ||
		strings.Contains(lowerPath, "/tests/") || strings.HasSuffix(lowerPath, ".spec.ts") ||
		strings.HasSuffix(lowerPath, ".spec.js") {
		return TddTestImplementation
	}
	return TddCodeImplementation
}
