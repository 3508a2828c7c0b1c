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

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ISGL1Key is a stable, human-readable entity identity string. It round-trips
// through JSON as a plain string (it's just a Go string under the hood).
type ISGL1Key string

var pathSanitizer = strings.NewReplacer("/", "_", "\\", "_", ".", "_")

// SanitizePath replaces '/', '\\' and '.' with '_', matching the original
// isgl1_generator sanitize_path behavior.
func SanitizePath(path string) string {
	return pathSanitizer.Replace(path)
}

// LocatedKey derives the ISGL1 key for an entity that exists at a concrete
// source location: lang:kind_tag:name:sanitize(path):start-end.
func LocatedKey(lang Language, kind EntityKind, name, path string, lineStart, lineEnd int) ISGL1Key {
	return ISGL1Key(fmt.Sprintf("%s:%s:%s:%s:%d-%d",
		lang, kind.Tag(), name, SanitizePath(path), lineStart, lineEnd))
}

// ProposedKey derives the ISGL1 key for a not-yet-existing entity:
// sanitize(path)-name-kind_tag-hash8, where hash8 is the first 8 hex chars
// of SHA-256 over (path, name, kind, timestamp).
func ProposedKey(path, name string, kind EntityKind, timestamp time.Time) ISGL1Key {
	h := ProposedHash8(path, name, kind, timestamp)
	return ISGL1Key(fmt.Sprintf("%s-%s-%s-%s", SanitizePath(path), name, kind.Tag(), h))
}

// ProposedHash8 computes the 8-hex-char content hash used by ProposedKey,
// exposed separately so callers that already have a key can verify it.
func ProposedHash8(path, name string, kind EntityKind, timestamp time.Time) string {
	preimage := path + name + kind.String() + timestamp.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:4])
}

// ContentHash computes the stable content hash over a normalized signature:
// whitespace runs collapsed to a single space, leading/trailing trimmed.
// Equal signatures yield equal hashes (ISG invariant 4).
func ContentHash(signature string) string {
	sum := sha256.Sum256([]byte(NormalizeSignature(signature)))
	return hex.EncodeToString(sum[:])
}

// NormalizeSignature collapses whitespace runs to a single space and trims.
func NormalizeSignature(signature string) string {
	fields := strings.Fields(signature)
	return strings.Join(fields, " ")
}
