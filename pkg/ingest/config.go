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

// Package ingest orchestrates the local ingestion pipeline: load source
// (local path or code-dump), extract entities (pkg/parsefront), extract
// edges (pkg/depextract), upsert into the ISG (pkg/isg), persist
// (pkg/store), rebuild the discovery index (pkg/discovery), and support
// incremental re-ingest from a git delta.
package ingest

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/isgraph/pkg/isg"
)

// RepoSource records where the repository comes from ("git_url" or
// "local_path"). Nothing in this package reads it: no clone is made, and
// Run ingests only the files its caller passes in.
type RepoSource struct {
	Type  string `yaml:"type"`  // "git_url" or "local_path"
	Value string `yaml:"value"`
}

// Config is the project-level ingestion configuration, loaded from YAML.
type Config struct {
	RepoSource RepoSource `yaml:"repo_source"`

	// Languages restricts parsing to this subset of pkg/parsefront's
	// supported languages. Empty means all 13.
	Languages []string `yaml:"languages"`

	// StorePath is the on-disk path for the CozoDB-backed persistent store.
	// Empty disables persistence (in-memory graph only).
	StorePath string `yaml:"store_path"`

	// MaxFileSizeBytes skips any file larger than this during the walk.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`

	// MaxCodeTextBytes truncates a captured code body beyond this size;
	// truncations are not counted in Result.
	MaxCodeTextBytes int64 `yaml:"max_code_text_bytes"`

	// ExcludeGlobs are glob patterns for files/directories to skip.
	ExcludeGlobs []string `yaml:"exclude_globs"`

	// NumWorkers bounds the parallel-parse worker pool; 0 means
	// runtime.NumCPU() at call time.
	NumWorkers int `yaml:"num_workers"`
}

// DefaultConfig returns a Config with conservative file/text size caps
// (1MB/100KB) suitable for most repositories.
func DefaultConfig() Config {
	return Config{
		MaxFileSizeBytes: 1 << 20,
		MaxCodeTextBytes: 100 << 10,
		ExcludeGlobs: []string{
			".git/**", "node_modules/**", "vendor/**", "target/**", "dist/**", "build/**",
		},
	}
}

// LoadConfig reads and parses a YAML config file, filling in defaults for
// any zero-valued field the file didn't set.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// languageSet returns cfg.Languages as an isg.Language set. The set is
// empty when cfg.Languages is empty, which Run treats as no filter.
func (cfg Config) languageSet() map[isg.Language]bool {
	out := make(map[isg.Language]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		out[isg.Language(l)] = true
	}
	return out
}
