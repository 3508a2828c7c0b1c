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

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isgraph/pkg/isg"
)

func TestReadCodeDumpSplitsOnMarker(t *testing.T) {
	dump := "FILE: src/a.go\npackage a\n\nfunc A() {}\nFILE: src/b.go\npackage b\n"
	files, err := ReadCodeDump(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/a.go", files[0].Path)
	assert.Equal(t, "package a\n\nfunc A() {}\n", string(files[0].Content))
	assert.Equal(t, "src/b.go", files[1].Path)
	assert.Equal(t, "package b\n", string(files[1].Content))
}

func TestReadCodeDumpIgnoresPreambleBeforeFirstMarker(t *testing.T) {
	dump := "not a file yet\nFILE: x.py\nprint(1)\n"
	files, err := ReadCodeDump(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "x.py", files[0].Path)
}

func TestWalkLocalPathRespectsExcludesAndSizeCap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "skip.go"), []byte("package vendor"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.go"), []byte(strings.Repeat("x", 100)), 0o644))

	cfg := DefaultConfig()
	cfg.MaxFileSizeBytes = 50
	files, err := WalkLocalPath(dir, cfg)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "vendor/skip.go")
	assert.NotContains(t, paths, "big.go")
}

func TestIsBinaryDetectsNullByte(t *testing.T) {
	assert.True(t, isBinary([]byte{0x50, 0x00, 0x10}))
	assert.False(t, isBinary([]byte("package main\n")))
}

func TestDetectLanguageFromExtension(t *testing.T) {
	lang, ok := detectLanguage("src/main.go")
	require.True(t, ok)
	assert.Equal(t, isg.LangGo, lang)

	lang, ok = detectLanguage("lib/widget.tsx")
	require.True(t, ok)
	assert.Equal(t, isg.LangTypeScript, lang)

	_, ok = detectLanguage("README.md")
	assert.False(t, ok)
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("languages: [go, python]\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, cfg.Languages)
	assert.Equal(t, int64(1<<20), cfg.MaxFileSizeBytes)
	assert.NotEmpty(t, cfg.ExcludeGlobs)
}

func TestGitDeltaChangeType(t *testing.T) {
	d := &GitDelta{
		Added:    []string{"new.go"},
		Modified: []string{"changed.go"},
		Deleted:  []string{"gone.go"},
		Renamed:  map[string]string{"old.go": "renamed.go"},
	}
	assert.Equal(t, FileAdded, d.ChangeType("new.go"))
	assert.Equal(t, FileModified, d.ChangeType("changed.go"))
	assert.Equal(t, FileDeleted, d.ChangeType("gone.go"))
	assert.Equal(t, FileRenamed, d.ChangeType("renamed.go"))
	assert.Equal(t, FileDeleted, d.ChangeType("old.go"))
	assert.Equal(t, FileChangeType(""), d.ChangeType("untouched.go"))
}

func TestParseGitDiffLine(t *testing.T) {
	status, paths := parseGitDiffLine("M\tsrc/main.go")
	assert.Equal(t, "M", status)
	assert.Equal(t, []string{"src/main.go"}, paths)

	status, paths = parseGitDiffLine("R100\told.go\tnew.go")
	assert.Equal(t, "R100", status)
	assert.Equal(t, []string{"old.go", "new.go"}, paths)
}

func TestRebuildAllListDedupsAndSorts(t *testing.T) {
	d := &GitDelta{
		Added:    []string{"z.go"},
		Modified: []string{"a.go"},
		Deleted:  []string{"m.go"},
		Renamed:  map[string]string{"old.go": "z.go"},
	}
	rebuildAllList(d)
	assert.Equal(t, []string{"a.go", "m.go", "old.go", "z.go"}, d.All)
}

func TestPipelineRunWithNoMatchingFiles(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	res, err := p.Run(t.Context(), []SourceFile{{Path: "README.md", Content: []byte("hello")}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesProcessed)
	assert.Equal(t, 0, res.EntitiesExtracted)
}

// TestPipelineRunMinimalIngest reproduces a single-file, single-function
// ingest: one entity, no edges.
func TestPipelineRunMinimalIngest(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\nfunc Standalone() {}\n"
	res, err := p.Run(t.Context(), []SourceFile{{Path: "solo.go", Content: []byte(src)}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilesProcessed)
	assert.Equal(t, 1, res.EntitiesExtracted)
	assert.Equal(t, 0, res.CallsEdges)

	all := p.Index().ListAll(nil, 0)
	require.Len(t, all, 1)
	assert.Equal(t, "Standalone", all[0].Name)
}

// TestPipelineRunChainCallEdges reproduces a call chain A -> B -> C within a
// single file and asserts the run reports both call edges and puts all
// three functions in the graph.
func TestPipelineRunChainCallEdges(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\n" +
		"func A() { B() }\n\n" +
		"func B() { C() }\n\n" +
		"func C() {}\n"
	res, err := p.Run(t.Context(), []SourceFile{{Path: "chain.go", Content: []byte(src)}})
	require.NoError(t, err)

	require.Equal(t, 3, res.EntitiesExtracted)
	assert.Equal(t, 2, res.CallsEdges, "A->B and B->C")

	keys := make(map[string]isg.ISGL1Key)
	for _, k := range p.Graph().Keys() {
		e, ok := p.Graph().GetByKey(k)
		require.True(t, ok)
		keys[e.Name] = k
	}

	require.Contains(t, keys, "A")
	require.Contains(t, keys, "B")
	require.Contains(t, keys, "C")
}

// TestPipelineRunDiamondCallEdges reproduces a diamond: A calls B and C,
// both of which call D.
func TestPipelineRunDiamondCallEdges(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\n" +
		"func A() { B(); C() }\n\n" +
		"func B() { D() }\n\n" +
		"func C() { D() }\n\n" +
		"func D() {}\n"
	res, err := p.Run(t.Context(), []SourceFile{{Path: "diamond.go", Content: []byte(src)}})
	require.NoError(t, err)

	require.Equal(t, 4, res.EntitiesExtracted)
	assert.Equal(t, 4, res.CallsEdges, "A->B, A->C, B->D, C->D")
}

// TestPipelineRunCycleCallEdges reproduces a 3-function call cycle
// A -> B -> C -> A and confirms the pipeline ingests it without hanging or
// erroring (cycles are a normal, not exceptional, call graph shape).
func TestPipelineRunCycleCallEdges(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\n" +
		"func A() { B() }\n\n" +
		"func B() { C() }\n\n" +
		"func C() { A() }\n"
	res, err := p.Run(t.Context(), []SourceFile{{Path: "cycle.go", Content: []byte(src)}})
	require.NoError(t, err)

	require.Equal(t, 3, res.EntitiesExtracted)
	assert.Equal(t, 3, res.CallsEdges)
}

// TestPipelineRunTemporalEditUpdatesExistingEntity reproduces editing a
// function's body across two ingests of the same path: the ISGL1 key (which
// derives from path/name/lines, not content) must survive the edit, while
// CurrentCode picks up the new body.
func TestPipelineRunTemporalEditUpdatesExistingEntity(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	first := "package main\n\nfunc F() int {\n\treturn 1\n}\n"
	_, err = p.Run(t.Context(), []SourceFile{{Path: "edit.go", Content: []byte(first)}})
	require.NoError(t, err)

	var originalKey isg.ISGL1Key
	for _, k := range p.Graph().Keys() {
		e, _ := p.Graph().GetByKey(k)
		if e.Name == "F" {
			originalKey = k
		}
	}
	require.NotEmpty(t, originalKey)

	second := "package main\n\nfunc F() int {\n\treturn 2\n}\n"
	res, err := p.Run(t.Context(), []SourceFile{{Path: "edit.go", Content: []byte(second)}})
	require.NoError(t, err)
	require.Equal(t, 1, res.EntitiesExtracted)

	updated, ok := p.Graph().GetByKey(originalKey)
	require.True(t, ok, "the same ISGL1 key must still resolve after a body edit")
	require.NotNil(t, updated.CurrentCode)
	assert.Contains(t, *updated.CurrentCode, "return 2")
}

// TestPipelineRunMultiLanguageIngest reproduces ingesting Go and Python
// source in the same run and confirms both are parsed and indexed.
func TestPipelineRunMultiLanguageIngest(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	goSrc := "package main\n\nfunc GoFunc() {}\n"
	pySrc := "def py_func():\n    pass\n"

	res, err := p.Run(t.Context(), []SourceFile{
		{Path: "a.go", Content: []byte(goSrc)},
		{Path: "b.py", Content: []byte(pySrc)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.FilesProcessed)
	assert.Equal(t, 2, res.EntitiesExtracted)

	var sawGo, sawPy bool
	for _, k := range p.Graph().Keys() {
		e, _ := p.Graph().GetByKey(k)
		switch e.Language {
		case isg.LangGo:
			sawGo = true
		case isg.LangPython:
			sawPy = true
		}
	}
	assert.True(t, sawGo)
	assert.True(t, sawPy)
}

// TestPipelineRunRestrictsToConfiguredLanguages confirms cfg.Languages
// filters out files whose language isn't in the allow-list.
func TestPipelineRunRestrictsToConfiguredLanguages(t *testing.T) {
	p, err := New(Config{Languages: []string{"go"}}, nil)
	require.NoError(t, err)
	defer p.Close()

	res, err := p.Run(t.Context(), []SourceFile{
		{Path: "a.go", Content: []byte("package main\n\nfunc GoFunc() {}\n")},
		{Path: "b.py", Content: []byte("def py_func():\n    pass\n")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilesProcessed)
	assert.Equal(t, 1, res.EntitiesExtracted)
}

// TestPipelineEvictFileMarksEntitiesDeleted reproduces the incremental-edit
// path: ingesting a file, then evicting it (as delta.go does for a git
// deletion), must temporally mark its entities deleted in the graph.
func TestPipelineEvictFileMarksEntitiesDeleted(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\nfunc Gone() {}\n"
	_, err = p.Run(t.Context(), []SourceFile{{Path: "gone.go", Content: []byte(src)}})
	require.NoError(t, err)

	var key isg.ISGL1Key
	for _, k := range p.Graph().Keys() {
		e, _ := p.Graph().GetByKey(k)
		if e.Name == "Gone" {
			key = k
		}
	}
	require.NotEmpty(t, key)

	require.NoError(t, p.EvictFile("gone.go"))

	updated, ok := p.Graph().GetByKey(key)
	require.True(t, ok)
	assert.Equal(t, isg.ActionDelete, updated.Temporal.Action)
}
