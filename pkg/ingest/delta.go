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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// FileChangeType classifies one path's change between two commits.
type FileChangeType string

const (
	FileAdded    FileChangeType = "added"
	FileModified FileChangeType = "modified"
	FileDeleted  FileChangeType = "deleted"
	FileRenamed  FileChangeType = "renamed"
)

// GitDelta is the set of changed files between BaseSHA and HeadSHA.
type GitDelta struct {
	BaseSHA  string
	HeadSHA  string
	Added    []string
	Modified []string
	Deleted  []string
	Renamed  map[string]string // old path -> new path
	All      []string
}

// ChangeType returns path's change type within d, or "" if path was not
// touched by this delta.
func (d *GitDelta) ChangeType(path string) FileChangeType {
	for _, p := range d.Added {
		if p == path {
			return FileAdded
		}
	}
	for _, p := range d.Modified {
		if p == path {
			return FileModified
		}
	}
	for _, p := range d.Deleted {
		if p == path {
			return FileDeleted
		}
	}
	for oldPath, newPath := range d.Renamed {
		if newPath == path {
			return FileRenamed
		}
		if oldPath == path {
			return FileDeleted
		}
	}
	return ""
}

// HasChanges reports whether the delta touched any file.
func (d *GitDelta) HasChanges() bool { return len(d.All) > 0 }

// emptyTreeSHA is git's well-known empty-tree object, used as the base when
// no prior commit exists (first ingestion of a repo).
const emptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// DeltaDetector shells out to git to find changed files between two
// commits.
type DeltaDetector struct {
	repoPath string
	logger   *slog.Logger
}

// NewDeltaDetector creates a detector rooted at repoPath.
func NewDeltaDetector(repoPath string, logger *slog.Logger) *DeltaDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeltaDetector{repoPath: repoPath, logger: logger}
}

// GetHeadSHA returns the current HEAD commit SHA, usable as the base SHA
// of a later incremental delta.
func (dd *DeltaDetector) GetHeadSHA() (string, error) {
	return dd.resolveRef("HEAD")
}

// IsGitRepository reports whether repoPath is inside a git working tree.
func (dd *DeltaDetector) IsGitRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dd.repoPath
	return cmd.Run() == nil
}

// DetectDelta computes the changed-file set between baseSHA and headSHA.
// An empty baseSHA compares against the empty tree (every tracked file is
// "added"); an empty headSHA means HEAD.
func (dd *DeltaDetector) DetectDelta(baseSHA, headSHA string) (*GitDelta, error) {
	if headSHA == "" {
		headSHA = "HEAD"
	}
	resolvedHead, err := dd.resolveRef(headSHA)
	if err != nil {
		return nil, fmt.Errorf("resolve head SHA: %w", err)
	}
	resolvedBase := baseSHA
	if resolvedBase == "" {
		resolvedBase = emptyTreeSHA
	} else {
		resolvedBase, err = dd.resolveRef(baseSHA)
		if err != nil {
			return nil, fmt.Errorf("resolve base SHA: %w", err)
		}
	}

	delta := &GitDelta{BaseSHA: resolvedBase, HeadSHA: resolvedHead, Renamed: make(map[string]string)}

	output, err := dd.runGitDiff(resolvedBase, resolvedHead)
	if err != nil {
		return nil, fmt.Errorf("run git diff: %w", err)
	}
	if err := parseDiffOutput(output, delta); err != nil {
		return nil, fmt.Errorf("parse diff output: %w", err)
	}
	sortDeltaLists(delta)
	rebuildAllList(delta)

	dd.logger.Info("ingest.delta_detected",
		"base_sha", shortSHA(resolvedBase), "head_sha", shortSHA(resolvedHead),
		"added", len(delta.Added), "modified", len(delta.Modified),
		"deleted", len(delta.Deleted), "renamed", len(delta.Renamed))
	return delta, nil
}

func (dd *DeltaDetector) resolveRef(ref string) (string, error) {
	cmd := exec.Command("git", "rev-parse", ref) //nolint:gosec // G204: ref is caller-controlled, same trust boundary as repoPath
	cmd.Dir = dd.repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (dd *DeltaDetector) runGitDiff(base, head string) ([]byte, error) {
	cmd := exec.Command("git", "diff", "--name-status", "-M", base, head) //nolint:gosec // G204: args are resolved SHAs
	cmd.Dir = dd.repoPath
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git diff failed: %s", exitErr.Stderr)
		}
		return nil, err
	}
	return out, nil
}

func parseDiffOutput(output []byte, delta *GitDelta) error {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		status, paths := parseGitDiffLine(line)
		if status == "" || len(paths) == 0 {
			continue
		}
		switch status[0] {
		case 'A':
			delta.Added = append(delta.Added, paths[0])
		case 'M':
			delta.Modified = append(delta.Modified, paths[0])
		case 'D':
			delta.Deleted = append(delta.Deleted, paths[0])
		case 'R':
			if len(paths) >= 2 {
				delta.Renamed[paths[0]] = paths[1]
			}
		case 'C':
			if len(paths) >= 2 {
				delta.Added = append(delta.Added, paths[1])
			}
		}
	}
	return scanner.Err()
}

func parseGitDiffLine(line string) (status string, paths []string) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return "", nil
	}
	return parts[0], parts[1:]
}

func sortDeltaLists(d *GitDelta) {
	sort.Strings(d.Added)
	sort.Strings(d.Modified)
	sort.Strings(d.Deleted)
}

func rebuildAllList(d *GitDelta) {
	seen := make(map[string]bool)
	var all []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			all = append(all, p)
		}
	}
	for _, p := range d.Added {
		add(p)
	}
	for _, p := range d.Modified {
		add(p)
	}
	for _, p := range d.Deleted {
		add(p)
	}
	for oldPath, newPath := range d.Renamed {
		add(oldPath)
		add(newPath)
	}
	sort.Strings(all)
	d.All = all
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// ApplyDelta re-ingests every added/modified/renamed-to file and evicts
// every deleted/renamed-from file, instead of walking the whole repo again.
// A removed file's entities move to (true,false,Delete) before discovery
// drops them on the next Rebuild.
func (p *Pipeline) ApplyDelta(ctx context.Context, root string, delta *GitDelta) (*Result, error) {
	for _, path := range delta.Deleted {
		if err := p.EvictFile(path); err != nil {
			return nil, err
		}
	}
	for oldPath := range delta.Renamed {
		if err := p.EvictFile(oldPath); err != nil {
			return nil, err
		}
	}

	var toReingest []string
	toReingest = append(toReingest, delta.Added...)
	toReingest = append(toReingest, delta.Modified...)
	for _, newPath := range delta.Renamed {
		toReingest = append(toReingest, newPath)
	}

	files := make([]SourceFile, 0, len(toReingest))
	for _, rel := range toReingest {
		content, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			p.logger.Warn("ingest.delta_read_failed", "path", rel, "error", err)
			continue
		}
		files = append(files, SourceFile{Path: rel, Content: content})
	}

	res, err := p.Run(ctx, files)
	if err != nil {
		return res, err
	}
	if err := p.index.Rebuild(p.liveEntities()); err != nil {
		return res, err
	}
	return res, nil
}
