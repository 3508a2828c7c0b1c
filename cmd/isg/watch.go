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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isgraph/pkg/ingest"
)

// watchSkipDirs names directories never worth a filesystem watch.
var watchSkipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "target": true, "bin": true,
}

const watchDebounce = 2 * time.Second

// runWatch implements `isg watch [path]`: fsnotify-driven re-ingest on
// save, with a debounce timer so a burst of saves triggers one rescan.
// Each debounce fires a full rescan rather than pkg/ingest's git-delta
// path: fsnotify fires on uncommitted saves, which a commit-to-commit git
// diff can't see, so ApplyDelta is reserved for CI-style "re-ingest what
// changed between these two commits" use instead of live-edit watching.
func runWatch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	storePath := fs.String("store", "", "Persistent CozoDB store path (empty: in-memory only)")
	_ = fs.Parse(args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fatal(globals, "resolve path: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := ingest.DefaultConfig()
	cfg.StorePath = *storePath
	pipeline, err := ingest.New(cfg, logger)
	if err != nil {
		fatal(globals, "init pipeline: %v", err)
	}
	defer func() { _ = pipeline.Close() }()

	ctx := context.Background()
	files, err := ingest.WalkLocalPath(absRoot, cfg)
	if err != nil {
		fatal(globals, "initial walk: %v", err)
	}
	if _, err := pipeline.Run(ctx, files); err != nil {
		fatal(globals, "initial ingest: %v", err)
	}
	if !globals.Quiet {
		fmt.Fprintf(os.Stderr, "isg watch: initial ingest of %d files complete\n", len(files))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fatal(globals, "fsnotify: %v", err)
	}
	defer watcher.Close()

	addDirs(watcher, absRoot, globals)

	var debounceTimer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(watchDebounce)
			timerCh = debounceTimer.C
			if !globals.Quiet && globals.Verbose >= 1 {
				fmt.Fprintf(os.Stderr, "isg watch: event %s %s\n", event.Op, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch.fsnotify_error", "error", err)
		case <-timerCh:
			timerCh = nil
			reingest(ctx, pipeline, absRoot, cfg, globals)
		}
	}
}

func reingest(ctx context.Context, pipeline *ingest.Pipeline, root string, cfg ingest.Config, globals GlobalFlags) {
	files, err := ingest.WalkLocalPath(root, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "isg watch: walk failed: %v\n", err)
		return
	}
	if _, err := pipeline.Run(ctx, files); err != nil {
		fmt.Fprintf(os.Stderr, "isg watch: re-ingest failed: %v\n", err)
		return
	}
	if !globals.Quiet {
		fmt.Fprintf(os.Stderr, "isg watch: re-ingested %d files\n", len(files))
	}
}

func addDirs(watcher *fsnotify.Watcher, root string, globals GlobalFlags) {
	watchCount := 0
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if watchSkipDirs[base] || (strings.HasPrefix(base, ".") && base != ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err == nil {
			watchCount++
		}
		return nil
	})
	if !globals.Quiet {
		fmt.Fprintf(os.Stderr, "isg watch: watching %d directories under %s\n", watchCount, root)
	}
}
