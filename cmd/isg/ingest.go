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

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isgraph/pkg/ingest"
)

// runIngest implements `isg ingest [path]`: walks (or reads a code-dump
// for) a directory and drives a progress bar per ingest phase.
func runIngest(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "Path to isg.yaml config")
	storePath := fs.String("store", "", "Persistent CozoDB store path (empty: in-memory only)")
	dump := fs.String("dump", "", "Read a code-dump file instead of walking a directory")
	_ = fs.Parse(args)

	cfg := ingest.DefaultConfig()
	if *configPath != "" {
		loaded, err := ingest.LoadConfig(*configPath)
		if err != nil {
			fatal(globals, "load config: %v", err)
		}
		cfg = loaded
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}

	logLevel := slog.LevelInfo
	if globals.Verbose >= 2 {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	pipeline, err := ingest.New(cfg, logger)
	if err != nil {
		fatal(globals, "init pipeline: %v", err)
	}
	defer func() { _ = pipeline.Close() }()

	var files []ingest.SourceFile
	switch {
	case *dump != "":
		f, err := os.Open(*dump)
		if err != nil {
			fatal(globals, "open code-dump: %v", err)
		}
		defer f.Close()
		files, err = ingest.ReadCodeDump(f)
		if err != nil {
			fatal(globals, "read code-dump: %v", err)
		}
	default:
		root := "."
		if fs.NArg() > 0 {
			root = fs.Arg(0)
		}
		files, err = ingest.WalkLocalPath(root, cfg)
		if err != nil {
			fatal(globals, "walk path: %v", err)
		}
	}

	var bar *progressbar.ProgressBar
	var phase string
	if !globals.Quiet {
		pipeline.SetProgressCallback(func(current, total int64, p string) {
			if p != phase {
				if bar != nil {
					_ = bar.Finish()
				}
				phase = p
				bar = progressbar.NewOptions64(total,
					progressbar.OptionSetDescription(phaseLabel(p)),
					progressbar.OptionSetWriter(os.Stderr),
				)
			}
			if bar != nil {
				_ = bar.Set64(current)
			}
		})
	}

	result, err := pipeline.Run(context.Background(), files)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		fatal(globals, "ingest failed: %v", err)
	}

	printIngestResult(result, globals)
}

func phaseLabel(phase string) string {
	switch phase {
	case "parsing":
		return "Parsing files"
	case "extracting":
		return "Extracting edges"
	case "writing":
		return "Writing index"
	default:
		return phase
	}
}

func printIngestResult(res *ingest.Result, globals GlobalFlags) {
	if globals.JSON {
		fmt.Printf(`{"files_processed":%d,"parse_errors":%d,"entities_extracted":%d,"edges_extracted":%d,"calls_edges":%d,"uses_edges":%d,"implements_edges":%d,"contains_edges":%d,"total_duration_ms":%d}`+"\n",
			res.FilesProcessed, res.ParseErrors, res.EntitiesExtracted, res.EdgesExtracted,
			res.CallsEdges, res.UsesEdges, res.ImplementsEdges, res.ContainsEdges, res.TotalDuration.Milliseconds())
		return
	}
	fmt.Printf("%s %d files (%d parse errors)\n", colorBold("Ingested"), res.FilesProcessed, res.ParseErrors)
	fmt.Printf("  entities: %d\n", res.EntitiesExtracted)
	fmt.Printf("  edges:    %d (calls=%d uses=%d implements=%d contains=%d)\n",
		res.EdgesExtracted, res.CallsEdges, res.UsesEdges, res.ImplementsEdges, res.ContainsEdges)
	fmt.Printf("  duration: %s\n", res.TotalDuration)
}

func fatal(globals GlobalFlags, format string, args ...any) {
	if !globals.Quiet {
		fmt.Fprintf(os.Stderr, colorBad("error: ")+format+"\n", args...)
	}
	os.Exit(1)
}
