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

// Package main implements the isg CLI: a thin command layer over
// pkg/ingest, pkg/query, and pkg/simulate.
//
// Usage:
//
//	isg ingest [path]             Ingest a local directory (or code-dump via --dump)
//	isg query <op> <key> [...]    Run a graph query against a prior ingest's store
//	isg simulate <key>            Simulate a change against the graph
//	isg watch [path]              Watch a directory and re-ingest on save
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v info, -vv debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics at this address (e.g. :9090)")
	)
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `isg - Interface Signature Graph CLI

Usage:
  isg <command> [options]

Commands:
  ingest <path>        Ingest a local directory into the graph
  query <op> <key>     Run a graph query (forward|reverse|blast|closure|path|impact)
  simulate <key>       Simulate a change against the ingested graph
  watch <path>         Watch a directory and re-ingest on save

Global Options:
  --json          Output in JSON format
  --no-color      Disable color output (respects NO_COLOR env var)
  -v, --verbose   Increase verbosity
  -q, --quiet     Suppress non-essential output
  --metrics-addr  Serve Prometheus metrics at this address
  -V, --version   Show version and exit
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("isg version %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *quiet && *verbose > 0 {
		fmt.Fprintln(os.Stderr, "Error: cannot use --quiet and --verbose together")
		os.Exit(1)
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	initColors(globals.NoColor)

	if *metricsAddr != "" {
		startMetricsServer(*metricsAddr, globals)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "ingest":
		runIngest(args[1:], globals)
	case "query":
		runQuery(args[1:], globals)
	case "simulate":
		runSimulate(args[1:], globals)
	case "watch":
		runWatch(args[1:], globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}
