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
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/query"
	"github.com/kraklabs/isgraph/pkg/store"
)

// runQuery implements `isg query <op> <key> [--max-hops N]` against a
// previously-ingested persistent store.
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	storePath := fs.String("store", "", "Persistent CozoDB store path (required)")
	maxHops := fs.Int("max-hops", 5, "Max hops for blast/critical-path queries")
	toKey := fs.String("to", "", "Target key for the 'path' operation")
	_ = fs.Parse(args)

	if *storePath == "" || fs.NArg() < 2 {
		fatal(globals, "usage: isg query --store <path> <forward|reverse|blast|closure|path|impact> <key>")
	}
	op := fs.Arg(0)
	key := isg.ISGL1Key(fs.Arg(1))

	s, err := store.Open(store.Config{Path: *storePath})
	if err != nil {
		fatal(globals, "open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	engine := query.New(s)
	ctx := context.Background()

	switch op {
	case "forward":
		out, err := engine.ForwardDependencies(ctx, key)
		mustPrintKeys(globals, out, err)
	case "reverse":
		out, err := engine.ReverseDependencies(ctx, key)
		mustPrintKeys(globals, out, err)
	case "blast":
		out, err := engine.BlastRadius(ctx, key, *maxHops)
		if err != nil {
			fatal(globals, "blast_radius: %v", err)
		}
		for _, e := range out {
			fmt.Printf("%s\t%d\n", e.Key, e.Distance)
		}
	case "closure":
		out, err := engine.TransitiveClosure(ctx, key)
		mustPrintKeys(globals, out, err)
	case "path":
		if *toKey == "" {
			fatal(globals, "'path' requires --to <key>")
		}
		dist, reachable, err := engine.ShortestPathDistance(ctx, key, isg.ISGL1Key(*toKey))
		if err != nil {
			fatal(globals, "shortest_path_distance: %v", err)
		}
		if !reachable {
			fmt.Println("unreachable")
			os.Exit(1)
		}
		fmt.Println(dist)
	case "impact":
		out, err := engine.CriticalPaths(ctx, key, *maxHops)
		if err != nil {
			fatal(globals, "critical_paths: %v", err)
		}
		for _, e := range out {
			fmt.Printf("%s\t%d\t%s\n", e.Key, e.Distance, e.ImpactLevel)
		}
	default:
		fatal(globals, "unknown query op %q", op)
	}
}

func mustPrintKeys(globals GlobalFlags, keys []isg.ISGL1Key, err error) {
	if err != nil {
		fatal(globals, "query failed: %v", err)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
}
