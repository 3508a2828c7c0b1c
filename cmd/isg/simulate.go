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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isgraph/pkg/ingest"
	"github.com/kraklabs/isgraph/pkg/isg"
	"github.com/kraklabs/isgraph/pkg/query"
	"github.com/kraklabs/isgraph/pkg/simulate"
)

// runSimulate implements `isg simulate <key> --path <dir> --change <Add|Modify|Remove|Rename>`:
// it ingests path into an in-memory graph, then runs the four-phase
// simulation from pkg/simulate against the requested key.
func runSimulate(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	path := fs.String("path", ".", "Directory to ingest before simulating")
	changeType := fs.String("change", "Modify", "Change type: Add|Modify|Remove|Rename")
	description := fs.String("description", "", "Free-text description of the change")
	proposedCode := fs.String("proposed", "", "Proposed future code for the target entity")
	maxHops := fs.Int("max-hops", 3, "Blast-radius depth for the impact phase")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fatal(globals, "usage: isg simulate <key> --path <dir> [--change Modify]")
	}
	key := isg.ISGL1Key(fs.Arg(0))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := ingest.DefaultConfig()
	pipeline, err := ingest.New(cfg, logger)
	if err != nil {
		fatal(globals, "init pipeline: %v", err)
	}
	defer func() { _ = pipeline.Close() }()

	files, err := ingest.WalkLocalPath(*path, cfg)
	if err != nil {
		fatal(globals, "walk path: %v", err)
	}
	ctx := context.Background()
	if _, err := pipeline.Run(ctx, files); err != nil {
		fatal(globals, "ingest failed: %v", err)
	}

	engine := query.New(query.GraphSource{Graph: pipeline.Graph()})
	sim := simulate.New(pipeline.Graph(), engine, *maxHops)

	req := simulate.ChangeRequest{
		TargetKey:    key,
		ChangeType:   simulate.ChangeType(*changeType),
		Description:  *description,
		ProposedCode: *proposedCode,
	}

	plan, err := sim.Simulate(ctx, req)
	if err != nil {
		fatal(globals, "simulate failed: %v", err)
	}

	printSimulationPlan(plan, globals)
}

func printSimulationPlan(plan *simulate.SimulationPlan, globals GlobalFlags) {
	if globals.JSON {
		fmt.Printf(`{"target":%q,"forward":%d,"reverse":%d,"affected":%d,"all_validations_passed":%t,"confidence":%.2f}`+"\n",
			plan.Request.TargetKey, len(plan.Forward), len(plan.Reverse), len(plan.AffectedEntities),
			plan.AllValidationsPassed, plan.Confidence.Overall)
		return
	}
	fmt.Printf("%s %s\n", colorBold("Target:"), plan.Request.TargetKey)
	fmt.Printf("  forward deps:  %d\n", len(plan.Forward))
	fmt.Printf("  reverse deps:  %d\n", len(plan.Reverse))
	fmt.Printf("  affected:      %d\n", len(plan.AffectedEntities))
	status := colorGood("PASS")
	if !plan.AllValidationsPassed {
		status = colorBad("FAIL")
	}
	fmt.Printf("  validations:   %s\n", status)
	confColor := colorWarn
	if plan.Confidence.Overall >= simulate.HighConfidence {
		confColor = colorGood
	}
	fmt.Printf("  confidence:    %s\n", confColor(fmt.Sprintf("%.2f", plan.Confidence.Overall)))
	for _, p := range plan.Artifacts.Pitfalls {
		fmt.Printf("  pitfall [%s]: %s\n", p.Severity, p.Title)
	}
}
