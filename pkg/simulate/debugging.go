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

package simulate

import "fmt"

// QuestionCategory groups a RubberDuckQuestion by what it probes.
type QuestionCategory string

const (
	CategoryScope          QuestionCategory = "Scope"
	CategoryImplementation QuestionCategory = "Implementation"
	CategoryTesting        QuestionCategory = "Testing"
	CategoryImpact         QuestionCategory = "Impact"
)

// RubberDuckQuestion is a self-validation prompt surfaced alongside a plan.
// Export format (Markdown, etc.) is the external renderer's concern.
type RubberDuckQuestion struct {
	Category QuestionCategory
	Question string
	Reasoning string
}

// StepExplanation documents one simulation phase in plain terms.
type StepExplanation struct {
	Phase          string
	WhatItDoes     string
	WhyItsNecessary string
	HowToValidate  string
}

// PitfallSeverity is the severity of one entry in the pitfall list.
type PitfallSeverity string

const (
	PitfallLow      PitfallSeverity = "Low"
	PitfallMedium   PitfallSeverity = "Medium"
	PitfallHigh     PitfallSeverity = "High"
	PitfallCritical PitfallSeverity = "Critical"
)

// Pitfall is one thing to watch out for while carrying out the change.
type Pitfall struct {
	Title    string
	Severity PitfallSeverity
}

// ValidationChecklist groups pre/during/post checks for the change.
type ValidationChecklist struct {
	Pre  []string
	During []string
	Post []string
}

// DebuggingArtifacts is pure data; rendering it to Markdown or any other
// export format is left to the caller.
type DebuggingArtifacts struct {
	Questions  []RubberDuckQuestion
	Steps      []StepExplanation
	Checklist  ValidationChecklist
	Pitfalls   []Pitfall
}

func buildDebuggingArtifacts(req ChangeRequest, plan *SimulationPlan) DebuggingArtifacts {
	questions := []RubberDuckQuestion{
		{Category: CategoryScope, Question: "Does this change touch only " + string(req.TargetKey) + ", or does it ripple into the " + fmt.Sprint(len(plan.AffectedEntities)) + " entities in its blast radius?"},
		{Category: CategoryTesting, Question: "Which of the re-run-tests validation tasks actually exercise the changed behavior, not just compile it?"},
		{Category: CategoryImpact, Question: "Are any Critical-impact entities in the blast radius, and have their owners been notified?"},
	}

	steps := []StepExplanation{
		{Phase: "Analyze", WhatItDoes: "Computes the target's forward/reverse dependencies and blast radius.", WhyItsNecessary: "Establishes the full set of entities a change could touch before anything is applied.", HowToValidate: "Forward/reverse counts match what a manual grep for callers/callees would find."},
		{Phase: "Impact", WhatItDoes: "Classifies each affected entity by critical-path distance and emits validation tasks.", WhyItsNecessary: "Turns a raw reachable set into an ordered list of what needs re-checking.", HowToValidate: "Every entity in the blast radius has exactly one validation task."},
		{Phase: "Apply", WhatItDoes: "Re-stamps the target's temporal state and records the proposed code in-memory.", WhyItsNecessary: "Lets later phases validate against the projected future state without mutating the persistent store.", HowToValidate: "Target's temporal_state matches the compatibility matrix for the requested change type."},
		{Phase: "Validate", WhatItDoes: "Runs each validation task and aggregates pass/fail.", WhyItsNecessary: "Surfaces whether the proposed change is structurally sound before a human applies it for real.", HowToValidate: "AllValidationsPassed reflects every task's actual Passed value."},
	}

	checklist := ValidationChecklist{
		Pre:    []string{"target entity resolves in the graph", "proposed code is non-empty for Add/Modify"},
		During: []string{"temporal state transition matches the compatibility matrix"},
		Post:   []string{"every affected entity's validation task passed", "confidence score is at or above the high-confidence threshold"},
	}

	var pitfalls []Pitfall
	for _, a := range plan.AffectedEntities {
		if a.ImpactLevel == "Critical" {
			pitfalls = append(pitfalls, Pitfall{Title: "Critical-impact entity " + string(a.Key) + " in blast radius", Severity: PitfallCritical})
		}
	}
	if req.ChangeType == ChangeRemove && len(plan.Reverse) > 0 {
		pitfalls = append(pitfalls, Pitfall{Title: "Removing an entity with live callers", Severity: PitfallHigh})
	}

	return DebuggingArtifacts{Questions: questions, Steps: steps, Checklist: checklist, Pitfalls: pitfalls}
}
