// Package planner turns ticket bodies into ordered step lists.
// Planning is deterministic: the same input always yields the same plan.
package planner

import (
	"strings"

	"github.com/clearframe/clearframe/internal/signal"
	"github.com/clearframe/clearframe/internal/types"
)

// EmptyStep is the single step planned for a body without instructions.
const EmptyStep = "No instructions provided"

// Files written by intervention plans, relative to the ticket workspace.
const (
	InterventionFile   = "intervention.md"
	CounterfactualFile = "counterfactual.txt"
)

// BuildPlan makes one step per non-blank line of body, trimmed, with 1-based ids.
func BuildPlan(ticketID, body string) types.Plan {
	var steps []types.Step
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		steps = append(steps, types.NewStep(len(steps)+1, line))
	}
	if len(steps) == 0 {
		steps = append(steps, types.NewStep(1, EmptyStep))
	}
	return types.Plan{TicketID: ticketID, Steps: steps}
}

// InterventionPlan writes the intervention text for YES and SOFT analyses,
// plus the counterfactual question for YES. It returns false when the
// analysis calls for no intervention.
func InterventionPlan(ticketID string, a types.Analysis) (types.Plan, bool) {
	if a.Intervention == types.InterventionNo || a.Intervention == "" {
		return types.Plan{}, false
	}

	// Silent-mode analyses carry no texts; fall back to the fixed ones.
	text := a.InterventionText
	if text == "" {
		text = signal.InterventionText(a.Classification)
	}
	steps := []types.Step{
		types.NewStep(1, writeStep(InterventionFile, text)),
	}
	if a.Intervention == types.InterventionYes {
		question := a.Counterfactual
		if question == "" {
			question = signal.Counterfactual
		}
		steps = append(steps, types.NewStep(2, writeStep(CounterfactualFile, question)))
	}
	return types.Plan{TicketID: ticketID, Steps: steps}, true
}

// ForAnalysis picks the intervention plan when the analysis calls for one,
// otherwise the line-split plan of body.
func ForAnalysis(ticketID, body string, a types.Analysis) types.Plan {
	if p, ok := InterventionPlan(ticketID, a); ok {
		return p
	}
	return BuildPlan(ticketID, body)
}

func writeStep(path, content string) string {
	return "write " + path + ": " + content
}
