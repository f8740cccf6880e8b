// Package types defines the data structures shared by the clearframe builder
// pipeline: tickets, plans and steps, execution results, run records, and the
// classification/intervention tiers produced by the signal engine.
package types

import (
	"fmt"
	"strings"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	// TicketPending is a ticket waiting in the inbox.
	TicketPending TicketStatus = "pending"

	// TicketProcessed is a ticket whose run finished without a failed step.
	TicketProcessed TicketStatus = "processed"

	// TicketFailed is a ticket whose run stopped at a failed step.
	TicketFailed TicketStatus = "failed"
)

// ParseTicketStatus maps a status string onto a TicketStatus.
// Unknown or empty values are treated as pending.
func ParseTicketStatus(s string) TicketStatus {
	switch TicketStatus(strings.ToLower(strings.TrimSpace(s))) {
	case TicketProcessed:
		return TicketProcessed
	case TicketFailed:
		return TicketFailed
	default:
		return TicketPending
	}
}

// UnknownBias is the bias label used when no category matched.
const UnknownBias = "UNKNOWN"

// Ticket is one unit of work read from the inbox.
type Ticket struct {
	// ID is the ticket identifier (defaults to the filename stem).
	ID string `json:"id" yaml:"id"`

	// Title is a short human label (defaults to "Untitled Ticket").
	Title string `json:"title" yaml:"title"`

	// Body is the primary analysis input. Required.
	Body string `json:"body" yaml:"body"`

	// Status is the lifecycle state.
	Status TicketStatus `json:"status" yaml:"status"`

	// BiasType is the elected bias category or UnknownBias.
	BiasType string `json:"bias_type" yaml:"bias_type"`

	// SignalStrength is the elected category strength in [0,1].
	SignalStrength float64 `json:"signal_strength" yaml:"signal_strength"`

	// SourcePath is the file the ticket was loaded from.
	SourcePath string `json:"source_path" yaml:"source_path"`
}

// StepStatus is the state of a single plan step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// Step is one ordered instruction in a plan.
type Step struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Output      string     `json:"output"`
}

// NewStep returns a pending step. It is the only way steps are built.
func NewStep(id int, description string) Step {
	return Step{ID: id, Description: description, Status: StepPending}
}

// Plan is an ordered, immutable list of steps for one ticket.
type Plan struct {
	TicketID string `json:"ticket_id"`
	Steps    []Step `json:"steps"`
}

// Len returns the number of planned steps.
func (p Plan) Len() int { return len(p.Steps) }

// StepsCopy returns a copy of the steps so callers can mutate status
// without touching the plan.
func (p Plan) StepsCopy() []Step {
	out := make([]Step, len(p.Steps))
	copy(out, p.Steps)
	return out
}

// ExecutionResult summarizes one ticket execution.
type ExecutionResult struct {
	// ArtifactPath is the JSON artifact written for the execution.
	ArtifactPath string `json:"artifact_path"`

	// StepCount is the number of steps attempted, not planned.
	StepCount int `json:"step_count"`

	// Failed is true when a step failed and execution stopped early.
	Failed bool `json:"failed"`
}

// RunRecord is one entry in the run index.
type RunRecord struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Path      string `json:"path" yaml:"path"`
	Processed int    `json:"processed" yaml:"processed"`
}

// Classification is the final sunk-cost verdict for a piece of text.
type Classification string

const (
	ClassYes      Classification = "YES"
	ClassPossibly Classification = "POSSIBLY"
	ClassNo       Classification = "NO"
)

// ParseClassification converts a string into a Classification.
func ParseClassification(s string) (Classification, error) {
	switch c := Classification(strings.ToUpper(strings.TrimSpace(s))); c {
	case ClassYes, ClassPossibly, ClassNo:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownClassification, s)
	}
}

// Intervention is the user-facing response tier.
type Intervention string

const (
	// InterventionYes is a full reframe.
	InterventionYes Intervention = "YES"

	// InterventionSoft is a single clarifying question.
	InterventionSoft Intervention = "SOFT"

	// InterventionNo means say nothing.
	InterventionNo Intervention = "NO"
)

// Suggestion is what the external reasoning capability returns.
// Failed marks an error-tagged result; the rationale then carries the error text.
type Suggestion struct {
	Counterfactual string `json:"counterfactual,omitempty"`
	Rationale      string `json:"rationale"`
	Failed         bool   `json:"failed,omitempty"`
}

// DecisionExtract is the decision sentence pulled out of free text.
type DecisionExtract struct {
	CoreDecision    string   `json:"core_decision"`
	PastInvestments []string `json:"past_investments,omitempty"`
}

// Analysis is the signal engine output for one text.
// Silent mode fills only Classification, Signal and Intervention.
type Analysis struct {
	Classification   Classification   `json:"classification"`
	Heuristic        Classification   `json:"heuristic"`
	Signal           float64          `json:"signal"`
	Intervention     Intervention     `json:"intervention"`
	Reasoning        string           `json:"reasoning,omitempty"`
	Counterfactual   string           `json:"counterfactual,omitempty"`
	InterventionText string           `json:"intervention_text,omitempty"`
	Extract          *DecisionExtract `json:"extract,omitempty"`
	Consulted        bool             `json:"consulted,omitempty"`
	Suggestion       *Suggestion      `json:"suggestion,omitempty"`
	BiasType         string           `json:"bias_type,omitempty"`
	SignalStrength   float64          `json:"signal_strength,omitempty"`
}
