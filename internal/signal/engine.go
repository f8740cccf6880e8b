package signal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clearframe/clearframe/internal/consult"
	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/types"
)

// Explain-mode texts.
const (
	EmptyReasoning = "No decision content provided."

	Counterfactual = "If this were presented today with zero prior investment, " +
		"what evidence would justify continuing from this point?"

	softInterventionText = "You're already questioning whether past investment is influencing this.\n\n" +
		"If none of the past effort could be recovered, would your next step change?"
)

// Engine analyzes text for sunk-cost reasoning.
type Engine struct {
	gate       GatePolicy
	consultant consult.Consultant
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGate replaces the default gate thresholds.
func WithGate(p GatePolicy) Option {
	return func(e *Engine) { e.gate = p }
}

// WithConsultant sets the external reasoner used in explain mode.
// A nil consultant disables consultation.
func WithConsultant(c consult.Consultant) Option {
	return func(e *Engine) { e.consultant = c }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with the default gate and no consultant.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{gate: DefaultGatePolicy()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.New("signal")
	}
	return e
}

// Gate returns the engine's gate policy.
func (e *Engine) Gate() GatePolicy { return e.gate }

// Analyze scores text. Silent mode (explain=false) fills only Classification,
// Signal and Intervention; explain mode adds reasoning, intervention text, the
// decision extract and, inside the ambiguity band, a consultation.
func (e *Engine) Analyze(ctx context.Context, text string, explain bool) types.Analysis {
	return e.analyze(ctx, text, "", explain)
}

// AnalyzeTicket analyzes a ticket body, passing its bias category to the
// consultant and copying the bias election onto the result.
func (e *Engine) AnalyzeTicket(ctx context.Context, t *types.Ticket, explain bool) types.Analysis {
	category := t.BiasType
	if category == types.UnknownBias {
		category = ""
	}
	a := e.analyze(ctx, t.Body, category, explain)
	a.BiasType = t.BiasType
	a.SignalStrength = t.SignalStrength
	return a
}

func (e *Engine) analyze(ctx context.Context, text, category string, explain bool) types.Analysis {
	if strings.TrimSpace(text) == "" {
		a := types.Analysis{Classification: types.ClassNo, Intervention: types.InterventionNo}
		if explain {
			a.Heuristic = types.ClassNo
			a.Reasoning = EmptyReasoning
		}
		return a
	}

	heuristic := HeuristicClassify(text)
	sig := ComputeSignal(text)
	final := e.gate.Apply(sig, heuristic)

	a := types.Analysis{
		Classification: final,
		Signal:         sig,
		Intervention:   InterventionFor(final),
	}
	if !explain {
		return a
	}

	a.Heuristic = heuristic
	a.Reasoning = reasoningFor(final, sig)
	if final == types.ClassYes {
		a.Counterfactual = Counterfactual
	}
	a.InterventionText = InterventionText(final)
	a.Extract = ExtractDecision(text)

	if ShouldConsult(sig, explain) && e.consultant != nil {
		s := e.consultant.Consult(ctx, text, category)
		a.Consulted = true
		a.Suggestion = &s
		if s.Failed {
			e.logger.Warn("consultation failed", "error", s.Rationale)
		} else {
			e.logger.Debug("consulted", "signal", sig)
		}
	}
	return a
}

func reasoningFor(c types.Classification, signal float64) string {
	switch c {
	case types.ClassYes:
		return fmt.Sprintf("Signal %.2f: past investment appears to justify future action.", signal)
	case types.ClassPossibly:
		return fmt.Sprintf("Signal %.2f: some sunk-cost indicators present, but evidence is ambiguous.", signal)
	default:
		return fmt.Sprintf("Signal %.2f: insufficient evidence of sunk-cost-driven reasoning.", signal)
	}
}

// InterventionText returns the user-facing text for c. NO yields "".
func InterventionText(c types.Classification) string {
	switch c {
	case types.ClassYes:
		return "**Past investment shouldn't drive future decisions.**\n\n" +
			"This reasoning relies on unrecoverable costs rather than expected future value.\n\n" +
			"**Reframe:** " + Counterfactual
	case types.ClassPossibly:
		return softInterventionText
	default:
		return ""
	}
}
