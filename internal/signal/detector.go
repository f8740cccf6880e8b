// Package signal scores free text for sunk-cost reasoning and decides how
// strongly to respond.
//
// # Signal
//
// ComputeSignal sums the weights of four boolean factors, each detected by a
// case-insensitive substring match:
//   - past (0.30): reference to prior investment
//   - time_effort (0.20): time, effort or money
//   - obligation (0.35): "so I should", "can't quit", ...
//   - waste (0.40): "waste", "for nothing", ...
//
// The sum is rounded to two decimals and capped at 1.0. Waste together with obligation floors the score
// at 0.85.
//
// # Gate
//
// The heuristic classification is passed through a conservative gate that
// silences weak evidence and only hedges toward the middle tier otherwise.
package signal

import (
	"math"

	"github.com/clearframe/clearframe/internal/types"
)

// Factors records which indicators fired for a text.
type Factors map[string]bool

// DetectFactors reports every factor for text.
func DetectFactors(text string) Factors {
	t := normalize(text)
	out := make(Factors, len(lex.factors))
	for _, f := range lex.factors {
		out[f.name] = containsAny(t, f.keywords)
	}
	return out
}

// ComputeSignal returns the sunk-cost signal for text in [0,1].
func ComputeSignal(text string) float64 {
	fired := DetectFactors(text)

	score := 0.0
	for _, f := range lex.factors {
		if fired[f.name] {
			score += f.weight
		}
	}
	// Weights are hundredths; rounding keeps sums like 0.2+0.4 exactly on
	// the consult band edge.
	score = math.Round(score*100) / 100
	if fired[FactorWaste] && fired[FactorObligation] {
		score = math.Max(score, decisiveFloor)
	}
	return math.Min(score, 1.0)
}

// HeuristicClassify classifies text before gating. Explicit neutralization
// wins, then bias self-awareness, then signal thresholds.
func HeuristicClassify(text string) types.Classification {
	t := normalize(text)

	if containsAny(t, lex.neutralizers) {
		return types.ClassNo
	}
	if containsAny(t, lex.questionFrame) && containsAny(t, []string{"because"}) && containsAny(t, lex.pastCues) {
		return types.ClassPossibly
	}

	s := ComputeSignal(text)
	switch {
	case s >= 0.85:
		return types.ClassYes
	case s >= 0.50:
		return types.ClassPossibly
	default:
		return types.ClassNo
	}
}
