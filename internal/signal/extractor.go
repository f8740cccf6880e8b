package signal

import (
	"strings"

	"github.com/clearframe/clearframe/internal/types"
)

const (
	// maxDecisionLen caps CoreDecision in runes, including the ellipsis.
	maxDecisionLen = 140

	// PastInvestmentNote is recorded when the text references prior investment.
	PastInvestmentNote = "User references past investment."
)

// ExtractDecision pulls the first sentence out of text as the core decision.
// It does not infer intent.
func ExtractDecision(text string) *types.DecisionExtract {
	clean := strings.Join(strings.Fields(text), " ")

	candidate := clean
	if i := strings.IndexAny(clean, ".!?"); i >= 0 {
		candidate = clean[:i]
	}
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		candidate = clean
	}

	ex := &types.DecisionExtract{CoreDecision: clip(candidate)}
	if containsAny(normalize(clean), lex.extractPast) {
		ex.PastInvestments = []string{PastInvestmentNote}
	}
	return ex
}

// clip shortens s to maxDecisionLen runes, marking the cut with "...".
func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxDecisionLen {
		return s
	}
	return string(r[:maxDecisionLen-3]) + "..."
}
