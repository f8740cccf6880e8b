package signal

import "github.com/clearframe/clearframe/internal/types"

// Ambiguity band in which explain mode consults the external reasoner.
const (
	ConsultBandLow  = 0.4
	ConsultBandHigh = 0.6
)

// GatePolicy holds the conservative gate thresholds. Thresholds must satisfy
// SilenceBelow <= DowngradeBelow <= HedgeDownBelow <= HedgeUpAt <= ForceYesAt.
type GatePolicy struct {
	// SilenceBelow forces NO for weaker signals.
	SilenceBelow float64

	// ForceYesAt forces YES for signals at or above it.
	ForceYesAt float64

	// HedgeUpAt lifts a NO to POSSIBLY at or above it.
	HedgeUpAt float64

	// HedgeDownBelow lowers a YES to POSSIBLY below it.
	HedgeDownBelow float64

	// DowngradeBelow lowers a POSSIBLY to NO below it.
	DowngradeBelow float64
}

// DefaultGatePolicy returns the standard thresholds.
func DefaultGatePolicy() GatePolicy {
	return GatePolicy{
		SilenceBelow:   0.35,
		ForceYesAt:     0.85,
		HedgeUpAt:      0.75,
		HedgeDownBelow: 0.65,
		DowngradeBelow: 0.50,
	}
}

// Apply gates c against signal. Hedges cascade, so a YES lowered to POSSIBLY
// continues to NO below DowngradeBelow, and Apply is idempotent.
func (p GatePolicy) Apply(signal float64, c types.Classification) types.Classification {
	if signal < p.SilenceBelow {
		return types.ClassNo
	}
	if signal >= p.ForceYesAt {
		return types.ClassYes
	}

	if signal >= p.HedgeUpAt && c == types.ClassNo {
		c = types.ClassPossibly
	}
	if signal < p.HedgeDownBelow && c == types.ClassYes {
		c = types.ClassPossibly
	}
	if signal < p.DowngradeBelow && c == types.ClassPossibly {
		c = types.ClassNo
	}
	return c
}

// ConservativeGate applies DefaultGatePolicy.
func ConservativeGate(signal float64, c types.Classification) types.Classification {
	return DefaultGatePolicy().Apply(signal, c)
}

// InterventionFor maps a final classification to its intervention tier.
func InterventionFor(c types.Classification) types.Intervention {
	switch c {
	case types.ClassYes:
		return types.InterventionYes
	case types.ClassPossibly:
		return types.InterventionSoft
	default:
		return types.InterventionNo
	}
}

// ShouldConsult reports whether explain mode should consult the external
// reasoner for signal. Silent mode never consults.
func ShouldConsult(signal float64, explain bool) bool {
	return explain && signal >= ConsultBandLow && signal <= ConsultBandHigh
}
