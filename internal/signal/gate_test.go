package signal

import (
	"fmt"
	"testing"

	"github.com/clearframe/clearframe/internal/types"
)

var allClasses = []types.Classification{types.ClassYes, types.ClassPossibly, types.ClassNo}

func TestConservativeGate(t *testing.T) {
	tests := []struct {
		signal float64
		in     types.Classification
		want   types.Classification
	}{
		{0.20, types.ClassYes, types.ClassNo},
		{0.34, types.ClassPossibly, types.ClassNo},
		{0.90, types.ClassNo, types.ClassYes},
		{0.85, types.ClassPossibly, types.ClassYes},
		{0.80, types.ClassNo, types.ClassPossibly},
		{0.70, types.ClassNo, types.ClassNo},
		{0.70, types.ClassYes, types.ClassYes},
		{0.60, types.ClassYes, types.ClassPossibly},
		{0.55, types.ClassPossibly, types.ClassPossibly},
		{0.45, types.ClassPossibly, types.ClassNo},
		{0.45, types.ClassYes, types.ClassNo},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f/%s", tt.signal, tt.in), func(t *testing.T) {
			if got := ConservativeGate(tt.signal, tt.in); got != tt.want {
				t.Errorf("ConservativeGate(%v, %s) = %s, want %s", tt.signal, tt.in, got, tt.want)
			}
		})
	}
}

func TestConservativeGate_Idempotent(t *testing.T) {
	for i := 0; i <= 100; i++ {
		s := float64(i) / 100
		for _, c := range allClasses {
			once := ConservativeGate(s, c)
			if twice := ConservativeGate(s, once); twice != once {
				t.Errorf("gate not idempotent at %.2f/%s: %s then %s", s, c, once, twice)
			}
		}
	}
}

func TestGatePolicy_Custom(t *testing.T) {
	p := DefaultGatePolicy()
	p.ForceYesAt = 0.95
	if got := p.Apply(0.9, types.ClassYes); got != types.ClassYes {
		t.Errorf("Apply(0.9, YES) = %s, want YES", got)
	}
	if got := p.Apply(0.9, types.ClassNo); got != types.ClassPossibly {
		t.Errorf("Apply(0.9, NO) = %s, want POSSIBLY", got)
	}
}

func TestInterventionFor(t *testing.T) {
	want := map[types.Classification]types.Intervention{
		types.ClassYes:      types.InterventionYes,
		types.ClassPossibly: types.InterventionSoft,
		types.ClassNo:       types.InterventionNo,
	}
	for c, w := range want {
		if got := InterventionFor(c); got != w {
			t.Errorf("InterventionFor(%s) = %s, want %s", c, got, w)
		}
	}
}

func TestShouldConsult(t *testing.T) {
	tests := []struct {
		signal  float64
		explain bool
		want    bool
	}{
		{0.2, true, false},
		{0.4, true, true},
		{0.5, true, true},
		{0.6, true, true},
		{0.9, true, false},
		{0.5, false, false},
	}
	for _, tt := range tests {
		if got := ShouldConsult(tt.signal, tt.explain); got != tt.want {
			t.Errorf("ShouldConsult(%v, %v) = %v, want %v", tt.signal, tt.explain, got, tt.want)
		}
	}
}
