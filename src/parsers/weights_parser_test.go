package parsers

import (
	"strings"
	"testing"
)

func TestParseCostFactorWeights_Valid(t *testing.T) {
	input := "cost_factor,factor\nlabor,0.5\nsteel,0.3\nenergy,0.2\n"
	w, err := ParseCostFactorWeights(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Labor != 0.5 || w.Steel != 0.3 || w.Energy != 0.2 {
		t.Errorf("unexpected weights: %+v", w)
	}
}

func TestParseCostFactorWeights_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"sum not one", "cost_factor,factor\nlabor,0.5\nsteel,0.3\nenergy,0.3\n"},
		{"unknown factor", "cost_factor,factor\nlabor,0.5\nsteel,0.3\nfreight,0.2\n"},
		{"duplicate factor", "cost_factor,factor\nlabor,0.5\nlabor,0.3\nenergy,0.2\n"},
		{"missing factor", "cost_factor,factor\nlabor,0.7\nsteel,0.3\n"},
		{"non-numeric weight", "cost_factor,factor\nlabor,half\nsteel,0.3\nenergy,0.2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCostFactorWeights(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
