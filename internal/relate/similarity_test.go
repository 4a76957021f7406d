package relate

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{name: "identical", a: "Bioreactor", b: "Bioreactor", min: 1.0, max: 1.0},
		{name: "hyphenation variant", a: "Bioreactor", b: "Bio-reactor", min: 1.0, max: 1.0},
		{name: "spacing variant", a: "Heat Exchanger", b: "Heatexchanger", min: 1.0, max: 1.0},
		{name: "case only", a: "SCADA", b: "scada", min: 1.0, max: 1.0},
		{name: "head term is not a synonym", a: "Safety Valve", b: "Valve", min: 0, max: 0.79},
		{name: "unrelated", a: "Bioreactor", b: "Centrifuge", min: 0, max: 0.3},
		{name: "empty", a: "", b: "Valve", min: 0, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity(%q, %q) = %.3f, want within [%.2f, %.2f]",
					tt.a, tt.b, got, tt.min, tt.max)
			}
			if sym := Similarity(tt.b, tt.a); sym != got {
				t.Errorf("Similarity is not symmetric: %.3f vs %.3f", got, sym)
			}
		})
	}
}

func TestSuffixTokens(t *testing.T) {
	tests := []struct {
		child  string
		parent string
		want   bool
	}{
		{"Safety Valve", "Valve", true},
		{"Pressure Safety Valve", "Safety Valve", true},
		{"Pressure Safety Valve", "Valve", true},
		{"Valve", "Safety Valve", false}, // wrong direction
		{"Safety Valve", "Safety", false},
		{"Valve", "Valve", false},          // identical, not an extension
		{"Bio-reactor", "reactor", false},  // single token, no word boundary
		{"Valve Seat", "Valve", false},     // head differs
		{"", "Valve", false},
	}

	for _, tt := range tests {
		if got := suffixTokens(tt.child, tt.parent); got != tt.want {
			t.Errorf("suffixTokens(%q, %q) = %v, want %v", tt.child, tt.parent, got, tt.want)
		}
	}
}

func TestStripForm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bio-reactor", "bioreactor"},
		{"Safety Valve", "safetyvalve"},
		{"PID-3", "pid3"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := stripForm(tt.in); got != tt.want {
			t.Errorf("stripForm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
