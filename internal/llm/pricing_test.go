package llm

import (
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		model  string
		in     int
		out    int
		want   float64
		wantOK bool
	}{
		{"gemini-2.5-flash", 1_000_000, 0, 0.3, true},
		{"gpt-4o-mini", 2_000_000, 1_000_000, 0.9, true},
		{"no-such-model", 10, 10, 0, false},
	}
	for _, tt := range tests {
		got, ok := EstimateCost(tt.model, tt.in, tt.out)
		if ok != tt.wantOK {
			t.Fatalf("%s: ok = %v, want %v", tt.model, ok, tt.wantOK)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: cost = %f, want %f", tt.model, got, tt.want)
		}
	}
}
