package timing

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTimeSpanConversions(t *testing.T) {
	if got := Seconds(1.5).InTicks(); got != 30 {
		t.Errorf("expected 30 ticks, got %v", got)
	}
	if got := Ticks(10).InSeconds(); got != 0.5 {
		t.Errorf("expected 0.5 s, got %v", got)
	}
}

func TestTransitionApply(t *testing.T) {
	tests := []struct {
		name   string
		tr     Transition
		weight float64
		want   float64
	}{
		{"linear mid", Of(10, ease.Linear), 0.25, 0.25},
		{"clamped low", Of(10, ease.Linear), -0.5, 0},
		{"clamped high", Of(10, ease.Linear), 1.5, 1},
		{"in quad", Of(10, ease.InQuad), 0.5, 0.25},
		{"in quad inverse", Of(10, ease.InQuad).WithInverseEasing(), 0.5, 0.75},
		{"double inverse", Of(10, ease.InQuad).WithInverseEasing().WithInverseEasing(), 0.5, 0.25},
		{"nil easing", Transition{Duration: 4}, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Apply(tt.weight); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Apply(%v) = %v, want %v", tt.weight, got, tt.want)
			}
		})
	}
}

func TestEasingLookup(t *testing.T) {
	if _, ok := Easing("in_out_sine"); !ok {
		t.Error("expected in_out_sine to resolve")
	}
	if _, ok := Easing(""); !ok {
		t.Error("expected empty name to resolve to linear")
	}
	if _, ok := Easing("wobble"); ok {
		t.Error("expected unknown easing to be rejected")
	}
	if len(EasingNames()) == 0 {
		t.Error("expected registered easing names")
	}
}
