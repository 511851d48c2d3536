package analysis

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/pose"
)

func TestFFTImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for i, v := range out {
		if math.Abs(real(v)-1) > 1e-12 || math.Abs(imag(v)) > 1e-12 {
			t.Errorf("bin %d: expected 1, got %v", i, v)
		}
	}
}

func TestFFTRejectsOddLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for length 6")
		}
	}()
	FFT(make([]float64, 6))
}

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 128)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*float64(i)/16)
	}
	period, ok := DominantPeriod(data)
	if !ok {
		t.Fatal("expected a period")
	}
	if math.Abs(period-16) > 1e-9 {
		t.Errorf("expected period 16, got %f", period)
	}

	if _, ok := DominantPeriod(make([]float64, 32)); ok {
		t.Error("expected no period for flat signal")
	}
	if _, ok := DominantPeriod(nil); ok {
		t.Error("expected no period for empty signal")
	}
}

func TestJointSignal(t *testing.T) {
	samples := []animator.Sample{
		{Channels: map[string]pose.JointChannel{"hand": {Translation: mgl64.Vec3{1, 2, 3}}}},
		{Channels: map[string]pose.JointChannel{"hand": {Translation: mgl64.Vec3{4, 5, 6}}}},
	}
	got := JointSignal(samples, "hand", 1)
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Errorf("expected [2 5], got %v", got)
	}
}
