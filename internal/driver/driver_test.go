package driver

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestVariableRoundTrip(t *testing.T) {
	d := NewFloat(0)
	values := []float64{1, -3.5, 42, 0, 1e-6}

	for _, x := range values {
		prev := d.CurrentValue()
		d.PushCurrentToPrevious()
		d.SetValue(x)

		if got := d.ValueInterpolated(0); got != prev {
			t.Errorf("expected interpolated(0) %f, got %f", prev, got)
		}
		if got := d.ValueInterpolated(1); got != x {
			t.Errorf("expected interpolated(1) %f, got %f", x, got)
		}
	}
}

func TestVariableModifyAndReset(t *testing.T) {
	d := NewFloat(2)
	d.ModifyValue(func(v float64) float64 { return v * 5 })
	if d.CurrentValue() != 10 {
		t.Errorf("expected 10, got %f", d.CurrentValue())
	}

	d.PushCurrentToPrevious()
	d.Reset()
	if d.CurrentValue() != 2 || d.PreviousValue() != 2 {
		t.Errorf("expected reset to 2/2, got %f/%f", d.CurrentValue(), d.PreviousValue())
	}
}

func TestVariableTickIsNoop(t *testing.T) {
	d := NewVec3(mgl64.Vec3{1, 2, 3})
	d.Tick()
	if d.CurrentValue() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected tick to leave value, got %v", d.CurrentValue())
	}
}

func TestSpringConvergence(t *testing.T) {
	s := NewFloatSpring(SpringConfig{Stiffness: 0.3, Damping: 0.3, Mass: 1}, 0)
	s.SetValue(10)

	prevPeak := math.Inf(1)
	var peak float64
	for i := 0; i < 200; i++ {
		s.PushCurrentToPrevious()
		s.Tick()

		dev := math.Abs(s.CurrentValue() - 10)
		if math.IsNaN(dev) || dev > 10 {
			t.Fatalf("spring diverged at tick %d: %f", i, s.CurrentValue())
		}
		peak = math.Max(peak, dev)
		if i%20 == 19 {
			if peak > prevPeak {
				t.Errorf("expected decaying amplitude, window peak %f after %f", peak, prevPeak)
			}
			prevPeak = peak
			peak = 0
		}
	}

	if math.Abs(s.CurrentValue()-10) > 1e-3 {
		t.Errorf("expected convergence to 10, got %f", s.CurrentValue())
	}
}

func TestSpringSetValueMovesTarget(t *testing.T) {
	s := NewFloatSpring(SpringConfig{Stiffness: 0.5, Damping: 0.5, Mass: 1}, 0)
	s.SetValue(4)

	if s.CurrentValue() != 0 {
		t.Errorf("expected value untouched by SetValue, got %f", s.CurrentValue())
	}
	if s.Target() != 4 {
		t.Errorf("expected target 4, got %f", s.Target())
	}

	s.ModifyValue(func(v float64) float64 { return v + 1 })
	if s.Target() != 5 {
		t.Errorf("expected modified target 5, got %f", s.Target())
	}
}

func TestSpringMassFloor(t *testing.T) {
	s := NewFloatSpring(SpringConfig{Stiffness: 0.3, Damping: 0.3, Mass: 0}, 0)
	if s.Config().Mass != minMass {
		t.Errorf("expected mass floored to %f, got %f", minMass, s.Config().Mass)
	}
}

func TestSpringDeltaMode(t *testing.T) {
	s := NewFloatSpring(SpringConfig{Stiffness: 0.3, Damping: 0.5, Mass: 1, Delta: true}, 0)

	s.PushCurrentToPrevious()
	s.SetValue(1)
	s.Tick()

	// previous target 0, value 0; current target 1, value 0.3
	if got := s.ValueInterpolated(0); math.Abs(got) > 1e-12 {
		t.Errorf("expected delta 0 at partial 0, got %f", got)
	}
	if got := s.ValueInterpolated(1); math.Abs(got-0.7) > 1e-12 {
		t.Errorf("expected delta 0.7 at partial 1, got %f", got)
	}
}

func TestSpringReset(t *testing.T) {
	s := NewVec3Spring(SpringConfig{Stiffness: 0.3, Damping: 0.3, Mass: 1}, mgl64.Vec3{})
	s.SetValue(mgl64.Vec3{1, 1, 1})
	s.Tick()
	s.Reset()

	if s.Target() != (mgl64.Vec3{}) || s.CurrentValue() != (mgl64.Vec3{}) || s.Velocity() != (mgl64.Vec3{}) {
		t.Errorf("expected zeroed spring after reset, got value %v target %v velocity %v",
			s.CurrentValue(), s.Target(), s.Velocity())
	}
}

func TestContainerLazyCreation(t *testing.T) {
	c := NewContainer()
	speed := FloatKey("speed", 0.25)

	if got := Value(c, speed); got != 0.25 {
		t.Errorf("expected initial 0.25, got %f", got)
	}
	Set(c, speed, 1)
	if Get(c, speed) != Get(c, speed) {
		t.Error("expected the same driver on repeated access")
	}

	c.PushAll()
	Set(c, speed, 3)
	if got := Interpolated(c, speed, 0.5); got != 2 {
		t.Errorf("expected interpolated 2, got %f", got)
	}

	c.ResetAll()
	if got := Value(c, speed); got != 0.25 {
		t.Errorf("expected reset to 0.25, got %f", got)
	}
}

func TestContainerTickAllTicksSprings(t *testing.T) {
	c := NewContainer()
	key := NewKey("recoil", func() Driver[float64] {
		return NewFloatSpring(SpringConfig{Stiffness: 0.3, Damping: 0.3, Mass: 1}, 0)
	})
	Set(c, key, 10)
	c.TickAll()

	if got := Value(c, key); math.Abs(got-3) > 1e-12 {
		t.Errorf("expected spring value 3 after one tick, got %f", got)
	}
}

func TestContainerTypeMismatchPanics(t *testing.T) {
	c := NewContainer()
	Get(c, FloatKey("x", 0))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched key type")
		}
	}()
	Get(c, BoolKey("x", false))
}

func TestContainerNames(t *testing.T) {
	c := NewContainer()
	Get(c, FloatKey("b", 0))
	Get(c, FloatKey("a", 0))

	names := c.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}
}
