package driver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/interp"
)

const (
	minMass         = 0.1
	minIntegralMass = 0.01
)

// Arithmetic supplies the vector-space operations a spring integrates with.
type Arithmetic[D any] struct {
	Add   func(a, b D) D
	Scale func(a D, s float64) D
}

var (
	FloatArithmetic = Arithmetic[float64]{
		Add:   func(a, b float64) float64 { return a + b },
		Scale: func(a, s float64) float64 { return a * s },
	}
	Vec3Arithmetic = Arithmetic[mgl64.Vec3]{
		Add:   func(a, b mgl64.Vec3) mgl64.Vec3 { return a.Add(b) },
		Scale: func(a mgl64.Vec3, s float64) mgl64.Vec3 { return a.Mul(s) },
	}
)

type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness" json:"stiffness" toml:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping" toml:"damping"`
	Mass      float64 `yaml:"mass" json:"mass" toml:"mass"`
	// Delta makes interpolated reads return target minus value instead of value.
	Delta bool `yaml:"delta" json:"delta" toml:"delta"`
}

// Spring is a Driver whose value chases a target through a damped harmonic
// oscillator. SetValue and ModifyValue move the target, never the value itself.
type Spring[D any] struct {
	*Variable[D]
	cfg            SpringConfig
	arith          Arithmetic[D]
	currentTarget  D
	previousTarget D
	velocity       D
}

func NewSpring[D any](cfg SpringConfig, initial func() D, interpolator interp.Interpolator[D], arith Arithmetic[D]) *Spring[D] {
	cfg.Mass = math.Max(cfg.Mass, minMass)
	return &Spring[D]{
		Variable:       NewVariable(initial, interpolator),
		cfg:            cfg,
		arith:          arith,
		currentTarget:  initial(),
		previousTarget: initial(),
		velocity:       arith.Scale(initial(), 0),
	}
}

func NewFloatSpring(cfg SpringConfig, initial float64) *Spring[float64] {
	return NewSpring(cfg, func() float64 { return initial }, interp.Float, FloatArithmetic)
}

func NewVec3Spring(cfg SpringConfig, initial mgl64.Vec3) *Spring[mgl64.Vec3] {
	return NewSpring(cfg, func() mgl64.Vec3 { return initial }, interp.Vec3, Vec3Arithmetic)
}

func (s *Spring[D]) Config() SpringConfig { return s.cfg }

func (s *Spring[D]) Target() D   { return s.currentTarget }
func (s *Spring[D]) Velocity() D { return s.velocity }

func (s *Spring[D]) SetValue(value D) { s.currentTarget = value }

func (s *Spring[D]) ModifyValue(f func(D) D) { s.currentTarget = f(s.currentTarget) }

func (s *Spring[D]) PushCurrentToPrevious() {
	s.Variable.PushCurrentToPrevious()
	s.previousTarget = s.currentTarget
}

func (s *Spring[D]) Reset() {
	s.Variable.Reset()
	s.currentTarget = s.initial()
	s.previousTarget = s.initial()
	s.velocity = s.arith.Scale(s.initial(), 0)
}

func (s *Spring[D]) ValueInterpolated(partialTicks float64) D {
	value := s.Variable.ValueInterpolated(partialTicks)
	if !s.cfg.Delta {
		return value
	}
	target := s.interpolator(s.previousTarget, s.currentTarget, partialTicks)
	return s.arith.Add(target, s.arith.Scale(value, -1))
}

// Tick advances the oscillator by one step.
func (s *Spring[D]) Tick() {
	add, scale := s.arith.Add, s.arith.Scale

	displacement := add(s.current, scale(s.currentTarget, -1))
	springForce := scale(displacement, -s.cfg.Stiffness)
	dampingForce := scale(s.velocity, -s.cfg.Damping)
	acceleration := scale(add(springForce, dampingForce), 1/math.Max(s.cfg.Mass, minIntegralMass))

	s.velocity = add(s.velocity, acceleration)
	s.current = add(s.current, s.velocity)
}

var _ Driver[float64] = (*Spring[float64])(nil)
