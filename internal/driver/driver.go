package driver

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/interp"
)

// Driver is a double-buffered value advanced once per tick and read once per frame.
// PushCurrentToPrevious must run before any mutation in a tick so frame reads blend
// the last tick's value into this one.
type Driver[D any] interface {
	CurrentValue() D
	PreviousValue() D
	ValueInterpolated(partialTicks float64) D
	SetValue(v D)
	ModifyValue(f func(D) D)
	PushCurrentToPrevious()
	Tick()
	Reset()
}

// Ticker is the type-erased part of a Driver the container needs.
type Ticker interface {
	PushCurrentToPrevious()
	Tick()
	Reset()
}

// Variable is the plain Driver: values change only through SetValue and ModifyValue.
type Variable[D any] struct {
	current      D
	previous     D
	initial      func() D
	interpolator interp.Interpolator[D]
}

func NewVariable[D any](initial func() D, interpolator interp.Interpolator[D]) *Variable[D] {
	return &Variable[D]{
		current:      initial(),
		previous:     initial(),
		initial:      initial,
		interpolator: interpolator,
	}
}

func NewFloat(initial float64) *Variable[float64] {
	return NewVariable(func() float64 { return initial }, interp.Float)
}

func NewBool(initial bool) *Variable[bool] {
	return NewVariable(func() bool { return initial }, interp.BoolKeyframe)
}

func NewVec3(initial mgl64.Vec3) *Variable[mgl64.Vec3] {
	return NewVariable(func() mgl64.Vec3 { return initial }, interp.Vec3)
}

func (v *Variable[D]) CurrentValue() D  { return v.current }
func (v *Variable[D]) PreviousValue() D { return v.previous }

func (v *Variable[D]) ValueInterpolated(partialTicks float64) D {
	return v.interpolator(v.previous, v.current, partialTicks)
}

func (v *Variable[D]) SetValue(value D) { v.current = value }

func (v *Variable[D]) ModifyValue(f func(D) D) { v.current = f(v.current) }

func (v *Variable[D]) PushCurrentToPrevious() { v.previous = v.current }

func (v *Variable[D]) Tick() {}

func (v *Variable[D]) Reset() {
	v.current = v.initial()
	v.previous = v.initial()
}

var _ Driver[float64] = (*Variable[float64])(nil)
