package posefn

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
)

// Mirror swaps left and right of its input while enabled returns true.
type Mirror struct {
	input   PoseFunction
	enabled func(EvaluationState) bool
	active  *driver.Variable[bool]
}

// NewMirror mirrors input. A nil enabled func mirrors unconditionally.
func NewMirror(input PoseFunction, enabled func(EvaluationState) bool) *Mirror {
	if enabled == nil {
		enabled = func(EvaluationState) bool { return true }
	}
	return &Mirror{input: input, enabled: enabled, active: driver.NewBool(false)}
}

func (m *Mirror) Compute(ctx InterpolationContext) *pose.Pose {
	p := m.input.Compute(ctx)
	if m.active.ValueInterpolated(ctx.PartialTicks) {
		return p.Mirrored()
	}
	return p
}

func (m *Mirror) Tick(state EvaluationState) {
	m.active.PushCurrentToPrevious()
	m.active.SetValue(m.enabled(state))
	m.input.Tick(state)
}

func (m *Mirror) WrapUnique() PoseFunction {
	return &Mirror{input: m.input.WrapUnique(), enabled: m.enabled, active: driver.NewBool(false)}
}

func (m *Mirror) MostRelevantAnimationPlayer() (AnimationPlayer, bool) {
	return m.input.MostRelevantAnimationPlayer()
}
