package posefn

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
)

type BlendOption func(*blendInput)

// WithJointMask restricts an input to the listed joints.
func WithJointMask(joints ...string) BlendOption {
	return func(in *blendInput) {
		in.mask = pose.NewJointSet(joints...)
		in.masked = true
	}
}

type blendInput struct {
	fn     PoseFunction
	weight WeightFunc
	mask   pose.JointSet
	masked bool
	driver *driver.Variable[float64]
}

// BlendPoses layers weighted inputs on top of a base pose, in insertion order.
type BlendPoses struct {
	base   PoseFunction
	inputs []*blendInput
}

func NewBlendPoses(base PoseFunction) *BlendPoses {
	return &BlendPoses{base: base}
}

func (b *BlendPoses) AddInput(fn PoseFunction, weight WeightFunc, opts ...BlendOption) *BlendPoses {
	in := &blendInput{fn: fn, weight: weight, driver: driver.NewFloat(0)}
	for _, opt := range opts {
		opt(in)
	}
	b.inputs = append(b.inputs, in)
	return b
}

func (b *BlendPoses) Compute(ctx InterpolationContext) *pose.Pose {
	result := b.base.Compute(ctx)
	for _, in := range b.inputs {
		w := in.driver.ValueInterpolated(ctx.PartialTicks)
		if w == 0 {
			continue
		}
		child := in.fn.Compute(ctx)
		if in.masked {
			result = result.InterpolatedFilteredByJoints(child, w, in.mask)
		} else {
			result = result.Interpolated(child, w)
		}
	}
	return result
}

// Tick ticks the base, then samples each weight once. Inputs at weight 0 are not
// ticked so their clips do not advance while inactive.
func (b *BlendPoses) Tick(state EvaluationState) {
	b.base.Tick(state)
	for _, in := range b.inputs {
		in.driver.PushCurrentToPrevious()
		w := in.weight(state)
		in.driver.SetValue(w)
		if w != 0 {
			in.fn.Tick(state)
		}
	}
}

func (b *BlendPoses) WrapUnique() PoseFunction {
	out := NewBlendPoses(b.base.WrapUnique())
	for _, in := range b.inputs {
		out.inputs = append(out.inputs, &blendInput{
			fn:     in.fn.WrapUnique(),
			weight: in.weight,
			mask:   in.mask,
			masked: in.masked,
			driver: driver.NewFloat(0),
		})
	}
	return out
}

// MostRelevantAnimationPlayer takes the result of the last input at weight 0.5 or
// more. When that input has no player, or no input qualifies, the base decides.
func (b *BlendPoses) MostRelevantAnimationPlayer() (AnimationPlayer, bool) {
	var (
		last      AnimationPlayer
		lastFound bool
		qualified bool
	)
	for _, in := range b.inputs {
		if in.driver.CurrentValue() >= 0.5 {
			last, lastFound = in.fn.MostRelevantAnimationPlayer()
			qualified = true
		}
	}
	if qualified && lastFound {
		return last, true
	}
	return b.base.MostRelevantAnimationPlayer()
}

// Weights returns the current per-input weights in insertion order.
func (b *BlendPoses) Weights() []float64 {
	out := make([]float64, len(b.inputs))
	for i, in := range b.inputs {
		out[i] = in.driver.CurrentValue()
	}
	return out
}

var _ PoseFunction = (*BlendPoses)(nil)
