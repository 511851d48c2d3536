package posefn

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

type PlayerOption func(*SequencePlayer)

func Looping(looping bool) PlayerOption {
	return func(p *SequencePlayer) { p.looping = looping }
}

// WithPlayRate sets the per-tick advance of the player, sampled every tick.
func WithPlayRate(rate WeightFunc) PlayerOption {
	return func(p *SequencePlayer) { p.playRate = rate }
}

func StartingAt(offset timing.TimeSpan) PlayerOption {
	return func(p *SequencePlayer) { p.start = offset }
}

// SequencePlayer samples one sequence at an elapsed time advanced every tick.
type SequencePlayer struct {
	sampler  sequence.Sampler
	id       string
	looping  bool
	playRate WeightFunc
	start    timing.TimeSpan
	elapsed  *driver.Variable[float64]
}

func NewSequencePlayer(sampler sequence.Sampler, id string, opts ...PlayerOption) *SequencePlayer {
	p := &SequencePlayer{
		sampler:  sampler,
		id:       id,
		looping:  true,
		playRate: ConstantWeight(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.elapsed = p.newClock()
	return p
}

func (p *SequencePlayer) newClock() *driver.Variable[float64] {
	start := p.start.InTicks()
	return driver.NewFloat(start)
}

func (p *SequencePlayer) Compute(ctx InterpolationContext) *pose.Pose {
	t := timing.Ticks(p.elapsed.ValueInterpolated(ctx.PartialTicks))
	return p.sampler.SamplePose(ctx.Skeleton, p.id, t, p.looping)
}

func (p *SequencePlayer) Tick(state EvaluationState) {
	if state.Resetting {
		p.elapsed.Reset()
		return
	}
	p.elapsed.PushCurrentToPrevious()
	rate := p.playRate(state)
	p.elapsed.ModifyValue(func(v float64) float64 { return v + rate })
}

func (p *SequencePlayer) WrapUnique() PoseFunction {
	c := *p
	c.elapsed = p.newClock()
	return &c
}

func (p *SequencePlayer) MostRelevantAnimationPlayer() (AnimationPlayer, bool) {
	return p, true
}

func (p *SequencePlayer) SequenceID() string { return p.id }

func (p *SequencePlayer) ElapsedTime() timing.TimeSpan {
	return timing.Ticks(p.elapsed.CurrentValue())
}

var (
	_ PoseFunction    = (*SequencePlayer)(nil)
	_ AnimationPlayer = (*SequencePlayer)(nil)
)
