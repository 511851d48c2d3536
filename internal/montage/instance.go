package montage

import (
	"math"

	"github.com/google/uuid"

	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

// instance is the runtime state of one trigger of a Configuration.
type instance struct {
	id       uuid.UUID
	cfg      *Configuration
	elapsed  *driver.Variable[float64]
	playRate float64
	length   float64

	interrupted         bool
	interruptTick       float64
	interruptTransition timing.Transition

	additiveBaseID      string
	additiveSkeleton    *pose.Skeleton
	additiveBase        *pose.Pose
	additiveSubtraction *pose.Pose
}

func newInstance(cfg *Configuration, playRate, length float64, additiveBaseID string) *instance {
	start := cfg.startOffset.InTicks()
	return &instance{
		id:                  uuid.New(),
		cfg:                 cfg,
		elapsed:             driver.NewFloat(start),
		playRate:            playRate,
		length:              length,
		interruptTransition: timing.Instant,
		additiveBaseID:      additiveBaseID,
	}
}

func (in *instance) tick() {
	in.elapsed.PushCurrentToPrevious()
	in.elapsed.ModifyValue(func(v float64) float64 { return v + in.playRate })
}

func (in *instance) interrupt(tr timing.Transition) bool {
	if in.interrupted {
		return false
	}
	in.interrupted = true
	in.interruptTransition = tr
	in.interruptTick = in.elapsed.CurrentValue()
	return true
}

func (in *instance) entranceEnd() float64 {
	return in.cfg.startOffset.InTicks() + in.cfg.transitionIn.Duration.InTicks()
}

func (in *instance) exitStart() float64 {
	return in.length - in.cfg.transitionOut.Duration.InTicks()*in.cfg.crossfade
}

// removalThreshold is the previous elapsed time past which the instance is dropped.
func (in *instance) removalThreshold() float64 {
	return in.length + (1-in.cfg.crossfade)*in.cfg.transitionOut.Duration.InTicks()
}

func (in *instance) inEntrance(partialTicks float64) bool {
	return in.elapsed.ValueInterpolated(partialTicks) < in.entranceEnd()
}

func (in *instance) inExit(partialTicks float64) bool {
	return in.elapsed.ValueInterpolated(partialTicks) > in.exitStart()
}

func (in *instance) weightIsFull(partialTicks float64) bool {
	e := in.elapsed.ValueInterpolated(partialTicks)
	return e > in.entranceEnd() && e < in.exitStart() && !in.interrupted
}

func (in *instance) weight(partialTicks float64) float64 {
	if in.weightIsFull(partialTicks) {
		return 1
	}
	e := in.elapsed.ValueInterpolated(partialTicks)
	switch {
	case in.inEntrance(partialTicks):
		d := in.cfg.transitionIn.Duration.InTicks()
		if d <= 0 {
			return 1
		}
		return clamp01((e - in.cfg.startOffset.InTicks()) / d)
	case in.inExit(partialTicks):
		d := in.cfg.transitionOut.Duration.InTicks()
		if d <= 0 {
			return 0
		}
		return clamp01(1 - math.Min((e-in.exitStart())/d, 1))
	}
	return 1
}

func (in *instance) interruptWeight(partialTicks float64) float64 {
	d := in.interruptTransition.Duration.InTicks()
	if d <= 0 {
		return 1
	}
	e := in.elapsed.ValueInterpolated(partialTicks)
	return clamp01(math.Min((e-in.interruptTick)/d, 1))
}

// blendTransition is the curve shaping the instance weight: the entrance curve while
// entering, the exit curve run backwards otherwise.
func (in *instance) blendTransition(partialTicks float64) timing.Transition {
	if in.inEntrance(partialTicks) {
		return in.cfg.transitionIn
	}
	return in.cfg.transitionOut.WithInverseEasing()
}

func (in *instance) sample(sampler sequence.Sampler, sk *pose.Skeleton, partialTicks float64) *pose.Pose {
	t := timing.Ticks(in.elapsed.ValueInterpolated(partialTicks))
	p := sampler.SamplePose(sk, in.cfg.sequence, t, false)
	if !in.cfg.additive {
		return p
	}
	if in.additiveSkeleton != sk {
		in.additiveSkeleton = sk
		in.additiveBase = sampler.SamplePose(sk, in.additiveBaseID, 0, false)
		in.additiveSubtraction = sampler.SamplePose(sk, in.cfg.sequence, in.cfg.startOffset, false)
		in.additiveSubtraction.Invert()
	}
	p.Multiply(in.additiveSubtraction, pose.Component)
	p.Multiply(in.additiveBase, pose.Component)
	return p
}

func (in *instance) SequenceID() string { return in.cfg.sequence }

func (in *instance) ElapsedTime() timing.TimeSpan {
	return timing.Ticks(in.elapsed.CurrentValue())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
