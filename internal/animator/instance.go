package animator

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/sequence"
)

// Instance is one animated entity: its drivers, montage stack and graph. An
// Instance must not be ticked and read concurrently.
type Instance[T any] struct {
	animator  Animator[T]
	skeleton  *pose.Skeleton
	drivers   *driver.Container
	montages  *montage.Manager
	cached    *posefn.CachedPoses
	root      posefn.PoseFunction
	tick      int64
	resetting bool
	// tickPose holds the graph output of the last two ticks for OncePerTick.
	tickPose *driver.Variable[*pose.Pose]
}

func NewInstance[T any](a Animator[T], sampler sequence.Sampler) (*Instance[T], error) {
	sk := a.BuildSkeleton()
	if sk == nil || sk.Len() == 0 {
		return nil, ErrNoSkeleton
	}
	in := &Instance[T]{
		animator:  a,
		skeleton:  sk,
		drivers:   driver.NewContainer(),
		montages:  montage.NewManager(sampler),
		cached:    posefn.NewCachedPoses(),
		resetting: true,
	}
	in.root = a.ConstructPoseFunction(in.cached, in.montages)
	if in.root == nil {
		return nil, ErrNoPoseFunction
	}
	in.tickPose = driver.NewVariable(func() *pose.Pose { return pose.New(sk) }, pose.Interpolator)
	return in, nil
}

func (in *Instance[T]) Skeleton() *pose.Skeleton         { return in.skeleton }
func (in *Instance[T]) Drivers() *driver.Container       { return in.drivers }
func (in *Instance[T]) Montages() *montage.Manager       { return in.montages }
func (in *Instance[T]) Root() posefn.PoseFunction        { return in.root }
func (in *Instance[T]) CachedPoses() *posefn.CachedPoses { return in.cached }
func (in *Instance[T]) Ticks() int64                     { return in.tick }

// Tick advances the instance by one simulation step.
func (in *Instance[T]) Tick(ref T) {
	in.drivers.PushAll()
	in.animator.ExtractAnimationData(ref, in.drivers, in.montages)
	in.drivers.TickAll()

	state := posefn.EvaluationState{Drivers: in.drivers, Tick: in.tick, Resetting: in.resetting}
	in.root.Tick(state)
	in.montages.Tick(state)

	if in.animator.Frequency() == OncePerTick {
		p := in.compute(1)
		in.tickPose.PushCurrentToPrevious()
		in.tickPose.SetValue(p)
		if in.resetting {
			in.tickPose.PushCurrentToPrevious()
		}
	}

	in.resetting = false
	in.tick++
}

// Pose returns the pose for a frame partialTicks past the last tick.
func (in *Instance[T]) Pose(partialTicks float64) *pose.Pose {
	if in.animator.Frequency() == OncePerTick {
		return in.tickPose.ValueInterpolated(partialTicks)
	}
	return in.compute(partialTicks)
}

func (in *Instance[T]) compute(partialTicks float64) *pose.Pose {
	return in.root.Compute(posefn.InterpolationContext{
		Drivers:      in.drivers,
		Skeleton:     in.skeleton,
		PartialTicks: partialTicks,
	})
}

// Reset re-seeds every driver and makes the next tick a resetting one.
func (in *Instance[T]) Reset() {
	in.drivers.ResetAll()
	in.tickPose.Reset()
	in.resetting = true
}

// MostRelevantAnimationPlayer reports the clip dominating the current output.
func (in *Instance[T]) MostRelevantAnimationPlayer() (posefn.AnimationPlayer, bool) {
	return in.root.MostRelevantAnimationPlayer()
}
