package posefn

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/timing"
)

// EvaluationState is handed to every node once per tick.
type EvaluationState struct {
	Drivers *driver.Container
	Tick    int64
	// Resetting is set on the first tick of an evaluation so nodes start from their
	// initial state instead of blending from stale values.
	Resetting bool
}

// InterpolationContext is handed to every node once per frame.
type InterpolationContext struct {
	Drivers      *driver.Container
	Skeleton     *pose.Skeleton
	PartialTicks float64
}

// PoseFunction is a node in an animation graph.
type PoseFunction interface {
	// Compute returns the node's pose for the frame. It may read but never advance
	// tick state.
	Compute(ctx InterpolationContext) *pose.Pose
	// Tick advances the node and its children exactly once.
	Tick(state EvaluationState)
	// WrapUnique returns a structurally identical graph with fresh driver state.
	WrapUnique() PoseFunction
	// MostRelevantAnimationPlayer reports the clip dominating the node's output.
	MostRelevantAnimationPlayer() (AnimationPlayer, bool)
}

// AnimationPlayer is a leaf that plays a single sequence.
type AnimationPlayer interface {
	SequenceID() string
	ElapsedTime() timing.TimeSpan
}

// WeightFunc samples a blend weight once per tick.
type WeightFunc func(state EvaluationState) float64

// ConstantWeight returns a WeightFunc that always yields w.
func ConstantWeight(w float64) WeightFunc {
	return func(EvaluationState) float64 { return w }
}

// DriverWeight reads the current value of a float driver from the state.
func DriverWeight(key driver.Key[float64]) WeightFunc {
	return func(state EvaluationState) float64 {
		return driver.Value(state.Drivers, key)
	}
}
