package animator

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
)

// Frequency selects how often the graph is evaluated.
type Frequency int

const (
	// OncePerTick evaluates the graph after every tick and interpolates the two
	// latest poses at frame time.
	OncePerTick Frequency = iota
	// EveryFrame evaluates the graph on every frame.
	EveryFrame
)

func (f Frequency) String() string {
	if f == EveryFrame {
		return "every_frame"
	}
	return "once_per_tick"
}

// Animator describes one kind of animated entity. T is the data it reads each tick.
type Animator[T any] interface {
	BuildSkeleton() *pose.Skeleton
	// ExtractAnimationData writes this tick's inputs into drivers and may trigger
	// or interrupt montages.
	ExtractAnimationData(ref T, drivers *driver.Container, montages *montage.Manager)
	ConstructPoseFunction(cached *posefn.CachedPoses, montages *montage.Manager) posefn.PoseFunction
	Frequency() Frequency
}

// Frame is what metrics and observers see on every rendered frame.
type Frame struct {
	Tick         int64
	PartialTicks float64
	Pose         *pose.Pose
	Drivers      *driver.Container
	Montages     []montage.InstanceInfo
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// RunConfig drives a Runner.
type RunConfig struct {
	Ticks         int
	FramesPerTick int
	// Record lists the joints kept in the result; empty keeps every joint.
	Record []string
}

// Sample is one recorded frame.
type Sample struct {
	Tick         int64
	PartialTicks float64
	StackDepth   int
	Channels     map[string]pose.JointChannel
}

type Result struct {
	Ticks   int
	Frames  int
	Joints  []string
	Samples []Sample
	Metrics map[string]float64
}
