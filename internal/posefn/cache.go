package posefn

import (
	"fmt"
	"sort"

	"github.com/san-kum/posegraph/internal/pose"
)

// Cached evaluates its input at most once per tick and once per frame, so several
// parents can share one subgraph.
type Cached struct {
	input PoseFunction

	tickedAt int64
	ticked   bool
	partial  float64
	computed *pose.Pose
	skeleton *pose.Skeleton
}

func NewCached(input PoseFunction) *Cached {
	return &Cached{input: input}
}

func (c *Cached) Compute(ctx InterpolationContext) *pose.Pose {
	if c.computed == nil || c.partial != ctx.PartialTicks || c.skeleton != ctx.Skeleton {
		c.computed = c.input.Compute(ctx)
		c.partial = ctx.PartialTicks
		c.skeleton = ctx.Skeleton
	}
	return c.computed.Clone()
}

func (c *Cached) Tick(state EvaluationState) {
	if c.ticked && c.tickedAt == state.Tick {
		return
	}
	c.ticked = true
	c.tickedAt = state.Tick
	c.computed = nil
	c.input.Tick(state)
}

// WrapUnique returns an independent cache over a wrapped input.
func (c *Cached) WrapUnique() PoseFunction {
	return NewCached(c.input.WrapUnique())
}

func (c *Cached) MostRelevantAnimationPlayer() (AnimationPlayer, bool) {
	return c.input.MostRelevantAnimationPlayer()
}

// CachedPoses registers named shared subgraphs while a graph is being built.
type CachedPoses struct {
	entries map[string]*Cached
}

func NewCachedPoses() *CachedPoses {
	return &CachedPoses{entries: make(map[string]*Cached)}
}

// Register stores input under name and returns the shared node.
func (c *CachedPoses) Register(name string, input PoseFunction) (PoseFunction, error) {
	if _, ok := c.entries[name]; ok {
		return nil, fmt.Errorf("posefn: cached pose %q already registered", name)
	}
	node := NewCached(input)
	c.entries[name] = node
	return node, nil
}

func (c *CachedPoses) Get(name string) (PoseFunction, bool) {
	node, ok := c.entries[name]
	return node, ok
}

func (c *CachedPoses) Names() []string {
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
