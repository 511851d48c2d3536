package montage

import (
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/timing"
)

// MarkerBinding runs when a playing montage passes a time marker.
type MarkerBinding func(state posefn.EvaluationState)

// PlayRateFunc resolves a play rate once per trigger.
type PlayRateFunc func(drivers *driver.Container) float64

// BasePoseProvider names the sequence whose first frame an additive montage is
// layered onto. It is resolved once per trigger.
type BasePoseProvider func(drivers *driver.Container) string

// Configuration is the immutable template of a triggerable clip. Build it with
// NewConfiguration; it is safe to share across triggers and goroutines.
type Configuration struct {
	id             string
	sequence       string
	slots          []string
	playRate       PlayRateFunc
	markerBindings map[string][]MarkerBinding
	blendMask      pose.BlendMask
	masked         bool
	transitionIn   timing.Transition
	transitionOut  timing.Transition
	startOffset    timing.TimeSpan
	crossfade      float64
	cooldown       timing.TimeSpan
	additive       bool
	additiveBase   BasePoseProvider
}

type Option func(*Configuration)

func NewConfiguration(id, sequenceID string, opts ...Option) *Configuration {
	c := &Configuration{
		id:             id,
		sequence:       sequenceID,
		playRate:       func(*driver.Container) float64 { return 1 },
		markerBindings: make(map[string][]MarkerBinding),
		transitionIn:   timing.SingleTick,
		transitionOut:  timing.SingleTick,
		crossfade:      1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func PlaysInSlots(slots ...string) Option {
	return func(c *Configuration) { c.slots = append(c.slots, slots...) }
}

func WithPlayRate(f PlayRateFunc) Option {
	return func(c *Configuration) { c.playRate = f }
}

func ConstantPlayRate(rate float64) Option {
	return WithPlayRate(func(*driver.Container) float64 { return rate })
}

// BindToTimeMarker adds a binding for marker. Bindings on the same marker run in
// the order they were added.
func BindToTimeMarker(marker string, binding MarkerBinding) Option {
	return func(c *Configuration) {
		c.markerBindings[marker] = append(c.markerBindings[marker], binding)
	}
}

func WithBlendMask(mask pose.BlendMask) Option {
	return func(c *Configuration) {
		c.blendMask = mask
		c.masked = true
	}
}

func WithTransitionIn(tr timing.Transition) Option {
	return func(c *Configuration) { c.transitionIn = tr }
}

func WithTransitionOut(tr timing.Transition) Option {
	return func(c *Configuration) { c.transitionOut = tr }
}

func WithStartOffset(offset timing.TimeSpan) Option {
	return func(c *Configuration) { c.startOffset = offset }
}

// WithCrossfadeWeight sets how far the exit transition overlaps the end of the clip.
// At 1 it ends with the clip; at 0 it starts when the clip ends.
func WithCrossfadeWeight(w float64) Option {
	return func(c *Configuration) { c.crossfade = w }
}

// WithCooldown rejects re-triggers while an instance of this configuration has
// elapsed less than d. Elapsed time advances at the play rate, so the cooldown
// scales with it.
func WithCooldown(d timing.TimeSpan) Option {
	return func(c *Configuration) { c.cooldown = d }
}

// Additive makes the clip subtract its own start frame and add the first frame of
// the sequence named by provider.
func Additive(provider BasePoseProvider) Option {
	return func(c *Configuration) {
		c.additive = true
		c.additiveBase = provider
	}
}

func (c *Configuration) ID() string         { return c.id }
func (c *Configuration) SequenceID() string { return c.sequence }

func (c *Configuration) Slots() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c *Configuration) PlaysInSlot(slot string) bool {
	for _, s := range c.slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (c *Configuration) BlendMask() (pose.BlendMask, bool) { return c.blendMask, c.masked }

func (c *Configuration) TransitionIn() timing.Transition  { return c.transitionIn }
func (c *Configuration) TransitionOut() timing.Transition { return c.transitionOut }
func (c *Configuration) StartOffset() timing.TimeSpan     { return c.startOffset }
func (c *Configuration) CrossfadeWeight() float64         { return c.crossfade }
func (c *Configuration) Cooldown() timing.TimeSpan        { return c.cooldown }

// AdditiveBase returns the base pose provider of an additive configuration.
func (c *Configuration) AdditiveBase() (BasePoseProvider, bool) {
	return c.additiveBase, c.additive
}

func (c *Configuration) TimeMarkerBindings(marker string) []MarkerBinding {
	return c.markerBindings[marker]
}
