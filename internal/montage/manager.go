package montage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

var ErrInvalidConfiguration = errors.New("montage: invalid configuration")

var logger = zerolog.Nop()

// SetLogger installs the logger used for montage lifecycle events.
func SetLogger(l zerolog.Logger) { logger = l }

// MarkerEvent describes a time marker crossed by a playing montage.
type MarkerEvent struct {
	Montage    string
	InstanceID uuid.UUID
	Marker     string
	Elapsed    timing.TimeSpan
	Tick       int64
}

// Observer receives montage lifecycle notifications.
type Observer interface {
	MontageStarted(id string)
	MontageRejected(id string)
	MontageInterrupted(id string)
	MontageRemoved(id string)
}

type nopObserver struct{}

func (nopObserver) MontageStarted(string)     {}
func (nopObserver) MontageRejected(string)    {}
func (nopObserver) MontageInterrupted(string) {}
func (nopObserver) MontageRemoved(string)     {}

// Manager keeps the stack of playing montages for one animator. Later triggers
// layer on top of earlier ones within a slot.
type Manager struct {
	sampler   sequence.Sampler
	stack     []*instance
	listeners []func(MarkerEvent)
	observer  Observer
}

func NewManager(sampler sequence.Sampler) *Manager {
	return &Manager{sampler: sampler, observer: nopObserver{}}
}

func (m *Manager) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

// OnTimeMarker registers a listener called after the configuration's own bindings
// whenever any montage crosses a marker.
func (m *Manager) OnTimeMarker(fn func(MarkerEvent)) {
	m.listeners = append(m.listeners, fn)
}

// PlayMontage triggers cfg. Re-triggering while an instance of the same
// configuration is inside its cooldown is a no-op. Unknown sequences are reported
// as configuration errors and nothing is added.
func (m *Manager) PlayMontage(cfg *Configuration, drivers *driver.Container) error {
	for _, in := range m.stack {
		if in.cfg.id == cfg.id && in.elapsed.CurrentValue() < cfg.cooldown.InTicks() {
			logger.Debug().Str("montage", cfg.id).Msg("montage in cooldown")
			m.observer.MontageRejected(cfg.id)
			return nil
		}
	}
	if len(cfg.slots) == 0 {
		return fmt.Errorf("%w: %s plays in no slot", ErrInvalidConfiguration, cfg.id)
	}

	length, err := m.sampler.Length(cfg.sequence)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, cfg.id, err)
	}

	var baseID string
	if provider, ok := cfg.AdditiveBase(); ok {
		baseID = provider(drivers)
		if _, err := m.sampler.Length(baseID); err != nil {
			return fmt.Errorf("%w: %s additive base: %w", ErrInvalidConfiguration, cfg.id, err)
		}
	}

	in := newInstance(cfg, cfg.playRate(drivers), length.InTicks(), baseID)
	m.stack = append(m.stack, in)
	logger.Debug().Str("montage", cfg.id).Str("instance", in.id.String()).
		Float64("play_rate", in.playRate).Float64("length", in.length).Msg("montage started")
	m.observer.MontageStarted(cfg.id)
	return nil
}

// Tick advances every instance, fires crossed time markers, then drops instances
// that finished their exit or interrupt transitions.
func (m *Manager) Tick(state posefn.EvaluationState) {
	for _, in := range m.stack {
		in.tick()
		m.fireMarkers(in, state)
	}

	kept := m.stack[:0]
	for _, in := range m.stack {
		prev := in.elapsed.PreviousValue()
		switch {
		case prev > in.removalThreshold():
			logger.Debug().Str("montage", in.cfg.id).Str("instance", in.id.String()).Msg("montage finished")
		case in.interrupted && prev-in.interruptTick > in.interruptTransition.Duration.InTicks():
			logger.Debug().Str("montage", in.cfg.id).Str("instance", in.id.String()).Msg("interrupted montage removed")
		default:
			kept = append(kept, in)
			continue
		}
		m.observer.MontageRemoved(in.cfg.id)
	}
	for i := len(kept); i < len(m.stack); i++ {
		m.stack[i] = nil
	}
	m.stack = kept
}

func (m *Manager) fireMarkers(in *instance, state posefn.EvaluationState) {
	markers := m.sampler.TimeMarkers(in.cfg.sequence)
	if len(markers) == 0 {
		return
	}
	from := timing.Ticks(in.elapsed.PreviousValue())
	to := timing.Ticks(in.elapsed.CurrentValue())
	for _, marker := range sequence.CrossedMarkers(markers, from, to) {
		for _, binding := range in.cfg.markerBindings[marker] {
			binding(state)
		}
		ev := MarkerEvent{Montage: in.cfg.id, InstanceID: in.id, Marker: marker, Elapsed: to, Tick: state.Tick}
		for _, fn := range m.listeners {
			fn(ev)
		}
	}
}

// InterruptMontagesInSlot starts the interrupt transition on every instance in the
// slot. Instances already interrupted keep their original transition.
func (m *Manager) InterruptMontagesInSlot(slot string, tr timing.Transition) {
	for _, in := range m.stack {
		if in.cfg.PlaysInSlot(slot) && in.interrupt(tr) {
			logger.Debug().Str("montage", in.cfg.id).Str("slot", slot).
				Float64("at", in.interruptTick).Msg("montage interrupted")
			m.observer.MontageInterrupted(in.cfg.id)
		}
	}
}

func (m *Manager) IsMontagePlaying(id string) bool {
	for _, in := range m.stack {
		if in.cfg.id == id {
			return true
		}
	}
	return false
}

func (m *Manager) IsAnythingPlayingInSlot(slot string) bool {
	for _, in := range m.stack {
		if in.cfg.PlaysInSlot(slot) {
			return true
		}
	}
	return false
}

func (m *Manager) Len() int { return len(m.stack) }

// LayeredSlotPose blends every instance playing in slot over base, in stack order.
func (m *Manager) LayeredSlotPose(base *pose.Pose, slot string, sk *pose.Skeleton, partialTicks float64) *pose.Pose {
	slotPose := base.Clone()
	previous := base
	for _, in := range m.stack {
		if !in.cfg.PlaysInSlot(slot) {
			continue
		}
		mask, _ := in.cfg.BlendMask()
		slotPose = slotPose.InterpolatedByTransition(
			in.sample(m.sampler, sk, partialTicks),
			in.weight(partialTicks),
			in.blendTransition(partialTicks),
			mask,
		)
		if in.interrupted {
			slotPose = slotPose.InterpolatedByTransition(
				previous,
				in.interruptWeight(partialTicks),
				in.interruptTransition,
				pose.BlendMask{},
			)
		}
		previous = slotPose
	}
	return slotPose
}

// AreAnyMontagesInSlotFullyOverriding reports whether an unmasked instance in slot
// holds full weight across the whole frame. Masked instances leave joints outside
// the mask to the slot's input, so they never count.
// Every stack entry is checked; slots are not required to be contiguous.
func (m *Manager) AreAnyMontagesInSlotFullyOverriding(slot string) bool {
	return m.fullyOverriding(slot, nil)
}

// FullyOverridesSkeleton is AreAnyMontagesInSlotFullyOverriding for a known
// skeleton: a masked instance also counts when its mask weights every joint of sk
// at 1.
func (m *Manager) FullyOverridesSkeleton(slot string, sk *pose.Skeleton) bool {
	return m.fullyOverriding(slot, sk)
}

func (m *Manager) fullyOverriding(slot string, sk *pose.Skeleton) bool {
	for _, in := range m.stack {
		if !in.cfg.PlaysInSlot(slot) {
			continue
		}
		if !in.weightIsFull(1) || !in.weightIsFull(0) {
			continue
		}
		mask, masked := in.cfg.BlendMask()
		if !masked || mask.IsZero() || (sk != nil && mask.Covers(sk)) {
			return true
		}
	}
	return false
}

// MostRelevantInSlot returns the top-most instance in slot at weight 0.5 or more.
func (m *Manager) MostRelevantInSlot(slot string) (posefn.AnimationPlayer, bool) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		in := m.stack[i]
		if in.cfg.PlaysInSlot(slot) && in.weight(1) >= 0.5 {
			return in, true
		}
	}
	return nil, false
}

// InstanceInfo is a read-only view of one playing montage.
type InstanceInfo struct {
	ID              uuid.UUID
	Montage         string
	Sequence        string
	Slots           []string
	Elapsed         timing.TimeSpan
	Length          timing.TimeSpan
	PlayRate        float64
	Weight          float64
	Interrupted     bool
	InterruptWeight float64
}

// Snapshot describes the stack, bottom first, with weights at partialTicks.
func (m *Manager) Snapshot(partialTicks float64) []InstanceInfo {
	out := make([]InstanceInfo, len(m.stack))
	for i, in := range m.stack {
		info := InstanceInfo{
			ID:          in.id,
			Montage:     in.cfg.id,
			Sequence:    in.cfg.sequence,
			Slots:       in.cfg.Slots(),
			Elapsed:     timing.Ticks(in.elapsed.ValueInterpolated(partialTicks)),
			Length:      timing.Ticks(in.length),
			PlayRate:    in.playRate,
			Weight:      in.weight(partialTicks),
			Interrupted: in.interrupted,
		}
		if in.interrupted {
			info.InterruptWeight = in.interruptWeight(partialTicks)
		}
		out[i] = info
	}
	return out
}

// SlotWeight is the largest instance weight currently applied to slot.
func (m *Manager) SlotWeight(slot string, partialTicks float64) float64 {
	var w float64
	for _, in := range m.stack {
		if in.cfg.PlaysInSlot(slot) && in.weight(partialTicks) > w {
			w = in.weight(partialTicks)
		}
	}
	return w
}
