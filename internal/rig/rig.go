// Package rig is a first-person arms animator: an idle/walk locomotion blend, a
// mirror toggle, a montage slot for actions and a spring-driven recoil offset.
package rig

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

const (
	JointArmBuffer = "arm_buffer"
	JointRightArm  = "right_arm"
	JointLeftArm   = "left_arm"
	JointRightItem = "right_item"
	JointLeftItem  = "left_item"

	// MainSlot is the montage slot layered over locomotion.
	MainSlot = "main"

	locomotionCache = "locomotion"
)

var logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) { logger = l }

var (
	SpeedKey    = driver.FloatKey("speed", 0)
	MirroredKey = driver.BoolKey("mirrored", false)
)

// Input is the per-tick data the rig reads.
type Input struct {
	// Speed in [0,1] blends idle into walk and scales the walk play rate.
	Speed    float64
	Mirrored bool
	// Recoil is added to the recoil spring target this tick.
	Recoil float64
	// Play lists montage identifiers to trigger this tick.
	Play []string
	// Interrupt lists slots to interrupt this tick.
	Interrupt []string
}

type Settings struct {
	IdleSequence string
	WalkSequence string
	// Skeleton overrides the default arms skeleton when set.
	Skeleton *pose.Skeleton
	Recoil   driver.SpringConfig
	// RecoilDecay scales the recoil target toward zero every tick.
	RecoilDecay float64
	Frequency   animator.Frequency
	Montages    []*montage.Configuration
	// InterruptTransition is used for Input.Interrupt.
	InterruptTransition timing.Transition
}

// Rig implements animator.Animator[Input].
type Rig struct {
	settings  Settings
	sampler   sequence.Sampler
	montages  map[string]*montage.Configuration
	recoilKey driver.Key[float64]
}

// New validates settings against the sampler so unknown sequences fail before any
// tick runs.
func New(settings Settings, sampler sequence.Sampler) (*Rig, error) {
	for _, id := range []string{settings.IdleSequence, settings.WalkSequence} {
		if _, err := sampler.Length(id); err != nil {
			return nil, fmt.Errorf("rig: locomotion: %w", err)
		}
	}
	r := &Rig{
		settings: settings,
		sampler:  sampler,
		montages: make(map[string]*montage.Configuration, len(settings.Montages)),
	}
	for _, cfg := range settings.Montages {
		if _, err := sampler.Length(cfg.SequenceID()); err != nil {
			return nil, fmt.Errorf("rig: montage %s: %w", cfg.ID(), err)
		}
		if _, dup := r.montages[cfg.ID()]; dup {
			return nil, fmt.Errorf("rig: duplicate montage %s", cfg.ID())
		}
		r.montages[cfg.ID()] = cfg
	}
	recoil := settings.Recoil
	recoil.Delta = true
	r.recoilKey = driver.NewKey("recoil", func() driver.Driver[float64] {
		return driver.NewFloatSpring(recoil, 0)
	})
	return r, nil
}

func (r *Rig) BuildSkeleton() *pose.Skeleton {
	if r.settings.Skeleton != nil {
		return r.settings.Skeleton
	}
	return DefaultSkeleton()
}

func DefaultSkeleton() *pose.Skeleton {
	return pose.MustSkeleton(
		[]string{JointArmBuffer, JointRightArm, JointLeftArm, JointRightItem, JointLeftItem},
		map[string]string{
			JointRightArm:  JointLeftArm,
			JointRightItem: JointLeftItem,
		},
	)
}

func (r *Rig) ExtractAnimationData(in Input, drivers *driver.Container, montages *montage.Manager) {
	driver.Set(drivers, SpeedKey, clamp01(in.Speed))
	driver.Set(drivers, MirroredKey, in.Mirrored)

	recoil := driver.Get(drivers, r.recoilKey)
	decay := r.settings.RecoilDecay
	recoil.ModifyValue(func(v float64) float64 { return v*decay + in.Recoil })

	for _, slot := range in.Interrupt {
		montages.InterruptMontagesInSlot(slot, r.settings.InterruptTransition)
	}
	for _, id := range in.Play {
		cfg, ok := r.montages[id]
		if !ok {
			logger.Warn().Str("montage", id).Msg("unknown montage requested")
			continue
		}
		if err := montages.PlayMontage(cfg, drivers); err != nil {
			logger.Error().Err(err).Str("montage", id).Msg("montage failed to start")
		}
	}
}

func (r *Rig) ConstructPoseFunction(cached *posefn.CachedPoses, montages *montage.Manager) posefn.PoseFunction {
	walkRate := func(state posefn.EvaluationState) float64 {
		return 0.5 + driver.Value(state.Drivers, SpeedKey)
	}
	locomotion := posefn.NewBlendPoses(posefn.NewSequencePlayer(r.sampler, r.settings.IdleSequence)).
		AddInput(
			posefn.NewSequencePlayer(r.sampler, r.settings.WalkSequence, posefn.WithPlayRate(walkRate)),
			posefn.DriverWeight(SpeedKey),
		)
	shared, err := cached.Register(locomotionCache, locomotion)
	if err != nil {
		logger.Warn().Err(err).Str("cache", locomotionCache).Msg("locomotion not shared, using a private subgraph")
		shared = locomotion
	}

	mirrored := posefn.NewMirror(shared, func(state posefn.EvaluationState) bool {
		return driver.Value(state.Drivers, MirroredKey)
	})
	slot := montage.NewSlotFunction(mirrored, montages, MainSlot)
	return newRecoilFunction(slot, r.recoilKey)
}

func (r *Rig) Frequency() animator.Frequency { return r.settings.Frequency }

// MontageIDs lists the montages the rig can play.
func (r *Rig) MontageIDs() []string {
	ids := make([]string, 0, len(r.montages))
	for id := range r.montages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Rig) Montage(id string) (*montage.Configuration, bool) {
	cfg, ok := r.montages[id]
	return cfg, ok
}

// RecoilKey is the driver key of the recoil spring.
func (r *Rig) RecoilKey() driver.Key[float64] { return r.recoilKey }

// recoilFunction pushes the arm buffer back along -Z by the recoil spring's lag.
type recoilFunction struct {
	input posefn.PoseFunction
	key   driver.Key[float64]
}

func newRecoilFunction(input posefn.PoseFunction, key driver.Key[float64]) *recoilFunction {
	return &recoilFunction{input: input, key: key}
}

func (f *recoilFunction) Compute(ctx posefn.InterpolationContext) *pose.Pose {
	p := f.input.Compute(ctx)
	offset := driver.Interpolated(ctx.Drivers, f.key, ctx.PartialTicks)
	if offset == 0 {
		return p
	}
	ch := p.Channel(JointArmBuffer)
	ch.Translation = ch.Translation.Add(mgl64.Vec3{0, 0, -offset})
	p.SetChannel(JointArmBuffer, ch)
	return p
}

func (f *recoilFunction) Tick(state posefn.EvaluationState) { f.input.Tick(state) }

func (f *recoilFunction) WrapUnique() posefn.PoseFunction {
	return newRecoilFunction(f.input.WrapUnique(), f.key)
}

func (f *recoilFunction) MostRelevantAnimationPlayer() (posefn.AnimationPlayer, bool) {
	return f.input.MostRelevantAnimationPlayer()
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

var _ animator.Animator[Input] = (*Rig)(nil)
