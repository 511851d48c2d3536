package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

// Sequence identifiers of the built-in library.
const (
	SequenceIdle    = "arms/idle"
	SequenceWalk    = "arms/walk"
	SequenceAttack  = "arms/attack"
	SequenceInspect = "arms/inspect"
	SequenceFlinch  = "arms/flinch"
)

var (
	restRight = mgl64.Vec3{0.35, -0.4, -0.5}
	restLeft  = mgl64.Vec3{-0.35, -0.4, -0.5}
)

func yaw(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
}

func pitch(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{1, 0, 0})
}

// DemoLibrary returns procedurally keyed arm sequences for running without sequence
// files.
func DemoLibrary() *sequence.Library {
	lib := sequence.NewLibrary()

	idle := sequence.NewBuilder(timing.Seconds(2))
	for i := 0; i <= 4; i++ {
		at := float64(i) * 0.5
		bob := 0.01 * math.Sin(at*math.Pi)
		idle.Key(JointRightArm, at, restRight.Add(mgl64.Vec3{0, bob, 0}), mgl64.QuatIdent())
		idle.Key(JointLeftArm, at, restLeft.Add(mgl64.Vec3{0, bob, 0}), mgl64.QuatIdent())
	}
	lib.Put(SequenceIdle, idle.Build())

	walk := sequence.NewBuilder(timing.Seconds(1)).
		TimeMarker("step", timing.Seconds(0.25)).
		TimeMarker("step", timing.Seconds(0.75))
	for i := 0; i <= 4; i++ {
		at := float64(i) * 0.25
		sway := 0.05 * math.Sin(at*2*math.Pi)
		walk.Key(JointRightArm, at, restRight.Add(mgl64.Vec3{sway, -math.Abs(sway), 0}), pitch(10*sway/0.05))
		walk.Key(JointLeftArm, at, restLeft.Add(mgl64.Vec3{sway, -math.Abs(sway), 0}), pitch(-10*sway/0.05))
	}
	lib.Put(SequenceWalk, walk.Build())

	lib.Put(SequenceAttack, sequence.NewBuilder(timing.Ticks(12)).
		Key(JointRightArm, 0, restRight, mgl64.QuatIdent()).
		Key(JointRightArm, timing.Ticks(4).InSeconds(), restRight.Add(mgl64.Vec3{-0.1, 0.1, 0.1}), yaw(-35)).
		Key(JointRightArm, timing.Ticks(7).InSeconds(), restRight.Add(mgl64.Vec3{-0.25, -0.05, -0.2}), yaw(40)).
		Key(JointRightArm, timing.Ticks(12).InSeconds(), restRight, mgl64.QuatIdent()).
		TimeMarker("impact", timing.Ticks(7)).
		Build())

	lib.Put(SequenceInspect, sequence.NewBuilder(timing.Seconds(3)).
		Key(JointRightArm, 0, restRight, mgl64.QuatIdent()).
		Key(JointRightArm, 1, restRight.Add(mgl64.Vec3{-0.15, 0.1, 0}), yaw(60).Mul(pitch(-20))).
		Key(JointRightArm, 2, restRight.Add(mgl64.Vec3{-0.15, 0.1, 0}), yaw(-30).Mul(pitch(-20))).
		Key(JointRightArm, 3, restRight, mgl64.QuatIdent()).
		Build())

	lib.Put(SequenceFlinch, sequence.NewBuilder(timing.Ticks(8)).
		Key(JointArmBuffer, 0, mgl64.Vec3{}, mgl64.QuatIdent()).
		Key(JointArmBuffer, timing.Ticks(2).InSeconds(), mgl64.Vec3{0, -0.05, 0.08}, pitch(8)).
		Key(JointArmBuffer, timing.Ticks(8).InSeconds(), mgl64.Vec3{}, mgl64.QuatIdent()).
		Build())

	return lib
}

// DemoSettings pairs DemoLibrary with a matching set of montages.
func DemoSettings() Settings {
	return Settings{
		IdleSequence: SequenceIdle,
		WalkSequence: SequenceWalk,
		Recoil:       driver.SpringConfig{Stiffness: 0.3, Damping: 0.45, Mass: 1},
		RecoilDecay:  0.5,
		Frequency:    animator.OncePerTick,
		Montages: []*montage.Configuration{
			montage.NewConfiguration("attack", SequenceAttack,
				montage.PlaysInSlots(MainSlot),
				montage.WithTransitionIn(timing.Of(timing.Ticks(2), nil)),
				montage.WithTransitionOut(timing.Of(timing.Ticks(4), nil)),
				montage.WithCrossfadeWeight(0.5),
				montage.WithCooldown(timing.Ticks(6)),
				montage.WithBlendMask(pose.MaskOf(JointRightArm, JointRightItem))),
			montage.NewConfiguration("inspect", SequenceInspect,
				montage.PlaysInSlots(MainSlot),
				montage.WithTransitionIn(timing.Of(timing.Ticks(6), nil)),
				montage.WithTransitionOut(timing.Of(timing.Ticks(6), nil)),
				montage.WithCooldown(timing.Seconds(3))),
			montage.NewConfiguration("flinch", SequenceFlinch,
				montage.PlaysInSlots(MainSlot),
				montage.WithTransitionIn(timing.Instant),
				montage.Additive(func(*driver.Container) string { return SequenceIdle })),
		},
		InterruptTransition: timing.Of(timing.Ticks(3), nil),
	}
}
