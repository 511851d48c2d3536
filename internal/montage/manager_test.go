package montage_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

var skeleton = pose.MustSkeleton(
	[]string{"arm_buffer", "right_arm", "left_arm"},
	map[string]string{"right_arm": "left_arm"},
)

func library() *sequence.Library {
	lib := sequence.NewLibrary()
	lib.Put("swing", sequence.NewBuilder(timing.Ticks(20)).
		Key("right_arm", 0, mgl64.Vec3{10, 0, 0}, mgl64.QuatIdent()).
		TimeMarker("impact", timing.Ticks(8)).
		TimeMarker("whoosh", timing.Ticks(3)).
		Build())
	lib.Put("long", sequence.NewBuilder(timing.Ticks(100)).
		Key("left_arm", 0, mgl64.Vec3{0, 4, 0}, mgl64.QuatIdent()).
		Build())
	lib.Put("wave", sequence.NewBuilder(timing.Ticks(20)).
		Key("right_arm", 0, mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(0.4, mgl64.Vec3{0, 0, 1})).
		Key("right_arm", timing.Ticks(20).InSeconds(), mgl64.Vec3{3, 0, 0}, mgl64.QuatRotate(1.2, mgl64.Vec3{0, 0, 1})).
		Build())
	lib.Put("hold", sequence.NewBuilder(timing.Ticks(20)).
		Key("right_arm", 0, mgl64.Vec3{0, 2, 5}, mgl64.QuatRotate(-0.3, mgl64.Vec3{1, 0, 0})).
		Build())
	return lib
}

func tickN(m *montage.Manager, n int) {
	for i := 0; i < n; i++ {
		m.Tick(posefn.EvaluationState{Drivers: driver.NewContainer(), Tick: int64(i)})
	}
}

func weightOf(m *montage.Manager, partial float64) float64 {
	snap := m.Snapshot(partial)
	Expect(snap).To(HaveLen(1))
	return snap[0].Weight
}

var _ = Describe("Manager", func() {
	var (
		lib     *sequence.Library
		manager *montage.Manager
		drivers *driver.Container
	)

	BeforeEach(func() {
		lib = library()
		manager = montage.NewManager(lib)
		drivers = driver.NewContainer()
	})

	Describe("PlayMontage", func() {
		It("appends an instance to the stack", func() {
			cfg := montage.NewConfiguration("attack", "swing", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(manager.Len()).To(Equal(1))
			Expect(manager.IsMontagePlaying("attack")).To(BeTrue())
			Expect(manager.IsAnythingPlayingInSlot("main")).To(BeTrue())
			Expect(manager.IsAnythingPlayingInSlot("off")).To(BeFalse())
		})

		It("ignores re-triggers inside the cooldown", func() {
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithCooldown(timing.Ticks(5)))

			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(manager.Len()).To(Equal(1))

			tickN(manager, 5)
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(manager.Len()).To(Equal(2))
		})

		It("rejects unknown sequences without touching the stack", func() {
			cfg := montage.NewConfiguration("ghost", "missing", montage.PlaysInSlots("main"))
			err := manager.PlayMontage(cfg, drivers)
			Expect(err).To(MatchError(montage.ErrInvalidConfiguration))
			Expect(err).To(MatchError(sequence.ErrUnknownSequence))
			Expect(manager.Len()).To(BeZero())
		})

		It("rejects configurations without slots", func() {
			cfg := montage.NewConfiguration("nowhere", "swing")
			Expect(manager.PlayMontage(cfg, drivers)).To(MatchError(montage.ErrInvalidConfiguration))
		})

		It("resolves the play rate once at trigger", func() {
			rate := driver.FloatKey("rate", 2)
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithPlayRate(func(c *driver.Container) float64 { return driver.Value(c, rate) }))

			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			driver.Set(drivers, rate, 10)
			tickN(manager, 3)

			Expect(manager.Snapshot(1)[0].Elapsed).To(Equal(timing.Ticks(6)))
		})
	})

	Describe("weights", func() {
		It("ramps in linearly over the entrance transition", func() {
			cfg := montage.NewConfiguration("attack", "long",
				montage.PlaysInSlots("main"),
				montage.WithTransitionIn(timing.Of(timing.Ticks(10), nil)))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())

			tickN(manager, 5)
			Expect(weightOf(manager, 1)).To(BeNumerically("~", 0.5, 1e-9))
			tickN(manager, 5)
			Expect(weightOf(manager, 1)).To(BeNumerically("~", 1, 1e-9))
		})

		It("ramps out from the crossfaded exit start and is removed after the window", func() {
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithTransitionOut(timing.Of(timing.Ticks(4), nil)),
				montage.WithCrossfadeWeight(0.5))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())

			tickN(manager, 18)
			Expect(weightOf(manager, 1)).To(BeNumerically("~", 1, 1e-9))
			tickN(manager, 2)
			Expect(weightOf(manager, 1)).To(BeNumerically("~", 0.5, 1e-9))
			tickN(manager, 2)
			Expect(weightOf(manager, 1)).To(BeNumerically("~", 0, 1e-9))

			tickN(manager, 1)
			Expect(manager.Len()).To(Equal(1), "previous elapsed 22 is not past the window")
			tickN(manager, 1)
			Expect(manager.Len()).To(BeZero())
		})

		It("treats a zero-length entrance as full weight", func() {
			cfg := montage.NewConfiguration("snap", "long",
				montage.PlaysInSlots("main"),
				montage.WithTransitionIn(timing.Instant))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(weightOf(manager, 0)).To(Equal(1.0))
		})
	})

	Describe("interruption", func() {
		var cfg *montage.Configuration

		BeforeEach(func() {
			cfg = montage.NewConfiguration("attack", "long", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 4)
		})

		It("keeps the first interrupt transition", func() {
			manager.InterruptMontagesInSlot("main", timing.Of(timing.Ticks(4), nil))
			tickN(manager, 2)
			manager.InterruptMontagesInSlot("main", timing.Instant)

			snap := manager.Snapshot(1)
			Expect(snap[0].Interrupted).To(BeTrue())
			Expect(snap[0].InterruptWeight).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("ignores other slots", func() {
			manager.InterruptMontagesInSlot("off", timing.Instant)
			Expect(manager.Snapshot(1)[0].Interrupted).To(BeFalse())
		})

		It("removes the instance once the interrupt transition completes", func() {
			manager.InterruptMontagesInSlot("main", timing.Of(timing.Ticks(3), nil))
			tickN(manager, 4)
			Expect(manager.Len()).To(Equal(1))
			tickN(manager, 1)
			Expect(manager.Len()).To(BeZero())
		})

		It("blends back toward the pose below the instance", func() {
			base := pose.New(skeleton)
			full := manager.LayeredSlotPose(base, "main", skeleton, 1)
			Expect(full.Channel("left_arm").Translation.Y()).To(BeNumerically("~", 4, 1e-9))

			manager.InterruptMontagesInSlot("main", timing.Of(timing.Ticks(2), nil))
			tickN(manager, 2)
			back := manager.LayeredSlotPose(base, "main", skeleton, 1)
			Expect(back.Channel("left_arm").Translation.Y()).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("LayeredSlotPose", func() {
		It("layers later triggers over earlier ones", func() {
			lower := montage.NewConfiguration("lower", "long", montage.PlaysInSlots("main"), montage.WithTransitionIn(timing.Instant))
			upper := montage.NewConfiguration("upper", "swing", montage.PlaysInSlots("main"), montage.WithTransitionIn(timing.Instant))
			Expect(manager.PlayMontage(lower, drivers)).To(Succeed())
			Expect(manager.PlayMontage(upper, drivers)).To(Succeed())
			tickN(manager, 2)

			got := manager.LayeredSlotPose(pose.New(skeleton), "main", skeleton, 0)
			Expect(got.Channel("right_arm").Translation.X()).To(BeNumerically("~", 10, 1e-9))
			Expect(got.Channel("left_arm").Translation.Y()).To(BeNumerically("~", 0, 1e-9), "upper clip leaves left arm at identity")
		})

		It("restricts blending to the blend mask", func() {
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithTransitionIn(timing.Instant),
				montage.WithBlendMask(pose.MaskOf("left_arm")))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 2)

			base := pose.New(skeleton)
			got := manager.LayeredSlotPose(base, "main", skeleton, 0)
			Expect(got.ApproxEqual(base, 1e-12)).To(BeTrue())
		})

		It("leaves other slots untouched", func() {
			cfg := montage.NewConfiguration("attack", "swing", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 5)

			base := pose.New(skeleton)
			Expect(manager.LayeredSlotPose(base, "off", skeleton, 0).ApproxEqual(base, 0)).To(BeTrue())
		})
	})

	Describe("additive montages", func() {
		It("reproduces the base pose on the start frame", func() {
			cfg := montage.NewConfiguration("flinch", "wave",
				montage.PlaysInSlots("main"),
				montage.WithTransitionIn(timing.Instant),
				montage.Additive(func(*driver.Container) string { return "hold" }))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())

			got := manager.LayeredSlotPose(pose.New(skeleton), "main", skeleton, 0)
			want := lib.SamplePose(skeleton, "hold", 0, false)
			Expect(got.ApproxEqual(want, 1e-9)).To(BeTrue())
		})

		It("rejects an unknown additive base", func() {
			cfg := montage.NewConfiguration("flinch", "wave",
				montage.PlaysInSlots("main"),
				montage.Additive(func(*driver.Container) string { return "missing" }))
			Expect(manager.PlayMontage(cfg, drivers)).To(MatchError(sequence.ErrUnknownSequence))
		})
	})

	Describe("AreAnyMontagesInSlotFullyOverriding", func() {
		It("finds a full-weight instance behind a different slot", func() {
			other := montage.NewConfiguration("emote", "long", montage.PlaysInSlots("face"))
			main := montage.NewConfiguration("attack", "long", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(other, drivers)).To(Succeed())
			Expect(manager.PlayMontage(main, drivers)).To(Succeed())

			Expect(manager.AreAnyMontagesInSlotFullyOverriding("main")).To(BeFalse())
			tickN(manager, 3)
			Expect(manager.AreAnyMontagesInSlotFullyOverriding("main")).To(BeTrue())
		})

		It("ignores masked instances unless the mask covers the skeleton", func() {
			partial := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithBlendMask(pose.MaskOf("right_arm")))
			Expect(manager.PlayMontage(partial, drivers)).To(Succeed())
			tickN(manager, 3)

			Expect(manager.AreAnyMontagesInSlotFullyOverriding("main")).To(BeFalse())
			Expect(manager.FullyOverridesSkeleton("main", skeleton)).To(BeFalse())

			whole := montage.NewConfiguration("hold", "hold",
				montage.PlaysInSlots("main"),
				montage.WithBlendMask(pose.MaskOf("arm_buffer", "right_arm", "left_arm")))
			Expect(manager.PlayMontage(whole, drivers)).To(Succeed())
			tickN(manager, 3)

			Expect(manager.AreAnyMontagesInSlotFullyOverriding("main")).To(BeFalse())
			Expect(manager.FullyOverridesSkeleton("main", skeleton)).To(BeTrue())
		})

		It("is false while interrupted", func() {
			cfg := montage.NewConfiguration("attack", "long", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 3)
			manager.InterruptMontagesInSlot("main", timing.Of(timing.Ticks(10), nil))
			Expect(manager.AreAnyMontagesInSlotFullyOverriding("main")).To(BeFalse())
		})
	})

	Describe("SlotFunction", func() {
		It("keeps the input outside the mask of a full-weight montage", func() {
			input := pose.New(skeleton)
			left := pose.IdentityChannel()
			left.Translation = mgl64.Vec3{0, 7, 0}
			input.SetChannel("left_arm", left)

			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithTransitionIn(timing.Of(timing.Ticks(2), nil)),
				montage.WithBlendMask(pose.MaskOf("right_arm")))
			slot := montage.NewSlotFunction(posefn.NewStatic(input), manager, "main")
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 6)

			got := slot.Compute(posefn.InterpolationContext{Drivers: drivers, Skeleton: skeleton, PartialTicks: 0})
			Expect(got.Channel("left_arm").Translation.Y()).To(BeNumerically("~", 7, 1e-9))
			Expect(got.Channel("right_arm").Translation.X()).To(BeNumerically("~", 10, 1e-9))
		})

		It("skips the input under an unmasked full-weight montage", func() {
			input := &countingInput{Static: posefn.NewStatic(nil)}
			slot := montage.NewSlotFunction(input, manager, "main")
			cfg := montage.NewConfiguration("attack", "swing", montage.PlaysInSlots("main"))
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 4)

			got := slot.Compute(posefn.InterpolationContext{Drivers: drivers, Skeleton: skeleton, PartialTicks: 0})
			Expect(input.computed).To(Equal(0))
			Expect(got.Channel("right_arm").Translation.X()).To(BeNumerically("~", 10, 1e-9))
		})
	})

	Describe("time markers", func() {
		It("fires bindings then listeners for crossed markers in time order", func() {
			var fired []string
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.BindToTimeMarker("impact", func(posefn.EvaluationState) { fired = append(fired, "impact:1") }),
				montage.BindToTimeMarker("impact", func(posefn.EvaluationState) { fired = append(fired, "impact:2") }),
				montage.BindToTimeMarker("whoosh", func(posefn.EvaluationState) { fired = append(fired, "whoosh") }))
			manager.OnTimeMarker(func(ev montage.MarkerEvent) { fired = append(fired, "listener:"+ev.Marker) })

			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			tickN(manager, 3)
			Expect(fired).To(Equal([]string{"whoosh", "listener:whoosh"}))

			tickN(manager, 5)
			Expect(fired).To(Equal([]string{"whoosh", "listener:whoosh", "impact:1", "impact:2", "listener:impact"}))
		})
	})

	Describe("observer", func() {
		It("reports lifecycle transitions", func() {
			obs := &recordingObserver{}
			manager.SetObserver(obs)
			cfg := montage.NewConfiguration("attack", "swing",
				montage.PlaysInSlots("main"),
				montage.WithCooldown(timing.Ticks(100)))

			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			Expect(manager.PlayMontage(cfg, drivers)).To(Succeed())
			manager.InterruptMontagesInSlot("main", timing.Instant)
			tickN(manager, 2)

			Expect(obs.events).To(Equal([]string{"start:attack", "reject:attack", "interrupt:attack", "remove:attack"}))
		})
	})
})

type countingInput struct {
	*posefn.Static
	computed int
}

func (c *countingInput) Compute(ctx posefn.InterpolationContext) *pose.Pose {
	c.computed++
	return c.Static.Compute(ctx)
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) MontageStarted(id string)  { r.events = append(r.events, "start:"+id) }
func (r *recordingObserver) MontageRejected(id string) { r.events = append(r.events, "reject:"+id) }
func (r *recordingObserver) MontageInterrupted(id string) {
	r.events = append(r.events, "interrupt:"+id)
}
func (r *recordingObserver) MontageRemoved(id string) { r.events = append(r.events, "remove:"+id) }
