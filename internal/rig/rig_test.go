package rig

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/posefn"
	"github.com/san-kum/posegraph/internal/sequence"
)

func newTestInstance(t *testing.T) (*Rig, *animator.Instance[Input]) {
	t.Helper()
	lib := DemoLibrary()
	r, err := New(DemoSettings(), lib)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, err := animator.NewInstance[Input](r, lib)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r, in
}

func TestNewRejectsUnknownSequences(t *testing.T) {
	settings := DemoSettings()
	settings.WalkSequence = "arms/missing"
	if _, err := New(settings, DemoLibrary()); !errors.Is(err, sequence.ErrUnknownSequence) {
		t.Errorf("expected ErrUnknownSequence, got %v", err)
	}

	settings = DemoSettings()
	settings.Montages = append(settings.Montages, montage.NewConfiguration("bad", "nope", montage.PlaysInSlots(MainSlot)))
	if _, err := New(settings, DemoLibrary()); !errors.Is(err, sequence.ErrUnknownSequence) {
		t.Errorf("expected ErrUnknownSequence, got %v", err)
	}
}

func TestMontageIDs(t *testing.T) {
	r, _ := newTestInstance(t)
	ids := r.MontageIDs()
	want := []string{"attack", "flinch", "inspect"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
		}
	}
}

func TestPlayTriggersMontage(t *testing.T) {
	_, in := newTestInstance(t)

	in.Tick(Input{Play: []string{"attack"}})
	if !in.Montages().IsMontagePlaying("attack") {
		t.Error("expected attack to be playing")
	}

	in.Tick(Input{Play: []string{"attack"}})
	if in.Montages().Len() != 1 {
		t.Errorf("expected cooldown to reject re-trigger, stack %d", in.Montages().Len())
	}

	in.Tick(Input{Interrupt: []string{MainSlot}})
	if !in.Montages().Snapshot(0)[0].Interrupted {
		t.Error("expected attack interrupted")
	}
}

func TestUnknownMontageIsIgnored(t *testing.T) {
	_, in := newTestInstance(t)
	in.Tick(Input{Play: []string{"dance"}})
	if in.Montages().Len() != 0 {
		t.Errorf("expected empty stack, got %d", in.Montages().Len())
	}
}

func TestRecoilOffsetsArmBuffer(t *testing.T) {
	r, in := newTestInstance(t)

	in.Tick(Input{})
	rest := in.Pose(1).Channel(JointArmBuffer).Translation.Z()

	in.Tick(Input{Recoil: 1})
	kicked := in.Pose(1).Channel(JointArmBuffer).Translation.Z()
	if kicked >= rest {
		t.Errorf("expected recoil to push the arm buffer back, rest %f kicked %f", rest, kicked)
	}

	for i := 0; i < 200; i++ {
		in.Tick(Input{})
	}
	if lag := driver.Interpolated(in.Drivers(), r.RecoilKey(), 1); math.Abs(lag) > 1e-6 {
		t.Errorf("expected recoil to settle, got %f", lag)
	}
}

func TestMirrorSwapsArms(t *testing.T) {
	_, in := newTestInstance(t)
	in.Tick(Input{})
	in.Tick(Input{})
	plain := in.Pose(1)

	in.Tick(Input{Mirrored: true})
	in.Tick(Input{Mirrored: true})
	mirrored := in.Pose(1)

	r := plain.Channel(JointRightArm).Translation.X()
	l := mirrored.Channel(JointLeftArm).Translation.X()
	if r <= 0 || l >= 0 {
		t.Errorf("expected right arm at +x and mirrored left arm at -x, got %f and %f", r, l)
	}
}

func TestRunScenario(t *testing.T) {
	_, in := newTestInstance(t)
	runner := animator.NewRunner(in, func(tick int64) Input {
		switch tick {
		case 2:
			return Input{Speed: 1, Play: []string{"attack"}}
		case 5:
			return Input{Speed: 1, Play: []string{"flinch"}}
		}
		return Input{Speed: 1}
	})

	result, err := runner.Run(context.Background(), animator.RunConfig{Ticks: 40, FramesPerTick: 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Frames != 120 {
		t.Errorf("expected 120 frames, got %d", result.Frames)
	}

	var peak int
	for _, s := range result.Samples {
		if s.StackDepth > peak {
			peak = s.StackDepth
		}
	}
	if peak != 2 {
		t.Errorf("expected peak stack depth 2, got %d", peak)
	}
	if in.Montages().Len() != 0 {
		t.Errorf("expected every montage finished, got %d", in.Montages().Len())
	}
}

func TestMostRelevantPlayerFollowsSpeed(t *testing.T) {
	_, in := newTestInstance(t)

	in.Tick(Input{Speed: 0})
	if p, ok := in.MostRelevantAnimationPlayer(); !ok || p.SequenceID() != SequenceIdle {
		t.Errorf("expected idle to dominate at rest")
	}

	in.Tick(Input{Speed: 1})
	if p, ok := in.MostRelevantAnimationPlayer(); !ok || p.SequenceID() != SequenceWalk {
		t.Errorf("expected walk to dominate at full speed")
	}
}

func TestConstructLogsCacheConflict(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	lib := DemoLibrary()
	r, err := New(DemoSettings(), lib)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cached := posefn.NewCachedPoses()
	if _, err := cached.Register(locomotionCache, posefn.NewStatic(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root := r.ConstructPoseFunction(cached, montage.NewManager(lib)); root == nil {
		t.Fatal("expected a pose function")
	}
	if !strings.Contains(buf.String(), "locomotion not shared") {
		t.Errorf("expected cache conflict to be logged, got %q", buf.String())
	}
}
