package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/timing"
)

const eps = 1e-9

func testSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	sk, err := NewSkeleton(
		[]string{"root", "right_arm", "left_arm"},
		map[string]string{"right_arm": "left_arm"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sk
}

func channelAt(x, y, z float64) JointChannel {
	ch := IdentityChannel()
	ch.Translation = mgl64.Vec3{x, y, z}
	return ch
}

func TestSkeletonMirrorJoint(t *testing.T) {
	sk := testSkeleton(t)

	tests := []struct {
		joint, want string
	}{
		{"right_arm", "left_arm"},
		{"left_arm", "right_arm"},
		{"root", "root"},
		{"missing", "missing"},
	}
	for _, tt := range tests {
		if got := sk.MirrorJoint(tt.joint); got != tt.want {
			t.Errorf("expected mirror of %s to be %s, got %s", tt.joint, tt.want, got)
		}
	}
}

func TestSkeletonRejectsBadInput(t *testing.T) {
	if _, err := NewSkeleton([]string{"a", "a"}, nil); !errors.Is(err, ErrDuplicateJoint) {
		t.Errorf("expected ErrDuplicateJoint, got %v", err)
	}
	if _, err := NewSkeleton([]string{"a"}, map[string]string{"a": "b"}); !errors.Is(err, ErrUnknownJoint) {
		t.Errorf("expected ErrUnknownJoint, got %v", err)
	}
}

func TestInterpolatedEndpoints(t *testing.T) {
	sk := testSkeleton(t)
	a := New(sk)
	b := New(sk)
	b.SetChannel("right_arm", channelAt(1, 2, 3))

	if got := a.Interpolated(b, 0); !got.ApproxEqual(a, 0) {
		t.Error("expected weight 0 to return the base pose")
	}
	if got := a.Interpolated(b, 1); !got.ApproxEqual(b, 0) {
		t.Error("expected weight 1 to return the other pose")
	}

	mid := a.Interpolated(b, 0.5).Channel("right_arm").Translation
	if !mid.ApproxEqualThreshold(mgl64.Vec3{0.5, 1, 1.5}, eps) {
		t.Errorf("expected midpoint (0.5, 1, 1.5), got %v", mid)
	}
}

func TestInterpolatedFilteredByJoints(t *testing.T) {
	sk := testSkeleton(t)
	a := New(sk)
	b := New(sk)
	b.SetChannel("right_arm", channelAt(1, 0, 0))
	b.SetChannel("left_arm", channelAt(-1, 0, 0))

	got := a.InterpolatedFilteredByJoints(b, 1, NewJointSet("right_arm"))
	if got.Channel("right_arm").Translation.X() != 1 {
		t.Errorf("expected masked joint to blend, got %v", got.Channel("right_arm").Translation)
	}
	if got.Channel("left_arm").Translation.X() != 0 {
		t.Errorf("expected unmasked joint untouched, got %v", got.Channel("left_arm").Translation)
	}
}

func TestInterpolatedByTransition(t *testing.T) {
	sk := testSkeleton(t)
	a := New(sk)
	b := New(sk)
	b.SetChannel("right_arm", channelAt(4, 0, 0))
	b.SetChannel("left_arm", channelAt(4, 0, 0))

	mask := NewBlendMask(map[string]float64{"right_arm": 0.5})
	got := a.InterpolatedByTransition(b, 1, timing.SingleTick, mask)

	if x := got.Channel("right_arm").Translation.X(); math.Abs(x-2) > eps {
		t.Errorf("expected half-weighted joint at 2, got %f", x)
	}
	if x := got.Channel("left_arm").Translation.X(); x != 0 {
		t.Errorf("expected unlisted joint at 0, got %f", x)
	}

	unmasked := a.InterpolatedByTransition(b, 1, timing.SingleTick, BlendMask{})
	if !unmasked.ApproxEqual(b, eps) {
		t.Error("expected zero mask to blend every joint fully")
	}
}

func TestMirroredSwapsPairs(t *testing.T) {
	sk := testSkeleton(t)
	p := New(sk)
	right := channelAt(1, 2, 3)
	right.Rotation = mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	p.SetChannel("right_arm", right)

	m := p.Mirrored()
	left := m.Channel("left_arm")
	if !left.Translation.ApproxEqualThreshold(mgl64.Vec3{-1, 2, 3}, eps) {
		t.Errorf("expected mirrored translation (-1, 2, 3), got %v", left.Translation)
	}
	if math.Abs(left.Rotation.V.Y()+right.Rotation.V.Y()) > eps {
		t.Errorf("expected mirrored rotation y negated, got %v", left.Rotation)
	}
	if !m.Mirrored().ApproxEqual(p, eps) {
		t.Error("expected mirroring twice to restore the pose")
	}
}

func TestMultiplyInverseIsIdentity(t *testing.T) {
	sk := testSkeleton(t)
	p := New(sk)
	ch := channelAt(1, -2, 0.5)
	ch.Rotation = mgl64.QuatRotate(1.1, mgl64.Vec3{1, 1, 0}.Normalize())
	ch.Scale = mgl64.Vec3{2, 2, 2}
	p.SetChannel("root", ch)

	for _, space := range []TransformSpace{Component, Local} {
		inv := p.Clone()
		inv.Invert()
		got := p.Clone()
		got.Multiply(inv, space)
		if !got.ApproxEqual(New(sk), 1e-6) {
			t.Errorf("expected p * p^-1 to be identity in space %d", space)
		}
	}
}

func TestMultiplyComponentOrder(t *testing.T) {
	sk := testSkeleton(t)
	a := New(sk)
	rot := IdentityChannel()
	rot.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	a.SetChannel("root", rot)

	b := New(sk)
	b.SetChannel("root", channelAt(1, 0, 0))

	comp := a.Clone()
	comp.Multiply(b, Component)
	if got := comp.Channel("root").Translation; !got.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("expected component translation rotated to (0, 1, 0), got %v", got)
	}

	local := a.Clone()
	local.Multiply(b, Local)
	if got := local.Channel("root").Translation; !got.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("expected local translation (1, 0, 0), got %v", got)
	}
}

func TestUnknownJointIsIdentity(t *testing.T) {
	p := New(testSkeleton(t))
	p.SetChannel("tail", channelAt(9, 9, 9))
	if !p.Channel("tail").ApproxEqual(IdentityChannel(), 0) {
		t.Error("expected unknown joint to read as identity")
	}
}
