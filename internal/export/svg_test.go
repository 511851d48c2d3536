package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)

	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Errorf("unexpected size in %s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="1.0" cy="1.0"`) || !strings.Contains(svg, `cx="7.0" cy="7.0"`) {
		t.Errorf("dots misplaced: %s", svg)
	}
}

func TestJointPathSkipsHidden(t *testing.T) {
	ch := func(x, y float64, visible bool) map[string]pose.JointChannel {
		return map[string]pose.JointChannel{"item": {Translation: mgl64.Vec3{x, y, 0}, Visible: visible}}
	}
	samples := []animator.Sample{
		{Channels: ch(0, 0, true)},
		{Channels: ch(5, 5, false)},
		{Channels: ch(1, 2, true)},
		{Channels: map[string]pose.JointChannel{}},
	}
	got := JointPath(samples, "item")
	want := []Point{{0, 0}, {1, 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]Point{{0, 0}}, 100, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}

	svg := TrajectoryToSVG([]Point{{0, 0}, {1, 1}}, 120, 120, "#ff00ff")
	if !strings.Contains(svg, `stroke="#ff00ff"`) {
		t.Error("missing stroke color")
	}
	if !strings.Contains(svg, "M10.0,110.0 L110.0,10.0") {
		t.Errorf("unexpected path: %s", svg)
	}
}
