package viz

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/rig"
)

// View maps rig space to canvas sub-pixels. The camera looks down -Z; depth nudges
// points upward so forward motion stays visible in a front view.
type View struct {
	MinX, MaxX float64
	MinY, MaxY float64
	Depth      float64
}

var DefaultView = View{MinX: -0.8, MaxX: 0.8, MinY: -0.9, MaxY: 0.3, Depth: 0.35}

func (v View) project(c *Canvas, p mgl64.Vec3) (int, int) {
	y := p.Y() - v.Depth*p.Z()
	px := (p.X() - v.MinX) / (v.MaxX - v.MinX) * float64(c.PixelWidth()-1)
	py := (v.MaxY - y) / (v.MaxY - v.MinY) * float64(c.PixelHeight()-1)
	return int(px + 0.5), int(py + 0.5)
}

var (
	shoulderOffset = map[string]mgl64.Vec3{
		rig.JointRightArm: {0.22, 0.05, 0},
		rig.JointLeftArm:  {-0.22, 0.05, 0},
	}
	itemReach = mgl64.Vec3{0, 0.15, -0.15}
)

// DrawArms draws both arms of p and whatever they hold.
func DrawArms(c *Canvas, p *pose.Pose, v View) {
	buffer := p.Channel(rig.JointArmBuffer)
	toBuffer := func(local mgl64.Vec3) mgl64.Vec3 {
		return buffer.Translation.Add(buffer.Rotation.Rotate(local))
	}

	for _, side := range [][2]string{
		{rig.JointRightArm, rig.JointRightItem},
		{rig.JointLeftArm, rig.JointLeftItem},
	} {
		arm := p.Channel(side[0])
		if !arm.Visible || !buffer.Visible {
			continue
		}
		sx, sy := v.project(c, toBuffer(shoulderOffset[side[0]]))
		hand := toBuffer(arm.Translation)
		hx, hy := v.project(c, hand)
		c.DrawLine(sx, sy, hx, hy)
		c.DrawDot(hx, hy)

		item := p.Channel(side[1])
		if !item.Visible {
			continue
		}
		grip := buffer.Rotation.Mul(arm.Rotation)
		tip := hand.Add(grip.Rotate(item.Translation.Add(itemReach)))
		tx, ty := v.project(c, tip)
		c.DrawLine(hx, hy, tx, ty)
	}
}
