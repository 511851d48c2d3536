package pose

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/interp"
)

// TransformSpace selects which side a transform is composed on.
type TransformSpace int

const (
	// Local composes the other transform in the parent frame (other * this).
	Local TransformSpace = iota
	// Component composes the other transform in the joint's own frame (this * other).
	Component
)

// JointChannel is the local transform of a single joint.
type JointChannel struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
	Visible     bool
}

func IdentityChannel() JointChannel {
	return JointChannel{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Visible:  true,
	}
}

func (c JointChannel) Interpolated(other JointChannel, weight float64) JointChannel {
	switch weight {
	case 0:
		return c
	case 1:
		return other
	}
	return JointChannel{
		Translation: interp.Vec3(c.Translation, other.Translation, weight),
		Rotation:    interp.Quat(c.Rotation, other.Rotation, weight),
		Scale:       interp.Vec3(c.Scale, other.Scale, weight),
		Visible:     interp.BoolBlend(c.Visible, other.Visible, weight),
	}
}

// Mirrored reflects the transform across the YZ plane.
func (c JointChannel) Mirrored() JointChannel {
	return JointChannel{
		Translation: mgl64.Vec3{-c.Translation.X(), c.Translation.Y(), c.Translation.Z()},
		Rotation:    mgl64.Quat{W: c.Rotation.W, V: mgl64.Vec3{c.Rotation.V.X(), -c.Rotation.V.Y(), -c.Rotation.V.Z()}},
		Scale:       c.Scale,
		Visible:     c.Visible,
	}
}

// Mul returns c * other.
func (c JointChannel) Mul(other JointChannel) JointChannel {
	return JointChannel{
		Translation: c.Translation.Add(c.Rotation.Rotate(mulElem(c.Scale, other.Translation))),
		Rotation:    c.Rotation.Mul(other.Rotation).Normalize(),
		Scale:       mulElem(c.Scale, other.Scale),
		Visible:     c.Visible && other.Visible,
	}
}

func (c JointChannel) Inverted() JointChannel {
	inv := c.Rotation.Inverse()
	scale := mgl64.Vec3{reciprocal(c.Scale.X()), reciprocal(c.Scale.Y()), reciprocal(c.Scale.Z())}
	return JointChannel{
		Translation: mulElem(scale, inv.Rotate(c.Translation)).Mul(-1),
		Rotation:    inv,
		Scale:       scale,
		Visible:     c.Visible,
	}
}

// Matrix returns the channel as a translate * rotate * scale matrix.
func (c JointChannel) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(c.Translation.X(), c.Translation.Y(), c.Translation.Z())
	s := mgl64.Scale3D(c.Scale.X(), c.Scale.Y(), c.Scale.Z())
	return t.Mul4(c.Rotation.Mat4()).Mul4(s)
}

func (c JointChannel) ApproxEqual(other JointChannel, eps float64) bool {
	return c.Translation.ApproxEqualThreshold(other.Translation, eps) &&
		(c.Rotation.ApproxEqualThreshold(other.Rotation, eps) || c.Rotation.OrientationEqualThreshold(other.Rotation, eps)) &&
		c.Scale.ApproxEqualThreshold(other.Scale, eps) &&
		c.Visible == other.Visible
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

func reciprocal(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
