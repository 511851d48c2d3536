package interp

import "github.com/go-gl/mathgl/mgl64"

// Interpolator blends two values of T at a normalized time or weight.
// Implementations return a exactly at t == 0 and b exactly at t == 1.
type Interpolator[T any] func(a, b T, t float64) T

func (f Interpolator[T]) Interpolate(a, b T, t float64) T {
	return f(a, b, t)
}

// ConstantKeyframe holds the earlier keyframe until the next one is reached.
func ConstantKeyframe[T any]() Interpolator[T] {
	return func(a, b T, t float64) T {
		if t >= 1 {
			return b
		}
		return a
	}
}

// ConstantBlend snaps to b as soon as any weight is applied.
func ConstantBlend[T any]() Interpolator[T] {
	return func(a, b T, t float64) T {
		if t <= 0 {
			return a
		}
		return b
	}
}

var (
	Float Interpolator[float64] = func(a, b, t float64) float64 {
		switch t {
		case 0:
			return a
		case 1:
			return b
		}
		return a + (b-a)*t
	}

	BoolKeyframe = ConstantKeyframe[bool]()
	BoolBlend    = ConstantBlend[bool]()

	Vec3 Interpolator[mgl64.Vec3] = func(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
		switch {
		case t == 0, a == b:
			return a
		case t == 1:
			return b
		}
		return a.Add(b.Sub(a).Mul(t))
	}

	Quat Interpolator[mgl64.Quat] = func(a, b mgl64.Quat, t float64) mgl64.Quat {
		switch {
		case t == 0, a == b:
			return a
		case t == 1:
			return b
		}
		return mgl64.QuatSlerp(a, b, t)
	}
)
