package pose

import (
	"github.com/san-kum/posegraph/internal/interp"
	"github.com/san-kum/posegraph/internal/timing"
)

// Pose holds one joint channel per skeleton joint, in skeleton order.
type Pose struct {
	skeleton *Skeleton
	channels []JointChannel
}

// New returns the identity pose for sk.
func New(sk *Skeleton) *Pose {
	p := &Pose{skeleton: sk, channels: make([]JointChannel, sk.Len())}
	for i := range p.channels {
		p.channels[i] = IdentityChannel()
	}
	return p
}

// Interpolator blends whole poses, see Pose.Interpolated.
var Interpolator interp.Interpolator[*Pose] = func(a, b *Pose, t float64) *Pose {
	return a.Interpolated(b, t)
}

func (p *Pose) Skeleton() *Skeleton { return p.skeleton }

func (p *Pose) Clone() *Pose {
	c := &Pose{skeleton: p.skeleton, channels: make([]JointChannel, len(p.channels))}
	copy(c.channels, p.channels)
	return c
}

// Channel returns the joint's channel, or the identity channel for joints outside
// the skeleton.
func (p *Pose) Channel(joint string) JointChannel {
	if i, ok := p.skeleton.indexOf(joint); ok {
		return p.channels[i]
	}
	return IdentityChannel()
}

// SetChannel overwrites a joint's channel. Joints outside the skeleton are ignored.
func (p *Pose) SetChannel(joint string, ch JointChannel) {
	if i, ok := p.skeleton.indexOf(joint); ok {
		p.channels[i] = ch
	}
}

// Interpolated blends every joint toward other by weight.
func (p *Pose) Interpolated(other *Pose, weight float64) *Pose {
	if weight == 0 {
		return p.Clone()
	}
	out := p.Clone()
	for i, j := range p.skeleton.joints {
		out.channels[i] = p.channels[i].Interpolated(other.Channel(j), weight)
	}
	return out
}

// InterpolatedFilteredByJoints blends only the joints in set; the rest keep this
// pose's channels.
func (p *Pose) InterpolatedFilteredByJoints(other *Pose, weight float64, set JointSet) *Pose {
	out := p.Clone()
	if weight == 0 {
		return out
	}
	for i, j := range p.skeleton.joints {
		if set.Contains(j) {
			out.channels[i] = p.channels[i].Interpolated(other.Channel(j), weight)
		}
	}
	return out
}

// InterpolatedByTransition eases weight through the transition, then scales it per
// joint by mask before blending toward other.
func (p *Pose) InterpolatedByTransition(other *Pose, weight float64, tr timing.Transition, mask BlendMask) *Pose {
	eased := tr.Apply(weight)
	out := p.Clone()
	if eased == 0 {
		return out
	}
	for i, j := range p.skeleton.joints {
		w := eased * mask.Weight(j)
		out.channels[i] = p.channels[i].Interpolated(other.Channel(j), w)
	}
	return out
}

// Mirrored swaps paired joints and reflects every channel across the YZ plane.
func (p *Pose) Mirrored() *Pose {
	out := p.Clone()
	for i, j := range p.skeleton.joints {
		out.channels[i] = p.Channel(p.skeleton.MirrorJoint(j)).Mirrored()
	}
	return out
}

// Multiply composes other into p in place. Component space applies other in each
// joint's own frame; Local space applies it in the parent frame.
func (p *Pose) Multiply(other *Pose, space TransformSpace) {
	for i, j := range p.skeleton.joints {
		o := other.Channel(j)
		if space == Component {
			p.channels[i] = p.channels[i].Mul(o)
		} else {
			p.channels[i] = o.Mul(p.channels[i])
		}
	}
}

// Invert replaces every channel with its inverse in place.
func (p *Pose) Invert() {
	for i := range p.channels {
		p.channels[i] = p.channels[i].Inverted()
	}
}

func (p *Pose) ApproxEqual(other *Pose, eps float64) bool {
	for i, j := range p.skeleton.joints {
		if !p.channels[i].ApproxEqual(other.Channel(j), eps) {
			return false
		}
	}
	return true
}
