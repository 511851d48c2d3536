package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/animator"
)

// JointTravel accumulates the distance a joint's translation covers between
// consecutive frames.
type JointTravel struct {
	name  string
	joint string
	total float64
	last  mgl64.Vec3
	seen  bool
}

func NewJointTravel(joint string) *JointTravel {
	return &JointTravel{name: "travel_" + joint, joint: joint}
}

func (j *JointTravel) Name() string {
	return j.name
}

func (j *JointTravel) Observe(f animator.Frame) {
	if f.Pose == nil {
		return
	}
	t := f.Pose.Channel(j.joint).Translation
	if j.seen {
		j.total += t.Sub(j.last).Len()
	}
	j.last = t
	j.seen = true
}

func (j *JointTravel) Value() float64 {
	return j.total
}

func (j *JointTravel) Reset() {
	j.total = 0
	j.seen = false
}
