package posefn

import "github.com/san-kum/posegraph/internal/pose"

// Static returns a fixed pose, or the skeleton's identity pose when built with nil.
type Static struct {
	pose *pose.Pose
}

func NewStatic(p *pose.Pose) *Static { return &Static{pose: p} }

func (s *Static) Compute(ctx InterpolationContext) *pose.Pose {
	if s.pose == nil {
		return pose.New(ctx.Skeleton)
	}
	return s.pose.Clone()
}

func (s *Static) Tick(EvaluationState) {}

func (s *Static) WrapUnique() PoseFunction { return s }

func (s *Static) MostRelevantAnimationPlayer() (AnimationPlayer, bool) { return nil, false }
