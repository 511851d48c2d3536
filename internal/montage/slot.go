package montage

import (
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/posefn"
)

// SlotFunction layers the montages playing in one slot over its input.
type SlotFunction struct {
	input   posefn.PoseFunction
	manager *Manager
	slot    string
}

func NewSlotFunction(input posefn.PoseFunction, manager *Manager, slot string) *SlotFunction {
	return &SlotFunction{input: input, manager: manager, slot: slot}
}

func (s *SlotFunction) Compute(ctx posefn.InterpolationContext) *pose.Pose {
	var base *pose.Pose
	if s.manager.FullyOverridesSkeleton(s.slot, ctx.Skeleton) {
		base = pose.New(ctx.Skeleton)
	} else {
		base = s.input.Compute(ctx)
	}
	return s.manager.LayeredSlotPose(base, s.slot, ctx.Skeleton, ctx.PartialTicks)
}

// Tick ticks the input only. The manager is ticked once per animator tick by its
// owner.
func (s *SlotFunction) Tick(state posefn.EvaluationState) {
	s.input.Tick(state)
}

func (s *SlotFunction) WrapUnique() posefn.PoseFunction {
	return NewSlotFunction(s.input.WrapUnique(), s.manager, s.slot)
}

func (s *SlotFunction) MostRelevantAnimationPlayer() (posefn.AnimationPlayer, bool) {
	if p, ok := s.manager.MostRelevantInSlot(s.slot); ok {
		return p, true
	}
	return s.input.MostRelevantAnimationPlayer()
}

func (s *SlotFunction) Slot() string { return s.slot }

var _ posefn.PoseFunction = (*SlotFunction)(nil)
