package pose

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownJoint   = errors.New("pose: unknown joint")
	ErrDuplicateJoint = errors.New("pose: duplicate joint")
)

// Skeleton is the ordered joint set a pose is laid out against, plus the
// left/right pairing used when mirroring.
type Skeleton struct {
	joints  []string
	index   map[string]int
	mirrors map[string]string
}

// NewSkeleton builds a skeleton from joint names in evaluation order. Mirror pairs
// are symmetric: registering a→b also maps b→a.
func NewSkeleton(joints []string, mirrors map[string]string) (*Skeleton, error) {
	s := &Skeleton{
		joints:  make([]string, 0, len(joints)),
		index:   make(map[string]int, len(joints)),
		mirrors: make(map[string]string, len(mirrors)*2),
	}
	for _, j := range joints {
		if _, ok := s.index[j]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateJoint, j)
		}
		s.index[j] = len(s.joints)
		s.joints = append(s.joints, j)
	}
	for a, b := range mirrors {
		if !s.ContainsJoint(a) {
			return nil, fmt.Errorf("mirror %s: %w", a, ErrUnknownJoint)
		}
		if !s.ContainsJoint(b) {
			return nil, fmt.Errorf("mirror %s: %w", b, ErrUnknownJoint)
		}
		s.mirrors[a] = b
		s.mirrors[b] = a
	}
	return s, nil
}

// MustSkeleton is NewSkeleton for statically known joint sets.
func MustSkeleton(joints []string, mirrors map[string]string) *Skeleton {
	s, err := NewSkeleton(joints, mirrors)
	if err != nil {
		panic(err)
	}
	return s
}

// Joints returns the joint names in evaluation order. The slice must not be modified.
func (s *Skeleton) Joints() []string { return s.joints }

func (s *Skeleton) Len() int { return len(s.joints) }

func (s *Skeleton) ContainsJoint(name string) bool {
	_, ok := s.index[name]
	return ok
}

// MirrorJoint returns the paired joint, or name itself when it has no pair.
func (s *Skeleton) MirrorJoint(name string) string {
	if m, ok := s.mirrors[name]; ok {
		return m
	}
	return name
}

func (s *Skeleton) JointSet() JointSet {
	return NewJointSet(s.joints...)
}

func (s *Skeleton) indexOf(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// JointSet is an unordered set of joint names used for masking blends.
type JointSet map[string]struct{}

func NewJointSet(names ...string) JointSet {
	set := make(JointSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s JointSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
