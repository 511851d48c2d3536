package pose

import "sort"

// BlendMask scales blend weight per joint. The zero value masks nothing: every joint
// blends at full weight. A non-empty mask gives unlisted joints weight 0.
type BlendMask struct {
	weights map[string]float64
}

func NewBlendMask(weights map[string]float64) BlendMask {
	m := BlendMask{weights: make(map[string]float64, len(weights))}
	for j, w := range weights {
		m.weights[j] = clamp01(w)
	}
	return m
}

// MaskOf builds a mask weighting the listed joints fully.
func MaskOf(joints ...string) BlendMask {
	m := BlendMask{weights: make(map[string]float64, len(joints))}
	for _, j := range joints {
		m.weights[j] = 1
	}
	return m
}

func (m BlendMask) IsZero() bool { return m.weights == nil }

func (m BlendMask) Weight(joint string) float64 {
	if m.weights == nil {
		return 1
	}
	return m.weights[joint]
}

// Covers reports whether every joint of sk blends at full weight.
func (m BlendMask) Covers(sk *Skeleton) bool {
	if m.weights == nil {
		return true
	}
	for _, j := range sk.Joints() {
		if m.weights[j] < 1 {
			return false
		}
	}
	return true
}

func (m BlendMask) Joints() []string {
	out := make([]string, 0, len(m.weights))
	for j := range m.weights {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// JointSet returns the joints with a non-zero weight.
func (m BlendMask) JointSet() JointSet {
	set := make(JointSet, len(m.weights))
	for j, w := range m.weights {
		if w > 0 {
			set[j] = struct{}{}
		}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
