package metrics

import "github.com/san-kum/posegraph/internal/animator"

// PeakStackDepth records the deepest montage stack seen in any frame.
type PeakStackDepth struct {
	name string
	peak int
}

func NewPeakStackDepth() *PeakStackDepth {
	return &PeakStackDepth{name: "peak_stack_depth"}
}

func (p *PeakStackDepth) Name() string {
	return p.name
}

func (p *PeakStackDepth) Observe(f animator.Frame) {
	if len(f.Montages) > p.peak {
		p.peak = len(f.Montages)
	}
}

func (p *PeakStackDepth) Value() float64 {
	return float64(p.peak)
}

func (p *PeakStackDepth) Reset() {
	p.peak = 0
}

// SlotCoverage is the mean over frames of the strongest montage weight applied to
// a slot: 0 when the slot never played, 1 when fully overridden throughout.
type SlotCoverage struct {
	name    string
	slot    string
	sum     float64
	samples int
}

func NewSlotCoverage(slot string) *SlotCoverage {
	return &SlotCoverage{name: "slot_coverage_" + slot, slot: slot}
}

func (s *SlotCoverage) Name() string {
	return s.name
}

func (s *SlotCoverage) Observe(f animator.Frame) {
	var w float64
	for _, m := range f.Montages {
		if !playsIn(m.Slots, s.slot) {
			continue
		}
		if m.Weight > w {
			w = m.Weight
		}
	}
	s.sum += w
	s.samples++
}

func (s *SlotCoverage) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SlotCoverage) Reset() {
	s.sum = 0
	s.samples = 0
}

func playsIn(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
