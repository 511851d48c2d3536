package metrics

import (
	"math"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
)

// SpringResidual tracks the largest gap between a float spring and its target.
type SpringResidual struct {
	name string
	key  string
	max  float64
}

func NewSpringResidual(key driver.Key[float64]) *SpringResidual {
	return &SpringResidual{name: "spring_residual_" + key.Name(), key: key.Name()}
}

func (s *SpringResidual) Name() string {
	return s.name
}

func (s *SpringResidual) Observe(f animator.Frame) {
	if f.Drivers == nil {
		return
	}
	d, ok := f.Drivers.Lookup(s.key)
	if !ok {
		return
	}
	spring, ok := d.(*driver.Spring[float64])
	if !ok {
		return
	}
	if r := math.Abs(spring.Target() - spring.CurrentValue()); r > s.max {
		s.max = r
	}
}

func (s *SpringResidual) Value() float64 {
	return s.max
}

func (s *SpringResidual) Reset() {
	s.max = 0
}
