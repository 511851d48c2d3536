package timing

import "github.com/tanema/gween/ease"

// Transition pairs a duration with the easing curve used to shape a blend weight
// over that duration.
type Transition struct {
	Duration TimeSpan
	Easing   ease.TweenFunc

	inverse bool
}

var (
	Instant    = Transition{Duration: 0, Easing: ease.Linear}
	SingleTick = Transition{Duration: 1, Easing: ease.Linear}
)

func Of(d TimeSpan, easing ease.TweenFunc) Transition {
	if easing == nil {
		easing = ease.Linear
	}
	return Transition{Duration: d, Easing: easing}
}

// WithInverseEasing returns a copy whose curve is mirrored around the diagonal,
// so an ease-in authored for an entrance reads as the matching ease-out when the
// weight runs backwards.
func (t Transition) WithInverseEasing() Transition {
	t.inverse = !t.inverse
	return t
}

// Apply maps a linear weight in [0,1] through the easing curve.
func (t Transition) Apply(weight float64) float64 {
	switch {
	case weight <= 0:
		return 0
	case weight >= 1:
		return 1
	}
	fn := t.Easing
	if fn == nil {
		fn = ease.Linear
	}
	if t.inverse {
		return 1 - float64(fn(float32(1-weight), 0, 1, 1))
	}
	return float64(fn(float32(weight), 0, 1, 1))
}

// easings maps the names accepted in configuration files to gween curves.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_expo":      ease.InExpo,
	"out_expo":     ease.OutExpo,
	"in_out_expo":  ease.InOutExpo,
	"in_back":      ease.InBack,
	"out_back":     ease.OutBack,
	"in_out_back":  ease.InOutBack,
}

// Easing looks up an easing curve by name. The empty name resolves to linear.
func Easing(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok := easings[name]
	return fn, ok
}

func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	return names
}
