package sequence

import (
	"math"
	"sort"

	"github.com/san-kum/posegraph/internal/interp"
)

type Keyframe[T any] struct {
	Time  float64
	Value T
}

// Timeline maps a time in seconds to a value by interpolating between keyframes.
type Timeline[T any] struct {
	interpolator interp.Interpolator[T]
	length       float64
	keys         []Keyframe[T]
}

func NewTimeline[T any](interpolator interp.Interpolator[T], length float64) *Timeline[T] {
	return &Timeline[T]{interpolator: interpolator, length: length}
}

// AddKeyframe inserts a keyframe, replacing any keyframe at the same time.
func (tl *Timeline[T]) AddKeyframe(time float64, value T) *Timeline[T] {
	i := sort.Search(len(tl.keys), func(i int) bool { return tl.keys[i].Time >= time })
	if i < len(tl.keys) && tl.keys[i].Time == time {
		tl.keys[i].Value = value
		return tl
	}
	tl.keys = append(tl.keys, Keyframe[T]{})
	copy(tl.keys[i+1:], tl.keys[i:])
	tl.keys[i] = Keyframe[T]{Time: time, Value: value}
	return tl
}

func (tl *Timeline[T]) Len() int        { return len(tl.keys) }
func (tl *Timeline[T]) Length() float64 { return tl.length }

// ValueAt samples the timeline, holding the first and last keyframes outside their
// range. An empty timeline returns the zero value.
func (tl *Timeline[T]) ValueAt(time float64) T {
	var zero T
	n := len(tl.keys)
	if n == 0 {
		return zero
	}
	if time <= tl.keys[0].Time {
		return tl.keys[0].Value
	}
	if time >= tl.keys[n-1].Time {
		return tl.keys[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return tl.keys[i].Time > time })
	a, b := tl.keys[i-1], tl.keys[i]
	return tl.interpolator(a.Value, b.Value, (time-a.Time)/(b.Time-a.Time))
}

// ValueAtLooped wraps time into [0, length) before sampling.
func (tl *Timeline[T]) ValueAtLooped(time float64) T {
	if tl.length <= 0 {
		return tl.ValueAt(time)
	}
	t := math.Mod(time, tl.length)
	if t < 0 {
		t += tl.length
	}
	return tl.ValueAt(t)
}
