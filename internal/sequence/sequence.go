package sequence

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/posegraph/internal/interp"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/timing"
)

// JointTimelines holds the keyed channels of one joint. Nil timelines leave the
// channel at identity.
type JointTimelines struct {
	Translation *Timeline[mgl64.Vec3]
	Rotation    *Timeline[mgl64.Quat]
	Scale       *Timeline[mgl64.Vec3]
	Visibility  *Timeline[bool]
}

func (jt *JointTimelines) sample(t float64, looping bool) pose.JointChannel {
	ch := pose.IdentityChannel()
	if jt.Translation != nil && jt.Translation.Len() > 0 {
		ch.Translation = valueAt(jt.Translation, t, looping)
	}
	if jt.Rotation != nil && jt.Rotation.Len() > 0 {
		ch.Rotation = valueAt(jt.Rotation, t, looping)
	}
	if jt.Scale != nil && jt.Scale.Len() > 0 {
		ch.Scale = valueAt(jt.Scale, t, looping)
	}
	if jt.Visibility != nil && jt.Visibility.Len() > 0 {
		ch.Visible = valueAt(jt.Visibility, t, looping)
	}
	return ch
}

func valueAt[T any](tl *Timeline[T], t float64, looping bool) T {
	if looping {
		return tl.ValueAtLooped(t)
	}
	return tl.ValueAt(t)
}

// Sequence is an immutable keyframed clip.
type Sequence struct {
	length  timing.TimeSpan
	joints  map[string]*JointTimelines
	markers map[string][]timing.TimeSpan
}

func (s *Sequence) Length() timing.TimeSpan { return s.length }

func (s *Sequence) Joints() []string {
	out := make([]string, 0, len(s.joints))
	for j := range s.joints {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// SamplePose evaluates every skeleton joint at t. Joints the sequence does not key
// stay at identity.
func (s *Sequence) SamplePose(sk *pose.Skeleton, t timing.TimeSpan, looping bool) *pose.Pose {
	p := pose.New(sk)
	secs := t.InSeconds()
	if looping && s.length > 0 {
		length := s.length.InSeconds()
		secs = math.Mod(secs, length)
		if secs < 0 {
			secs += length
		}
	}
	for _, j := range sk.Joints() {
		if jt, ok := s.joints[j]; ok {
			p.SetChannel(j, jt.sample(secs, false))
		}
	}
	return p
}

// TimeMarkers returns marker times by identifier. The map must not be modified.
func (s *Sequence) TimeMarkers() map[string][]timing.TimeSpan { return s.markers }

// MarkersCrossed lists marker identifiers with a time in (from, to], ordered by
// time then identifier.
func (s *Sequence) MarkersCrossed(from, to timing.TimeSpan) []string {
	return CrossedMarkers(s.markers, from, to)
}

// CrossedMarkers lists the identifiers in markers with a time in (from, to],
// ordered by time then identifier.
func CrossedMarkers(markers map[string][]timing.TimeSpan, from, to timing.TimeSpan) []string {
	type hit struct {
		id string
		at timing.TimeSpan
	}
	var hits []hit
	for id, times := range markers {
		for _, at := range times {
			if at > from && at <= to {
				hits = append(hits, hit{id, at})
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].at != hits[j].at {
			return hits[i].at < hits[j].at
		}
		return hits[i].id < hits[j].id
	})
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

type Builder struct {
	seq *Sequence
}

func NewBuilder(length timing.TimeSpan) *Builder {
	return &Builder{seq: &Sequence{
		length:  length,
		joints:  make(map[string]*JointTimelines),
		markers: make(map[string][]timing.TimeSpan),
	}}
}

func (b *Builder) joint(name string) *JointTimelines {
	jt, ok := b.seq.joints[name]
	if !ok {
		jt = &JointTimelines{}
		b.seq.joints[name] = jt
	}
	return jt
}

func (b *Builder) Translation(joint string, tl *Timeline[mgl64.Vec3]) *Builder {
	b.joint(joint).Translation = tl
	return b
}

func (b *Builder) Rotation(joint string, tl *Timeline[mgl64.Quat]) *Builder {
	b.joint(joint).Rotation = tl
	return b
}

func (b *Builder) Scale(joint string, tl *Timeline[mgl64.Vec3]) *Builder {
	b.joint(joint).Scale = tl
	return b
}

func (b *Builder) Visibility(joint string, tl *Timeline[bool]) *Builder {
	b.joint(joint).Visibility = tl
	return b
}

// Key adds a single translation and rotation keyframe, creating the timelines on
// first use.
func (b *Builder) Key(joint string, at float64, translation mgl64.Vec3, rotation mgl64.Quat) *Builder {
	jt := b.joint(joint)
	length := b.seq.length.InSeconds()
	if jt.Translation == nil {
		jt.Translation = NewTimeline(interp.Vec3, length)
	}
	if jt.Rotation == nil {
		jt.Rotation = NewTimeline(interp.Quat, length)
	}
	jt.Translation.AddKeyframe(at, translation)
	jt.Rotation.AddKeyframe(at, rotation)
	return b
}

func (b *Builder) TimeMarker(id string, at timing.TimeSpan) *Builder {
	b.seq.markers[id] = append(b.seq.markers[id], at)
	return b
}

// Build returns the sequence. The builder must not be used afterwards.
func (b *Builder) Build() *Sequence {
	for id := range b.seq.markers {
		times := b.seq.markers[id]
		sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	}
	s := b.seq
	b.seq = nil
	return s
}
