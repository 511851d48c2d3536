package sequence

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/timing"
)

var ErrUnknownSequence = errors.New("sequence: unknown sequence")

// Sampler is the read side of sequence data consumed by pose functions and montages.
// SamplePose panics on unknown identifiers; callers validate them through Length
// when a configuration is first used.
type Sampler interface {
	Length(id string) (timing.TimeSpan, error)
	SamplePose(sk *pose.Skeleton, id string, t timing.TimeSpan, looping bool) *pose.Pose
	TimeMarkers(id string) map[string][]timing.TimeSpan
}

// Library is a concurrency-safe set of sequences keyed by identifier.
type Library struct {
	mu        sync.RWMutex
	sequences map[string]*Sequence
}

func NewLibrary() *Library {
	return &Library{sequences: make(map[string]*Sequence)}
}

func (l *Library) Put(id string, s *Sequence) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sequences[id] = s
}

// Replace swaps the whole content of the library at once.
func (l *Library) Replace(other *Library) {
	other.mu.RLock()
	next := make(map[string]*Sequence, len(other.sequences))
	for id, s := range other.sequences {
		next[id] = s
	}
	other.mu.RUnlock()

	l.mu.Lock()
	l.sequences = next
	l.mu.Unlock()
}

func (l *Library) Get(id string) (*Sequence, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sequences[id]
	return s, ok
}

func (l *Library) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.sequences))
	for id := range l.sequences {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sequences)
}

func (l *Library) Length(id string) (timing.TimeSpan, error) {
	s, ok := l.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSequence, id)
	}
	return s.Length(), nil
}

func (l *Library) SamplePose(sk *pose.Skeleton, id string, t timing.TimeSpan, looping bool) *pose.Pose {
	s, ok := l.Get(id)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownSequence, id))
	}
	return s.SamplePose(sk, t, looping)
}

func (l *Library) TimeMarkers(id string) map[string][]timing.TimeSpan {
	if s, ok := l.Get(id); ok {
		return s.TimeMarkers()
	}
	return nil
}

var _ Sampler = (*Library)(nil)
