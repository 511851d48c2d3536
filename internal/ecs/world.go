package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
)

// Animatable is the type-erased view of an animator instance bound to its input.
type Animatable interface {
	Advance()
	Pose(partialTicks float64) *pose.Pose
	Drivers() *driver.Container
	Montages() *montage.Manager
	Ticks() int64
}

type bound[T any] struct {
	*animator.Instance[T]
	input animator.InputFunc[T]
}

func (b *bound[T]) Advance() { b.Tick(b.input(b.Ticks())) }

// Bind pairs an instance with the function that feeds it each tick.
func Bind[T any](instance *animator.Instance[T], input animator.InputFunc[T]) Animatable {
	return &bound[T]{Instance: instance, input: input}
}

// Animated is the component stored on every animated entity.
type Animated struct {
	Name   string
	Entity Animatable
	// Pose is the pose computed by the last PoseAll.
	Pose *pose.Pose
}

var Component = donburi.NewComponentType[Animated]()

// MarkerEvent is a montage time marker crossed by an entity's animator.
type MarkerEvent struct {
	Entity donburi.Entity
	Name   string
	montage.MarkerEvent
}

var MarkerEventType = events.NewEventType[MarkerEvent]()

type World struct {
	world donburi.World
	query *donburi.Query
}

func NewWorld(w donburi.World) *World {
	return &World{world: w, query: donburi.NewQuery(filter.Contains(Component))}
}

func (w *World) Donburi() donburi.World { return w.world }

// Spawn creates an entity for a and forwards its montage time markers as events.
func (w *World) Spawn(name string, a Animatable) donburi.Entity {
	e := w.world.Create(Component)
	Component.SetValue(w.world.Entry(e), Animated{Name: name, Entity: a})
	a.Montages().OnTimeMarker(func(ev montage.MarkerEvent) {
		MarkerEventType.Publish(w.world, MarkerEvent{Entity: e, Name: name, MarkerEvent: ev})
	})
	return e
}

func (w *World) Despawn(e donburi.Entity) {
	if w.world.Valid(e) {
		w.world.Remove(e)
	}
}

func (w *World) Len() int { return w.query.Count(w.world) }

// Get returns the component of e.
func (w *World) Get(e donburi.Entity) (*Animated, bool) {
	if !w.world.Valid(e) {
		return nil, false
	}
	entry := w.world.Entry(e)
	if !entry.HasComponent(Component) {
		return nil, false
	}
	return Component.Get(entry), true
}

// TickAll advances every animated entity by one tick, then processes queued
// marker events.
func (w *World) TickAll() {
	w.query.Each(w.world, func(entry *donburi.Entry) {
		Component.Get(entry).Entity.Advance()
	})
	MarkerEventType.ProcessEvents(w.world)
}

// PoseAll computes every entity's pose for the frame and stores it on the
// component.
func (w *World) PoseAll(partialTicks float64) map[donburi.Entity]*pose.Pose {
	out := make(map[donburi.Entity]*pose.Pose, w.Len())
	w.query.Each(w.world, func(entry *donburi.Entry) {
		a := Component.Get(entry)
		a.Pose = a.Entity.Pose(partialTicks)
		out[entry.Entity()] = a.Pose
	})
	return out
}

// Frame describes e as of the last TickAll and PoseAll, for observers.
func (w *World) Frame(e donburi.Entity, partialTicks float64) (animator.Frame, bool) {
	a, ok := w.Get(e)
	if !ok {
		return animator.Frame{}, false
	}
	return animator.Frame{
		Tick:         a.Entity.Ticks() - 1,
		PartialTicks: partialTicks,
		Pose:         a.Pose,
		Drivers:      a.Entity.Drivers(),
		Montages:     a.Entity.Montages().Snapshot(partialTicks),
	}, true
}
