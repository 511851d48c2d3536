// Package ecs hosts animator instances as entities in a [Donburi] world.
//
// Every entity carries an [Animated] component. [World.TickAll] advances all of
// them and then delivers the montage time markers they crossed as
// [MarkerEventType] events, so gameplay systems can react to "impact" or "step"
// without holding a reference to the animator:
//
//	MarkerEventType.Subscribe(w.Donburi(), func(_ donburi.World, ev ecs.MarkerEvent) {
//		...
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
