// Package animator hosts pose graphs: it owns the per-animator driver container,
// montage manager and graph root, enforces the tick ordering, and runs instances
// on a fixed-step loop.
//
// A tick pushes every driver's current value to previous, lets the Animator write
// fresh data, ticks the drivers, the graph and finally the montage stack. Frames
// between ticks only read state.
package animator
