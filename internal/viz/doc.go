// Package viz renders animator output in the terminal.
//
//   - [Canvas]: braille sub-pixel canvas
//   - [DrawArms]: front view of the arms rig drawn onto a canvas
//   - [Model]: Bubble Tea program driving an animator in real time
//
// # Key Bindings
//
//	Space - Pause/Resume
//	A/I/F - Play attack, inspect, flinch
//	X     - Interrupt the main slot
//	W/S   - Walk faster/slower
//	M     - Toggle mirroring
//	K     - Recoil kick
//	R     - Reset
//	T     - Cycle color themes
package viz
