// Package viz replays a computed trajectory in the terminal.
//
// The viewer is a Bubble Tea program that draws the vehicle on a Braille
// canvas, traces the coning of its spin axis and shows rates, attitude
// angles and a nutation chart for the current sample.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first sample
//	[ ]   - Step backward/forward
//	< >   - Halve/double playback speed
//	x y z - Rotate the camera (shift reverses)
//	+ -   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
