// Package viz draws a gas container in the terminal.
//
//   - [Canvas]: braille sub-pixel grid with lines, rectangles and circles
//   - [Projector]: fits container coordinates onto a canvas
//   - [Model]: the bubbletea program behind `idealgas live`
//   - [Hex] and [RGB]: the named color palette shared with the GUI and SVG
//     writers
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Step one frame while paused
//	R     - Reset to a freshly built container
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
