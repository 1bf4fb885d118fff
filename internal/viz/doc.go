// Package viz renders integrator runs in the terminal.
//
// [Model] is a Bubble Tea program that steps a sim.Stepper on every tick and
// plots the recent history of up to four state components with asciigraph,
// or the x0 against x1 phase trace on a braille [Canvas]. [Printer] is a
// plain sim.Observer for non-interactive runs, and [WriteTrajectorySVG]
// exports a trace as an SVG path.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Reset state, arguments and noise stream
//	Tab    - Select the next step argument
//	Up/K   - Scale the selected argument by 1.05
//	Down/J - Scale the selected argument by 0.95
//	+/-    - Double or halve the steps taken per frame
//	P      - Toggle the phase view
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
