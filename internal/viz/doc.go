// Package viz renders a live terminal view of a running simulation.
//
// The view is a Bubble Tea program: each animation tick advances the
// orchestrator a few global steps, then redraws the energy and entropy
// traces alongside a per-ring table.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial snapshot
//	Tab   - Cycle the graphed quantity
//	Q     - Quit
package viz
