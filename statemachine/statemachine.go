// Package statemachine implements the two detector-clocking flavours
// of §4.F/§4.G: a cheap fixed four-state controller and a general
// data-driven graph of named counters, states and guarded transitions.
// Both share the same narrow Host contract so a Detector can drive
// either without knowing which one it holds. See §9 "state machine
// flavours" design note.
package statemachine

import "github.com/kitadl/rome/hit"

// Host is the narrow slice of Detector operations a state machine
// needs: loading cells/pixels, checking availability, draining hits,
// and persisting an accepted one. Concrete state machines take Host as
// an explicit parameter rather than storing a pointer back to their
// owning detector (§9 design note).
type Host interface {
	LoadCell(name string, t int)
	LoadPixel(t int)
	HitsAvailable(name string) int

	// GetHits drains one hit from every cell named name, not just the
	// first match — mirroring LoadCell/LoadPixel's own "every matching
	// cell" recursion, since a detector ordinarily has more than one
	// cell sharing an AddressName (e.g. one "CU" cell per column).
	GetHits(name string, t int) []hit.Hit

	Accept(h hit.Hit, t int)
}

// StateMachine is the common detector-clocking interface. ClockUp runs
// the synchronous phase; ClockDown runs the synchronisation phase.
type StateMachine interface {
	ClockUp(t int, triggerHigh bool, host Host) error
	ClockDown(t int, triggerHigh bool, host Host) error
	ClockState() string
}
