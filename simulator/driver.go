// Package simulator implements the driver loop of §4.I: per tick,
// inject whatever events have arrived, then clock every detector up
// and down in registration order, until the event queue and triggers
// are both exhausted and an optional shutdown delay has elapsed.
package simulator

import (
	"github.com/kitadl/rome/detector"
	"github.com/kitadl/rome/hit"
)

// Driver owns a detector tree, a pre-sorted event queue, and the stop
// conditions that end a run.
type Driver struct {
	Detectors []*detector.Detector
	Events    []hit.Hit
	Triggers  *TriggerState

	// StopTick ends the run at this tick regardless of remaining
	// events/triggers; -1 means "no fixed stop".
	StopTick int
	// ShutdownDelay is how many additional empty ticks to run once both
	// the event queue and the trigger tracker go quiet, before stopping.
	ShutdownDelay int
}

// New builds a Driver. Events must already be sorted by (timestamp,
// event_index) (§5 ordering guarantee) — the generator's
// GenerateTracks produces exactly that order.
func New(detectors []*detector.Detector, events []hit.Hit, triggers *TriggerState, stopTick, shutdownDelay int) *Driver {
	return &Driver{
		Detectors:     detectors,
		Events:        events,
		Triggers:      triggers,
		StopTick:      stopTick,
		ShutdownDelay: shutdownDelay,
	}
}

// Run advances the simulation tick by tick until a stop condition is
// reached, then drains every detector's residual contents.
func (d *Driver) Run() error {
	t := 0
	shutdownCountdown := -1

	for {
		d.injectEvents(t)

		triggerHigh := d.Triggers.At(t)
		for _, det := range d.Detectors {
			if err := det.ClockUp(t, triggerHigh); err != nil {
				return err
			}
		}
		for _, det := range d.Detectors {
			if err := det.ClockDown(t, triggerHigh); err != nil {
				return err
			}
		}

		quiet := len(d.Events) == 0 && !d.Triggers.Remaining()
		if quiet {
			if shutdownCountdown < 0 {
				shutdownCountdown = d.ShutdownDelay
			}
			if shutdownCountdown == 0 {
				break
			}
			shutdownCountdown--
		} else {
			shutdownCountdown = -1
		}

		if d.StopTick >= 0 && t == d.StopTick {
			break
		}
		t++
	}

	for _, det := range d.Detectors {
		det.RemoveAndSaveAll(t)
	}
	return nil
}

// injectEvents pops every whole event (all hits sharing an
// event_index) whose timestamp has arrived by t, trying each detector
// in registration order until one accepts each hit.
func (d *Driver) injectEvents(t int) {
	for len(d.Events) > 0 && d.Events[0].Timestamp <= t {
		idx := d.Events[0].EventIndex
		var group []hit.Hit
		for len(d.Events) > 0 && d.Events[0].EventIndex == idx {
			group = append(group, d.Events[0])
			d.Events = d.Events[1:]
		}
		for _, h := range group {
			for _, det := range d.Detectors {
				if det.PlaceHit(h, t) {
					break
				}
			}
		}
	}
}
