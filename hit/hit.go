// Package hit implements the Hit record: the unit of signal that flows
// from a pixel, up through readout cells, into a detector's accepted or
// lost log. See §3/§4.B of the specification.
package hit

import "fmt"

// Sink receives hits that were lost — rejected, overwritten, expired,
// or otherwise never reaching the accepted log — tagged with the
// annotation describing why. Every component that can lose a hit
// (Pixel, the buffer/child-read/pixel-read policies, Detector) writes
// to a Sink rather than returning an error, since loss is an expected,
// observable outcome here rather than a failure (§7/§8 of the
// specification).
type Sink interface {
	Lost(h Hit, reason string, t int)
}

// Hit carries an event id, a timestamp, the tick at which dead-time
// ends, a charge, an ordered address map and an ordered
// readout-timestamp map.
type Hit struct {
	EventIndex    int
	Timestamp     int
	DeadTimeEnd   int
	Charge        float64
	AvailableFrom int
	Address       Fields
	Readout       Fields
}

// New builds a Hit with no address/readout entries yet. Callers add
// address components with AddAddress before the hit is valid.
func New(eventIndex, timestamp, deadTimeEnd int, charge float64) Hit {
	return Hit{
		EventIndex:    eventIndex,
		Timestamp:     timestamp,
		DeadTimeEnd:   deadTimeEnd,
		Charge:        charge,
		AvailableFrom: timestamp,
	}
}

// Invalid returns the sentinel invalid hit (EventIndex == -1).
func Invalid() Hit {
	return Hit{EventIndex: -1, Timestamp: -1, DeadTimeEnd: -1, Charge: -1, AvailableFrom: -1}
}

// IsValid reports whether h satisfies the validity invariant: a
// non-negative timestamp and event index, non-negative charge, and at
// least one address component.
func (h Hit) IsValid() bool {
	return h.Timestamp >= 0 && h.EventIndex >= 0 && h.Charge >= 0 && h.Address.Len() > 0
}

// IsAvailable reports whether a hit stamped with AvailableFrom may be
// consumed by downstream logic at tick t.
func (h Hit) IsAvailable(t int) bool {
	return t > h.AvailableFrom
}

// AddAddress appends an address component. Order is significant: it is
// both the construction order and the textual-form order.
func (h *Hit) AddAddress(name string, value int) {
	h.Address.Set(name, value)
}

// AddReadout appends a readout-timestamp component.
func (h *Hit) AddReadout(name string, tick int) {
	h.Readout.Set(name, tick)
}

// Annotate is the single mutation point every cell/pixel/policy uses to
// stamp a hit as it moves up the tree, keeping the readout-timestamp
// sequence in the order the hit actually traversed.
func (h *Hit) Annotate(name string, tick int) {
	h.AddReadout(name, tick)
}

// Clone returns an independent copy of h.
func (h Hit) Clone() Hit {
	out := h
	out.Address = h.Address.Clone()
	out.Readout = h.Readout.Clone()
	return out
}

func (h Hit) String() string {
	return fmt.Sprintf("Hit{event=%d t=%d dte=%d charge=%g addr=%v}",
		h.EventIndex, h.Timestamp, h.DeadTimeEnd, h.Charge, h.Address.Keys())
}
