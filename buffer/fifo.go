package buffer

import "github.com/kitadl/rome/hit"

// FIFO is a capacity-bounded first-in-first-out buffer.
type FIFO struct {
	capacity int
	items    []hit.Hit
}

// NewFIFO builds an empty FIFO buffer with the given capacity.
func NewFIFO(capacity int) *FIFO {
	return &FIFO{capacity: capacity}
}

// Capacity returns the buffer's maximum occupancy.
func (f *FIFO) Capacity() int { return f.capacity }

// Len returns the current occupancy.
func (f *FIFO) Len() int { return len(f.items) }

// Insert appends h if the buffer has room.
func (f *FIFO) Insert(h hit.Hit, t int) (bool, int) {
	if len(f.items) >= f.capacity {
		return false, -1
	}
	f.items = append(f.items, h)
	return true, len(f.items) - 1
}

// Get returns the front hit if it is available at t, optionally
// removing it. Order is strict: an unavailable front blocks visibility
// of anything behind it, matching real in-order readout.
func (f *FIFO) Get(t int, remove bool) (hit.Hit, bool) {
	if len(f.items) == 0 {
		return hit.Invalid(), false
	}

	front := f.items[0]
	if !front.IsAvailable(t) {
		return hit.Invalid(), false
	}

	if remove {
		f.items = f.items[1:]
	}
	return front, true
}

// EvictOldest removes and returns the front hit regardless of
// availability.
func (f *FIFO) EvictOldest() (hit.Hit, bool) {
	if len(f.items) == 0 {
		return hit.Invalid(), false
	}
	h := f.items[0]
	f.items = f.items[1:]
	return h, true
}

// NoTriggerRemove evicts every hit whose AvailableFrom equals t.
func (f *FIFO) NoTriggerRemove(t int, lost hit.Sink) int {
	kept := f.items[:0:0]
	removed := 0
	for _, h := range f.items {
		if h.AvailableFrom == t {
			h.Annotate(ReasonNoTrigger, t)
			lost.Lost(h, ReasonNoTrigger, t)
			removed++
			continue
		}
		kept = append(kept, h)
	}
	f.items = kept
	return removed
}
