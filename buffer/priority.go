package buffer

import "github.com/kitadl/rome/hit"

// Priority is a fixed-capacity array of slots. The first free slot is
// filled on insert; Get returns the first occupied slot whose hit is
// available at the query tick.
type Priority struct {
	slots    []hit.Hit
	occupied []bool
	lastSlot int
}

// NewPriority builds an empty priority-slot buffer with capacity slots.
func NewPriority(capacity int) *Priority {
	return &Priority{
		slots:    make([]hit.Hit, capacity),
		occupied: make([]bool, capacity),
		lastSlot: -1,
	}
}

// Capacity returns the number of slots.
func (p *Priority) Capacity() int { return len(p.slots) }

// Len returns the number of occupied slots.
func (p *Priority) Len() int {
	n := 0
	for _, o := range p.occupied {
		if o {
			n++
		}
	}
	return n
}

// Insert fills the first free slot, if any.
func (p *Priority) Insert(h hit.Hit, t int) (bool, int) {
	for i, occ := range p.occupied {
		if !occ {
			p.slots[i] = h
			p.occupied[i] = true
			return true, i
		}
	}
	return false, -1
}

// Get returns the first occupied, available slot's hit.
func (p *Priority) Get(t int, remove bool) (hit.Hit, bool) {
	for i, occ := range p.occupied {
		if !occ {
			continue
		}
		if !p.slots[i].IsAvailable(t) {
			continue
		}
		h := p.slots[i]
		if remove {
			p.occupied[i] = false
			p.slots[i] = hit.Invalid()
			p.lastSlot = i
		}
		return h, true
	}
	return hit.Invalid(), false
}

// LastRemovedSlot returns the index most recently cleared by Get(t,
// true), or -1 if none has been cleared yet. Used by OneByOneReadout to
// mirror a clear into the paired child slot.
func (p *Priority) LastRemovedSlot() int {
	return p.lastSlot
}

// GetSlot returns slot i's hit without regard to availability.
func (p *Priority) GetSlot(i int) (hit.Hit, bool) {
	if i < 0 || i >= len(p.slots) || !p.occupied[i] {
		return hit.Invalid(), false
	}
	return p.slots[i], true
}

// SetSlot stores h directly into slot i, overwriting any occupant.
func (p *Priority) SetSlot(i int, h hit.Hit) {
	p.slots[i] = h
	p.occupied[i] = true
}

// ClearSlot empties slot i.
func (p *Priority) ClearSlot(i int) {
	p.occupied[i] = false
	p.slots[i] = hit.Invalid()
}

// EvictOldest removes and returns the lowest-index occupied slot,
// regardless of availability.
func (p *Priority) EvictOldest() (hit.Hit, bool) {
	for i, occ := range p.occupied {
		if !occ {
			continue
		}
		h := p.slots[i]
		p.occupied[i] = false
		p.slots[i] = hit.Invalid()
		return h, true
	}
	return hit.Invalid(), false
}

// NoTriggerRemove evicts every slot whose hit's AvailableFrom equals t.
func (p *Priority) NoTriggerRemove(t int, lost hit.Sink) int {
	removed := 0
	for i, occ := range p.occupied {
		if !occ {
			continue
		}
		if p.slots[i].AvailableFrom != t {
			continue
		}
		h := p.slots[i]
		h.Annotate(ReasonNoTrigger, t)
		lost.Lost(h, ReasonNoTrigger, t)
		p.occupied[i] = false
		p.slots[i] = hit.Invalid()
		removed++
	}
	return removed
}
