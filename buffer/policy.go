// Package buffer implements the BufferPolicy family that governs a
// readout cell's insert/get order and capacity enforcement: a bounded
// FIFO, and a fixed-capacity priority-slot array. See the buffer
// policy table in §4.D of the specification.
//
// Grounded on core/port.go's mutex-guarded bounded buffer
// (incomingBuf/outgoingBuf, capacity-checked CanSend) from the teacher
// codebase, adapted from byte/message buffering between CPU tile ports
// into hit buffering between readout-tree nodes — the insert/overflow
// branching is the same shape, but no locking is needed here since the
// whole engine is single-threaded cooperative (§5 of the
// specification).
package buffer

import "github.com/kitadl/rome/hit"

// Annotations a buffer policy itself can log. Overflow/eviction
// annotations specific to a *child-read* policy (noSpace, overwritten,
// BufferFull) are logged by the readoutcell package, not here.
const ReasonNoTrigger = "noTrigger"

// Policy is the BufferPolicy contract every concrete buffer strategy
// implements.
type Policy interface {
	// Insert attempts to add h at tick t. ok is false if the buffer is
	// full; callers (child-read policies) decide what to do about that
	// (drop, evict-and-retry, ...). slot is the occupied slot index —
	// meaningful for a priority-slot buffer (stamped onto the hit as
	// "<addr>_bufferNumber" by the owning cell), and simply the
	// insertion index for a FIFO.
	Insert(h hit.Hit, t int) (ok bool, slot int)

	// Get returns the oldest/top-priority hit whose AvailableFrom < t,
	// optionally removing it from the buffer.
	Get(t int, remove bool) (hit.Hit, bool)

	// EvictOldest removes and returns the buffer's oldest occupant,
	// regardless of availability — used by OverwriteReadout.
	EvictOldest() (hit.Hit, bool)

	// NoTriggerRemove evicts and logs as ReasonNoTrigger every hit whose
	// AvailableFrom == t, returning the count evicted.
	NoTriggerRemove(t int, lost hit.Sink) int

	Len() int
	Capacity() int
}
