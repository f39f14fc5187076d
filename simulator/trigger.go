package simulator

import "sort"

// TriggerState tracks an ordered list of trigger-on timestamps and an
// off-timestamp, flipping as t crosses each (§4.I). Reaching an
// on-timestamp schedules the off at t + TriggerLength.
type TriggerState struct {
	onTimes       []int
	triggerLength int

	next int // index into onTimes of the next on-edge not yet crossed
	high bool
	offAt int
}

// NewTriggerState builds a tracker from an ascending (or to-be-sorted)
// list of on-timestamps and a fixed trigger length.
func NewTriggerState(onTimes []int, triggerLength int) *TriggerState {
	sorted := append([]int(nil), onTimes...)
	sort.Ints(sorted)
	return &TriggerState{onTimes: sorted, triggerLength: triggerLength, offAt: -1}
}

// At advances the tracker to t and reports whether the trigger is high
// at t.
func (s *TriggerState) At(t int) bool {
	for s.next < len(s.onTimes) && s.onTimes[s.next] <= t {
		s.high = true
		s.offAt = s.onTimes[s.next] + s.triggerLength
		s.next++
	}
	if s.high && t >= s.offAt {
		s.high = false
	}
	return s.high
}

// Remaining reports whether any on-edge has not yet been crossed, or
// the trigger is currently high — i.e. whether the simulation still has
// trigger-related work pending.
func (s *TriggerState) Remaining() bool {
	return s.high || s.next < len(s.onTimes)
}
