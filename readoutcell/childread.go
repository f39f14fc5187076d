package readoutcell

import (
	"fmt"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/hit"
)

// Lost-hit reasons produced by the ChildReadPolicy family.
const (
	ReasonNoSpace    = "noSpace"
	ReasonOverwritten = "overwritten"
	ReasonROCMerge   = "ROCMerge"
)

// ChildReadPolicy governs how a cell harvests hits from its child
// cells into its own buffer, once per LoadCell call that names this
// cell. Concrete variants take the owning cell as an explicit
// parameter rather than holding a back-pointer to it (§9 design note).
type ChildReadPolicy interface {
	Read(cell *ReadoutCell, ctx Context)
}

// NoFullReadReadout attempts to pull one hit from each child; once the
// own buffer fills, it stops — spare child hits remain in their child.
type NoFullReadReadout struct{}

func (NoFullReadReadout) Read(cell *ReadoutCell, ctx Context) {
	for _, ch := range cell.Children {
		if cell.Buffer.Len() >= cell.Buffer.Capacity() {
			return
		}
		h, ok := ch.Buffer.Get(ctx.Tick, true)
		if !ok {
			continue
		}
		cell.harvestInsert(h, ch, ctx.Tick)
	}
}

// NoOverwriteReadout pulls from every child; hits that don't fit in the
// own buffer are logged noSpace and lost, without eviction.
type NoOverwriteReadout struct{}

func (NoOverwriteReadout) Read(cell *ReadoutCell, ctx Context) {
	for _, ch := range cell.Children {
		h, ok := ch.Buffer.Get(ctx.Tick, true)
		if !ok {
			continue
		}
		if ok, _ := cell.harvestInsert(h, ch, ctx.Tick); !ok {
			ctx.Lost.Lost(h, ReasonNoSpace, ctx.Tick)
		}
	}
}

// OverwriteReadout pulls from every child; if the own buffer is full,
// the oldest occupant is evicted (logged overwritten) to make room.
type OverwriteReadout struct{}

func (OverwriteReadout) Read(cell *ReadoutCell, ctx Context) {
	for _, ch := range cell.Children {
		h, ok := ch.Buffer.Get(ctx.Tick, true)
		if !ok {
			continue
		}
		if ok, _ := cell.harvestInsert(h, ch, ctx.Tick); ok {
			continue
		}
		if evicted, had := cell.Buffer.EvictOldest(); had {
			evicted.Annotate(ReasonOverwritten, ctx.Tick)
			ctx.Lost.Lost(evicted, ReasonOverwritten, ctx.Tick)
		}
		cell.harvestInsert(h, ch, ctx.Tick)
	}
}

// OneByOneReadout requires exactly one child of the same capacity, both
// backed by priority-slot buffers: slot i of the child maps to slot i
// of the parent, and a parent read also clears the mirrored child slot.
type OneByOneReadout struct{}

func (OneByOneReadout) Read(cell *ReadoutCell, ctx Context) {
	if len(cell.Children) != 1 {
		return
	}
	child := cell.Children[0]

	own, ok := cell.Buffer.(*buffer.Priority)
	if !ok {
		return
	}
	childBuf, ok := child.Buffer.(*buffer.Priority)
	if !ok {
		return
	}
	if own.Capacity() != childBuf.Capacity() {
		return
	}

	for i := 0; i < own.Capacity(); i++ {
		h, ok := own.GetSlot(i)
		if ok && h.IsValid() {
			continue // own slot already occupied, nothing to mirror in.
		}
		h, ok = childBuf.GetSlot(i)
		if !ok {
			continue
		}
		if child.Triggered {
			h.Annotate(fmt.Sprintf("%s_Trigger", child.AddressName), ctx.Tick)
		}
		h.Annotate(cell.AddressName, ctx.Tick)
		h.AvailableFrom = cell.referenceTick(h, ctx.Tick) + cell.ReadoutDelay
		own.SetSlot(i, h)
	}
}

// clearMirroredSlot clears the child's slot i whenever the parent's
// slot i was just cleared by GetHit(remove=true).
func (OneByOneReadout) clearMirroredSlot(cell *ReadoutCell, t int) {
	own, ok := cell.Buffer.(*buffer.Priority)
	if !ok || len(cell.Children) != 1 {
		return
	}
	childBuf, ok := cell.Children[0].Buffer.(*buffer.Priority)
	if !ok {
		return
	}
	i := own.LastRemovedSlot()
	if i < 0 {
		return
	}
	childBuf.ClearSlot(i)
}

// TokenReadout round-robins a cursor over the children, pulling one hit
// per call; while its own buffer is full it stops, and the child keeps
// its hit.
type TokenReadout struct {
	cursor int
}

func (t *TokenReadout) Read(cell *ReadoutCell, ctx Context) {
	n := len(cell.Children)
	if n == 0 {
		return
	}
	if cell.Buffer.Len() >= cell.Buffer.Capacity() {
		return
	}
	t.cursor = (t.cursor + 1) % n
	ch := cell.Children[t.cursor]

	h, ok := ch.Buffer.Get(ctx.Tick, true)
	if !ok {
		return
	}
	cell.harvestInsert(h, ch, ctx.Tick)
}

// SortedROCReadout only accepts hits whose "<addr>_Trigger" tag
// (masked) matches the detector's currently presented trigger;
// mismatches are left in the child for a later tick.
type SortedROCReadout struct {
	// TriggerFieldName is the readout-timestamp key a candidate hit
	// carries its associated trigger tick under (e.g. the child's
	// "<addr>_Trigger" annotation already applied upstream).
	TriggerFieldName string
}

func (s SortedROCReadout) Read(cell *ReadoutCell, ctx Context) {
	for _, ch := range cell.Children {
		h, ok := ch.Buffer.Get(ctx.Tick, false)
		if !ok {
			continue
		}
		tag, ok := h.Readout.Get(s.TriggerFieldName)
		if !ok {
			continue
		}
		if (tag | ctx.TriggerMask) != (ctx.PresentedTrigger | ctx.TriggerMask) {
			continue // wait for the presented trigger to advance.
		}
		h, ok = ch.Buffer.Get(ctx.Tick, true)
		if !ok {
			continue
		}
		cell.harvestInsert(h, ch, ctx.Tick)
	}
}

// MergingReadout combines every child's currently available hit into
// one by OR-ing a designated address field and summing charges.
// Component hits are logged ROCMerge.
type MergingReadout struct {
	MergeAddressField string
}

func (m MergingReadout) Read(cell *ReadoutCell, ctx Context) {
	if cell.Buffer.Len() >= cell.Buffer.Capacity() {
		return
	}

	var merged *hit.Hit
	var components []hit.Hit

	for _, ch := range cell.Children {
		h, ok := ch.Buffer.Get(ctx.Tick, true)
		if !ok {
			continue
		}
		components = append(components, h)

		if merged == nil {
			clone := h.Clone()
			merged = &clone
			continue
		}
		addr, _ := merged.Address.Get(m.MergeAddressField)
		other, _ := h.Address.Get(m.MergeAddressField)
		merged.Address.Set(m.MergeAddressField, addr|other)
		merged.Charge += h.Charge
	}

	if merged == nil {
		return
	}

	merged.Annotate(cell.AddressName, ctx.Tick)
	merged.AvailableFrom = cell.referenceTick(*merged, ctx.Tick) + cell.ReadoutDelay
	cell.Buffer.Insert(*merged, ctx.Tick)

	for _, comp := range components {
		comp.Annotate(ReasonROCMerge, ctx.Tick)
		ctx.Lost.Lost(comp, ReasonROCMerge, ctx.Tick)
	}
}
