// Package readoutcell implements the internal tree node of a
// detector's readout hierarchy: a bounded buffer of hits, reached
// either through child cells (via a ChildReadPolicy) or through leaf
// pixels (via a PixelReadPolicy). See §3/§4.D of the specification.
package readoutcell

import (
	"fmt"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/geom"
	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/pixel"
)

// Lost-hit reasons a ReadoutCell itself can log (policy-specific
// reasons such as noSpace/overwritten/BufferFull live alongside the
// concrete policy that produces them).
const (
	ReasonEmptyROC      = "EmptyROC"
	ReasonPixelNotFound = "PixelNotFound"
	ReasonPixelFull     = "PixelFull"
	ReasonSimulationEnd = "SimulationEnd"
)

// Context carries the per-call scalars a ReadoutCell and its policies
// need but must not store a pointer back to (§9 design note): the
// current tick, the lost-hit sink, and the detector's currently
// presented trigger value (masked), used by SortedROCReadout.
type Context struct {
	Tick             int
	Lost             hit.Sink
	PresentedTrigger int
	TriggerMask      int
}

// ReadoutCell is an internal tree node. Exactly one of Children or
// Pixels is populated (never both beyond being empty).
type ReadoutCell struct {
	AddressName  string
	AddressValue int

	Children []*ReadoutCell
	Pixels   []*pixel.Pixel

	Buffer    buffer.Policy
	ChildRead ChildReadPolicy
	PixelRead PixelReadPolicy

	ReadoutDelay       int
	DelayReferenceName string

	Triggered bool
}

// New builds a leaf-facing cell: one that owns pixels directly and
// reads them with a PixelReadPolicy.
func New(addrName string, addrValue int, buf buffer.Policy, readoutDelay int, pixelRead PixelReadPolicy, pixels ...*pixel.Pixel) *ReadoutCell {
	return &ReadoutCell{
		AddressName:  addrName,
		AddressValue: addrValue,
		Pixels:       pixels,
		Buffer:       buf,
		PixelRead:    pixelRead,
		ReadoutDelay: readoutDelay,
	}
}

// NewParent builds a cell that owns child cells and reads them with a
// ChildReadPolicy.
func NewParent(addrName string, addrValue int, buf buffer.Policy, readoutDelay int, childRead ChildReadPolicy, children ...*ReadoutCell) *ReadoutCell {
	return &ReadoutCell{
		AddressName:  addrName,
		AddressValue: addrValue,
		Children:     children,
		Buffer:       buf,
		ChildRead:    childRead,
		ReadoutDelay: readoutDelay,
	}
}

// BoundingBox returns the tightest axis-aligned box containing every
// descendant pixel.
func (c *ReadoutCell) BoundingBox() geom.Box {
	if len(c.Pixels) > 0 {
		box := geom.Box{Lo: c.Pixels[0].Position, Hi: c.Pixels[0].Position.Add(c.Pixels[0].Size)}
		for _, p := range c.Pixels[1:] {
			box = box.Union(geom.Box{Lo: p.Position, Hi: p.Position.Add(p.Size)})
		}
		return box
	}

	var box geom.Box
	for i, ch := range c.Children {
		b := ch.BoundingBox()
		if i == 0 {
			box = b
			continue
		}
		box = box.Union(b)
	}
	return box
}

// referenceTick resolves the tick AddHit/harvest stamping should base
// AvailableFrom on: either the current tick, or — when this cell
// declares a DelayReferenceName — the readout timestamp the hit
// already carries under that name.
func (c *ReadoutCell) referenceTick(h hit.Hit, t int) int {
	if c.DelayReferenceName == "" {
		return t
	}
	if v, ok := h.Readout.Get(c.DelayReferenceName); ok {
		return v
	}
	return t
}

// AddHit stamps h with this cell's own address readout timestamp, sets
// its AvailableFrom to t + ReadoutDelay, and inserts it via the buffer
// policy.
func (c *ReadoutCell) AddHit(h hit.Hit, t int) (ok bool, slot int) {
	h.Annotate(c.AddressName, t)
	h.AvailableFrom = t + c.ReadoutDelay
	return c.insert(h, t)
}

// insert adds h to the buffer. A priority-slot buffer also stamps the
// stored hit with "<addr>_bufferNumber" set to the slot it occupies.
func (c *ReadoutCell) insert(h hit.Hit, t int) (ok bool, slot int) {
	ok, slot = c.Buffer.Insert(h, t)
	if p, isPriority := c.Buffer.(*buffer.Priority); ok && isPriority {
		stored, _ := p.GetSlot(slot)
		stored.Annotate(fmt.Sprintf("%s_bufferNumber", c.AddressName), slot)
		p.SetSlot(slot, stored)
	}
	return ok, slot
}

// harvestInsert is the stamping rule used when a ChildReadPolicy pulls
// a hit up from a child: it additionally tags the child's own
// "<addr>_Trigger" readout entry when the child was triggered, and
// bases AvailableFrom on the referenced prior readout time when this
// cell declares one.
func (c *ReadoutCell) harvestInsert(h hit.Hit, child *ReadoutCell, t int) (ok bool, slot int) {
	if child.Triggered {
		h.Annotate(fmt.Sprintf("%s_Trigger", child.AddressName), t)
	}
	h.Annotate(c.AddressName, t)
	h.AvailableFrom = c.referenceTick(h, t) + c.ReadoutDelay
	return c.insert(h, t)
}

// GetHit returns the oldest/top-priority available hit in this cell's
// buffer, per the configured BufferPolicy, optionally removing it. If
// ChildRead signals that the slot must also be cleared in a mirrored
// child (OneByOneReadout), that clear is applied too.
func (c *ReadoutCell) GetHit(t int, remove bool) (hit.Hit, bool) {
	h, ok := c.Buffer.Get(t, remove)
	if !ok {
		return hit.Invalid(), false
	}
	if remove && isOneByOne(c.ChildRead) && len(c.Children) == 1 {
		OneByOneReadout{}.clearMirroredSlot(c, t)
	}
	return h, true
}

// isOneByOne reports whether p is a OneByOneReadout, held by value or
// by pointer.
func isOneByOne(p ChildReadPolicy) bool {
	switch p.(type) {
	case OneByOneReadout, *OneByOneReadout:
		return true
	}
	return false
}

// LoadPixel recurses into child cells first (post-order), then — if
// this cell owns pixels directly — runs its PixelReadPolicy.
func (c *ReadoutCell) LoadPixel(ctx Context) {
	for _, ch := range c.Children {
		ch.LoadPixel(ctx)
	}
	if c.PixelRead != nil {
		c.PixelRead.Read(c, ctx)
	}
}

// LoadCell recurses into every cell in the tree; only the cell whose
// AddressName equals name runs its ChildReadPolicy.
func (c *ReadoutCell) LoadCell(name string, ctx Context) {
	for _, ch := range c.Children {
		ch.LoadCell(name, ctx)
	}
	if c.AddressName == name && c.ChildRead != nil {
		c.ChildRead.Read(c, ctx)
	}
}

// PlaceHit routes h down the tree by matching address components along
// the path, assuming h is already addressed to this cell. Unmatched
// names are logged EmptyROC (cell lookup miss) or PixelNotFound (pixel
// lookup miss); a pixel rejecting the hit due to dead-time is logged
// PixelFull.
func (c *ReadoutCell) PlaceHit(h hit.Hit, ctx Context) bool {
	if len(c.Pixels) > 0 {
		name := c.Pixels[0].AddressName
		val, ok := h.Address.Get(name)
		if !ok {
			ctx.Lost.Lost(h, ReasonPixelNotFound, ctx.Tick)
			return false
		}
		for _, p := range c.Pixels {
			if p.AddressValue != val {
				continue
			}
			if p.CreateHit(h) {
				return true
			}
			ctx.Lost.Lost(h, ReasonPixelFull, ctx.Tick)
			return false
		}
		ctx.Lost.Lost(h, ReasonPixelNotFound, ctx.Tick)
		return false
	}

	if len(c.Children) > 0 {
		name := c.Children[0].AddressName
		val, ok := h.Address.Get(name)
		if !ok {
			ctx.Lost.Lost(h, ReasonEmptyROC, ctx.Tick)
			return false
		}
		for _, ch := range c.Children {
			if ch.AddressValue == val {
				return ch.PlaceHit(h, ctx)
			}
		}
		ctx.Lost.Lost(h, ReasonEmptyROC, ctx.Tick)
		return false
	}

	ctx.Lost.Lost(h, ReasonEmptyROC, ctx.Tick)
	return false
}

// HitsAvailable sums available hits across the subtree. A
// ChildReadPolicy that shares slots between a cell and its unique
// mirrored child (OneByOneReadout) reports its own count only, so the
// shared slot is not counted twice.
func (c *ReadoutCell) HitsAvailable(name string) int {
	total := 0
	if c.AddressName == name {
		total += c.Buffer.Len()
	}

	if isOneByOne(c.ChildRead) {
		return total
	}

	for _, ch := range c.Children {
		total += ch.HitsAvailable(name)
	}
	return total
}

// RemoveAndSaveAll drains every hit still resident in this subtree —
// buffers, and pixels for leaf cells — into lost, annotated
// SimulationEnd. Idempotent: calling it again finds nothing left to
// drain (§8 property 8).
func (c *ReadoutCell) RemoveAndSaveAll(t int, lost hit.Sink) {
	for {
		h, ok := c.Buffer.EvictOldest()
		if !ok {
			break
		}
		h.Annotate(ReasonSimulationEnd, t)
		lost.Lost(h, ReasonSimulationEnd, t)
	}

	for _, p := range c.Pixels {
		h, ok := p.LoadHit(t, lost)
		if ok && h.IsValid() {
			h.Annotate(ReasonSimulationEnd, t)
			lost.Lost(h, ReasonSimulationEnd, t)
		}
	}

	for _, ch := range c.Children {
		ch.RemoveAndSaveAll(t, lost)
	}
}
