package readoutcell

import "github.com/kitadl/rome/hit"

// Lost-hit reasons produced by the PixelReadPolicy family.
const (
	ReasonSampleDelayLoss = "SampleDelayLoss"
	ReasonMerged          = "merged"
	ReasonRemerged        = "remerged"
	ReasonGroupDead       = "GroupDead"
	ReasonGroupDeadShort  = "GroupDeadShort"
	ReasonBufferFull      = "BufferFull"
)

// PixelReadPolicy governs how a cell harvests hits from the pixels it
// owns directly, once per LoadPixel call.
type PixelReadPolicy interface {
	Read(cell *ReadoutCell, ctx Context)
}

// PPtBOr groups all of a cell's pixels under an OR: on the earliest hit
// in the group, it schedules a sample time (earliest + SampleDelay),
// and at that tick folds every still-live pixel into one group hit.
type PPtBOr struct {
	SampleDelay       int
	GroupAddressField string

	pendingSampleTime *int
}

func (p *PPtBOr) earliestHitTime(cell *ReadoutCell) (int, bool) {
	found := false
	earliest := 0
	for _, px := range cell.Pixels {
		h, ok := px.Peek()
		if !ok {
			continue
		}
		if !found || h.Timestamp < earliest {
			earliest = h.Timestamp
			found = true
		}
	}
	return earliest, found
}

func (p *PPtBOr) Read(cell *ReadoutCell, ctx Context) {
	for iter := 0; iter <= len(cell.Pixels); iter++ {
		if p.pendingSampleTime == nil {
			earliest, found := p.earliestHitTime(cell)
			if !found {
				return
			}
			sampleTime := earliest + p.SampleDelay
			p.pendingSampleTime = &sampleTime
		}
		if ctx.Tick < *p.pendingSampleTime {
			return
		}

		p.sample(cell, ctx, *p.pendingSampleTime)
		p.pendingSampleTime = nil
	}
}

func (p *PPtBOr) sample(cell *ReadoutCell, ctx Context, sampleTime int) {
	var group *hit.Hit
	carrierFound := false

	for _, px := range cell.Pixels {
		h, ok := px.Peek()
		if !ok {
			continue
		}

		if h.DeadTimeEnd < sampleTime {
			lost := h
			lost.Annotate(ReasonSampleDelayLoss, ctx.Tick)
			ctx.Lost.Lost(lost, ReasonSampleDelayLoss, ctx.Tick)

			placeholder := hit.New(h.EventIndex, sampleTime, sampleTime, 0)
			placeholder.AddAddress(px.AddressName, px.AddressValue)
			px.Clear()
			px.InstallPlaceholder(placeholder)
			continue
		}

		reason := ReasonRemerged
		if !carrierFound {
			reason = ReasonMerged
			carrierFound = true
		}

		drained, ok := px.LoadHit(sampleTime, ctx.Lost)
		if !ok {
			continue
		}

		if group == nil {
			clone := drained.Clone()
			clone.Charge = 0
			group = &clone
		}
		addr, _ := group.Address.Get(p.GroupAddressField)
		group.Address.Set(p.GroupAddressField, addr|px.AddressValue)
		group.Charge += drained.Charge

		logged := drained
		logged.Annotate(reason, ctx.Tick)
		ctx.Lost.Lost(logged, reason, ctx.Tick)
	}

	if group == nil {
		return
	}

	if ok, _ := cell.AddHit(*group, ctx.Tick); !ok {
		group.Annotate(ReasonBufferFull, ctx.Tick)
		ctx.Lost.Lost(*group, ReasonBufferFull, ctx.Tick)
	}
}

// PPtBOrBeforeEdge is PPtBOr restricted to the rising edge of the group
// OR: a read only fires if no pixel in the group was already hot when
// the triggering hit arrived.
type PPtBOrBeforeEdge struct {
	PPtBOr
	wasHot bool
}

func (p *PPtBOrBeforeEdge) Read(cell *ReadoutCell, ctx Context) {
	anyHot := false
	for _, px := range cell.Pixels {
		if px.HasHit() {
			anyHot = true
			break
		}
	}

	if !anyHot {
		p.wasHot = false
		return
	}

	if p.wasHot {
		// Already hot last time we looked: not a rising edge. A hit
		// arriving this tick while the group is already hot is dropped
		// as GroupDead; one that would have been emitted here but whose
		// dead-time ends before the group's effective sample window is
		// a GroupDeadShort drop.
		for _, px := range cell.Pixels {
			h, ok := px.Peek()
			if !ok {
				continue
			}
			switch {
			case h.Timestamp == ctx.Tick:
				dropped := h
				dropped.Annotate(ReasonGroupDead, ctx.Tick)
				ctx.Lost.Lost(dropped, ReasonGroupDead, ctx.Tick)
				px.Clear()
			case h.DeadTimeEnd < ctx.Tick:
				dropped := h
				dropped.Annotate(ReasonGroupDeadShort, ctx.Tick)
				ctx.Lost.Lost(dropped, ReasonGroupDeadShort, ctx.Tick)
				px.Clear()
			}
		}
		return
	}

	p.wasHot = true
	p.PPtBOr.Read(cell, ctx)
}

// EdgeMode selects how ComplexReadout gates a read on its PixelLogic.
type EdgeMode int

const (
	// EdgeNone fires whenever the logic currently evaluates true.
	EdgeNone EdgeMode = iota
	// EdgeRisingVsLastTick fires only when the logic is true now and
	// was false the previous tick.
	EdgeRisingVsLastTick
	// EdgeSinceLastEvaluation fires once if the logic was true at any
	// point since the last time it fired.
	EdgeSinceLastEvaluation
)

// ComplexReadout reads a general boolean PixelLogic combinator over
// the cell's pixels, gated by an edge-detect mode.
type ComplexReadout struct {
	Logic    PixelLogic
	EdgeMode EdgeMode

	lastState     bool
	firedSinceLow bool
}

func (c *ComplexReadout) Read(cell *ReadoutCell, ctx Context) {
	cur := c.Logic.Evaluate(cell, ctx.Tick)

	fire := false
	switch c.EdgeMode {
	case EdgeRisingVsLastTick:
		fire = cur && !c.lastState
	case EdgeSinceLastEvaluation:
		if cur {
			c.firedSinceLow = true
		}
		fire = c.firedSinceLow
		if fire {
			c.firedSinceLow = false
		}
	default:
		fire = cur
	}
	c.lastState = cur

	if !fire {
		return
	}

	h, ok := c.Logic.ReadHit(cell, ctx.Tick, ctx.Lost)
	if !ok {
		return
	}

	if ok, _ := cell.AddHit(h, ctx.Tick); !ok {
		h.Annotate(ReasonBufferFull, ctx.Tick)
		ctx.Lost.Lost(h, ReasonBufferFull, ctx.Tick)
	}
}
