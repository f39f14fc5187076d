// Package detector implements the top-level node of a simulated
// readout system: it wraps a ReadoutCell tree with a trigger queue,
// accepted/lost output streams, and the state-machine host interface
// that drives clock_up/clock_down. See §4.E of the specification.
package detector

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/readoutcell"
	"github.com/kitadl/rome/statemachine"
)

// ReasonSimulationEnd mirrors readoutcell.ReasonSimulationEnd, the
// annotation the shutdown drain (RemoveAndSaveAll) applies.
const ReasonSimulationEnd = "SimulationEnd"

// Detector wraps a root cell with a trigger queue, an accepted/lost
// output pair, and an optional state machine that drives its clock
// edges.
type Detector struct {
	Name string
	Root *readoutcell.ReadoutCell
	SM   statemachine.StateMachine

	triggers *TriggerQueue
	accepted *sink
	lost     lostSink

	runID   xid.ID
	flushed bool
	log     *slog.Logger
}

// Options configures a Detector's trigger queue and output backing.
type Options struct {
	TriggerCapacity int
	TriggerMask     int
	AcceptedWriter  io.Writer
	LostWriter      io.Writer
	Logger          *slog.Logger
}

// New builds a Detector rooted at root and registers its Flush with
// atexit, so accepted/lost logs reach their backing writers even if
// the owning simulator run never calls Close explicitly (§5 scoped
// acquisition).
func New(name string, root *readoutcell.ReadoutCell, opts Options) *Detector {
	d := &Detector{
		Name:     name,
		Root:     root,
		triggers: NewTriggerQueue(opts.TriggerCapacity, opts.TriggerMask),
		accepted: newSink(name+".accepted", opts.AcceptedWriter, opts.Logger),
		runID:    xid.New(),
		log:      opts.Logger,
	}
	d.lost = lostSink{newSink(name+".lost", opts.LostWriter, opts.Logger)}
	atexit.Register(func() { _ = d.Flush() })
	return d
}

// AddTrigger pushes/coalesces t into the trigger queue.
func (d *Detector) AddTrigger(t int) {
	d.triggers.Add(t)
}

// PresentedTrigger returns the currently-presented trigger value.
func (d *Detector) PresentedTrigger() int {
	return d.triggers.Presented()
}

// PlaceHit routes h into the root cell, using the detector's current
// tick context (presented trigger, mask, lost sink). A hit whose
// top-level address doesn't match anything under this detector's root
// is rejected silently, without reaching the logging
// ReadoutCell.PlaceHit — so a multi-detector run's "try each detector
// in turn" loop can move on to the next detector without polluting
// this one's lost log with a hit that was never addressed to it.
func (d *Detector) PlaceHit(h hit.Hit, t int) bool {
	if !matchesRoot(d.Root, h) {
		return false
	}
	return d.Root.PlaceHit(h, d.context(t))
}

// matchesRoot silently checks whether h's top-level address component
// names one of root's own pixels or children, without logging —
// mirroring the original detector's silent rocvector scan ahead of its
// recursive, logging PlaceHit.
func matchesRoot(root *readoutcell.ReadoutCell, h hit.Hit) bool {
	if len(root.Pixels) > 0 {
		val, ok := h.Address.Get(root.Pixels[0].AddressName)
		if !ok {
			return false
		}
		for _, p := range root.Pixels {
			if p.AddressValue == val {
				return true
			}
		}
		return false
	}

	if len(root.Children) > 0 {
		val, ok := h.Address.Get(root.Children[0].AddressName)
		if !ok {
			return false
		}
		for _, ch := range root.Children {
			if ch.AddressValue == val {
				return true
			}
		}
		return false
	}

	return false
}

func (d *Detector) context(t int) readoutcell.Context {
	return readoutcell.Context{
		Tick:             t,
		Lost:             d.lost,
		PresentedTrigger: d.triggers.Presented(),
		TriggerMask:      d.triggers.Mask(),
	}
}

// ClockUp runs the state machine's synchronous phase.
func (d *Detector) ClockUp(t int, triggerHigh bool) error {
	if d.SM == nil {
		return nil
	}
	return d.SM.ClockUp(t, triggerHigh, d)
}

// ClockDown runs the state machine's synchronisation phase, advances
// the trigger presentation, and — if the trigger is low — evicts
// no-longer-matchable hits from every triggered sub-cell.
func (d *Detector) ClockDown(t int, triggerHigh bool) error {
	var err error
	if d.SM != nil {
		err = d.SM.ClockDown(t, triggerHigh, d)
	}
	d.triggers.RemoveFront(t)
	if !triggerHigh {
		d.noTriggerRemove(d.Root, t)
	}
	return err
}

func (d *Detector) noTriggerRemove(c *readoutcell.ReadoutCell, t int) {
	if c.Triggered {
		c.Buffer.NoTriggerRemove(t, d.lost)
	}
	for _, ch := range c.Children {
		d.noTriggerRemove(ch, t)
	}
}

// --- statemachine.Host ---

// LoadCell recurses the root tree, running the ChildReadPolicy of
// whichever cell is named name.
func (d *Detector) LoadCell(name string, t int) {
	d.Root.LoadCell(name, d.context(t))
}

// LoadPixel recurses the root tree, running every cell's
// PixelReadPolicy.
func (d *Detector) LoadPixel(t int) {
	d.Root.LoadPixel(d.context(t))
}

// HitsAvailable reports the number of hits available under the
// (sub)cell named name.
func (d *Detector) HitsAvailable(name string) int {
	return d.Root.HitsAvailable(name)
}

// GetHit finds the first cell named name and removes its next
// available hit, if any. Kept for callers that know a single cell
// holds the name in their tree; state machines should use GetHits,
// which drains every matching cell.
func (d *Detector) GetHit(name string, t int) (hit.Hit, bool) {
	c := findCell(d.Root, name)
	if c == nil {
		return hit.Invalid(), false
	}
	return c.GetHit(t, true)
}

// GetHits drains one hit from every cell named name, not just the
// first — mirroring LoadCell/LoadPixel's own "every matching cell"
// recursion instead of findCell's first-match shortcut, since a
// detector ordinarily has more than one cell sharing an AddressName
// (e.g. one "CU" cell per column).
func (d *Detector) GetHits(name string, t int) []hit.Hit {
	var hits []hit.Hit
	collectHits(d.Root, name, t, &hits)
	return hits
}

func collectHits(c *readoutcell.ReadoutCell, name string, t int, out *[]hit.Hit) {
	if c.AddressName == name {
		if h, ok := c.GetHit(t, true); ok {
			*out = append(*out, h)
		}
	}
	for _, ch := range c.Children {
		collectHits(ch, name, t, out)
	}
}

// Accept stamps h with the detector's own address readout timestamp
// and appends it to the accepted log.
func (d *Detector) Accept(h hit.Hit, t int) {
	h.Annotate(d.Name, t)
	d.accepted.writeLine(h.Format(false))
}

func findCell(c *readoutcell.ReadoutCell, name string) *readoutcell.ReadoutCell {
	if c.AddressName == name {
		return c
	}
	for _, ch := range c.Children {
		if found := findCell(ch, name); found != nil {
			return found
		}
	}
	return nil
}

// RemoveAndSaveAll drains every hit still resident in the tree into
// the lost log, annotated SimulationEnd (§4.I step 6).
func (d *Detector) RemoveAndSaveAll(t int) {
	d.Root.RemoveAndSaveAll(t, d.lost)
}

// Flush appends a run-correlation header line to each backing writer.
// Hit lines are mirrored to those writers as they are logged, so Flush
// writes no hit data itself. Idempotent: a second call is a no-op (§8
// property 8).
func (d *Detector) Flush() error {
	if d.flushed {
		return nil
	}
	d.flushed = true

	header := fmt.Sprintf("# Run %s", d.runID.String())
	if d.accepted.backing != nil {
		fmt.Fprintln(d.accepted.backing, header)
	}
	if d.lost.backing != nil {
		fmt.Fprintln(d.lost.backing, header)
	}
	return nil
}

// AcceptedLog returns the accepted hit log accumulated so far.
func (d *Detector) AcceptedLog() string {
	return d.accepted.memory.String()
}

// LostLog returns the lost hit log accumulated so far.
func (d *Detector) LostLog() string {
	return d.lost.memory.String()
}
