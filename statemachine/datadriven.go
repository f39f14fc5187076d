package statemachine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kitadl/rome/diag"
)

// SynchronisationState, if present, runs its entry actions
// unconditionally on every clock-down (§4.G).
const SynchronisationState = "synchronisation"

// RegisterAccess is one dispatched action, named by what. parameter
// and value are interpreted per-what: parameter names a counter or
// cell, value feeds the counter mutators.
type RegisterAccess struct {
	What      string
	Parameter string
	Value     float64
}

// OperandKind selects how a Comparison operand resolves its value.
type OperandKind int

const (
	OperandCounter OperandKind = iota
	OperandHitsAvailable
	OperandLiteral
)

// Operand is one side of a Comparison.
type Operand struct {
	Kind    OperandKind
	Name    string
	Literal float64
}

// Comparison is one guard term: Left Op Right. A guard is the AND of
// every Comparison in a Transition (§9: "Comparison tree" flattened to
// a conjunction, the shape actually exercised by the source graphs).
type Comparison struct {
	Left  Operand
	Op    string // one of < <= > >= == !=
	Right Operand
}

// Transition fires when every Comparison in Guard holds. Its Actions
// run first, then Delay stall ticks elapse before State moves to
// Target.
type Transition struct {
	Guard   []Comparison
	Target  string
	Delay   int
	Actions []RegisterAccess
}

// State is a named node with unconditional entry actions and an
// ordered list of guarded transitions; the first transition whose
// guard evaluates true fires (declared order, first-true wins).
type State struct {
	Name         string
	EntryActions []RegisterAccess
	Transitions  []Transition
}

// DataDriven is the general named-counter, named-state, guarded-
// transition detector controller lifted from the source's XML-shaped
// control graph (§4.G).
type DataDriven struct {
	states  map[string]*State
	order   []string
	current string

	counters map[string]float64

	pendingTarget string
	pendingSet    bool

	diagWriter io.Writer
	log        *slog.Logger
}

// NewDataDriven builds a DataDriven machine starting at start, with
// the given states and initial counter values. The implicit delay
// counter is added automatically if not already present.
func NewDataDriven(states []*State, counters map[string]float64, start string, diagWriter io.Writer, log *slog.Logger) *DataDriven {
	byName := make(map[string]*State, len(states))
	order := make([]string, 0, len(states))
	for _, s := range states {
		byName[s.Name] = s
		order = append(order, s.Name)
	}

	c := make(map[string]float64, len(counters)+1)
	for k, v := range counters {
		c[k] = v
	}
	if _, ok := c["delay"]; !ok {
		c["delay"] = 0
	}

	return &DataDriven{
		states:     byName,
		order:      order,
		current:    start,
		counters:   c,
		diagWriter: diag.Writer(diagWriter),
		log:        diag.Logger(log),
	}
}

func (d *DataDriven) ClockState() string { return d.current }

// CounterValue returns the current value of a named counter (used by
// getcountervalue guards and by tests).
func (d *DataDriven) CounterValue(name string) float64 {
	return d.counters[name]
}

// ClockUp runs entry actions for the current state, then evaluates its
// transitions in declared order; the first whose guard holds fires.
func (d *DataDriven) ClockUp(t int, triggerHigh bool, host Host) error {
	if d.counters["delay"] > 0 {
		d.counters["delay"]--
		if d.counters["delay"] == 0 && d.pendingSet {
			d.current = d.pendingTarget
			d.pendingSet = false
		}
		return nil
	}

	st, ok := d.states[d.current]
	if !ok {
		return fmt.Errorf("statemachine: unknown state %q", d.current)
	}

	for _, a := range st.EntryActions {
		d.dispatch(a, t, host)
	}

	for _, tr := range st.Transitions {
		if !d.evalGuard(tr.Guard, host) {
			continue
		}
		for _, a := range tr.Actions {
			d.dispatch(a, t, host)
		}
		d.counters["delay"] += float64(tr.Delay)
		if tr.Delay <= 0 {
			d.current = tr.Target
		} else {
			d.pendingTarget = tr.Target
			d.pendingSet = true
		}
		return nil
	}

	d.dumpNoTransition(st)
	return nil
}

// ClockDown runs the synchronisation state's entry actions
// unconditionally, then load_pixel on every root cell.
func (d *DataDriven) ClockDown(t int, triggerHigh bool, host Host) error {
	if st, ok := d.states[SynchronisationState]; ok {
		for _, a := range st.EntryActions {
			d.dispatch(a, t, host)
		}
	}
	host.LoadPixel(t)
	return nil
}

func (d *DataDriven) dispatch(a RegisterAccess, t int, host Host) {
	switch a.What {
	case "cout":
		fmt.Fprintln(d.diagWriter, a.Parameter)
	case "printhitsavailable":
		fmt.Fprintf(d.diagWriter, "%s: %d\n", a.Parameter, host.HitsAvailable(a.Parameter))
	case "printcounter":
		fmt.Fprintf(d.diagWriter, "%s: %g\n", a.Parameter, d.counters[a.Parameter])
	case "setcounter":
		d.counters[a.Parameter] = a.Value
	case "incrementcounter":
		d.counters[a.Parameter] += a.Value
	case "decrementcounter":
		d.counters[a.Parameter] -= a.Value
	case "loadpixel":
		host.LoadPixel(t)
		d.counters["loadpixel"] = 1
	case "loadcell":
		host.LoadCell(a.Parameter, t)
		d.counters["loadcell_"+a.Parameter] = 1
	case "readcell":
		for _, h := range host.GetHits(a.Parameter, t) {
			if h.IsValid() {
				host.Accept(h, t)
				d.counters["readhits"]++
			}
		}
	default:
		d.log.Warn("statemachine: unknown register access", "what", a.What)
	}
}

func (d *DataDriven) evalGuard(guard []Comparison, host Host) bool {
	for _, c := range guard {
		l, ok := d.resolve(c.Left, host)
		if !ok {
			return false
		}
		r, ok := d.resolve(c.Right, host)
		if !ok {
			return false
		}
		if !compare(c.Op, l, r) {
			return false
		}
	}
	return true
}

func (d *DataDriven) resolve(op Operand, host Host) (float64, bool) {
	switch op.Kind {
	case OperandLiteral:
		return op.Literal, true
	case OperandHitsAvailable:
		return float64(host.HitsAvailable(op.Name)), true
	case OperandCounter:
		v, ok := d.counters[op.Name]
		return v, ok
	default:
		return 0, false
	}
}

func compare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	case "==":
		return l == r
	case "!=":
		return l != r
	default:
		return false
	}
}

// dumpNoTransition renders the current state's transition table to the
// diagnostic stream when nothing fired, so a misconfigured graph is
// diagnosable instead of silently stuck.
func (d *DataDriven) dumpNoTransition(st *State) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "target", "delay", "guard terms"})
	for i, tr := range st.Transitions {
		tw.AppendRow(table.Row{i, tr.Target, tr.Delay, len(tr.Guard)})
	}
	fmt.Fprintf(d.diagWriter, "no transition fired out of %q:\n%s\n", st.Name, tw.Render())
}
