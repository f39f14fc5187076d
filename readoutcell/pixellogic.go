package readoutcell

import (
	"github.com/kitadl/rome/hit"
)

// ReasonReferencePixelHitDetected marks a "not own" guard pixel that
// was drained without contributing to the resulting hit's address.
const ReasonReferencePixelHitDetected = "ReferencePixelHitDetected"

// PixelLogic is the general boolean combinator over pixels and
// sub-logics used by ComplexReadout.
type PixelLogic interface {
	// Evaluate reports whether this (sub-)expression currently holds.
	Evaluate(cell *ReadoutCell, t int) bool

	// ReadHit consumes the pixels this expression touches and returns
	// the resulting merged hit. ok is false if nothing was available to
	// read (Evaluate should be checked first).
	ReadHit(cell *ReadoutCell, t int, lost hit.Sink) (hit.Hit, bool)
}

// PixelRef is a leaf referencing one named pixel within the owning
// cell by its AddressValue. Own pixels contribute their address/charge
// to the resulting hit; "not own" pixels are guards only.
type PixelRef struct {
	AddressValue int
	Own          bool
}

func (r PixelRef) find(cell *ReadoutCell) (int, bool) {
	for i, p := range cell.Pixels {
		if p.AddressValue == r.AddressValue {
			return i, true
		}
	}
	return 0, false
}

// Evaluate reports whether the referenced pixel currently holds a hit.
func (r PixelRef) Evaluate(cell *ReadoutCell, t int) bool {
	i, ok := r.find(cell)
	if !ok {
		return false
	}
	return cell.Pixels[i].HasHit()
}

// ReadHit drains the referenced pixel. A "not own" pixel is drained
// without contributing to the address and is annotated
// ReferencePixelHitDetected.
func (r PixelRef) ReadHit(cell *ReadoutCell, t int, lost hit.Sink) (hit.Hit, bool) {
	i, ok := r.find(cell)
	if !ok {
		return hit.Invalid(), false
	}
	p := cell.Pixels[i]
	h, ok := p.LoadHit(t, lost)
	if !ok {
		return hit.Invalid(), false
	}

	if !r.Own {
		h.Annotate(ReasonReferencePixelHitDetected, t)
		lost.Lost(h, ReasonReferencePixelHitDetected, t)
		return hit.Invalid(), false
	}

	return h, true
}

// logicOp identifies a boolean combinator kind.
type logicOp int

const (
	OpAnd logicOp = iota
	OpOr
	OpXor
	OpNand
	OpNor
	OpXnor
	OpNot
)

// Combinator composes sub-logics with a boolean operator. Not takes
// exactly its first child; every other op folds across all children.
type Combinator struct {
	Op       logicOp
	Children []PixelLogic
}

// And, Or, Xor, Nand, Nor, Xnor, Not build the corresponding combinator.
func And(children ...PixelLogic) Combinator  { return Combinator{Op: OpAnd, Children: children} }
func Or(children ...PixelLogic) Combinator   { return Combinator{Op: OpOr, Children: children} }
func Xor(children ...PixelLogic) Combinator  { return Combinator{Op: OpXor, Children: children} }
func Nand(children ...PixelLogic) Combinator { return Combinator{Op: OpNand, Children: children} }
func Nor(children ...PixelLogic) Combinator  { return Combinator{Op: OpNor, Children: children} }
func Xnor(children ...PixelLogic) Combinator { return Combinator{Op: OpXnor, Children: children} }
func Not(child PixelLogic) Combinator        { return Combinator{Op: OpNot, Children: []PixelLogic{child}} }

func (c Combinator) Evaluate(cell *ReadoutCell, t int) bool {
	if c.Op == OpNot {
		if len(c.Children) == 0 {
			return false
		}
		return !c.Children[0].Evaluate(cell, t)
	}

	results := make([]bool, len(c.Children))
	for i, ch := range c.Children {
		results[i] = ch.Evaluate(cell, t)
	}

	switch c.Op {
	case OpAnd:
		return allTrue(results)
	case OpOr:
		return anyTrue(results)
	case OpXor:
		return countTrue(results)%2 == 1
	case OpNand:
		return !allTrue(results)
	case OpNor:
		return !anyTrue(results)
	case OpXnor:
		return countTrue(results)%2 == 0
	}
	return false
}

// ReadHit drains every reachable leaf whose Evaluate holds at t,
// OR-merging addresses and summing charge across "own" contributions.
func (c Combinator) ReadHit(cell *ReadoutCell, t int, lost hit.Sink) (hit.Hit, bool) {
	var merged *hit.Hit

	for _, ch := range c.Children {
		if !ch.Evaluate(cell, t) {
			continue
		}
		h, ok := ch.ReadHit(cell, t, lost)
		if !ok {
			continue
		}
		if merged == nil {
			clone := h
			merged = &clone
			continue
		}
		for _, name := range h.Address.Keys() {
			v, _ := h.Address.Get(name)
			existing, had := merged.Address.Get(name)
			if had {
				merged.Address.Set(name, existing|v)
			} else {
				merged.Address.Set(name, v)
			}
		}
		merged.Charge += h.Charge
	}

	if merged == nil {
		return hit.Invalid(), false
	}
	return *merged, true
}

func allTrue(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
