package statemachine_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/statemachine"
)

var _ = Describe("DataDriven", func() {
	It("fires the first transition whose guard holds, skipping an unset operand", func() {
		states := []*statemachine.State{
			{
				Name: "idle",
				Transitions: []statemachine.Transition{
					{
						// Unset counter "missing" fails safe: never fires.
						Guard:  []statemachine.Comparison{{Left: statemachine.Operand{Kind: statemachine.OperandCounter, Name: "missing"}, Op: ">", Right: statemachine.Operand{Kind: statemachine.OperandLiteral, Literal: 0}}},
						Target: "unreachable",
					},
					{
						Guard:  []statemachine.Comparison{{Left: statemachine.Operand{Kind: statemachine.OperandHitsAvailable, Name: "col"}, Op: ">=", Right: statemachine.Operand{Kind: statemachine.OperandLiteral, Literal: 1}}},
						Target: "active",
						Actions: []statemachine.RegisterAccess{
							{What: "incrementcounter", Parameter: "entries", Value: 1},
						},
					},
				},
			},
			{Name: "active"},
		}

		var diagBuf bytes.Buffer
		sm := statemachine.NewDataDriven(states, nil, "idle", &diagBuf, nil)
		host := newFakeHost()
		host.available["col"] = 1

		sm.ClockUp(0, true, host)
		Expect(sm.ClockState()).To(Equal("active"))
		Expect(sm.CounterValue("entries")).To(Equal(1.0))
	})

	It("stalls for Delay ticks before switching state", func() {
		states := []*statemachine.State{
			{
				Name: "idle",
				Transitions: []statemachine.Transition{
					{
						Guard:  []statemachine.Comparison{{Left: statemachine.Operand{Kind: statemachine.OperandLiteral, Literal: 1}, Op: "==", Right: statemachine.Operand{Kind: statemachine.OperandLiteral, Literal: 1}}},
						Target: "delayed",
						Delay:  2,
					},
				},
			},
			{Name: "delayed"},
		}

		sm := statemachine.NewDataDriven(states, nil, "idle", nil, nil)
		host := newFakeHost()

		sm.ClockUp(0, true, host) // fires, but stalls 2 ticks
		Expect(sm.ClockState()).To(Equal("idle"))
		sm.ClockUp(1, true, host) // delay 1
		Expect(sm.ClockState()).To(Equal("idle"))
		sm.ClockUp(2, true, host) // delay 0 -> switches
		Expect(sm.ClockState()).To(Equal("delayed"))
	})

	It("runs the synchronisation state's entry actions on every clock-down", func() {
		states := []*statemachine.State{
			{Name: "idle"},
			{
				Name: "synchronisation",
				EntryActions: []statemachine.RegisterAccess{
					{What: "incrementcounter", Parameter: "syncs", Value: 1},
				},
			},
		}

		sm := statemachine.NewDataDriven(states, nil, "idle", nil, nil)
		host := newFakeHost()

		sm.ClockDown(0, true, host)
		sm.ClockDown(1, true, host)
		Expect(sm.CounterValue("syncs")).To(Equal(2.0))
		Expect(host.loadPixelCalls).To(Equal(2))
	})

	It("dispatches loadcell and readcell actions against the host", func() {
		states := []*statemachine.State{
			{
				Name: "idle",
				EntryActions: []statemachine.RegisterAccess{
					{What: "loadcell", Parameter: "Column"},
					{What: "readcell", Parameter: "det"},
				},
			},
		}

		sm := statemachine.NewDataDriven(states, nil, "idle", nil, nil)
		host := newFakeHost()

		sm.ClockUp(0, true, host)
		Expect(host.loadCellCalls).To(ContainElement("Column"))
	})

	It("readcell drains every root cell sharing the name, not just the first", func() {
		states := []*statemachine.State{
			{
				Name: "idle",
				EntryActions: []statemachine.RegisterAccess{
					{What: "readcell", Parameter: "det"},
				},
			},
		}

		sm := statemachine.NewDataDriven(states, nil, "idle", nil, nil)
		host := newFakeHost()
		// Two independent "det" root cells, as a simulation with more
		// than one detector root sharing an AddressName would have.
		host.cellQueues["det"] = [][]hit.Hit{{mkHit(1)}, {mkHit(2)}}

		sm.ClockUp(0, true, host)
		Expect(host.accepted).To(HaveLen(2))
		Expect(sm.CounterValue("readhits")).To(Equal(2.0))
	})
})
