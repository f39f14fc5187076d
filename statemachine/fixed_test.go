package statemachine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/statemachine"
)

var _ = Describe("Fixed", func() {
	It("advances PullDown -> LdCol -> LdPix -> RdCol -> PullDown", func() {
		f := statemachine.NewFixed(2)
		host := newFakeHost()
		host.available["Column"] = 1
		host.cellQueues["CU"] = [][]hit.Hit{{mkHit(1)}}

		Expect(f.ClockState()).To(Equal(statemachine.StatePullDown))

		f.ClockUp(0, true, host) // PullDown -> LdCol (stall 1)
		f.ClockUp(1, true, host) // stalled
		Expect(f.ClockState()).To(Equal(statemachine.StateLdCol))

		for i := 0; i < 4; i++ {
			f.ClockUp(2+i, true, host) // 4 LdCol visits
		}
		Expect(host.loadCellCalls).To(ContainElement("Column"))
		Expect(f.ClockState()).To(Equal(statemachine.StateLdPix))

		f.ClockUp(6, true, host) // stalled
		f.ClockUp(7, true, host) // LdPix -> RdCol (Column has 1 hit available)
		Expect(host.loadCellCalls).To(ContainElement("Pixel"))
		Expect(f.ClockState()).To(Equal(statemachine.StateRdCol))

		f.ClockUp(8, true, host)  // stalled
		f.ClockUp(9, true, host)  // RdCol drains the one queued CU hit
		Expect(host.accepted).To(HaveLen(1))

		f.ClockUp(10, true, host) // stalled
		f.ClockUp(11, true, host) // CU now empty -> back to PullDown
		Expect(f.ClockState()).To(Equal(statemachine.StatePullDown))
	})

	It("runs load_pixel on clock-down", func() {
		f := statemachine.NewFixed(1)
		host := newFakeHost()
		f.ClockDown(0, true, host)
		Expect(host.loadPixelCalls).To(Equal(1))
	})

	It("drains one hit from every CU cell in a single RdCol tick, not just the first", func() {
		f := statemachine.NewFixed(5)
		host := newFakeHost()
		host.available["Column"] = 1
		// Three independent "CU" cells, as a detector with three columns
		// each terminating in their own CU cell would have.
		host.cellQueues["CU"] = [][]hit.Hit{{mkHit(1)}, {mkHit(2)}, {mkHit(3)}}

		for i := 0; i < 9; i++ {
			f.ClockUp(i, true, host) // drive PullDown -> ... -> RdCol (entered and stalled at tick 8)
		}
		Expect(f.ClockState()).To(Equal(statemachine.StateRdCol))

		f.ClockUp(9, true, host) // RdCol fires: one hit per CU cell this tick

		Expect(host.accepted).To(HaveLen(3))
	})
})
