package buffer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/hit"
)

func mkHit(ev, ts int) hit.Hit {
	h := hit.New(ev, ts, ts+1, 1)
	h.AddAddress("pix", 1)
	return h
}

var _ = Describe("FIFO", func() {
	It("rejects inserts past capacity", func() {
		f := buffer.NewFIFO(1)
		ok, _ := f.Insert(mkHit(1, 0), 0)
		Expect(ok).To(BeTrue())
		ok, _ = f.Insert(mkHit(2, 1), 1)
		Expect(ok).To(BeFalse())
	})

	It("only surfaces the front hit once it is available", func() {
		f := buffer.NewFIFO(2)
		f.Insert(mkHit(1, 5), 5)
		_, ok := f.Get(5, false)
		Expect(ok).To(BeFalse())
		_, ok = f.Get(6, false)
		Expect(ok).To(BeTrue())
	})

	It("implements S5: overwrite semantics via EvictOldest", func() {
		f := buffer.NewFIFO(1)
		h1 := mkHit(1, 1)
		f.Insert(h1, 1)
		sink := &fakeSink{}
		evicted, ok := f.EvictOldest()
		Expect(ok).To(BeTrue())
		Expect(evicted.EventIndex).To(Equal(1))
		sink.Lost(evicted, "overwritten", 2)
		Expect(sink.entries).To(HaveLen(1))
		Expect(sink.entries[0].reason).To(Equal("overwritten"))

		h2 := mkHit(2, 2)
		ok, _ = f.Insert(h2, 2)
		Expect(ok).To(BeTrue())
	})

	It("evicts hits with no matching trigger", func() {
		f := buffer.NewFIFO(2)
		h := mkHit(1, 3)
		h.AvailableFrom = 3
		f.Insert(h, 3)
		sink := &fakeSink{}
		n := f.NoTriggerRemove(3, sink)
		Expect(n).To(Equal(1))
		Expect(sink.entries[0].reason).To(Equal("noTrigger"))
		Expect(f.Len()).To(Equal(0))
	})
})

var _ = Describe("Priority", func() {
	It("implements S3: a freed slot is reused by the next insert", func() {
		p := buffer.NewPriority(3)
		h1 := mkHit(1, 0)
		_, slot1 := p.Insert(h1, 0)
		Expect(slot1).To(Equal(0))

		h2 := mkHit(2, 0)
		_, slot2 := p.Insert(h2, 0)
		Expect(slot2).To(Equal(1))

		_, ok := p.Get(1, true) // removes H1 from slot 0
		Expect(ok).To(BeTrue())

		h3 := mkHit(3, 1)
		ok3, slot3 := p.Insert(h3, 1)
		Expect(ok3).To(BeTrue())
		Expect(slot3).To(Equal(0))
	})
})
