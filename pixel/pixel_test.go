package pixel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/pixel"
)

func mkHit(ev, ts, deadTimeEnd int, charge float64) hit.Hit {
	h := hit.New(ev, ts, deadTimeEnd, charge)
	h.AddAddress("pix", 1)
	return h
}

var _ = Describe("Pixel", func() {
	var px *pixel.Pixel

	BeforeEach(func() {
		px = pixel.New(pixel.Config{Threshold: 1, Efficiency: 1}, "pix", 1)
	})

	It("implements S2: a hit during dead-time is rejected", func() {
		ok := px.CreateHit(mkHit(1, 3, 6, 5))
		Expect(ok).To(BeTrue())

		ok = px.CreateHit(mkHit(2, 4, 7, 5))
		Expect(ok).To(BeFalse())
	})

	It("extends dead-time on a rejected hit only if the new end is later", func() {
		px.CreateHit(mkHit(1, 3, 6, 5))
		px.CreateHit(mkHit(2, 4, 9, 5)) // rejected, but extends busy period to 9
		Expect(px.DeadTimeEnd()).To(Equal(9))

		px.CreateHit(mkHit(3, 5, 7, 5)) // rejected, doesn't shorten the busy period
		Expect(px.DeadTimeEnd()).To(Equal(9))
	})

	It("admits a hit once dead-time has ended", func() {
		px.CreateHit(mkHit(1, 3, 6, 5))
		ok := px.CreateHit(mkHit(2, 6, 10, 5))
		Expect(ok).To(BeTrue())
		Expect(px.DeadTimeEnd()).To(Equal(10))
	})

	It("logs NotRead and clears on a read at-or-after dead-time end", func() {
		px.CreateHit(mkHit(1, 3, 6, 5))
		sink := &fakeSink{}

		_, ok := px.GetHit(5, sink)
		Expect(ok).To(BeTrue()) // not yet expired, returned without clearing
		Expect(sink.entries).To(BeEmpty())

		_, ok = px.GetHit(6, sink)
		Expect(ok).To(BeFalse())
		Expect(sink.entries).To(HaveLen(1))
		Expect(sink.entries[0].reason).To(Equal("NotRead"))
		Expect(px.IsEmpty(6)).To(BeTrue())
	})

	It("LoadHit clears the slot even when the hit hasn't expired", func() {
		px.CreateHit(mkHit(1, 3, 6, 5))
		sink := &fakeSink{}

		h, ok := px.LoadHit(4, sink)
		Expect(ok).To(BeTrue())
		Expect(h.Charge).To(Equal(5.0))
		Expect(px.HasHit()).To(BeFalse())
	})
})
