package hit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/hit"
)

var _ = Describe("Hit", func() {
	It("is invalid with no address entries", func() {
		h := hit.New(1, 2, 5, 3.0)
		Expect(h.IsValid()).To(BeFalse())
	})

	It("is valid once it carries at least one address component", func() {
		h := hit.New(1, 2, 5, 3.0)
		h.AddAddress("pix", 4)
		Expect(h.IsValid()).To(BeTrue())
	})

	It("rejects a negative charge, timestamp, or event index as invalid", func() {
		h := hit.New(-1, 2, 5, 3.0)
		h.AddAddress("pix", 1)
		Expect(h.IsValid()).To(BeFalse())

		h = hit.New(1, -1, 5, 3.0)
		h.AddAddress("pix", 1)
		Expect(h.IsValid()).To(BeFalse())

		h = hit.New(1, 2, 5, -1)
		h.AddAddress("pix", 1)
		Expect(h.IsValid()).To(BeFalse())
	})

	It("reports availability strictly after available_from", func() {
		h := hit.New(1, 10, 20, 1)
		h.AddAddress("pix", 1)
		Expect(h.IsAvailable(10)).To(BeFalse())
		Expect(h.IsAvailable(11)).To(BeTrue())
	})

	DescribeTable("round-trips through both textual forms",
		func(compact bool) {
			h := hit.New(3, 5, 9, 2.5)
			h.AddAddress("det", 0)
			h.AddAddress("col", 1)
			h.AddReadout("det", 6)
			h.AddReadout("col", 7)

			line := h.Format(compact)
			var got hit.Hit
			if compact {
				got = hit.ParseCompact(line)
			} else {
				got = hit.Parse(line)
			}

			Expect(got.EventIndex).To(Equal(h.EventIndex))
			Expect(got.Timestamp).To(Equal(h.Timestamp))
			Expect(got.DeadTimeEnd).To(Equal(h.DeadTimeEnd))
			Expect(got.Charge).To(Equal(h.Charge))
			Expect(got.Address.Equal(h.Address)).To(BeTrue())
			Expect(got.Readout.Equal(h.Readout)).To(BeTrue())
		},
		Entry("verbose", false),
		Entry("compact", true),
	)

	It("round-trips a hit with no readout entries yet", func() {
		h := hit.New(1, 2, 5, 3.0)
		h.AddAddress("pix", 4)

		line := h.Format(false)
		got := hit.Parse(line)
		Expect(got.Address.Equal(h.Address)).To(BeTrue())
		Expect(got.Readout.Len()).To(Equal(0))
	})

	It("yields the invalid sentinel for a malformed line", func() {
		got := hit.Parse("not a hit line at all")
		Expect(got.EventIndex).To(Equal(-1))
		Expect(got.IsValid()).To(BeFalse())
	})
})
