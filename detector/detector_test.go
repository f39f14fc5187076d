package detector_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/detector"
	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/pixel"
	"github.com/kitadl/rome/readoutcell"
)

var _ = Describe("Detector", func() {
	It("places, loads and accepts a hit end to end", func() {
		px := pixel.New(pixel.Config{Threshold: 1, Efficiency: 1}, "pix", 1)
		root := readoutcell.New("det", 0, buffer.NewFIFO(2), 0,
			&readoutcell.PPtBOr{GroupAddressField: "pix"}, px)

		var accepted, lost bytes.Buffer
		d := detector.New("det", root, detector.Options{
			TriggerCapacity: 2,
			AcceptedWriter:  &accepted,
			LostWriter:      &lost,
		})

		h := hit.New(1, 3, 7, 5)
		h.AddAddress("pix", 1)

		Expect(d.PlaceHit(h, 3)).To(BeTrue())

		d.LoadPixel(3)

		got, ok := d.GetHit("det", 5)
		Expect(ok).To(BeTrue())
		Expect(got.Charge).To(Equal(5.0))

		d.Accept(got, 5)
		Expect(d.AcceptedLog()).To(ContainSubstring("Event 1"))
	})

	It("flushes exactly once", func() {
		root := readoutcell.New("det", 0, buffer.NewFIFO(1), 0, &readoutcell.PPtBOr{GroupAddressField: "pix"})
		var accepted bytes.Buffer
		d := detector.New("det", root, detector.Options{AcceptedWriter: &accepted})

		Expect(d.Flush()).To(Succeed())
		n := accepted.Len()
		Expect(d.Flush()).To(Succeed())
		Expect(accepted.Len()).To(Equal(n)) // idempotent: no second header written
	})

	It("drains residual hits into the lost log annotated SimulationEnd on shutdown", func() {
		px := pixel.New(pixel.Config{Threshold: 1, Efficiency: 1}, "pix", 1)
		root := readoutcell.New("det", 0, buffer.NewFIFO(2), 0,
			&readoutcell.PPtBOr{GroupAddressField: "pix"}, px)

		var lost bytes.Buffer
		d := detector.New("det", root, detector.Options{LostWriter: &lost})

		h := hit.New(1, 3, 7, 5)
		h.AddAddress("pix", 1)
		d.PlaceHit(h, 3)
		d.LoadPixel(3) // hit now sits in root's buffer, never read out

		d.RemoveAndSaveAll(10)
		Expect(lost.String()).To(ContainSubstring("SimulationEnd"))
	})
})
