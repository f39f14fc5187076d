package simulator_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/detector"
	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/pixel"
	"github.com/kitadl/rome/readoutcell"
	"github.com/kitadl/rome/simulator"
)

var _ = Describe("Driver", func() {
	It("injects a late event, idles through the shutdown delay, then drains residual hits", func() {
		px := pixel.New(pixel.Config{Threshold: 1, Efficiency: 1}, "pix", 1)
		root := readoutcell.New("det", 0, buffer.NewFIFO(1), 0,
			&readoutcell.PPtBOr{GroupAddressField: "pix"}, px)

		var lost bytes.Buffer
		d := detector.New("det", root, detector.Options{LostWriter: &lost})

		h := hit.New(1, 2, 6, 5)
		h.AddAddress("pix", 1)

		triggers := simulator.NewTriggerState(nil, 0)
		drv := simulator.New([]*detector.Detector{d}, []hit.Hit{h}, triggers, -1, 1)

		Expect(drv.Run()).To(Succeed())
		Expect(lost.String()).To(ContainSubstring("SimulationEnd"))
	})
})
