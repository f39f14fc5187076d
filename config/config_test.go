package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/config"
	"github.com/kitadl/rome/hit"
	"github.com/kitadl/rome/readoutcell"
)

var _ = Describe("builders", func() {
	It("builds a one-column-one-pixel detector that accepts a matching hit", func() {
		col := config.NewCell("col", 0).
			WithFIFO(1).
			WithPixelRead(&readoutcell.PPtBOr{GroupAddressField: "pix"}).
			WithPixels(config.NewPixel("pix", 1).WithThreshold(1).WithEfficiency(1))

		root := config.NewCell("det", 0).
			WithFIFO(1).
			WithChildRead(readoutcell.NoFullReadReadout{}).
			WithChildren(col)

		d := config.NewDetector("det").WithRoot(root).Build()

		h := hit.New(1, 0, 5, 3)
		h.AddAddress("det", 0)
		h.AddAddress("col", 0)
		h.AddAddress("pix", 1)

		Expect(d.PlaceHit(h, 0)).To(BeTrue())
	})

	It("builds a row of sequentially addressed pixels", func() {
		row := config.NewPixelRow("pix", 0, 3, func(pb config.PixelBuilder) config.PixelBuilder {
			return pb.WithThreshold(1).WithEfficiency(1)
		})
		Expect(row).To(HaveLen(3))
		Expect(row[0].Build().AddressValue).To(Equal(1))
		Expect(row[2].Build().AddressValue).To(Equal(3))
	})
})
