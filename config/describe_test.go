package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/config"
	"github.com/kitadl/rome/readoutcell"
)

var _ = Describe("Describe", func() {
	It("renders one row per tree node, indented by depth", func() {
		col := config.NewCell("col", 0).
			WithFIFO(1).
			WithPixelRead(&readoutcell.PPtBOr{GroupAddressField: "pix"}).
			WithPixels(config.NewPixel("pix", 1))

		root := config.NewCell("det", 0).
			WithFIFO(1).
			WithChildRead(readoutcell.NoFullReadReadout{}).
			WithChildren(col)

		out := config.Describe(root.Build())
		Expect(out).To(ContainSubstring("det=0"))
		Expect(out).To(ContainSubstring("col=0"))
		Expect(out).To(ContainSubstring("leaf (1 pixels)"))
	})
})
