package config_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/config"
	"github.com/kitadl/rome/hit"
)

const sampleYAML = `
name: det
trigger_capacity: 4
trigger_mask: -1
root:
  address: det
  value: 0
  buffer: {kind: fifo, capacity: 2}
  readout_delay: 0
  child_read: {type: no_full_read}
  children:
    - address: col
      value: 0
      buffer: {kind: fifo, capacity: 1}
      readout_delay: 0
      pixel_read: {type: pptb_or, group_address_field: pix}
      pixels:
        - address: pix
          value: 1
          threshold: 1
          efficiency: 1
`

var _ = Describe("LoadYAML", func() {
	It("parses a document and builds a working detector", func() {
		doc, err := config.LoadYAML(strings.NewReader(sampleYAML))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Name).To(Equal("det"))

		builder, err := doc.Build()
		Expect(err).NotTo(HaveOccurred())

		d := builder.Build()

		h := hit.New(1, 0, 5, 3)
		h.AddAddress("det", 0)
		h.AddAddress("col", 0)
		h.AddAddress("pix", 1)

		Expect(d.PlaceHit(h, 0)).To(BeTrue())
	})

	It("rejects an unknown buffer kind", func() {
		bad := strings.Replace(sampleYAML, "kind: fifo, capacity: 2", "kind: bogus, capacity: 2", 1)
		doc, err := config.LoadYAML(strings.NewReader(bad))
		Expect(err).NotTo(HaveOccurred())

		_, err = doc.Build()
		Expect(err).To(HaveOccurred())
	})
})
