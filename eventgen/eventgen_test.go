package eventgen_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitadl/rome/eventgen"
	"github.com/kitadl/rome/hit"
)

var _ = Describe("Generator", func() {
	It("rounds a fractional trigger time up, adding 0.9 before truncation", func() {
		g := eventgen.New(eventgen.Config{Seed: 1, TriggerDelay: 2})
		Expect(g.TriggerTick(3.05)).To(Equal(3 + 2)) // 3.05+0.9=3.95 -> trunc 3, +delay 2
		Expect(g.TriggerTick(3.2)).To(Equal(4 + 2))  // 3.2+0.9=4.1 -> trunc 4, +delay 2
	})

	It("draws an infinite interval at zero rate", func() {
		g := eventgen.New(eventgen.Config{Seed: 1, Rate: 0})
		Expect(g.NextInterval(1)).To(BeNumerically("==", math.Inf(1)))
	})

	It("builds a hit only for pixels meeting threshold", func() {
		g := eventgen.New(eventgen.Config{Seed: 1, Charge: constantCharge{charge: 5}})

		low := hit.Fields{}
		low.Set("pix", 1)
		high := hit.Fields{}
		high.Set("pix", 2)

		hits := g.HitsForEvent(1, 10, []hit.Fields{low, high}, []float64{1, 10})
		Expect(hits).To(HaveLen(1))
		v, _ := hits[0].Address.Get("pix")
		Expect(v).To(Equal(1))
	})

	It("merges and sorts parallel track evaluation by (timestamp, event_index)", func() {
		g := eventgen.New(eventgen.Config{Seed: 1, Workers: 4})
		merged := g.GenerateTracks(8, func(i int) []hit.Hit {
			h := hit.New(i, 8-i, 8-i+1, 1)
			h.AddAddress("pix", 1)
			return []hit.Hit{h}
		})
		Expect(merged).To(HaveLen(8))
		for i := 1; i < len(merged); i++ {
			Expect(merged[i-1].Timestamp).To(BeNumerically("<=", merged[i].Timestamp))
		}
	})
})
