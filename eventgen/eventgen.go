// Package eventgen implements the contract-level event generator of
// §4.H: inter-event timing, trigger emission, and the dead-time/time-
// walk splines. The geometric charge integration itself (the Gaussian
// tube over a track) is out of scope (§1 Non-goals); ChargeModel is
// the seam a caller supplies to stand in for it.
package eventgen

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/shirou/gopsutil/cpu"

	"github.com/kitadl/rome/hit"
)

// ChargeModel integrates the charge a track deposits on one pixel,
// identified by its address fields. It is the caller's geometric model
// (§1 Non-goals: "the detailed Gaussian-tube charge-sharing model
// itself is out of scope; a pluggable ChargeModel interface stands in
// for it").
type ChargeModel interface {
	// Charge returns the integrated charge a track deposits on the
	// pixel addressed by addr, and whether the pixel was touched at
	// all.
	Charge(addr hit.Fields) (charge float64, touched bool)
}

// Config carries the generator's tunables (§4.H).
type Config struct {
	Seed int64 // 0 derives from wall clock (§9 design note); non-zero seeds deterministically.

	Rate        float64 // λ
	RatePerArea bool    // rate is per-area vs total

	TriggerProbability float64
	TriggerDelay       int

	DeadTimeSpline Spline
	TimeWalkSpline Spline

	Charge ChargeModel

	// Workers bounds how many goroutines evaluate disjoint index
	// ranges of a track batch; zero means "ask the host".
	Workers int
}

// Generator draws inter-event times and builds Hits for whichever
// pixels a track touches, per detector.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New builds a Generator with its own seeded PRNG (not process-wide).
// A zero Seed is replaced by one derived from the wall clock, so such
// runs are not reproducible; tests pass a non-zero seed.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))} //nolint:gosec // simulation PRNG
}

// NextInterval draws the next inter-event gap from Exp(λ) (or Exp(λ·A)
// in per-area mode, where area is the caller-supplied detector
// footprint).
func (g *Generator) NextInterval(area float64) float64 {
	rate := g.cfg.Rate
	if g.cfg.RatePerArea {
		rate *= area
	}
	if rate <= 0 {
		return math.Inf(1)
	}
	return g.rng.ExpFloat64() / rate
}

// TimeWalk returns the time-walk spline's value at the given charge.
func (g *Generator) TimeWalk(charge float64) float64 {
	return g.cfg.TimeWalkSpline.Eval(charge)
}

// DeadTime returns the dead-time spline's value at the given charge.
func (g *Generator) DeadTime(charge float64) float64 {
	return g.cfg.DeadTimeSpline.Eval(charge)
}

// TriggerFires samples a per-event Bernoulli trial at TriggerProbability.
func (g *Generator) TriggerFires() bool {
	return g.rng.Float64() < g.cfg.TriggerProbability
}

// TriggerTick rounds a fractional trigger time up to the next integer
// tick (adding 0.9 before truncation, §4.H), shifted by TriggerDelay.
func (g *Generator) TriggerTick(raw float64) int {
	return int(raw+0.9) + g.cfg.TriggerDelay
}

// HitsForEvent builds one Hit per pixel address the charge model
// reports as touched and over threshold, stamping timestamp and
// dead-time end via the time-walk/dead-time splines.
func (g *Generator) HitsForEvent(eventIndex int, baseTime float64, addrs []hit.Fields, thresholds []float64) []hit.Hit {
	var out []hit.Hit
	for i, addr := range addrs {
		charge, touched := g.cfg.Charge.Charge(addr)
		if !touched || charge < thresholds[i] {
			continue
		}
		ts := int(baseTime + g.TimeWalk(charge))
		dte := ts + int(g.DeadTime(charge))

		h := hit.New(eventIndex, ts, dte, charge)
		addr.Range(func(name string, value int) bool {
			h.AddAddress(name, value)
			return true
		})
		out = append(out, h)
	}
	return out
}

// workerCount resolves how many goroutines a parallel track evaluation
// should use: the configured Workers, or the runner's available CPU
// count when unset.
func (g *Generator) workerCount() int {
	if g.cfg.Workers > 0 {
		return g.cfg.Workers
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return 1
}

// GenerateTracks evaluates n independent tracks in parallel, each
// worker taking a disjoint contiguous index range and producing its
// own hit slice; results are merged and sorted by (timestamp,
// event_index) (§5 ordering guarantee).
func (g *Generator) GenerateTracks(n int, eval func(i int) []hit.Hit) []hit.Hit {
	workers := g.workerCount()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	chunks := make([][]hit.Hit, workers)
	done := make(chan int, workers)
	per := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		go func(w int) {
			lo := w * per
			hi := lo + per
			if hi > n {
				hi = n
			}
			var local []hit.Hit
			for i := lo; i < hi; i++ {
				local = append(local, eval(i)...)
			}
			chunks[w] = local
			done <- w
		}(w)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	var merged []hit.Hit
	for _, c := range chunks {
		merged = append(merged, c...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].EventIndex < merged[j].EventIndex
	})
	return merged
}
