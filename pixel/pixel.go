// Package pixel implements the leaf sensor of a detector's readout
// tree: a single in-flight hit slot with dead-time enforcement. See
// §3/§4.C of the specification.
package pixel

import (
	"math/rand"

	"github.com/kitadl/rome/geom"
	"github.com/kitadl/rome/hit"
)

// Reasons a pixel can lose a hit.
const (
	ReasonNotRead = "NotRead"
)

// Config describes a pixel's static geometry and readout parameters.
type Config struct {
	Position      geom.Vec3
	Size          geom.Vec3
	Threshold     float64
	Efficiency    float64
	DeadTimeScale float64
	DetectionDelay int
}

// Pixel is a leaf sensor holding at most one in-flight hit.
type Pixel struct {
	Config

	// Address is the address component name/value this pixel stamps
	// onto a hit it creates (e.g. name "pix", value the pixel's index
	// within its owning cell).
	AddressName  string
	AddressValue int

	stored Hit
	has    bool

	// sampleEfficiency draws a uniform [0,1) efficiency sample; defaults
	// to math/rand but is injectable so deterministic tests (§8 S1/S2)
	// can pin it to "always passes".
	sampleEfficiency func() float64
}

// Hit is an alias kept local to the package so field names below read
// naturally; it is exactly hit.Hit.
type Hit = hit.Hit

// New builds a Pixel with the given configuration and address stamp.
func New(cfg Config, addressName string, addressValue int) *Pixel {
	return &Pixel{
		Config:       cfg,
		AddressName:  addressName,
		AddressValue: addressValue,
		sampleEfficiency: func() float64 {
			return rand.Float64() //nolint:gosec // simulation PRNG, not security-sensitive
		},
	}
}

// WithEfficiencySource overrides the efficiency sampling source.
func (p *Pixel) WithEfficiencySource(f func() float64) *Pixel {
	p.sampleEfficiency = f
	return p
}

// PassesEfficiency draws one efficiency sample and reports whether the
// pixel detects the hit.
func (p *Pixel) PassesEfficiency() bool {
	return p.sampleEfficiency() < p.Efficiency
}

// deadTimeEnd returns the dead-time end of the currently-stored hit, or
// the sentinel 0 if nothing is stored (empty immediately at tick 0).
func (p *Pixel) deadTimeEnd() int {
	if !p.has {
		return 0
	}
	return p.stored.DeadTimeEnd
}

// IsEmpty reports whether t has reached or passed the stored hit's
// dead-time end.
func (p *Pixel) IsEmpty(t int) bool {
	return t >= p.deadTimeEnd()
}

// HasHit reports whether a hit is currently stored, regardless of
// whether its dead-time has ended.
func (p *Pixel) HasHit() bool {
	return p.has
}

// DeadTimeEnd returns the dead-time end of the currently-stored hit.
func (p *Pixel) DeadTimeEnd() int {
	return p.deadTimeEnd()
}

// Peek returns the stored hit without removing it or checking
// dead-time expiry.
func (p *Pixel) Peek() (Hit, bool) {
	if !p.has {
		return hit.Invalid(), false
	}
	return p.stored, true
}

// Clear empties the slot unconditionally, without any dead-time or
// validity logging — used by pixel-read policies that apply their own
// loss annotation (e.g. SampleDelayLoss) ahead of clearing.
func (p *Pixel) Clear() {
	p.has = false
}

// CreateHit attempts to admit h. If h arrives before the current
// dead-time ends, it is rejected; if the rejected hit's dead-time end
// would extend the busy period, the stored dead-time is lengthened
// (pile-up), but the hit itself is still rejected — extension only
// happens when the new end is strictly later than the current one
// (§9 open question, resolved conditional). Otherwise h replaces
// whatever was stored.
func (p *Pixel) CreateHit(h Hit) (accepted bool) {
	if p.has && h.Timestamp < p.stored.DeadTimeEnd {
		if h.DeadTimeEnd > p.stored.DeadTimeEnd {
			p.stored.DeadTimeEnd = h.DeadTimeEnd
		}
		return false
	}

	p.stored = h
	p.has = true
	return true
}

// GetHit returns the stored hit without removing it, unless t has
// reached the stored hit's dead-time end: in that case a still-valid,
// never-forwarded hit is logged NotRead and the slot is cleared, and an
// empty (invalid) hit is returned.
func (p *Pixel) GetHit(t int, lost hit.Sink) (Hit, bool) {
	if !p.has {
		return hit.Invalid(), false
	}

	if t >= p.stored.DeadTimeEnd {
		h := p.stored
		p.has = false
		if h.IsValid() {
			h.Annotate(ReasonNotRead, t)
			lost.Lost(h, ReasonNotRead, t)
		}
		return hit.Invalid(), false
	}

	return p.stored, true
}

// LoadHit is GetHit followed by an unconditional clear of the slot; the
// returned hit's charge is left intact so pixel-read policies (PPtB
// group aggregation) can still use it after the pixel itself is empty.
func (p *Pixel) LoadHit(t int, lost hit.Sink) (Hit, bool) {
	h, ok := p.GetHit(t, lost)
	p.has = false
	return h, ok
}

// InstallPlaceholder forcibly stores a zero-charge hit, used by the PPtB
// pixel-read policy to preserve pixel occupancy accounting after a
// sample-delay loss.
func (p *Pixel) InstallPlaceholder(h Hit) {
	p.stored = h
	p.has = true
}
