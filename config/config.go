// Package config builds detector trees programmatically, in the same
// fluent value-receiver style as the teacher's core.DeviceBuilder
// (WithEngine/WithFreq/WithWidth/... each returning a new builder
// value, terminated by Build()). Where the teacher wired CPU tiles and
// akita ports, these builders wire pixels, readout cells, and the
// state machine that drives a Detector.
package config

import (
	"io"
	"log/slog"

	"github.com/kitadl/rome/buffer"
	"github.com/kitadl/rome/detector"
	"github.com/kitadl/rome/geom"
	"github.com/kitadl/rome/pixel"
	"github.com/kitadl/rome/readoutcell"
	"github.com/kitadl/rome/statemachine"
	"github.com/kitadl/rome/util"
)

// PixelBuilder accumulates a leaf pixel's configuration before Build.
type PixelBuilder struct {
	addrName  string
	addrValue int
	cfg       pixel.Config
}

// NewPixel starts a PixelBuilder addressed by addrName/addrValue within
// its owning cell.
func NewPixel(addrName string, addrValue int) PixelBuilder {
	return PixelBuilder{addrName: addrName, addrValue: addrValue}
}

// WithPosition sets the pixel's position in detector space.
func (b PixelBuilder) WithPosition(p geom.Vec3) PixelBuilder {
	b.cfg.Position = p
	return b
}

// WithSize sets the pixel's physical extent.
func (b PixelBuilder) WithSize(s geom.Vec3) PixelBuilder {
	b.cfg.Size = s
	return b
}

// WithThreshold records the pixel's charge threshold in its Config.
// Pixel.CreateHit does not consult it: a hit is admitted whatever its
// charge.
func (b PixelBuilder) WithThreshold(threshold float64) PixelBuilder {
	b.cfg.Threshold = threshold
	return b
}

// WithEfficiency sets the pixel's detection efficiency, in [0,1].
func (b PixelBuilder) WithEfficiency(efficiency float64) PixelBuilder {
	b.cfg.Efficiency = efficiency
	return b
}

// WithDeadTimeScale records the pixel's dead-time scale factor in its
// Config. Nothing in this module applies it: a stored hit keeps the
// DeadTimeEnd it arrived with.
func (b PixelBuilder) WithDeadTimeScale(scale float64) PixelBuilder {
	b.cfg.DeadTimeScale = scale
	return b
}

// WithDetectionDelay records the pixel's detection delay in its Config.
// Nothing in this module applies it: when a hit becomes available for
// readout depends only on the readout cells' delays.
func (b PixelBuilder) WithDetectionDelay(delay int) PixelBuilder {
	b.cfg.DetectionDelay = delay
	return b
}

// Build constructs the *pixel.Pixel described by b.
func (b PixelBuilder) Build() *pixel.Pixel {
	return pixel.New(b.cfg, b.addrName, b.addrValue)
}

// NewPixelRow builds n identical PixelBuilders addressed addrName=start+1,
// start+2, ... under the same column, using the same sequential-value
// generator a fluent builder table would otherwise loop by hand.
func NewPixelRow(addrName string, start, n int, configure func(PixelBuilder) PixelBuilder) []PixelBuilder {
	next := util.MakeIncreasingGen(start)
	row := make([]PixelBuilder, n)
	for i := 0; i < n; i++ {
		pb := NewPixel(addrName, next())
		if configure != nil {
			pb = configure(pb)
		}
		row[i] = pb
	}
	return row
}

// bufferKind selects which buffer.Policy a CellBuilder instantiates.
type bufferKind int

const (
	bufferFIFO bufferKind = iota
	bufferPriority
)

// CellBuilder accumulates a readout cell's configuration before Build.
// Exactly one of WithPixels or WithChildren should be called.
type CellBuilder struct {
	addrName  string
	addrValue int

	kind     bufferKind
	capacity int

	readoutDelay       int
	delayReferenceName string

	pixelRead readoutcell.PixelReadPolicy
	childRead readoutcell.ChildReadPolicy

	pixels   []PixelBuilder
	children []CellBuilder
}

// NewCell starts a CellBuilder addressed by addrName/addrValue within
// its owning parent.
func NewCell(addrName string, addrValue int) CellBuilder {
	return CellBuilder{addrName: addrName, addrValue: addrValue}
}

// WithFIFO configures this cell's buffer as a bounded FIFO.
func (b CellBuilder) WithFIFO(capacity int) CellBuilder {
	b.kind = bufferFIFO
	b.capacity = capacity
	return b
}

// WithPriority configures this cell's buffer as a fixed-capacity
// priority-slot array (required by OneByOneReadout children).
func (b CellBuilder) WithPriority(capacity int) CellBuilder {
	b.kind = bufferPriority
	b.capacity = capacity
	return b
}

// WithReadoutDelay sets the additional tick delay a hit accrues before
// it becomes available for readout from this cell's buffer.
func (b CellBuilder) WithReadoutDelay(delay int) CellBuilder {
	b.readoutDelay = delay
	return b
}

// WithDelayReference names a prior readout-timestamp key that
// AvailableFrom should be computed relative to, instead of the current
// tick.
func (b CellBuilder) WithDelayReference(name string) CellBuilder {
	b.delayReferenceName = name
	return b
}

// WithPixelRead configures this as a leaf cell reading directly-owned
// pixels via policy.
func (b CellBuilder) WithPixelRead(policy readoutcell.PixelReadPolicy) CellBuilder {
	b.pixelRead = policy
	return b
}

// WithChildRead configures this as a parent cell reading child cells
// via policy.
func (b CellBuilder) WithChildRead(policy readoutcell.ChildReadPolicy) CellBuilder {
	b.childRead = policy
	return b
}

// WithPixels attaches leaf pixels to this cell.
func (b CellBuilder) WithPixels(pixels ...PixelBuilder) CellBuilder {
	b.pixels = pixels
	return b
}

// WithChildren attaches child cells to this cell.
func (b CellBuilder) WithChildren(children ...CellBuilder) CellBuilder {
	b.children = children
	return b
}

func (b CellBuilder) buildBuffer() buffer.Policy {
	if b.kind == bufferPriority {
		return buffer.NewPriority(b.capacity)
	}
	return buffer.NewFIFO(b.capacity)
}

// Build constructs the *readoutcell.ReadoutCell described by b,
// recursively building any attached pixels or children.
func (b CellBuilder) Build() *readoutcell.ReadoutCell {
	var cell *readoutcell.ReadoutCell
	if len(b.pixels) > 0 {
		pixels := make([]*pixel.Pixel, len(b.pixels))
		for i, pb := range b.pixels {
			pixels[i] = pb.Build()
		}
		cell = readoutcell.New(b.addrName, b.addrValue, b.buildBuffer(), b.readoutDelay, b.pixelRead, pixels...)
	} else {
		children := make([]*readoutcell.ReadoutCell, len(b.children))
		for i, cb := range b.children {
			children[i] = cb.Build()
		}
		cell = readoutcell.NewParent(b.addrName, b.addrValue, b.buildBuffer(), b.readoutDelay, b.childRead, children...)
	}
	cell.DelayReferenceName = b.delayReferenceName
	return cell
}

// DetectorBuilder accumulates a detector's configuration before Build.
type DetectorBuilder struct {
	name string
	root CellBuilder

	triggerCapacity int
	triggerMask     int

	acceptedWriter io.Writer
	lostWriter     io.Writer
	logger         *slog.Logger

	sm statemachine.StateMachine
}

// NewDetector starts a DetectorBuilder named name. The trigger mask
// defaults to 0 (no bits masked), so triggers are compared exactly.
func NewDetector(name string) DetectorBuilder {
	return DetectorBuilder{name: name}
}

// WithRoot sets the detector's root readout cell.
func (b DetectorBuilder) WithRoot(root CellBuilder) DetectorBuilder {
	b.root = root
	return b
}

// WithTriggerQueue sets the trigger queue's capacity and validity mask.
func (b DetectorBuilder) WithTriggerQueue(capacity, mask int) DetectorBuilder {
	b.triggerCapacity = capacity
	b.triggerMask = mask
	return b
}

// WithAcceptedWriter mirrors accepted hits to w in addition to the
// in-memory log.
func (b DetectorBuilder) WithAcceptedWriter(w io.Writer) DetectorBuilder {
	b.acceptedWriter = w
	return b
}

// WithLostWriter mirrors lost hits to w in addition to the in-memory
// log.
func (b DetectorBuilder) WithLostWriter(w io.Writer) DetectorBuilder {
	b.lostWriter = w
	return b
}

// WithLogger overrides the detector's diagnostic logger.
func (b DetectorBuilder) WithLogger(logger *slog.Logger) DetectorBuilder {
	b.logger = logger
	return b
}

// WithStateMachine attaches the state machine driving ClockUp/ClockDown.
func (b DetectorBuilder) WithStateMachine(sm statemachine.StateMachine) DetectorBuilder {
	b.sm = sm
	return b
}

// Build constructs the *detector.Detector described by b.
func (b DetectorBuilder) Build() *detector.Detector {
	d := detector.New(b.name, b.root.Build(), detector.Options{
		TriggerCapacity: b.triggerCapacity,
		TriggerMask:     b.triggerMask,
		AcceptedWriter:  b.acceptedWriter,
		LostWriter:      b.lostWriter,
		Logger:          b.logger,
	})
	d.SM = b.sm
	return d
}
