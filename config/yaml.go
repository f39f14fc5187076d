package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kitadl/rome/geom"
	"github.com/kitadl/rome/readoutcell"
)

// Document is the root of a YAML detector description. A deployment
// loads one Document per detector it wants to stand up; Build turns it
// into a DetectorBuilder ready for (*DetectorBuilder).Build().
type Document struct {
	Name            string  `yaml:"name"`
	TriggerCapacity int     `yaml:"trigger_capacity"`
	TriggerMask     int     `yaml:"trigger_mask"`
	Root            CellDoc `yaml:"root"`
}

// CellDoc is the YAML shape of one readout-cell node. Exactly one of
// Pixels or Children should be set.
type CellDoc struct {
	Address      string    `yaml:"address"`
	Value        int       `yaml:"value"`
	Buffer       BufferDoc `yaml:"buffer"`
	ReadoutDelay int       `yaml:"readout_delay"`
	DelayRef     string    `yaml:"delay_reference,omitempty"`

	PixelRead *PolicyDoc `yaml:"pixel_read,omitempty"`
	ChildRead *PolicyDoc `yaml:"child_read,omitempty"`

	Pixels   []PixelDoc `yaml:"pixels,omitempty"`
	Children []CellDoc  `yaml:"children,omitempty"`
}

// BufferDoc selects and sizes a cell's buffer policy.
type BufferDoc struct {
	Kind     string `yaml:"kind"` // "fifo" or "priority"
	Capacity int    `yaml:"capacity"`
}

// PolicyDoc names a ChildReadPolicy or PixelReadPolicy and carries the
// handful of scalar parameters the concrete variants need. Not every
// field applies to every Type; unused fields are ignored.
type PolicyDoc struct {
	Type              string `yaml:"type"`
	SampleDelay       int    `yaml:"sample_delay,omitempty"`
	GroupAddressField string `yaml:"group_address_field,omitempty"`
	MergeAddressField string `yaml:"merge_address_field,omitempty"`
	TriggerFieldName  string `yaml:"trigger_field_name,omitempty"`
}

// PixelDoc is the YAML shape of one leaf pixel.
type PixelDoc struct {
	Address        string  `yaml:"address"`
	Value          int     `yaml:"value"`
	Position       [3]float64 `yaml:"position,omitempty"`
	Size           [3]float64 `yaml:"size,omitempty"`
	Threshold      float64 `yaml:"threshold"`
	Efficiency     float64 `yaml:"efficiency"`
	DeadTimeScale  float64 `yaml:"dead_time_scale,omitempty"`
	DetectionDelay int     `yaml:"detection_delay,omitempty"`
}

// LoadYAML parses a Document from r. It does not build the detector;
// call Document.Build once any additional
// programmatic configuration (a state machine, output writers) has
// been layered on with the fluent builders.
func LoadYAML(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return doc, nil
}

// Build turns doc into a DetectorBuilder with its root cell, trigger
// queue sizing, and name already populated. Callers chain further
// WithX calls (state machine, output writers) before calling Build().
func (doc Document) Build() (DetectorBuilder, error) {
	root, err := doc.Root.build()
	if err != nil {
		return DetectorBuilder{}, err
	}
	return NewDetector(doc.Name).
		WithRoot(root).
		WithTriggerQueue(doc.TriggerCapacity, doc.TriggerMask), nil
}

func (c CellDoc) build() (CellBuilder, error) {
	b := NewCell(c.Address, c.Value).
		WithReadoutDelay(c.ReadoutDelay)
	if c.DelayRef != "" {
		b = b.WithDelayReference(c.DelayRef)
	}
	switch c.Buffer.Kind {
	case "", "fifo":
		b = b.WithFIFO(c.Buffer.Capacity)
	case "priority":
		b = b.WithPriority(c.Buffer.Capacity)
	default:
		return CellBuilder{}, fmt.Errorf("config: unknown buffer kind %q", c.Buffer.Kind)
	}

	if len(c.Pixels) > 0 {
		if c.PixelRead == nil {
			return CellBuilder{}, fmt.Errorf("config: cell %q has pixels but no pixel_read policy", c.Address)
		}
		policy, err := c.PixelRead.buildPixelRead()
		if err != nil {
			return CellBuilder{}, err
		}
		pixels := make([]PixelBuilder, len(c.Pixels))
		for i, p := range c.Pixels {
			pixels[i] = p.build()
		}
		return b.WithPixelRead(policy).WithPixels(pixels...), nil
	}

	if len(c.Children) > 0 {
		if c.ChildRead == nil {
			return CellBuilder{}, fmt.Errorf("config: cell %q has children but no child_read policy", c.Address)
		}
		policy, err := c.ChildRead.buildChildRead()
		if err != nil {
			return CellBuilder{}, err
		}
		children := make([]CellBuilder, len(c.Children))
		for i, ch := range c.Children {
			built, err := ch.build()
			if err != nil {
				return CellBuilder{}, err
			}
			children[i] = built
		}
		return b.WithChildRead(policy).WithChildren(children...), nil
	}

	return b, nil
}

func (p PixelDoc) build() PixelBuilder {
	return NewPixel(p.Address, p.Value).
		WithPosition(geom.New(p.Position[0], p.Position[1], p.Position[2])).
		WithSize(geom.New(p.Size[0], p.Size[1], p.Size[2])).
		WithThreshold(p.Threshold).
		WithEfficiency(p.Efficiency).
		WithDeadTimeScale(p.DeadTimeScale).
		WithDetectionDelay(p.DetectionDelay)
}

// buildPixelRead maps a PolicyDoc's Type to a concrete
// readoutcell.PixelReadPolicy. Variants needing runtime-only state
// (ComplexReadout's PixelLogic) have no YAML representation and must
// be attached with the programmatic builder instead.
func (p PolicyDoc) buildPixelRead() (readoutcell.PixelReadPolicy, error) {
	switch p.Type {
	case "pptb_or":
		return &readoutcell.PPtBOr{SampleDelay: p.SampleDelay, GroupAddressField: p.GroupAddressField}, nil
	case "pptb_or_before_edge":
		return &readoutcell.PPtBOrBeforeEdge{
			PPtBOr: readoutcell.PPtBOr{SampleDelay: p.SampleDelay, GroupAddressField: p.GroupAddressField},
		}, nil
	default:
		return nil, fmt.Errorf("config: unknown pixel_read type %q", p.Type)
	}
}

// buildChildRead maps a PolicyDoc's Type to a concrete
// readoutcell.ChildReadPolicy.
func (p PolicyDoc) buildChildRead() (readoutcell.ChildReadPolicy, error) {
	switch p.Type {
	case "no_full_read":
		return readoutcell.NoFullReadReadout{}, nil
	case "no_overwrite":
		return readoutcell.NoOverwriteReadout{}, nil
	case "overwrite":
		return readoutcell.OverwriteReadout{}, nil
	case "one_by_one":
		return readoutcell.OneByOneReadout{}, nil
	case "token":
		return &readoutcell.TokenReadout{}, nil
	case "sorted":
		return readoutcell.SortedROCReadout{TriggerFieldName: p.TriggerFieldName}, nil
	case "merging":
		return readoutcell.MergingReadout{MergeAddressField: p.MergeAddressField}, nil
	default:
		return nil, fmt.Errorf("config: unknown child_read type %q", p.Type)
	}
}
