package config

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kitadl/rome/readoutcell"
)

// Describe renders a human-readable dump of a readout-cell tree: one
// row per node, indented by depth, with its buffer capacity and
// readout delay. Useful for sanity-checking a tree built either
// programmatically or from YAML before handing it to a Detector.
func Describe(root *readoutcell.ReadoutCell) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Node", "Buffer", "ReadoutDelay", "Kind"})
	describeNode(t, root, 0)
	return t.Render()
}

func describeNode(t table.Writer, c *readoutcell.ReadoutCell, depth int) {
	name := fmt.Sprintf("%s%s=%d", strings.Repeat("  ", depth), c.AddressName, c.AddressValue)

	kind := "parent"
	if len(c.Pixels) > 0 {
		kind = fmt.Sprintf("leaf (%d pixels)", len(c.Pixels))
	}

	t.AppendRow(table.Row{name, fmt.Sprintf("%d/%d", c.Buffer.Len(), c.Buffer.Capacity()), c.ReadoutDelay, kind})

	for _, ch := range c.Children {
		describeNode(t, ch, depth+1)
	}
}
