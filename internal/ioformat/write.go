package ioformat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/piwi3910/floorplan/internal/model"
)

// WriteProblem emits the output format of spec.md §6:
//
//	A=<bounding-box-area>
//	<blockName> <x> <y>
//	…
//
// one line per module in stable insertion order, integer lower-left
// coordinates after rotation (rotation itself is not part of the output
// format; Width()/Height() already reflect it).
func WriteProblem(w io.Writer, p *model.Problem, bboxArea int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "A=%d\n", bboxArea); err != nil {
		return err
	}
	for _, name := range p.Order {
		m := p.Modules[name]
		if _, err := fmt.Fprintf(bw, "%s %d %d\n", m.Name, m.X, m.Y); err != nil {
			return err
		}
	}
	return bw.Flush()
}
