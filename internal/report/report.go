package report

import (
	"fmt"

	"github.com/piwi3910/floorplan/internal/model"
)

// WriteAll renders all three enrichment artifacts (<prefix>.pdf,
// <prefix>.xlsx, <prefix>.dxf), returning the first error encountered.
// The caller (internal/cli's --report flag) only invokes this after the
// required text-format output has already been written.
func WriteAll(prefix string, p *model.Problem, res *model.Result) error {
	if err := WritePDF(prefix+".pdf", p, res); err != nil {
		return fmt.Errorf("writing PDF report: %w", err)
	}
	if err := WriteXLSX(prefix+".xlsx", p); err != nil {
		return fmt.Errorf("writing XLSX bill-of-materials: %w", err)
	}
	if err := WriteDXF(prefix+".dxf", p); err != nil {
		return fmt.Errorf("writing DXF geometry: %w", err)
	}
	return nil
}
