package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/floorplan/internal/model"
)

// WriteXLSX writes a bill-of-materials sheet, one row per module: name,
// width, height, rotated, x, y, group, representative?.
func WriteXLSX(path string, p *model.Problem) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "BOM"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Width", "Height", "Rotated", "X", "Y", "Group", "Representative"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, name := range p.Order {
		m := p.Modules[name]
		groupName := ""
		isRep := false
		if g, ok := p.GroupOf(name); ok {
			groupName = g.Name
			isRep = g.IsRepresentative(name)
		}

		values := []any{m.Name, m.Width(), m.Height(), m.Rotated(), m.X, m.Y, groupName, isRep}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SetColWidth(sheet, "A", "H", 14); err != nil {
		return fmt.Errorf("formatting BOM sheet: %w", err)
	}

	return f.SaveAs(path)
}
