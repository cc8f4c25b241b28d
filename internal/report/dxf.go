package report

import (
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/floorplan/internal/model"
)

// WriteDXF writes the floorplan geometry as DXF entities: one closed
// LWPOLYLINE rectangle per module on the MODULES layer, and one dashed
// LINE per locked symmetry axis on the AXIS layer.
func WriteDXF(path string, p *model.Problem) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	d.AddLayer("MODULES", dxf.DefaultColor, dxf.DefaultLineType, true)
	d.AddLayer("AXIS", dxf.DefaultColor, table.LT_HIDDEN, true)

	d.ChangeLayer("MODULES")
	for _, name := range p.Order {
		m := p.Modules[name]
		x0, y0 := float64(m.X), float64(m.Y)
		x1, y1 := float64(m.X+m.Width()), float64(m.Y+m.Height())
		d.LwPolyline(true,
			[]float64{x0, y0},
			[]float64{x1, y0},
			[]float64{x1, y1},
			[]float64{x0, y1},
		)
	}

	d.ChangeLayer("AXIS")
	maxX, maxY := 1, 1
	for _, name := range p.Order {
		m := p.Modules[name]
		if x := m.X + m.Width(); x > maxX {
			maxX = x
		}
		if y := m.Y + m.Height(); y > maxY {
			maxY = y
		}
	}
	for _, g := range p.Groups {
		if !g.Locked() {
			continue
		}
		axisCoord := float64(g.Axis2()) / 2
		if g.Axis == model.Vertical {
			d.Line(axisCoord, 0, 0, axisCoord, float64(maxY), 0)
		} else {
			d.Line(0, axisCoord, 0, float64(maxX), axisCoord, 0)
		}
	}

	return d.SaveAs(path)
}
