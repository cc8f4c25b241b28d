// Package report renders a finished floorplan to the optional enrichment
// artifacts of SPEC_FULL.md §6.4: a PDF layout diagram, an XLSX
// bill-of-materials, and a DXF export of the module geometry. None of
// these are required by spec.md's core text-format output (spec.md §6);
// they are only produced when the driver is given a --report prefix.
package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/piwi3910/floorplan/internal/model"
)

// moduleColors is a fixed palette cycled per module in insertion order.
var moduleColors = []struct{ R, G, B int }{
	{76, 175, 80},
	{33, 150, 243},
	{255, 152, 0},
	{156, 39, 176},
	{0, 188, 212},
	{244, 67, 54},
	{255, 235, 59},
	{121, 85, 72},
}

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
)

// WritePDF renders one layout page (modules as colored rectangles, each
// group's symmetry axis as a dashed line) followed by a summary page with
// bounding-box area, wirelength, per-group axis positions, and a
// traceability QR code encoding the job ID and final cost.
func WritePDF(path string, p *model.Problem, res *model.Result) error {
	if len(p.Order) == 0 {
		return fmt.Errorf("no modules to render")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, p, res)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, p, res); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

func renderLayoutPage(pdf *fpdf.Fpdf, p *model.Problem, res *model.Result) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight,
		fmt.Sprintf("Floorplan (bbox area %d)", res.BBoxArea), "", 0, "L", false, 0, "")

	drawTop := marginTop + headerHeight + 5
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawTop - marginBottom

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

	scaleX := drawWidth / float64(maxX)
	scaleY := drawHeight / float64(maxY)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	offsetX := marginLeft
	offsetY := drawTop

	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.3)
	for i, name := range p.Order {
		m := p.Modules[name]
		col := moduleColors[i%len(moduleColors)]
		px := offsetX + float64(m.X)*scale
		// PDF y grows downward; flip so (0,0) is the bottom-left of the
		// drawing area like the coordinate system the solver works in.
		py := offsetY + drawHeight - float64(m.Y+m.Height())*scale
		pw := float64(m.Width()) * scale
		ph := float64(m.Height()) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(px, py, pw, ph, "FD")
		if pw > 10 && ph > 5 {
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(m.Name)
			pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
			pdf.CellFormat(labelW, 4, m.Name, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetDrawColor(200, 0, 0)
	pdf.SetDashPattern([]float64{2, 1}, 0)
	for _, g := range p.Groups {
		if !g.Locked() {
			continue
		}
		if g.Axis == model.Vertical {
			ax := offsetX + float64(g.Axis2())/2*scale
			pdf.Line(ax, offsetY, ax, offsetY+drawHeight)
		} else {
			ay := offsetY + drawHeight - float64(g.Axis2())/2*scale
			pdf.Line(offsetX, ay, offsetX+drawWidth, ay)
		}
	}
	pdf.SetDashPattern([]float64{}, 0)
}

func renderSummaryPage(pdf *fpdf.Fpdf, p *model.Problem, res *model.Result) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Run Summary", "", 0, "L", false, 0, "")

	y := marginTop + 16
	pdf.SetFont("Helvetica", "", 10)
	rows := []struct{ label, value string }{
		{"Job ID", res.Meta.JobID},
		{"Bounding box area", fmt.Sprintf("%d", res.BBoxArea)},
		{"Wirelength", fmt.Sprintf("%.2f", res.WireLength)},
		{"Cost", fmt.Sprintf("%.2f", res.Cost)},
		{"Timed out", fmt.Sprintf("%v", res.TimedOut)},
		{"Iterations", fmt.Sprintf("%d", res.Iterations)},
	}
	for _, r := range rows {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(60, 6, r.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, r.value, "", 0, "L", false, 0, "")
		y += 7
	}

	y += 6
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Group axis positions", "", 0, "L", false, 0, "")
	y += 8
	pdf.SetFont("Helvetica", "", 9)
	for _, g := range p.Groups {
		pdf.SetXY(marginLeft+5, y)
		axisPos := "unlocked"
		if g.Locked() {
			axisPos = fmt.Sprintf("%.1f", float64(g.Axis2())/2)
		}
		pdf.CellFormat(150, 5, fmt.Sprintf("%s (%s): axis=%s", g.Name, g.Axis, axisPos), "", 0, "L", false, 0, "")
		y += 5
	}

	png, err := qrcode.Encode(fmt.Sprintf("job=%s cost=%.2f", res.Meta.JobID, res.Cost), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating traceability QR code: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr-"+res.Meta.JobID, opts, bytes.NewReader(png))
	pdf.ImageOptions("qr-"+res.Meta.JobID, pageWidth-marginRight-30, pageHeight-marginBottom-30, 30, 30, false, opts, 0, "")

	return nil
}
