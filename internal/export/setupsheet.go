// Package export renders pipeline results into operator-facing documents:
// setup sheet PDFs, operation summary workbooks, and QR tool labels.
package export

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/intuicam/internal/display"
	"github.com/chickenmcniggels/intuicam/internal/pipeline"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/go-pdf/fpdf"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportSetupSheet generates a PDF setup sheet for a pipeline result. Each
// toolpath gets its own page with the tool, movement statistics, and a 2D
// plot of the lathe-plane path, followed by a summary page.
func ExportSetupSheet(path string, result pipeline.Result) error {
	if len(result.Timeline) == 0 {
		return fmt.Errorf("no toolpaths to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, tp := range result.Timeline {
		pdf.AddPage()
		renderToolpathPage(pdf, tp, i+1, len(result.Timeline))
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

func renderToolpathPage(pdf *fpdf.Fpdf, tp *toolpath.Toolpath, idx, total int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(0, headerHeight, fmt.Sprintf("Operation %d/%d: %s", idx, total, tp.Name),
		"", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	tool := tp.Tool.Label
	if tool == "" {
		tool = tp.Tool.ID
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Kind: %s   Tool: %s   Movements: %d   Cut length: %.1f mm",
		tp.Operation, tool, len(tp.Movements), tp.CutLength()),
		"", 0, "L", false, 0, "")

	renderPathPlot(pdf, tp)
}

// renderPathPlot draws the toolpath in the lathe plane: axial along the
// page X axis, radial along Y, scaled to fit the drawing area. Rapids are
// drawn dashed grey, cuts in the operation colour.
func renderPathPlot(pdf *fpdf.Fpdf, tp *toolpath.Toolpath) {
	if len(tp.Movements) < 2 {
		return
	}

	minA, maxA := math.Inf(1), math.Inf(-1)
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, m := range tp.Movements {
		minA = math.Min(minA, m.Position.Axial)
		maxA = math.Max(maxA, m.Position.Axial)
		minR = math.Min(minR, m.Position.Radial)
		maxR = math.Max(maxR, m.Position.Radial)
	}
	spanA := math.Max(maxA-minA, 1e-6)
	spanR := math.Max(maxR-minR, 1e-6)

	areaW := pageWidth - marginLeft - marginRight
	areaH := pageHeight - drawAreaTop - marginBottom
	scale := math.Min(areaW/spanA, areaH/spanR)

	toPage := func(axial, radial float64) (float64, float64) {
		// Radial grows upward on the sheet; fpdf Y grows downward.
		x := marginLeft + (axial-minA)*scale
		y := pageHeight - marginBottom - (radial-minR)*scale
		return x, y
	}

	c := display.OperationColor(tp.Operation)
	prevX, prevY := toPage(tp.Movements[0].Position.Axial, tp.Movements[0].Position.Radial)
	for _, m := range tp.Movements[1:] {
		x, y := toPage(m.Position.Axial, m.Position.Radial)
		if m.Kind == toolpath.Rapid {
			pdf.SetDrawColor(160, 160, 160)
			pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
		} else {
			pdf.SetDrawColor(int(c.R*255), int(c.G*255), int(c.B*255))
			pdf.SetDashPattern([]float64{}, 0)
		}
		pdf.Line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	pdf.SetDashPattern([]float64{}, 0)
}

func renderSummaryPage(pdf *fpdf.Fpdf, result pipeline.Result) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(0, headerHeight, "Job Summary", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	y := drawAreaTop
	var totalCut float64
	var totalMoves int
	for _, tp := range result.Timeline {
		totalCut += tp.CutLength()
		totalMoves += len(tp.Movements)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(0, 6, fmt.Sprintf("%-22s %-20s %5d movements  %8.1f mm cut",
			tp.Operation, tp.Name, len(tp.Movements), tp.CutLength()),
			"", 0, "L", false, 0, "")
		y += 6
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d toolpaths, %d movements, %.1f mm cut, generated in %s",
		len(result.Timeline), totalMoves, totalCut, result.Duration),
		"", 0, "L", false, 0, "")
}
