package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chickenmcniggels/intuicam/internal/tooldb"
	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ToolLabelInfo is the data encoded into each tool label's QR code.
type ToolLabelInfo struct {
	ToolID       string  `json:"id"`
	Label        string  `json:"label"`
	Kind         string  `json:"kind"`
	Diameter     float64 `json:"diameter_mm"`
	Length       float64 `json:"length_mm"`
	CornerRadius float64 `json:"corner_radius_mm"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page) on US Letter paper.
const (
	labelPageWidth  = 215.9
	labelPageHeight = 279.4
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportToolLabels generates a PDF of QR-coded labels for the given tools
// so operators can scan tool IDs at the machine. Each label carries the
// tool name, key dimensions, and a QR code encoding the record as JSON.
func ExportToolLabels(path string, tools []tooldb.Tool) error {
	if len(tools) == 0 {
		return fmt.Errorf("no tools to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, t := range tools {
		slot := i % labelsPerPage
		if slot == 0 {
			pdf.AddPage()
		}
		col := slot % labelCols
		row := slot / labelCols
		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderToolLabel(pdf, t, x, y, i); err != nil {
			return err
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderToolLabel(pdf *fpdf.Fpdf, t tooldb.Tool, x, y float64, idx int) error {
	info := ToolLabelInfo{
		ToolID:       t.ID,
		Label:        t.Label,
		Kind:         string(t.Kind),
		Diameter:     t.Diameter,
		Length:       t.Length,
		CornerRadius: t.CornerRadius,
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("QR encode for tool %q: %w", t.Label, err)
	}

	imgName := fmt.Sprintf("qr-%d", idx)
	pdf.RegisterImageOptionsReader(imgName,
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelPadding, y+(labelHeight-qrSize)/2,
		qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding + qrSize + labelPadding
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(textX, y+labelPadding+2)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 4, t.Label, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+7)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5,
		fmt.Sprintf("%s  D%.1f  L%.1f", t.Kind, t.Diameter, t.Length), "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+11)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5, t.ID, "", 0, "L", false, 0, "")
	return nil
}
