package export

import (
	"fmt"

	"github.com/chickenmcniggels/intuicam/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

// workbookHeader is the column layout of the operations sheet.
var workbookHeader = []string{
	"Order", "Operation", "Name", "Tool", "Movements", "Cut Length (mm)",
}

// ExportWorkbook writes the pipeline timeline to an Excel workbook, one
// row per toolpath in execution order.
func ExportWorkbook(path string, result pipeline.Result) error {
	if len(result.Timeline) == 0 {
		return fmt.Errorf("no toolpaths to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Operations"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, name := range workbookHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, tp := range result.Timeline {
		tool := tp.Tool.Label
		if tool == "" {
			tool = tp.Tool.ID
		}
		values := []any{
			i + 1,
			tp.Operation.String(),
			tp.Name,
			tool,
			len(tp.Movements),
			tp.CutLength(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
