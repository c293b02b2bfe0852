package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chickenmcniggels/intuicam/internal/tooldb"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/xuri/excelize/v2"
)

// ToolImportResult holds the outcome of a tool-table import.
type ToolImportResult struct {
	Tools    []tooldb.Tool
	Errors   []string
	Warnings []string
}

// toolHeaderAliases maps canonical column names to accepted aliases (all
// lowercase).
var toolHeaderAliases = map[string][]string{
	"label":         {"label", "name", "tool", "tool name", "description"},
	"kind":          {"kind", "type", "tool type", "category"},
	"diameter":      {"diameter", "dia", "d", "tool diameter"},
	"length":        {"length", "len", "l", "tool length"},
	"width":         {"width", "w", "insert width"},
	"corner_radius": {"corner radius", "corner_radius", "nose radius", "radius", "r"},
	"capabilities":  {"capabilities", "operations", "ops", "capability"},
}

// operationNames maps text labels to operation kinds for the capability
// column.
var operationNames = map[string]toolpath.OperationKind{
	"facing":            toolpath.Facing,
	"externalroughing":  toolpath.ExternalRoughing,
	"internalroughing":  toolpath.InternalRoughing,
	"externalfinishing": toolpath.ExternalFinishing,
	"internalfinishing": toolpath.InternalFinishing,
	"drilling":          toolpath.Drilling,
	"externalgrooving":  toolpath.ExternalGrooving,
	"internalgrooving":  toolpath.InternalGrooving,
	"chamfering":        toolpath.Chamfering,
	"threading":         toolpath.Threading,
	"parting":           toolpath.Parting,
}

// ImportToolsXLSX reads tool records from the first sheet of an Excel
// workbook. The first row is the header; columns are matched
// case-insensitively against the alias table.
func ImportToolsXLSX(path string) ToolImportResult {
	result := ToolImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open workbook: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Workbook has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read sheet %q: %v", sheets[0], err))
		return result
	}
	if len(rows) < 2 {
		result.Errors = append(result.Errors, "Workbook has no data rows")
		return result
	}

	cols := mapToolColumns(rows[0])
	if cols["label"] < 0 {
		result.Errors = append(result.Errors, "No label column found in header row")
		return result
	}

	for i, row := range rows[1:] {
		t, warnings := parseToolRow(row, cols)
		result.Warnings = append(result.Warnings, prefixRow(warnings, i+2)...)
		if t.Label == "" {
			continue
		}
		result.Tools = append(result.Tools, t)
	}
	if len(result.Tools) == 0 {
		result.Errors = append(result.Errors, "No valid tool rows found")
	}
	return result
}

// mapToolColumns matches header cells against the alias table. Unmatched
// roles map to -1.
func mapToolColumns(header []string) map[string]int {
	cols := make(map[string]int, len(toolHeaderAliases))
	for role := range toolHeaderAliases {
		cols[role] = -1
	}
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range toolHeaderAliases {
			if cols[role] >= 0 {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[role] = idx
					break
				}
			}
		}
	}
	return cols
}

func parseToolRow(row []string, cols map[string]int) (tooldb.Tool, []string) {
	var warnings []string
	cell := func(role string) string {
		idx := cols[role]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	num := func(role string) float64 {
		s := cell(role)
		if s == "" {
			return 0
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("unparseable %s %q", role, s))
			return 0
		}
		return v
	}

	t := tooldb.NewTool(cell("label"), tooldb.Kind(strings.ToLower(cell("kind"))), num("diameter"), num("length"))
	t.Width = num("width")
	t.CornerRadius = num("corner_radius")

	if caps := cell("capabilities"); caps != "" {
		for _, part := range strings.Split(caps, ",") {
			key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(part), " ", ""))
			if kind, ok := operationNames[key]; ok {
				t.Capabilities = append(t.Capabilities, kind)
			} else if key != "" {
				warnings = append(warnings, fmt.Sprintf("unknown capability %q", part))
			}
		}
	}
	return t, warnings
}

func prefixRow(warnings []string, rowNum int) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = fmt.Sprintf("row %d: %s", rowNum, w)
	}
	return out
}
