package importer

import (
	"path/filepath"
	"testing"

	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seg(a1, r1, a2, r2 float64) chainSegment {
	return chainSegment{
		start: geom.ProfilePoint{Axial: a1, Radial: r1},
		end:   geom.ProfilePoint{Axial: a2, Radial: r2},
	}
}

func TestChainToProfile_OrdersLooseSegments(t *testing.T) {
	// Billet profile drawn as out-of-order LINE entities.
	segs := []chainSegment{
		seg(0, 10, 0, 0),
		seg(50, 0, 50, 10),
		seg(50, 10, 0, 10),
	}
	prof, err := chainToProfile(segs, 0.01)
	require.NoError(t, err)
	require.Equal(t, 3, prof.Len())

	// Walks front face first.
	assert.Equal(t, 50.0, prof.Segments[0].Start.Axial)
	b := prof.Bounds()
	assert.Equal(t, 10.0, b.RadialMax)
	assert.Equal(t, 0.0, b.AxialMin)
}

func TestChainToProfile_ReversedSegmentsStillChain(t *testing.T) {
	segs := []chainSegment{
		seg(50, 10, 50, 0), // reversed front face
		seg(0, 10, 50, 10), // reversed envelope
		seg(0, 0, 0, 10),   // back face
	}
	prof, err := chainToProfile(segs, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 3, prof.Len())
}

func TestChainToProfile_DisconnectedFails(t *testing.T) {
	segs := []chainSegment{
		seg(50, 0, 50, 10),
		seg(20, 10, 0, 10), // 30mm gap to the first chain
	}
	_, err := chainToProfile(segs, 0.01)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnected")
}

func TestChainToProfile_BelowAxisFails(t *testing.T) {
	segs := []chainSegment{
		seg(50, -5, 50, 10),
	}
	_, err := chainToProfile(segs, 0.01)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the turning axis")
}

func TestImportProfileDXF_MissingFile(t *testing.T) {
	result := ImportProfileDXF(filepath.Join(t.TempDir(), "absent.dxf"))
	assert.Nil(t, result.Profile)
	assert.NotEmpty(t, result.Errors)
}

// writeToolWorkbook creates a test workbook with the given rows under a
// standard header.
func writeToolWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{"Name", "Type", "Diameter", "Length", "Width", "Corner Radius", "Capabilities"}
	all := append([][]any{header}, rows...)
	for i, row := range all {
		for j, v := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, v))
		}
	}

	path := filepath.Join(t.TempDir(), "tools.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportToolsXLSX(t *testing.T) {
	path := writeToolWorkbook(t, [][]any{
		{"CNMG 120408", "turning", 12.0, 150.0, "", 0.8, "Facing, ExternalRoughing"},
		{"MGMN 300", "parting", "", 120.0, 3.0, "", "Parting, External Grooving"},
	})

	result := ImportToolsXLSX(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Tools, 2)

	first := result.Tools[0]
	assert.Equal(t, "CNMG 120408", first.Label)
	assert.Equal(t, 12.0, first.Diameter)
	assert.Contains(t, first.Capabilities, toolpath.Facing)
	assert.Contains(t, first.Capabilities, toolpath.ExternalRoughing)

	second := result.Tools[1]
	assert.Equal(t, 3.0, second.Width)
	assert.Contains(t, second.Capabilities, toolpath.Parting)
	assert.Contains(t, second.Capabilities, toolpath.ExternalGrooving)
}

func TestImportToolsXLSX_UnknownCapabilityWarns(t *testing.T) {
	path := writeToolWorkbook(t, [][]any{
		{"Odd Tool", "turning", 10.0, 100.0, "", "", "Facing, LaserEngraving"},
	})

	result := ImportToolsXLSX(path)
	require.Len(t, result.Tools, 1)
	assert.NotEmpty(t, result.Warnings)
	assert.Len(t, result.Tools[0].Capabilities, 1)
}

func TestImportToolsXLSX_NoLabelColumn(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Mystery"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "value"))
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, f.SaveAs(path))
	f.Close()

	result := ImportToolsXLSX(path)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Tools)
}
