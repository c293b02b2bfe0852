package pipeline

import (
	"math"
	"testing"

	"github.com/chickenmcniggels/intuicam/internal/features"
	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/profile"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zAxis() geom.Axis {
	return geom.Axis{Direction: geom.Vector3D{Z: 1}}
}

// billetSolid is a plain 20mm diameter, 50mm long cylinder.
func billetSolid() *profile.RevolvedSolid {
	return profile.NewRevolvedSolid(profile.Polyline{
		{Axial: 50, Radial: 0},
		{Axial: 50, Radial: 10},
		{Axial: 0, Radial: 10},
		{Axial: 0, Radial: 0},
	})
}

func billetProfile(t *testing.T) *profile.Profile {
	t.Helper()
	prof, err := profile.Extract(billetSolid(), zAxis(), profile.DefaultExtractionParams())
	require.NoError(t, err)
	return prof
}

// billetInputs returns inputs for the billet with every operation off.
func billetInputs(t *testing.T) Inputs {
	in := DefaultInputs()
	in.Axis = zAxis()
	in.Profile = billetProfile(t)
	in.RawMaterialDiameter = 21
	in.RawMaterialLength = 60
	in.Z0 = 60
	in.PartLength = 50

	tool := toolpath.ToolRef{ID: "t1", Label: "Test Insert", Diameter: 12, Width: 3}
	in.FacingTool = tool
	in.DrillingTool = tool
	in.InternalRoughingTool = tool
	in.InternalFinishingTool = tool
	in.InternalGroovingTool = tool
	in.ExternalRoughingTool = tool
	in.ExternalFinishingTool = tool
	in.ExternalGroovingTool = tool
	in.ChamferingTool = tool
	in.ThreadingTool = tool
	in.PartingTool = tool
	return in
}

func kinds(timeline []*toolpath.Toolpath) []toolpath.OperationKind {
	var out []toolpath.OperationKind
	for _, tp := range timeline {
		out = append(out, tp.Operation)
	}
	return out
}

func firstIndex(timeline []*toolpath.Toolpath, kind toolpath.OperationKind) int {
	for i, tp := range timeline {
		if tp.Operation == kind {
			return i
		}
	}
	return -1
}

func TestExecute_FacingOnlyBillet(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true

	result := New().Execute(in)
	require.True(t, result.Success, "pipeline failed: %s", result.ErrorMessage)
	require.Len(t, result.Timeline, 1)

	tp := result.Timeline[0]
	assert.Equal(t, toolpath.Facing, tp.Operation)

	// Facing covers Z from 51 down to 49: 4 passes plus the final pass.
	var cutZs []float64
	for _, m := range tp.Movements {
		if m.Kind == toolpath.Linear && m.Position.Radial == 0 {
			cutZs = append(cutZs, m.Position.Axial)
		}
	}
	require.Len(t, cutZs, 5)
	assert.InDelta(t, 51.0, cutZs[0], 1e-9)
	assert.InDelta(t, 49.0, cutZs[len(cutZs)-1], 1e-9)

	for _, m := range tp.Movements {
		assert.Equal(t, toolpath.Facing, m.Operation)
	}
}

func TestExecute_RoughingThenFinishing(t *testing.T) {
	in := billetInputs(t)
	in.ExternalRoughing = true
	in.ExternalFinishing = true
	in.RoughingAllowance = 0.5
	in.FinishingAllowance = 0.05
	in.ExternalFinishingPasses = 1

	result := New().Execute(in)
	require.True(t, result.Success, "pipeline failed: %s", result.ErrorMessage)

	ri := firstIndex(result.Timeline, toolpath.ExternalRoughing)
	fi := firstIndex(result.Timeline, toolpath.ExternalFinishing)
	require.GreaterOrEqual(t, ri, 0, "no roughing toolpath")
	require.GreaterOrEqual(t, fi, 0, "no finishing toolpath")
	assert.Less(t, ri, fi, "roughing must come before finishing")

	minCut := func(tp *toolpath.Toolpath) float64 {
		min := math.Inf(1)
		for _, m := range tp.Movements {
			if m.Kind != toolpath.Rapid {
				min = math.Min(min, m.Position.Radial)
			}
		}
		return min
	}
	assert.InDelta(t, 10.5, minCut(result.Timeline[ri]), 1e-9)
	assert.InDelta(t, 10.05, minCut(result.Timeline[fi]), 1e-9)
}

func TestExecute_CanonicalOrder(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.Drilling = true
	in.MachineInternalFeatures = true
	in.DrillFeatures = []features.Feature{
		{Kind: features.Hole, Axial: 50, Radial: 3, Depth: 20, Diameter: 6, Internal: true},
	}
	in.ExternalRoughing = true
	in.ExternalFinishing = true
	in.Parting = true

	result := New().Execute(in)
	require.True(t, result.Success, "pipeline failed: %s", result.ErrorMessage)

	ks := kinds(result.Timeline)
	require.NotEmpty(t, ks)

	assert.Less(t, firstIndex(result.Timeline, toolpath.Facing),
		firstIndex(result.Timeline, toolpath.Drilling),
		"facing before drilling")

	// Parting is strictly last.
	assert.Equal(t, toolpath.Parting, ks[len(ks)-1])
	for i, k := range ks[:len(ks)-1] {
		assert.NotEqual(t, toolpath.Parting, k, "parting toolpath at index %d", i)
	}
}

func TestExecute_OperationKindStamping(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.ExternalRoughing = true
	in.ExternalFinishing = true
	in.Parting = true

	result := New().Execute(in)
	require.True(t, result.Success)

	for _, tp := range result.Timeline {
		for i, m := range tp.Movements {
			assert.Equal(t, tp.Operation, m.Operation,
				"toolpath %s movement %d", tp.Name, i)
		}
	}
}

func TestExecute_PartingPosition(t *testing.T) {
	in := billetInputs(t)
	in.Parting = true
	in.PartingAllowance = 3

	result := New().Execute(in)
	require.True(t, result.Success)
	require.Len(t, result.Timeline, 1)

	tp := result.Timeline[0]
	assert.Equal(t, toolpath.Parting, tp.Operation)

	first := tp.Movements[0]
	assert.Equal(t, toolpath.Rapid, first.Kind, "parting must open with a rapid")
	assert.InDelta(t, 60.0-50.0-3.0, first.Position.Axial, 1e-9)
}

func TestExecute_CancelMidRun(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.ExternalRoughing = true
	in.ExternalFinishing = true
	in.Parting = true

	p := New()
	// Cancel as soon as the first operation has been dispatched.
	in.Progress = func(fraction float64, status string) {
		if fraction >= 0.1 {
			p.Cancel()
		}
	}

	result := p.Execute(in)
	require.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindCancelled, result.Err.Kind)

	// The cancelled run discards its partial timeline.
	assert.Empty(t, result.Timeline)
}

func TestExecute_CancelBeforeRunIsPrompt(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.Parting = true

	p := New()
	p.Cancel()
	result := p.Execute(in)
	require.False(t, result.Success)
	assert.Equal(t, KindCancelled, result.Err.Kind)
	assert.Empty(t, result.Timeline)

	// After Reset the same pipeline runs to completion.
	p.Reset()
	result = p.Execute(in)
	assert.True(t, result.Success)
}

func TestExecute_ProgressMonotone(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.ExternalRoughing = true
	in.ExternalFinishing = true
	in.Parting = true

	var fractions []float64
	in.Progress = func(fraction float64, status string) {
		fractions = append(fractions, fraction)
	}

	result := New().Execute(in)
	require.True(t, result.Success)
	require.NotEmpty(t, fractions)

	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestExecute_MissingStockFails(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	in.RawMaterialDiameter = 0

	result := New().Execute(in)
	require.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindMissingInput, result.Err.Kind)
	assert.Equal(t, "raw_material_diameter", result.Err.Field)
}

func TestExecute_InvalidOperationStopsRun(t *testing.T) {
	in := billetInputs(t)
	in.Facing = true
	// A negative allowance puts the facing end above its start, which the
	// planner must reject without emitting movements.
	in.FacingAllowance = -1
	in.Profile = nil
	in.Z0 = 50

	result := New().Execute(in)
	require.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindOperationInvalid, result.Err.Kind)
}

func TestExtractInputsFromPart_Defaults(t *testing.T) {
	in, err := ExtractInputsFromPart(billetSolid(), zAxis())
	require.Nil(t, err)
	require.False(t, in.Profile.IsEmpty())

	// Raw diameter 2.1 x max radius; length 1.2 x extent; z0 = raw length.
	assert.InDelta(t, 21.0, in.RawMaterialDiameter, 1e-9)
	assert.InDelta(t, 60.0, in.RawMaterialLength, 1e-9)
	assert.InDelta(t, in.RawMaterialLength, in.Z0, 1e-9)
	assert.InDelta(t, 50.0, in.PartLength, 1e-9)
}

func TestExtractInputsFromPart_DetectsBore(t *testing.T) {
	// A billet with a 6mm bore, 20mm deep, from the front face. The bore
	// contour appears in the profile and the registered bore face confirms
	// the candidate.
	solid := profile.NewRevolvedSolid(profile.Polyline{
		{Axial: 30, Radial: 0},
		{Axial: 30, Radial: 3},
		{Axial: 50, Radial: 3},
		{Axial: 50, Radial: 10},
		{Axial: 0, Radial: 10},
		{Axial: 0, Radial: 0},
	})
	solid.AddBore(6, 20)

	in, err := ExtractInputsFromPart(solid, zAxis())
	require.Nil(t, err)
	require.Len(t, in.DrillFeatures, 1)
	assert.InDelta(t, 6.0, in.DrillFeatures[0].Diameter, 1e-9)
	assert.True(t, in.DrillFeatures[0].Internal)
	assert.True(t, in.MachineInternalFeatures)
}

func TestExtractInputsFromPart_NoThreadsDetected(t *testing.T) {
	in, err := ExtractInputsFromPart(billetSolid(), zAxis())
	require.Nil(t, err)
	assert.Empty(t, in.ThreadFeatures, "threads are never auto-detected")
}
