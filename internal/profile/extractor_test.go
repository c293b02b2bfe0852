package profile

import (
	"math"
	"testing"

	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zAxis() geom.Axis {
	return geom.Axis{Direction: geom.Vector3D{Z: 1}}
}

// cylinderOutline is a plain billet profile: front face, outer envelope,
// back face. Diameter 20, length 50.
func cylinderOutline() Polyline {
	return Polyline{
		{Axial: 50, Radial: 0},
		{Axial: 50, Radial: 10},
		{Axial: 0, Radial: 10},
		{Axial: 0, Radial: 0},
	}
}

// steppedOutline has two diameters with a step at z=20.
func steppedOutline() Polyline {
	return Polyline{
		{Axial: 40, Radial: 0},
		{Axial: 40, Radial: 8},
		{Axial: 20, Radial: 8},
		{Axial: 20, Radial: 12},
		{Axial: 0, Radial: 12},
		{Axial: 0, Radial: 0},
	}
}

func TestExtract_Cylinder(t *testing.T) {
	solid := NewRevolvedSolid(cylinderOutline())
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)
	require.False(t, prof.IsEmpty())

	b := prof.Bounds()
	assert.Equal(t, 0.0, b.AxialMin)
	assert.Equal(t, 50.0, b.AxialMax)
	assert.Equal(t, 0.0, b.RadialMin)
	assert.Equal(t, 10.0, b.RadialMax)
}

func TestExtract_BoundsAreExactEndpointExtrema(t *testing.T) {
	solid := NewRevolvedSolid(steppedOutline())
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)

	// Recompute extrema from the segments and demand exact equality.
	minA, maxA := math.Inf(1), math.Inf(-1)
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, s := range prof.Segments {
		for _, p := range []geom.ProfilePoint{s.Start, s.End} {
			minA = math.Min(minA, p.Axial)
			maxA = math.Max(maxA, p.Axial)
			minR = math.Min(minR, p.Radial)
			maxR = math.Max(maxR, p.Radial)
		}
	}
	b := prof.Bounds()
	assert.Equal(t, minA, b.AxialMin)
	assert.Equal(t, maxA, b.AxialMax)
	assert.Equal(t, minR, b.RadialMin)
	assert.Equal(t, maxR, b.RadialMax)
}

func TestExtract_Connectivity(t *testing.T) {
	solid := NewRevolvedSolid(steppedOutline())
	params := DefaultExtractionParams()
	prof, err := Extract(solid, zAxis(), params)
	require.NoError(t, err)

	for i := 0; i+1 < len(prof.Segments); i++ {
		dist := prof.Segments[i].End.DistanceTo(prof.Segments[i+1].Start)
		assert.LessOrEqual(t, dist, params.Tolerance,
			"segments %d and %d should connect", i, i+1)
	}
}

func TestExtract_RadialNonNegative(t *testing.T) {
	solid := NewRevolvedSolid(steppedOutline())
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)

	for i, s := range prof.Segments {
		assert.GreaterOrEqual(t, s.Start.Radial, 0.0, "segment %d start", i)
		assert.GreaterOrEqual(t, s.End.Radial, 0.0, "segment %d end", i)
	}
}

func TestExtract_StitchesScrambledSection(t *testing.T) {
	solid := NewRevolvedSolid(steppedOutline())
	solid.ScrambleSection()

	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)
	assert.Equal(t, 5, prof.Len())

	// Ordering walks front face first regardless of input order.
	assert.Equal(t, 40.0, prof.Segments[0].Start.Axial)
}

func TestExtract_MergesShortSegments(t *testing.T) {
	outline := Polyline{
		{Axial: 50, Radial: 0},
		{Axial: 50, Radial: 10},
		{Axial: 49.9995, Radial: 10}, // 0.5 um sliver
		{Axial: 0, Radial: 10},
		{Axial: 0, Radial: 0},
	}
	solid := NewRevolvedSolid(outline)
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)

	// The sliver merges into its successor: 3 segments remain and the
	// merged segment starts where the dropped one started.
	require.Equal(t, 3, prof.Len())
	assert.Equal(t, 50.0, prof.Segments[1].Start.Axial)
	assert.Equal(t, 0.0, prof.Segments[1].End.Axial)
}

func TestExtract_EmptySolidFails(t *testing.T) {
	solid := NewRevolvedSolid(nil)
	_, err := Extract(solid, zAxis(), DefaultExtractionParams())
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
}

// disconnectedSolid returns two section islands that cannot be stitched.
type disconnectedSolid struct{}

func (disconnectedSolid) Bounds() geom.BoundingBox            { return geom.BoundingBox{} }
func (disconnectedSolid) CylindricalFaces() []CylindricalFace { return nil }
func (disconnectedSolid) CrossSection(geom.Axis) ([]Polyline, error) {
	return []Polyline{
		{{Axial: 50, Radial: 0}, {Axial: 50, Radial: 10}, {Axial: 30, Radial: 10}},
		{{Axial: 20, Radial: 10}, {Axial: 0, Radial: 10}, {Axial: 0, Radial: 0}},
	}, nil
}

func TestExtract_DisconnectedSectionFails(t *testing.T) {
	_, err := Extract(disconnectedSolid{}, zAxis(), DefaultExtractionParams())
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, extErr.Reason, "disconnected")
}

func TestExtract_NegativeRadialFails(t *testing.T) {
	outline := Polyline{
		{Axial: 50, Radial: -2},
		{Axial: 50, Radial: 10},
		{Axial: 0, Radial: 10},
	}
	solid := NewRevolvedSolid(outline)
	_, err := Extract(solid, zAxis(), DefaultExtractionParams())
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
}

func TestProfile_RadiusAt(t *testing.T) {
	solid := NewRevolvedSolid(steppedOutline())
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)

	r, ok := prof.RadiusAt(30)
	require.True(t, ok)
	assert.InDelta(t, 8.0, r, 1e-9)

	r, ok = prof.RadiusAt(10)
	require.True(t, ok)
	assert.InDelta(t, 12.0, r, 1e-9)

	_, ok = prof.RadiusAt(100)
	assert.False(t, ok)
}

func TestProfile_TotalLength(t *testing.T) {
	solid := NewRevolvedSolid(cylinderOutline())
	prof, err := Extract(solid, zAxis(), DefaultExtractionParams())
	require.NoError(t, err)
	// face 10 + envelope 50 + back face 10
	assert.InDelta(t, 70.0, prof.TotalLength(), 1e-9)
}
