package profile

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
)

// Polyline is an open chain of points in the lathe plane, as produced by
// sectioning a solid with the half-plane through the turning axis.
type Polyline []geom.ProfilePoint

// CylindricalFace describes one cylindrical face of a solid, in lathe
// coordinates relative to the turning axis.
type CylindricalFace struct {
	Radius   float64 `json:"radius"`
	AxialMin float64 `json:"axial_min"`
	AxialMax float64 `json:"axial_max"`
	Internal bool    `json:"internal"`
}

// Solid is the query surface the pipeline needs from a part shape. The
// concrete type wraps whatever boundary-representation kernel is available;
// RevolvedSolid is the in-tree reference implementation.
type Solid interface {
	// Bounds returns the axis-aligned bounding box in the solid's frame.
	Bounds() geom.BoundingBox

	// CylindricalFaces enumerates the cylindrical faces of the solid.
	CylindricalFaces() []CylindricalFace

	// CrossSection intersects the solid's boundary with the half-plane
	// containing the axis and returns the resulting curves, linearised to
	// chords in the lathe plane. The curves carry no ordering guarantee.
	CrossSection(axis geom.Axis) ([]Polyline, error)
}

// RevolvedSolid is a solid of revolution generated by a half-profile swept
// about the turning axis. It serves as the reference Solid for tests and as
// the template for wrapping a real kernel.
type RevolvedSolid struct {
	outline Polyline
	bores   []CylindricalFace
	shuffle bool
}

// NewRevolvedSolid builds a revolved solid from an ordered half-profile.
// The outline is given front-face first (descending axial), radial >= 0.
func NewRevolvedSolid(outline Polyline) *RevolvedSolid {
	return &RevolvedSolid{outline: outline}
}

// AddBore registers an internal cylindrical feature (a hole drilled along
// the axis from the front face) so that feature detection can confirm it.
func (s *RevolvedSolid) AddBore(diameter, depth float64) {
	b := s.axialBounds()
	s.bores = append(s.bores, CylindricalFace{
		Radius:   diameter / 2,
		AxialMin: b.AxialMax - depth,
		AxialMax: b.AxialMax,
		Internal: true,
	})
}

// ScrambleSection makes CrossSection return its edges in a rotated order,
// exercising the extractor's stitching.
func (s *RevolvedSolid) ScrambleSection() {
	s.shuffle = true
}

// Bounds returns the bounding box of the revolved body.
func (s *RevolvedSolid) Bounds() geom.BoundingBox {
	ab := s.axialBounds()
	return geom.BoundingBox{
		Min: geom.Point3D{X: -ab.RadialMax, Y: -ab.RadialMax, Z: ab.AxialMin},
		Max: geom.Point3D{X: ab.RadialMax, Y: ab.RadialMax, Z: ab.AxialMax},
	}
}

// CylindricalFaces derives the external constant-radius faces from the
// outline and appends any registered bores.
func (s *RevolvedSolid) CylindricalFaces() []CylindricalFace {
	var faces []CylindricalFace
	for i := 0; i+1 < len(s.outline); i++ {
		a, b := s.outline[i], s.outline[i+1]
		if math.Abs(a.Radial-b.Radial) > 1e-9 || a.Radial < 1e-9 {
			continue
		}
		lo, hi := a.Axial, b.Axial
		if lo > hi {
			lo, hi = hi, lo
		}
		faces = append(faces, CylindricalFace{
			Radius:   a.Radial,
			AxialMin: lo,
			AxialMax: hi,
			Internal: false,
		})
	}
	return append(faces, s.bores...)
}

// CrossSection returns the outline's edges as individual polylines. Bores
// surface through CylindricalFaces only; an outline that should show a bore
// contour carries it explicitly. The edges come in outline order unless
// ScrambleSection was called, which rotates the order so it no longer
// matches the profile order.
func (s *RevolvedSolid) CrossSection(axis geom.Axis) ([]Polyline, error) {
	if len(s.outline) < 2 {
		return nil, nil
	}
	var curves []Polyline
	for i := 0; i+1 < len(s.outline); i++ {
		curves = append(curves, Polyline{s.outline[i], s.outline[i+1]})
	}
	if s.shuffle && len(curves) > 2 {
		mid := len(curves) / 2
		rotated := make([]Polyline, 0, len(curves))
		rotated = append(rotated, curves[mid:]...)
		rotated = append(rotated, curves[:mid]...)
		curves = rotated
	}
	return curves, nil
}

func (s *RevolvedSolid) axialBounds() Bounds {
	b := Bounds{}
	for i, p := range s.outline {
		if i == 0 {
			b = Bounds{AxialMin: p.Axial, AxialMax: p.Axial, RadialMin: p.Radial, RadialMax: p.Radial}
			continue
		}
		b.AxialMin = math.Min(b.AxialMin, p.Axial)
		b.AxialMax = math.Max(b.AxialMax, p.Axial)
		b.RadialMin = math.Min(b.RadialMin, p.Radial)
		b.RadialMax = math.Max(b.RadialMax, p.Radial)
	}
	return b
}
