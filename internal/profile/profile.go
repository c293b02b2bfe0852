// Package profile reduces a turned solid to an ordered 2D profile in the
// lathe plane. The profile is the polyline that generates the finished part
// when revolved about the turning axis.
package profile

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
)

// Segment is one piece of a profile. Segments are ordered along the profile
// such that each segment's End coincides with the next segment's Start.
type Segment struct {
	Start  geom.ProfilePoint `json:"start"`
	End    geom.ProfilePoint `json:"end"`
	Linear bool              `json:"linear"`
	Length float64           `json:"length"`
}

// NewSegment builds a segment between two points with its length filled in.
func NewSegment(start, end geom.ProfilePoint) Segment {
	return Segment{Start: start, End: end, Linear: true, Length: start.DistanceTo(end)}
}

// Bounds holds the exact extrema of a profile's segment endpoints.
type Bounds struct {
	AxialMin  float64 `json:"axial_min"`
	AxialMax  float64 `json:"axial_max"`
	RadialMin float64 `json:"radial_min"`
	RadialMax float64 `json:"radial_max"`
}

// Profile is an ordered, connected sequence of segments in the lathe plane.
// Radial values are non-negative.
type Profile struct {
	Segments []Segment `json:"segments"`
	bounds   Bounds
}

// New builds a profile from ordered segments and caches its bounds.
func New(segments []Segment) *Profile {
	p := &Profile{Segments: segments}
	p.recomputeBounds()
	return p
}

// IsEmpty reports whether the profile has no segments.
func (p *Profile) IsEmpty() bool {
	return p == nil || len(p.Segments) == 0
}

// Len returns the number of segments.
func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Segments)
}

// Bounds returns the exact segment-endpoint extrema.
func (p *Profile) Bounds() Bounds {
	return p.bounds
}

// TotalLength returns the summed length of all segments.
func (p *Profile) TotalLength() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Length
	}
	return total
}

// RadiusAt returns the largest profile radius at the given axial position.
// Segments that do not span the position are ignored; ok is false when no
// segment covers it.
func (p *Profile) RadiusAt(axial float64) (radius float64, ok bool) {
	for _, s := range p.Segments {
		lo, hi := s.Start.Axial, s.End.Axial
		if lo > hi {
			lo, hi = hi, lo
		}
		if axial < lo || axial > hi {
			continue
		}
		var r float64
		if hi-lo < 1e-9 {
			r = math.Max(s.Start.Radial, s.End.Radial)
		} else {
			t := (axial - s.Start.Axial) / (s.End.Axial - s.Start.Axial)
			r = s.Start.Radial + t*(s.End.Radial-s.Start.Radial)
		}
		if !ok || r > radius {
			radius = r
			ok = true
		}
	}
	return radius, ok
}

func (p *Profile) recomputeBounds() {
	if len(p.Segments) == 0 {
		p.bounds = Bounds{}
		return
	}
	first := p.Segments[0].Start
	b := Bounds{
		AxialMin:  first.Axial,
		AxialMax:  first.Axial,
		RadialMin: first.Radial,
		RadialMax: first.Radial,
	}
	extend := func(pt geom.ProfilePoint) {
		b.AxialMin = math.Min(b.AxialMin, pt.Axial)
		b.AxialMax = math.Max(b.AxialMax, pt.Axial)
		b.RadialMin = math.Min(b.RadialMin, pt.Radial)
		b.RadialMax = math.Max(b.RadialMax, pt.Radial)
	}
	for _, s := range p.Segments {
		extend(s.Start)
		extend(s.End)
	}
	p.bounds = b
}
