// Package features identifies machinable features on an extracted lathe
// profile, confirmed against the 3D shape where possible. The detector is
// deliberately conservative: when in doubt it omits, and the caller can
// supply additional features manually. Threads are never detected here;
// thread features always come from user face selection.
package features

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/profile"
)

// Kind classifies a detected feature.
type Kind int

const (
	Hole Kind = iota
	Groove
	Chamfer
	Thread
)

func (k Kind) String() string {
	switch k {
	case Hole:
		return "Hole"
	case Groove:
		return "Groove"
	case Chamfer:
		return "Chamfer"
	case Thread:
		return "Thread"
	default:
		return "Unknown"
	}
}

// Feature is one detected machinable feature in lathe coordinates.
type Feature struct {
	Kind     Kind               `json:"kind"`
	Axial    float64            `json:"axial"`
	Radial   float64            `json:"radial"`
	Depth    float64            `json:"depth"`
	Diameter float64            `json:"diameter"`
	Internal bool               `json:"internal"`
	Extra    map[string]float64 `json:"extra,omitempty"`
}

// Detection thresholds. A candidate hole is a profile excursion at small
// radius with meaningful axial extent; a chamfer is a short slanted segment
// near 45 degrees between two axial segments.
const (
	holeMaxRadius     = 5.0  // mm
	holeMinLength     = 0.5  // mm
	chamferMaxLength  = 3.0  // mm
	chamferSlopeBand  = 15.0 // degrees either side of 45
	grooveMinDepth    = 0.3  // mm
	dedupTolerance    = 0.01 // mm, matches profile extraction tolerance
	axialSegmentSlope = 5.0  // degrees; flatter than this counts as axial
)

// Detect analyses the profile and the solid and returns the features found.
// Profile evidence proposes candidates; cylindrical faces from the solid
// confirm holes and refine their diameters.
func Detect(p *profile.Profile, solid profile.Solid) []Feature {
	if p.IsEmpty() {
		return nil
	}

	var found []Feature
	found = append(found, detectHoles(p)...)
	found = append(found, detectGrooves(p)...)
	found = append(found, detectChamfers(p)...)

	if solid != nil {
		found = confirmHoles(found, solid.CylindricalFaces())
	}
	return dedupe(found)
}

// detectHoles looks for concave excursions at small radius interior to the
// profile: axial segments whose radius is small compared to the envelope.
func detectHoles(p *profile.Profile) []Feature {
	b := p.Bounds()
	var holes []Feature
	for _, s := range p.Segments {
		r := s.Start.Radial
		if !isAxial(s) || r <= 0 || r >= holeMaxRadius || s.Length <= holeMinLength {
			continue
		}
		// Interior means well below the outer envelope.
		if r > b.RadialMax*0.5 {
			continue
		}
		holes = append(holes, Feature{
			Kind:     Hole,
			Axial:    math.Max(s.Start.Axial, s.End.Axial),
			Radial:   r,
			Depth:    s.Length,
			Diameter: r * 2,
			Internal: true,
		})
	}
	return holes
}

// detectGrooves looks for narrow reversal pairs: the radius drops from the
// envelope and recovers within a short axial window.
func detectGrooves(p *profile.Profile) []Feature {
	segs := p.Segments
	b := p.Bounds()
	var grooves []Feature
	for i := 0; i+2 < len(segs); i++ {
		down, floor, up := segs[i], segs[i+1], segs[i+2]
		if !isRadial(down) || !isAxial(floor) || !isRadial(up) {
			continue
		}
		depth := down.Start.Radial - down.End.Radial
		recovery := up.End.Radial - up.Start.Radial
		if depth < grooveMinDepth || recovery < grooveMinDepth {
			continue
		}
		floorRadius := floor.Start.Radial
		internal := floorRadius < b.RadialMax*0.5
		grooves = append(grooves, Feature{
			Kind:     Groove,
			Axial:    (floor.Start.Axial + floor.End.Axial) / 2,
			Radial:   down.Start.Radial,
			Depth:    math.Min(depth, recovery),
			Diameter: down.Start.Radial * 2,
			Internal: internal,
			Extra:    map[string]float64{"width": floor.Length},
		})
	}
	return grooves
}

// detectChamfers looks for short slanted segments with slope near 45
// degrees joining two axial segments.
func detectChamfers(p *profile.Profile) []Feature {
	segs := p.Segments
	var chamfers []Feature
	for i := 1; i+1 < len(segs); i++ {
		s := segs[i]
		if s.Length > chamferMaxLength || !isAxial(segs[i-1]) || !isAxial(segs[i+1]) {
			continue
		}
		slope := slopeDegrees(s)
		if math.Abs(slope-45) > chamferSlopeBand {
			continue
		}
		size := math.Abs(s.End.Radial - s.Start.Radial)
		chamfers = append(chamfers, Feature{
			Kind:     Chamfer,
			Axial:    (s.Start.Axial + s.End.Axial) / 2,
			Radial:   math.Max(s.Start.Radial, s.End.Radial),
			Depth:    size,
			Diameter: math.Max(s.Start.Radial, s.End.Radial) * 2,
			Internal: false,
			Extra:    map[string]float64{"angle": slope},
		})
	}
	return chamfers
}

// confirmHoles keeps hole candidates only when a matching internal
// cylindrical face exists, and refines the diameter from the face radius.
// Non-hole features pass through untouched.
func confirmHoles(found []Feature, faces []profile.CylindricalFace) []Feature {
	var out []Feature
	for _, f := range found {
		if f.Kind != Hole {
			out = append(out, f)
			continue
		}
		matched := false
		for _, face := range faces {
			if !face.Internal {
				continue
			}
			if math.Abs(face.Radius-f.Radial) <= 0.5 {
				f.Diameter = face.Radius * 2
				f.Radial = face.Radius
				f.Depth = math.Max(f.Depth, face.AxialMax-face.AxialMin)
				matched = true
				break
			}
		}
		if matched {
			out = append(out, f)
		}
	}
	return out
}

// dedupe removes features that agree on kind and position within the
// profile tolerance. The first occurrence wins.
func dedupe(found []Feature) []Feature {
	var out []Feature
	for _, f := range found {
		dup := false
		for _, kept := range out {
			if kept.Kind == f.Kind &&
				math.Abs(kept.Axial-f.Axial) <= dedupTolerance &&
				math.Abs(kept.Radial-f.Radial) <= dedupTolerance {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}

func isAxial(s profile.Segment) bool {
	return slopeDegrees(s) <= axialSegmentSlope && s.Length > 0
}

func isRadial(s profile.Segment) bool {
	return slopeDegrees(s) >= 90-axialSegmentSlope && s.Length > 0
}

// slopeDegrees returns the segment's angle from the axial direction in
// [0, 90] degrees.
func slopeDegrees(s profile.Segment) float64 {
	da := math.Abs(s.End.Axial - s.Start.Axial)
	dr := math.Abs(s.End.Radial - s.Start.Radial)
	if da < 1e-12 && dr < 1e-12 {
		return 0
	}
	return math.Atan2(dr, da) * 180 / math.Pi
}

// SplitByOperation groups features by the operation that consumes them:
// holes feed drilling, grooves split internal/external, chamfers feed
// chamfering. Thread features are caller-supplied and pass through.
type SplitByOperation struct {
	Drill          []Feature
	InternalGroove []Feature
	ExternalGroove []Feature
	Chamfer        []Feature
	Thread         []Feature
}

// Split partitions features for the pipeline driver.
func Split(found []Feature) SplitByOperation {
	var s SplitByOperation
	for _, f := range found {
		switch f.Kind {
		case Hole:
			s.Drill = append(s.Drill, f)
		case Groove:
			if f.Internal {
				s.InternalGroove = append(s.InternalGroove, f)
			} else {
				s.ExternalGroove = append(s.ExternalGroove, f)
			}
		case Chamfer:
			s.Chamfer = append(s.Chamfer, f)
		case Thread:
			s.Thread = append(s.Thread, f)
		}
	}
	return s
}
