package profile

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
)

// ExtractionParams controls profile extraction.
type ExtractionParams struct {
	// Tolerance is the chord deviation and endpoint-matching tolerance in mm.
	Tolerance float64 `json:"tolerance"`
	// MinSegmentLength filters segments below this length by merging them
	// into their successor.
	MinSegmentLength float64 `json:"min_segment_length"`
	// SortSegments orders the stitched chain to walk front face first.
	SortSegments bool `json:"sort_segments"`
}

// DefaultExtractionParams returns the standard extraction tolerances.
func DefaultExtractionParams() ExtractionParams {
	return ExtractionParams{
		Tolerance:        0.01,
		MinSegmentLength: 0.001,
		SortSegments:     true,
	}
}

// ExtractionError reports why a profile could not be built. Extraction is
// all-or-nothing: a failed extraction never returns a partial profile.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "profile extraction: " + e.Reason
}

// Extract sections the solid by the half-plane containing the turning axis
// and stitches the resulting curves into an ordered, connected profile.
func Extract(solid Solid, axis geom.Axis, params ExtractionParams) (*Profile, error) {
	if solid == nil {
		return nil, &ExtractionError{Reason: "no solid provided"}
	}
	if params.Tolerance <= 0 {
		params.Tolerance = DefaultExtractionParams().Tolerance
	}

	curves, err := solid.CrossSection(axis)
	if err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("cross section failed: %v", err)}
	}

	raw := curvesToSegments(curves, params.Tolerance)
	if len(raw) == 0 {
		return nil, &ExtractionError{Reason: "solid has no intersection with the section half-plane"}
	}

	for i := range raw {
		if raw[i].Start.Radial < -params.Tolerance || raw[i].End.Radial < -params.Tolerance {
			return nil, &ExtractionError{Reason: "section produced negative radial coordinates"}
		}
		// Numerical noise just below zero is clamped, anything worse failed above.
		raw[i].Start.Radial = math.Max(raw[i].Start.Radial, 0)
		raw[i].End.Radial = math.Max(raw[i].End.Radial, 0)
	}

	chain, err := stitch(raw, params.Tolerance)
	if err != nil {
		return nil, err
	}

	if params.SortSegments {
		chain = orient(chain)
	}

	segments := mergeShort(chainToSegments(chain), params.MinSegmentLength)
	if len(segments) == 0 {
		return nil, &ExtractionError{Reason: "all section segments shorter than minimum length"}
	}

	if err := validate(segments, params.Tolerance); err != nil {
		return nil, err
	}
	return New(segments), nil
}

// curvesToSegments linearises each section curve to its chord segments.
// Curves arrive pre-sampled within tolerance; every consecutive point pair
// becomes one chord.
func curvesToSegments(curves []Polyline, tolerance float64) []Segment {
	var segs []Segment
	for _, c := range curves {
		for i := 0; i+1 < len(c); i++ {
			s := NewSegment(c[i], c[i+1])
			if s.Length < tolerance*1e-3 {
				continue
			}
			segs = append(segs, s)
		}
	}
	return segs
}

// stitch connects loose segments into a single open chain of points. It is
// the profile counterpart of chaining loose DXF entities: repeatedly extend
// the chain at either end by whichever unused segment has a matching endpoint.
func stitch(segs []Segment, tolerance float64) ([]geom.ProfilePoint, error) {
	used := make([]bool, len(segs))
	chain := []geom.ProfilePoint{segs[0].Start, segs[0].End}
	used[0] = true
	remaining := len(segs) - 1

	for extendChain(&chain, segs, used, tolerance, &remaining) {
	}

	if remaining > 0 {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("section is disconnected: %d segment(s) could not be stitched within tolerance", remaining),
		}
	}
	return chain, nil
}

// extendChain grows the chain by one segment at either end. Returns false
// when no unused segment touches the chain.
func extendChain(chain *[]geom.ProfilePoint, segs []Segment, used []bool, tolerance float64, remaining *int) bool {
	c := *chain
	head := c[0]
	tail := c[len(c)-1]

	for i, seg := range segs {
		if used[i] {
			continue
		}
		switch {
		case tail.DistanceTo(seg.Start) <= tolerance:
			c = append(c, seg.End)
		case tail.DistanceTo(seg.End) <= tolerance:
			c = append(c, seg.Start)
		case head.DistanceTo(seg.End) <= tolerance:
			c = append([]geom.ProfilePoint{seg.Start}, c...)
		case head.DistanceTo(seg.Start) <= tolerance:
			c = append([]geom.ProfilePoint{seg.End}, c...)
		default:
			continue
		}
		used[i] = true
		*remaining--
		*chain = c
		return true
	}
	return false
}

// orient flips the chain if needed so the walk starts at the front face
// (largest axial coordinate). Where both ends share an axial coordinate the
// radially lower end leads, so axial reversals are walked radially ascending.
func orient(chain []geom.ProfilePoint) []geom.ProfilePoint {
	if len(chain) < 2 {
		return chain
	}
	first := chain[0]
	last := chain[len(chain)-1]
	flip := false
	switch {
	case last.Axial > first.Axial:
		flip = true
	case math.Abs(last.Axial-first.Axial) < 1e-9 && last.Radial < first.Radial:
		flip = true
	}
	if !flip {
		return chain
	}
	out := make([]geom.ProfilePoint, len(chain))
	for i, p := range chain {
		out[len(chain)-1-i] = p
	}
	return out
}

func chainToSegments(chain []geom.ProfilePoint) []Segment {
	segs := make([]Segment, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		segs = append(segs, NewSegment(chain[i], chain[i+1]))
	}
	return segs
}

// mergeShort drops segments below minLength by replacing the successor's
// start with the dropped segment's start. A trailing short segment merges
// into its predecessor instead.
func mergeShort(segs []Segment, minLength float64) []Segment {
	if minLength <= 0 {
		return segs
	}
	var out []Segment
	for i := 0; i < len(segs); i++ {
		s := segs[i]
		if s.Length >= minLength {
			out = append(out, s)
			continue
		}
		if i+1 < len(segs) {
			segs[i+1] = NewSegment(s.Start, segs[i+1].End)
		} else if len(out) > 0 {
			out[len(out)-1] = NewSegment(out[len(out)-1].Start, s.End)
		}
	}
	return out
}

// validate enforces the profile invariants: connectivity, non-negative
// radial values, and no self-intersection in the half-plane.
func validate(segs []Segment, tolerance float64) error {
	for i := 0; i+1 < len(segs); i++ {
		if segs[i].End.DistanceTo(segs[i+1].Start) > tolerance {
			return &ExtractionError{
				Reason: fmt.Sprintf("segments %d and %d are not connected within tolerance", i, i+1),
			}
		}
	}
	for i, s := range segs {
		if s.Start.Radial < 0 || s.End.Radial < 0 {
			return &ExtractionError{Reason: fmt.Sprintf("segment %d has negative radial coordinate", i)}
		}
	}
	for i := 0; i < len(segs); i++ {
		for j := i + 2; j < len(segs); j++ {
			if segmentsIntersect(segs[i], segs[j], tolerance) {
				return &ExtractionError{
					Reason: fmt.Sprintf("profile self-intersects between segments %d and %d", i, j),
				}
			}
		}
	}
	return nil
}

// segmentsIntersect tests proper crossing of two non-adjacent segments.
// Shared endpoints within tolerance do not count.
func segmentsIntersect(a, b Segment, tolerance float64) bool {
	if a.Start.DistanceTo(b.End) <= tolerance || a.End.DistanceTo(b.Start) <= tolerance ||
		a.Start.DistanceTo(b.Start) <= tolerance || a.End.DistanceTo(b.End) <= tolerance {
		return false
	}
	d1 := cross2(b.Start, b.End, a.Start)
	d2 := cross2(b.Start, b.End, a.End)
	d3 := cross2(a.Start, a.End, b.Start)
	d4 := cross2(a.Start, a.End, b.End)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(o, a, b geom.ProfilePoint) float64 {
	return (a.Axial-o.Axial)*(b.Radial-o.Radial) - (a.Radial-o.Radial)*(b.Axial-o.Axial)
}
