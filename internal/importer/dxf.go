// Package importer provides alternate pipeline input sources: lathe
// half-profiles from DXF drawings and tool tables from Excel workbooks.
package importer

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/profile"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// ProfileResult holds the outcome of a DXF profile import.
type ProfileResult struct {
	Profile  *profile.Profile
	Errors   []string
	Warnings []string
}

// chainSegment is a loose line segment awaiting chaining, in drawing
// coordinates: X maps to axial, Y to radial.
type chainSegment struct {
	start geom.ProfilePoint
	end   geom.ProfilePoint
}

// ImportProfileDXF reads a lathe half-profile from a DXF drawing. LINE,
// ARC, and LWPOLYLINE entities are chained into a single open polyline;
// drawing X becomes the axial coordinate and Y the radial coordinate.
// Entities below the axis (negative Y) fail the import.
func ImportProfileDXF(path string) ProfileResult {
	result := ProfileResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var segments []chainSegment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := lwPolylinePoints(e)
			segments = append(segments, pointsToChain(pts)...)

		case *entity.Line:
			segments = append(segments, chainSegment{
				start: geom.ProfilePoint{Axial: e.Start[0], Radial: e.Start[1]},
				end:   geom.ProfilePoint{Axial: e.End[0], Radial: e.End[1]},
			})

		case *entity.Arc:
			pts := arcPoints(e, 32)
			segments = append(segments, pointsToChain(pts)...)

		default:
			// Unsupported entity types are silently skipped
		}
	}

	if len(segments) == 0 {
		result.Errors = append(result.Errors, "No usable profile entities found in DXF file")
		return result
	}

	prof, err := chainToProfile(segments, 0.01)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Profile = prof
	return result
}

// chainToProfile stitches loose segments into a single connected profile.
// It fails when the segments form more than one chain or dip below the
// turning axis.
func chainToProfile(segs []chainSegment, tolerance float64) (*profile.Profile, error) {
	for _, s := range segs {
		if s.start.Radial < -tolerance || s.end.Radial < -tolerance {
			return nil, fmt.Errorf("profile entity below the turning axis (radial %.3f)", math.Min(s.start.Radial, s.end.Radial))
		}
	}

	used := make([]bool, len(segs))
	chain := []geom.ProfilePoint{segs[0].start, segs[0].end}
	used[0] = true
	remaining := len(segs) - 1

	changed := true
	for changed && remaining > 0 {
		changed = false
		head := chain[0]
		tail := chain[len(chain)-1]
		for i, s := range segs {
			if used[i] {
				continue
			}
			switch {
			case pointsClose(tail, s.start, tolerance):
				chain = append(chain, s.end)
			case pointsClose(tail, s.end, tolerance):
				chain = append(chain, s.start)
			case pointsClose(head, s.end, tolerance):
				chain = append([]geom.ProfilePoint{s.start}, chain...)
			case pointsClose(head, s.start, tolerance):
				chain = append([]geom.ProfilePoint{s.end}, chain...)
			default:
				continue
			}
			used[i] = true
			remaining--
			changed = true
			break
		}
	}

	if remaining > 0 {
		return nil, fmt.Errorf("profile is disconnected: %d segment(s) could not be chained", remaining)
	}

	// Walk front face first, matching the extractor's ordering.
	if chain[len(chain)-1].Axial > chain[0].Axial {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}

	var built []profile.Segment
	for i := 0; i+1 < len(chain); i++ {
		s := profile.NewSegment(chain[i], chain[i+1])
		if s.Length < tolerance {
			continue
		}
		built = append(built, s)
	}
	if len(built) == 0 {
		return nil, fmt.Errorf("profile entities are degenerate")
	}
	return profile.New(built), nil
}

// lwPolylinePoints converts an LWPOLYLINE to profile points, interpolating
// bulge arcs. The bulge is the tangent of a quarter of the included angle.
func lwPolylinePoints(lw *entity.LwPolyline) []geom.ProfilePoint {
	var pts []geom.ProfilePoint
	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := geom.ProfilePoint{Axial: v[0], Radial: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) > 1e-9 && i+1 < len(lw.Vertices) {
			next := geom.ProfilePoint{Axial: lw.Vertices[i+1][0], Radial: lw.Vertices[i+1][1]}
			arc := bulgeArcPoints(current, next, bulge, 32)
			pts = append(pts, arc[:len(arc)-1]...)
		} else {
			pts = append(pts, current)
		}
	}
	return pts
}

// bulgeArcPoints samples the arc defined by two endpoints and a DXF bulge
// factor.
func bulgeArcPoints(p1, p2 geom.ProfilePoint, bulge float64, numSegments int) []geom.ProfilePoint {
	mx := (p1.Axial + p2.Axial) / 2
	my := (p1.Radial + p2.Radial) / 2
	dx := p2.Axial - p1.Axial
	dy := p2.Radial - p1.Radial
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return []geom.ProfilePoint{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Radial-cy, p1.Axial-cx)
	endAngle := math.Atan2(p2.Radial-cy, p2.Axial-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]geom.ProfilePoint, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, geom.ProfilePoint{
			Axial:  cx + radius*math.Cos(angle),
			Radial: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// arcPoints samples a DXF ARC entity.
func arcPoints(a *entity.Arc, numSegments int) []geom.ProfilePoint {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]geom.ProfilePoint, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = geom.ProfilePoint{
			Axial:  cx + r*math.Cos(angle),
			Radial: cy + r*math.Sin(angle),
		}
	}
	return pts
}

func pointsToChain(pts []geom.ProfilePoint) []chainSegment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]chainSegment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, chainSegment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

func pointsClose(a, b geom.ProfilePoint, tolerance float64) bool {
	return a.DistanceTo(b) <= tolerance
}
