package toolpath

import "math"

// GrooveStrategy selects the plunge pattern for grooving.
type GrooveStrategy int

const (
	GroovePlunge GrooveStrategy = iota
	GroovePeck
	GrooveProgressive
)

// GroovingParams drives external and internal grooving: plunge cuts of
// GrooveWidth centred at GrooveZ, down to GrooveDepth below the groove
// diameter (external) or above the bore diameter (internal).
type GroovingParams struct {
	GrooveDiameter float64        `json:"groove_diameter"` // od (external) or bore (internal)
	GrooveWidth    float64        `json:"groove_width"`
	GrooveDepth    float64        `json:"groove_depth"`
	GrooveZ        float64        `json:"groove_z"` // axial centre of the groove
	Strategy       GrooveStrategy `json:"strategy"`
	PeckDepth      float64        `json:"peck_depth"`
	Clearance      float64        `json:"clearance"`
	FeedRate       float64        `json:"feed_rate"`     // mm/rev
	SpindleSpeed   float64        `json:"spindle_speed"` // RPM
	ChamferEdges   bool           `json:"chamfer_edges"`
	ChamferSize    float64        `json:"chamfer_size"`
	Internal       bool           `json:"internal"`
}

// DefaultGroovingParams returns the stock grooving parameters.
func DefaultGroovingParams() GroovingParams {
	return GroovingParams{
		GrooveWidth:  3.0,
		GrooveDepth:  2.0,
		Strategy:     GroovePlunge,
		PeckDepth:    0.8,
		Clearance:    1.0,
		FeedRate:     0.02,
		SpindleSpeed: 800.0,
		ChamferSize:  0.3,
	}
}

// Validate rejects inconsistent groove geometry. The tool must have a
// positive insert width no wider than the groove.
func (p GroovingParams) Validate(tool ToolRef) error {
	op := ExternalGrooving
	if p.Internal {
		op = InternalGrooving
	}
	if p.GrooveDiameter <= 0 {
		return invalid(op, "groove diameter must be positive, got %.3f", p.GrooveDiameter)
	}
	if p.GrooveWidth <= 0 {
		return invalid(op, "groove width must be positive, got %.3f", p.GrooveWidth)
	}
	if p.GrooveDepth <= 0 {
		return invalid(op, "groove depth must be positive, got %.3f", p.GrooveDepth)
	}
	if tool.Width <= 0 {
		return invalid(op, "tool width must be positive, got %.3f", tool.Width)
	}
	if tool.Width > p.GrooveWidth {
		return invalid(op, "tool width %.3f exceeds groove width %.3f", tool.Width, p.GrooveWidth)
	}
	return nil
}

// PlanGrooving emits the plunge sequence covering the groove width. The
// number of plunges is ceil(width/toolWidth); each plunge runs from the
// clearance radius to the groove floor, pecking when the strategy asks.
func PlanGrooving(p GroovingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(tool); err != nil {
		return nil, err
	}

	name, op := "External Grooving", ExternalGrooving
	if p.Internal {
		name, op = "Internal Grooving", InternalGrooving
	}
	tp := NewToolpath(name, op, tool)

	surface := p.GrooveDiameter / 2
	var approach, floor float64
	if p.Internal {
		// Internal grooves cut outward from the bore wall.
		approach = surface - p.Clearance
		floor = surface + p.GrooveDepth
	} else {
		approach = surface + p.Clearance
		floor = surface - p.GrooveDepth
	}
	if floor < 0 {
		floor = 0
	}

	plunges := int(math.Ceil(p.GrooveWidth / tool.Width))
	zLeft := p.GrooveZ - p.GrooveWidth/2 + tool.Width/2
	step := 0.0
	if plunges > 1 {
		step = (p.GrooveWidth - tool.Width) / float64(plunges-1)
	}

	for i := 0; i < plunges; i++ {
		z := zLeft + float64(i)*step
		tp.add(Movement{Kind: Rapid, Position: pp(z, approach), SpindleSpeed: p.SpindleSpeed})
		groovePlunge(tp, p, z, surface, floor)
		tp.add(Movement{Kind: Rapid, Position: pp(z, approach), SpindleSpeed: p.SpindleSpeed})
	}

	if p.ChamferEdges && p.ChamferSize > 0 {
		grooveChamfers(tp, p, surface)
	}
	return tp, nil
}

// groovePlunge feeds from the surface to the floor, with peck retracts or
// progressive depth steps depending on the strategy.
func groovePlunge(tp *Toolpath, p GroovingParams, z, surface, floor float64) {
	dir := 1.0
	if !p.Internal {
		dir = -1.0
	}
	switch p.Strategy {
	case GroovePeck, GrooveProgressive:
		depth := p.PeckDepth
		for {
			if depth > p.GrooveDepth {
				depth = p.GrooveDepth
			}
			r := surface + dir*depth
			if r < 0 {
				r = 0
			}
			tp.add(Movement{Kind: Linear, Position: pp(z, r), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
			if depth >= p.GrooveDepth {
				return
			}
			if p.Strategy == GroovePeck {
				tp.add(Movement{Kind: Linear, Position: pp(z, surface), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
			}
			depth += p.PeckDepth
		}
	default:
		tp.add(Movement{Kind: Linear, Position: pp(z, floor), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
	}
}

// grooveChamfers breaks both groove edges with a small angled cut.
func grooveChamfers(tp *Toolpath, p GroovingParams, surface float64) {
	dir := 1.0
	if !p.Internal {
		dir = -1.0
	}
	for _, side := range []float64{-1, 1} {
		edgeZ := p.GrooveZ + side*p.GrooveWidth/2
		tp.add(Movement{Kind: Rapid, Position: pp(edgeZ+side*p.ChamferSize, surface-dir*p.Clearance), SpindleSpeed: p.SpindleSpeed})
		tp.add(Movement{Kind: Linear, Position: pp(edgeZ, surface+dir*p.ChamferSize), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
		tp.add(Movement{Kind: Rapid, Position: pp(edgeZ, surface-dir*p.Clearance), SpindleSpeed: p.SpindleSpeed})
	}
}
