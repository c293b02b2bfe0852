package toolpath

// PartingStrategy selects the plunge pattern for parting off.
type PartingStrategy int

const (
	PartingStraight PartingStrategy = iota
	PartingPeck
)

// PartingParams drives the parting planner: a single radial plunge at
// PartingZ from outside the stock down to the centre-hole diameter.
type PartingParams struct {
	PartingDiameter    float64         `json:"parting_diameter"` // stock od at the parting plane
	PartingZ           float64         `json:"parting_z"`
	CenterHoleDiameter float64         `json:"center_hole_diameter"` // 0 to part through centre
	PartingWidth       float64         `json:"parting_width"`
	Strategy           PartingStrategy `json:"strategy"`
	PeckDepth          float64         `json:"peck_depth"`
	Clearance          float64         `json:"clearance"`
	FeedRate           float64         `json:"feed_rate"`     // mm/min
	SpindleSpeed       float64         `json:"spindle_speed"` // RPM
	BackChamfer        bool            `json:"back_chamfer"`
	ChamferSize        float64         `json:"chamfer_size"`
}

// DefaultPartingParams returns the stock parting parameters.
func DefaultPartingParams() PartingParams {
	return PartingParams{
		PartingWidth: 3.0,
		Strategy:     PartingStraight,
		PeckDepth:    1.5,
		Clearance:    2.0,
		FeedRate:     30.0,
		SpindleSpeed: 800.0,
		ChamferSize:  0.5,
	}
}

// Validate rejects inconsistent parting geometry. The tool needs a
// positive insert width.
func (p PartingParams) Validate(tool ToolRef) error {
	if p.PartingDiameter <= 0 {
		return invalid(Parting, "parting diameter must be positive, got %.3f", p.PartingDiameter)
	}
	if p.CenterHoleDiameter < 0 || p.CenterHoleDiameter >= p.PartingDiameter {
		return invalid(Parting, "centre hole diameter %.3f must be in [0, parting diameter)", p.CenterHoleDiameter)
	}
	if p.PartingWidth <= 0 {
		return invalid(Parting, "parting width must be positive, got %.3f", p.PartingWidth)
	}
	if tool.Width <= 0 {
		return invalid(Parting, "tool width must be positive, got %.3f", tool.Width)
	}
	return nil
}

// PlanParting emits the parting cycle. The first movement is a rapid in
// the axial direction to the parting plane at clearance radius; the plunge
// then runs to the centre-hole radius, pecking when requested.
func PlanParting(p PartingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(tool); err != nil {
		return nil, err
	}

	tp := NewToolpath("Parting", Parting, tool)
	outerR := p.PartingDiameter/2 + p.Clearance
	centreR := p.CenterHoleDiameter / 2

	tp.add(Movement{Kind: Rapid, Position: pp(p.PartingZ, outerR), SpindleSpeed: p.SpindleSpeed})

	if p.BackChamfer && p.ChamferSize > 0 {
		// Break the back edge of the remaining stock before the plunge.
		tp.add(Movement{Kind: Rapid, Position: pp(p.PartingZ-p.ChamferSize, outerR), SpindleSpeed: p.SpindleSpeed})
		tp.add(Movement{
			Kind:         Linear,
			Position:     pp(p.PartingZ, p.PartingDiameter/2-p.ChamferSize),
			FeedRate:     p.FeedRate,
			SpindleSpeed: p.SpindleSpeed,
		})
		tp.add(Movement{Kind: Rapid, Position: pp(p.PartingZ, outerR), SpindleSpeed: p.SpindleSpeed})
	}

	switch p.Strategy {
	case PartingPeck:
		depth := p.PeckDepth
		surface := p.PartingDiameter / 2
		for {
			r := surface - depth
			if r < centreR {
				r = centreR
			}
			tp.add(Movement{Kind: Linear, Position: pp(p.PartingZ, r), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
			if r <= centreR {
				break
			}
			tp.add(Movement{Kind: Rapid, Position: pp(p.PartingZ, r+p.Clearance), SpindleSpeed: p.SpindleSpeed})
			depth += p.PeckDepth
		}
	default:
		tp.add(Movement{Kind: Linear, Position: pp(p.PartingZ, centreR), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
	}

	tp.add(Movement{Kind: Rapid, Position: pp(p.PartingZ, outerR), SpindleSpeed: p.SpindleSpeed})
	return tp, nil
}
