package toolpath

import "math"

// ChamferingParams drives the chamfering planner: one angled linear cut
// between two diameters over the axial distance set by size and angle.
type ChamferingParams struct {
	ChamferSize   float64 `json:"chamfer_size"`  // mm, radial leg of the chamfer
	ChamferAngle  float64 `json:"chamfer_angle"` // degrees from the turning axis
	StartZ        float64 `json:"start_z"`
	StartDiameter float64 `json:"start_diameter"`
	EndDiameter   float64 `json:"end_diameter"`
	SafetyHeight  float64 `json:"safety_height"`
	FeedRate      float64 `json:"feed_rate"`     // mm/min
	SpindleSpeed  float64 `json:"spindle_speed"` // RPM
	External      bool    `json:"external"`
}

// DefaultChamferingParams returns the stock chamfering parameters.
func DefaultChamferingParams() ChamferingParams {
	return ChamferingParams{
		ChamferSize:  1.0,
		ChamferAngle: 45.0,
		SafetyHeight: 5.0,
		FeedRate:     80.0,
		SpindleSpeed: 1000.0,
		External:     true,
	}
}

// Validate rejects inconsistent chamfer geometry.
func (p ChamferingParams) Validate() error {
	if p.ChamferSize <= 0 {
		return invalid(Chamfering, "chamfer size must be positive, got %.3f", p.ChamferSize)
	}
	if p.ChamferAngle <= 0 || p.ChamferAngle >= 90 {
		return invalid(Chamfering, "chamfer angle must be in (0, 90), got %.1f", p.ChamferAngle)
	}
	if p.StartDiameter < 0 || p.EndDiameter < 0 {
		return invalid(Chamfering, "diameters must not be negative")
	}
	if p.StartDiameter == p.EndDiameter {
		return invalid(Chamfering, "start and end diameter coincide at %.3f", p.StartDiameter)
	}
	return nil
}

// PlanChamfering emits a rapid approach followed by the angled cut from the
// start diameter to the end diameter. The axial travel follows from the
// chamfer size and angle.
func PlanChamfering(p ChamferingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tp := NewToolpath("Chamfering", Chamfering, tool)
	startR := p.StartDiameter / 2
	endR := p.EndDiameter / 2
	axialTravel := p.ChamferSize / math.Tan(p.ChamferAngle*math.Pi/180)

	tp.add(Movement{Kind: Rapid, Position: pp(p.StartZ+p.SafetyHeight, startR), SpindleSpeed: p.SpindleSpeed})
	tp.add(Movement{Kind: Rapid, Position: pp(p.StartZ, startR), SpindleSpeed: p.SpindleSpeed})
	tp.add(Movement{
		Kind:         Linear,
		Position:     pp(p.StartZ-axialTravel, endR),
		FeedRate:     p.FeedRate,
		SpindleSpeed: p.SpindleSpeed,
	})
	tp.add(Movement{Kind: Rapid, Position: pp(p.StartZ+p.SafetyHeight, startR), SpindleSpeed: p.SpindleSpeed})
	return tp, nil
}
