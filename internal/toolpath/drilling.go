package toolpath

import "fmt"

// DrillStrategy selects the plunge pattern for drilling.
type DrillStrategy int

const (
	DrillSimple DrillStrategy = iota
	DrillPeck
	DrillDeepHole
	DrillHighSpeed
)

// DrillingParams drives the drilling planner. The hole axis coincides with
// the turning axis; all movements happen at radial 0.
type DrillingParams struct {
	HoleDiameter  float64       `json:"hole_diameter"`
	HoleDepth     float64       `json:"hole_depth"`
	StartZ        float64       `json:"start_z"` // workpiece surface
	Strategy      DrillStrategy `json:"strategy"`
	PeckDepth     float64       `json:"peck_depth"`
	RetractHeight float64       `json:"retract_height"` // chip-break retract above current depth
	SafetyHeight  float64       `json:"safety_height"`  // rapid approach height above StartZ
	DwellTime     float64       `json:"dwell_time"`     // seconds at full depth
	FeedRate      float64       `json:"feed_rate"`      // mm/min
	SpindleSpeed  float64       `json:"spindle_speed"`  // RPM
	ChipBreaking  bool          `json:"chip_breaking"`
}

// DefaultDrillingParams returns the stock drilling parameters.
func DefaultDrillingParams() DrillingParams {
	return DrillingParams{
		HoleDiameter:  6.0,
		Strategy:      DrillPeck,
		PeckDepth:     2.0,
		RetractHeight: 1.0,
		SafetyHeight:  5.0,
		DwellTime:     0.2,
		FeedRate:      80.0,
		SpindleSpeed:  1200.0,
		ChipBreaking:  true,
	}
}

// Validate rejects inconsistent drilling geometry.
func (p DrillingParams) Validate() error {
	if p.HoleDiameter <= 0 {
		return invalid(Drilling, "hole diameter must be positive, got %.3f", p.HoleDiameter)
	}
	if p.HoleDepth <= 0 {
		return invalid(Drilling, "hole depth must be positive, got %.3f", p.HoleDepth)
	}
	if p.Strategy != DrillSimple && p.PeckDepth <= 0 {
		return invalid(Drilling, "peck depth must be positive, got %.3f", p.PeckDepth)
	}
	return nil
}

// PlanDrilling emits a peck-drilling cycle along the turning axis: rapid to
// safety height, pecks down with chip-break retracts, optional dwell at
// full depth, and a final retract to safety height.
func PlanDrilling(p DrillingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tp := NewToolpath("Center Drilling", Drilling, tool)
	safeZ := p.StartZ + p.SafetyHeight
	bottom := p.StartZ - p.HoleDepth

	tp.add(Movement{Kind: Rapid, Position: pp(safeZ, 0), SpindleSpeed: p.SpindleSpeed})

	peck := p.PeckDepth
	if p.Strategy == DrillSimple {
		peck = p.HoleDepth
	}
	if p.Strategy == DrillDeepHole {
		// Deep-hole cycles retract fully to clear chips from the bore.
		peck = p.PeckDepth
	}

	for depth := peck; ; depth += peck {
		if depth > p.HoleDepth {
			depth = p.HoleDepth
		}
		z := p.StartZ - depth
		tp.add(Movement{Kind: Linear, Position: pp(z, 0), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
		if depth >= p.HoleDepth {
			break
		}
		retractZ := z + p.RetractHeight
		if p.Strategy == DrillDeepHole {
			retractZ = safeZ
		}
		if p.ChipBreaking || p.Strategy == DrillDeepHole {
			tp.add(Movement{Kind: Rapid, Position: pp(retractZ, 0), SpindleSpeed: p.SpindleSpeed})
		}
	}

	if p.DwellTime > 0 {
		tp.add(Movement{
			Kind:         Linear,
			Position:     pp(bottom, 0),
			FeedRate:     p.FeedRate,
			SpindleSpeed: p.SpindleSpeed,
			Comment:      fmt.Sprintf("dwell %.1fs", p.DwellTime),
		})
	}
	tp.add(Movement{Kind: Rapid, Position: pp(safeZ, 0), SpindleSpeed: p.SpindleSpeed})
	return tp, nil
}
