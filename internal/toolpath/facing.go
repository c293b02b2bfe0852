package toolpath

import "math"

// FacingStrategy selects the radial sweep pattern for facing passes.
type FacingStrategy int

const (
	FacingOutsideIn FacingStrategy = iota
	FacingInsideOut
	FacingConventional
	FacingClimb
)

// FacingParams drives the facing planner. The face advances from StartZ to
// EndZ in DepthOfCut increments, with one final pass at EndZ to finish to
// dimension. Every pass sweeps from MaxRadius+Clearance to MinRadius, or the
// reverse with FacingInsideOut.
type FacingParams struct {
	StartZ       float64        `json:"start_z"`
	EndZ         float64        `json:"end_z"`
	MaxRadius    float64        `json:"max_radius"`
	MinRadius    float64        `json:"min_radius"` // 0 for through-facing
	Clearance    float64        `json:"clearance"`  // radial approach beyond MaxRadius
	DepthOfCut   float64        `json:"depth_of_cut"`
	FeedRate     float64        `json:"feed_rate"`     // mm/min
	SpindleSpeed float64        `json:"spindle_speed"` // RPM
	Strategy     FacingStrategy `json:"strategy"`
}

// DefaultFacingParams returns the stock facing parameters.
func DefaultFacingParams() FacingParams {
	return FacingParams{
		Clearance:    2.0,
		DepthOfCut:   0.5,
		FeedRate:     150.0,
		SpindleSpeed: 1200.0,
		Strategy:     FacingOutsideIn,
	}
}

// Validate rejects inconsistent facing geometry.
func (p FacingParams) Validate() error {
	if p.StartZ <= p.EndZ {
		return invalid(Facing, "start Z %.3f must be greater than end Z %.3f", p.StartZ, p.EndZ)
	}
	if p.DepthOfCut <= 0 {
		return invalid(Facing, "depth of cut must be positive, got %.3f", p.DepthOfCut)
	}
	if p.MaxRadius <= 0 {
		return invalid(Facing, "max radius must be positive, got %.3f", p.MaxRadius)
	}
	if p.MinRadius < 0 || p.MinRadius >= p.MaxRadius {
		return invalid(Facing, "min radius %.3f must be in [0, max radius)", p.MinRadius)
	}
	if p.Clearance < 0 {
		return invalid(Facing, "clearance must not be negative, got %.3f", p.Clearance)
	}
	return nil
}

// PlanFacing emits facing passes from StartZ down to EndZ. The number of
// intermediate passes is floor((StartZ-EndZ)/DepthOfCut); the final pass
// always lands exactly on EndZ.
func PlanFacing(p FacingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tp := NewToolpath("Facing Pass", Facing, tool)
	outerRadius := p.MaxRadius + p.Clearance

	passes := int(math.Floor((p.StartZ - p.EndZ) / p.DepthOfCut))
	for i := 0; i < passes; i++ {
		facingPass(tp, p, p.StartZ-float64(i)*p.DepthOfCut, outerRadius)
	}
	facingPass(tp, p, p.EndZ, outerRadius)
	return tp, nil
}

// facingPass emits one radial sweep at the given axial position.
func facingPass(tp *Toolpath, p FacingParams, z, outerRadius float64) {
	from, to := outerRadius, p.MinRadius
	if p.Strategy == FacingInsideOut {
		from, to = p.MinRadius, outerRadius
	}

	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(z, from),
		SpindleSpeed: p.SpindleSpeed,
	})
	tp.add(Movement{
		Kind:         Linear,
		Position:     pp(z, to),
		FeedRate:     p.FeedRate,
		SpindleSpeed: p.SpindleSpeed,
	})
	// Retract clear of the face before the next pass.
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(z+p.Clearance, outerRadius),
		SpindleSpeed: p.SpindleSpeed,
	})
}
