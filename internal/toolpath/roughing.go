package toolpath

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/profile"
)

// RoughingParams drives external and internal roughing. Material is removed
// in axial sweeps at stepped radii, leaving StockAllowance on the finish
// profile. When FollowProfile is set each sweep is clipped where the
// allowance envelope rises above the pass radius; otherwise passes run the
// full Z range (simple cylinder).
type RoughingParams struct {
	StartDiameter    float64 `json:"start_diameter"`
	EndDiameter      float64 `json:"end_diameter"`
	StartZ           float64 `json:"start_z"`
	EndZ             float64 `json:"end_z"`
	DepthOfCut       float64 `json:"depth_of_cut"` // radial step per pass
	Stepover         float64 `json:"stepover"`
	StockAllowance   float64 `json:"stock_allowance"`
	FeedRate         float64 `json:"feed_rate"`         // mm/min
	SpindleSpeed     float64 `json:"spindle_speed"`     // RPM
	MaxSpindleSpeed  float64 `json:"max_spindle_speed"` // RPM cap
	Clearance        float64 `json:"clearance"`         // radial clearance for rapids
	FollowProfile    bool    `json:"follow_profile"`
	ChipBreaking     bool    `json:"chip_breaking"`
	ChipBreakRetreat float64 `json:"chip_break_retreat"` // mm retract between bites

	// Cancelled is polled between passes; a nil hook never cancels.
	Cancelled func() bool `json:"-"`
}

// DefaultRoughingParams returns the stock roughing parameters.
func DefaultRoughingParams() RoughingParams {
	return RoughingParams{
		DepthOfCut:       2.0,
		Stepover:         1.5,
		StockAllowance:   0.5,
		FeedRate:         150.0,
		SpindleSpeed:     1000.0,
		MaxSpindleSpeed:  3000.0,
		Clearance:        1.0,
		FollowProfile:    true,
		ChipBreaking:     true,
		ChipBreakRetreat: 0.3,
	}
}

func (p RoughingParams) validate(op OperationKind) error {
	if p.StartZ <= p.EndZ {
		return invalid(op, "start Z %.3f must be greater than end Z %.3f", p.StartZ, p.EndZ)
	}
	if p.StartDiameter < 0 || p.EndDiameter < 0 {
		return invalid(op, "diameters must not be negative")
	}
	if p.DepthOfCut <= 0 {
		return invalid(op, "depth of cut must be positive, got %.3f", p.DepthOfCut)
	}
	return nil
}

// PlanExternalRoughing removes the envelope between StartDiameter and the
// profile (plus allowance) in axial sweeps from larger to smaller radius.
func PlanExternalRoughing(p RoughingParams, tool ToolRef, prof *profile.Profile) (*Toolpath, error) {
	if p.StartDiameter <= p.EndDiameter {
		return nil, invalid(ExternalRoughing,
			"start diameter %.3f must be greater than end diameter %.3f", p.StartDiameter, p.EndDiameter)
	}
	if err := p.validate(ExternalRoughing); err != nil {
		return nil, err
	}

	tp := NewToolpath("External Roughing", ExternalRoughing, tool)
	startRadius := p.StartDiameter / 2
	floorRadius := p.EndDiameter/2 + p.StockAllowance
	if p.FollowProfile && !prof.IsEmpty() {
		// Never cut into the allowance envelope anywhere along the sweep.
		if env, ok := minEnvelope(prof, p.StartZ, p.EndZ); ok {
			floorRadius = math.Max(floorRadius, env+p.StockAllowance)
		}
	}
	if floorRadius >= startRadius {
		// Stock already sits at the allowance envelope; one cleanup sweep
		// over the full length trues it up.
		roughingSweep(tp, p, floorRadius, p.StartZ, p.EndZ, startRadius)
		return tp, nil
	}

	for r := startRadius - p.DepthOfCut; ; r -= p.DepthOfCut {
		if r < floorRadius {
			r = floorRadius
		}
		if p.Cancelled != nil && p.Cancelled() {
			return nil, ErrPlanCancelled
		}
		endZ := p.EndZ
		if p.FollowProfile && !prof.IsEmpty() {
			endZ = clipSweep(prof, p, r)
		}
		if endZ < p.StartZ {
			roughingSweep(tp, p, r, p.StartZ, endZ, startRadius)
		}
		if r <= floorRadius {
			break
		}
	}
	return tp, nil
}

// minEnvelope returns the smallest profile envelope radius at any segment
// station z with endZ <= z < startZ.
func minEnvelope(prof *profile.Profile, startZ, endZ float64) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, s := range prof.Segments {
		for _, z := range []float64{s.Start.Axial, s.End.Axial} {
			if z >= startZ || z < endZ {
				continue
			}
			if r, ok := prof.RadiusAt(z); ok && r < best {
				best = r
				found = true
			}
		}
	}
	return best, found
}

// PlanInternalRoughing enlarges a bore from StartDiameter toward
// EndDiameter, sweeping from smaller to larger radius. Bounds are expected
// to be pre-clamped to the detected hole geometry.
func PlanInternalRoughing(p RoughingParams, tool ToolRef, prof *profile.Profile) (*Toolpath, error) {
	if p.EndDiameter <= p.StartDiameter {
		return nil, invalid(InternalRoughing,
			"end diameter %.3f must be greater than start diameter %.3f", p.EndDiameter, p.StartDiameter)
	}
	if err := p.validate(InternalRoughing); err != nil {
		return nil, err
	}

	tp := NewToolpath("Internal Roughing", InternalRoughing, tool)
	startRadius := p.StartDiameter / 2
	ceilingRadius := p.EndDiameter/2 - p.StockAllowance
	if ceilingRadius <= startRadius {
		ceilingRadius = startRadius
	}

	for r := startRadius + p.DepthOfCut; ; r += p.DepthOfCut {
		if r > ceilingRadius {
			r = ceilingRadius
		}
		if p.Cancelled != nil && p.Cancelled() {
			return nil, ErrPlanCancelled
		}
		roughingSweep(tp, p, r, p.StartZ, p.EndZ, startRadius)
		if r >= ceilingRadius {
			break
		}
	}
	return tp, nil
}

// roughingSweep emits one axial cut at radius r: rapid to the entry point,
// feed to the sweep end (with chip-breaking bites when enabled), then
// retract clear before repositioning.
func roughingSweep(tp *Toolpath, p RoughingParams, r, startZ, endZ, clearRadius float64) {
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(startZ+p.Clearance, r),
		SpindleSpeed: p.SpindleSpeed,
	})
	if p.ChipBreaking && p.ChipBreakRetreat > 0 {
		// Bite, back off, bite again: keeps chips short on long sweeps.
		bite := math.Max((startZ-endZ)/3, 0.5)
		for z := startZ - bite; z > endZ; z -= bite {
			tp.add(Movement{Kind: Linear, Position: pp(z, r), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
			tp.add(Movement{Kind: Linear, Position: pp(z+p.ChipBreakRetreat, r), FeedRate: p.FeedRate, SpindleSpeed: p.SpindleSpeed})
		}
	}
	tp.add(Movement{
		Kind:         Linear,
		Position:     pp(endZ, r),
		FeedRate:     p.FeedRate,
		SpindleSpeed: p.SpindleSpeed,
	})
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(endZ, clearRadius+p.Clearance),
		SpindleSpeed: p.SpindleSpeed,
	})
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(startZ+p.Clearance, clearRadius+p.Clearance),
		SpindleSpeed: p.SpindleSpeed,
	})
}

// clipSweep returns the axial position where a pass at radius r must stop:
// the first profile station (walking from StartZ toward EndZ) whose
// allowance envelope rises above r.
func clipSweep(prof *profile.Profile, p RoughingParams, r float64) float64 {
	endZ := p.EndZ
	for _, s := range prof.Segments {
		for _, pt := range []float64{s.Start.Axial, s.End.Axial} {
			if pt >= p.StartZ || pt < p.EndZ {
				continue
			}
			env, ok := prof.RadiusAt(pt)
			if ok && env+p.StockAllowance > r && pt > endZ {
				endZ = pt
			}
		}
	}
	return endZ
}
