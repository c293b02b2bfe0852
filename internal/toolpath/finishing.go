package toolpath

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/profile"
)

// FinishingStrategy selects the finishing pass layout.
type FinishingStrategy int

const (
	FinishingSinglePass FinishingStrategy = iota
	FinishingMultiPass
)

// FinishingParams drives external and internal finishing. The planner
// follows the extracted profile with the remaining allowance removed across
// Passes, optionally ending in a spring pass that repeats the final
// contour at reduced feed.
type FinishingParams struct {
	StartZ               float64           `json:"start_z"`
	EndZ                 float64           `json:"end_z"`
	StockAllowance       float64           `json:"stock_allowance"`       // material present before finishing
	FinalStockAllowance  float64           `json:"final_stock_allowance"` // material left after finishing
	Strategy             FinishingStrategy `json:"strategy"`
	Passes               int               `json:"passes"`
	SpringPass           bool              `json:"spring_pass"`
	FeedRate             float64           `json:"feed_rate"`             // mm/rev
	SpringPassFeedRate   float64           `json:"spring_pass_feed_rate"` // mm/rev
	SurfaceSpeed         float64           `json:"surface_speed"`         // m/min
	ConstantSurfaceSpeed bool              `json:"constant_surface_speed"`
	MaxSpindleSpeed      float64           `json:"max_spindle_speed"` // RPM
	ProfileTolerance     float64           `json:"profile_tolerance"` // mm
	Clearance            float64           `json:"clearance"`
	Internal             bool              `json:"internal"`
}

// DefaultFinishingParams returns the stock finishing parameters.
func DefaultFinishingParams() FinishingParams {
	return FinishingParams{
		StockAllowance:       0.05,
		FinalStockAllowance:  0.0,
		Strategy:             FinishingMultiPass,
		Passes:               2,
		SpringPass:           true,
		FeedRate:             0.08,
		SpringPassFeedRate:   0.05,
		SurfaceSpeed:         200.0,
		ConstantSurfaceSpeed: true,
		MaxSpindleSpeed:      1500.0,
		ProfileTolerance:     0.002,
		Clearance:            1.0,
	}
}

// Validate rejects inconsistent finishing geometry.
func (p FinishingParams) Validate() error {
	op := ExternalFinishing
	if p.Internal {
		op = InternalFinishing
	}
	if p.StartZ <= p.EndZ {
		return invalid(op, "start Z %.3f must be greater than end Z %.3f", p.StartZ, p.EndZ)
	}
	if p.Passes < 1 {
		return invalid(op, "pass count must be at least 1, got %d", p.Passes)
	}
	if p.StockAllowance < p.FinalStockAllowance {
		return invalid(op, "stock allowance %.3f below final allowance %.3f", p.StockAllowance, p.FinalStockAllowance)
	}
	return nil
}

// PlanFinishing profiles the final envelope. Pass i leaves an allowance
// interpolated from StockAllowance down to FinalStockAllowance; the spring
// pass repeats the last contour at SpringPassFeedRate.
func PlanFinishing(p FinishingParams, tool ToolRef, prof *profile.Profile) (*Toolpath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if prof.IsEmpty() {
		op := ExternalFinishing
		if p.Internal {
			op = InternalFinishing
		}
		return nil, invalid(op, "no profile to finish")
	}

	name, op := "External Finishing", ExternalFinishing
	if p.Internal {
		name, op = "Internal Finishing", InternalFinishing
	}
	tp := NewToolpath(name, op, tool)

	// Finishing follows the turnable envelope: the front and back faces are
	// the facing and parting operations' material, so leading and trailing
	// radial segments are trimmed off.
	segs := trimFaceSegments(prof.Segments)
	if len(segs) == 0 {
		return nil, invalid(op, "profile has no turnable envelope")
	}

	passes := p.Passes
	if p.Strategy == FinishingSinglePass {
		passes = 1
	}
	for i := 1; i <= passes; i++ {
		t := float64(i) / float64(passes)
		allowance := p.StockAllowance + t*(p.FinalStockAllowance-p.StockAllowance)
		finishingContour(tp, p, segs, allowance, p.FeedRate)
	}
	if p.SpringPass {
		finishingContour(tp, p, segs, p.FinalStockAllowance, p.SpringPassFeedRate)
	}
	return tp, nil
}

// trimFaceSegments drops radial-only segments from both ends of the
// profile, leaving the envelope between the front and back corners.
func trimFaceSegments(segs []profile.Segment) []profile.Segment {
	first, last := 0, len(segs)-1
	for first <= last && math.Abs(segs[first].End.Axial-segs[first].Start.Axial) < 1e-9 {
		first++
	}
	for last >= first && math.Abs(segs[last].End.Axial-segs[last].Start.Axial) < 1e-9 {
		last--
	}
	if first > last {
		return nil
	}
	return segs[first : last+1]
}

// finishingContour walks the envelope once, offset radially by the
// allowance. Internal finishing offsets inward and clamps at the axis.
func finishingContour(tp *Toolpath, p FinishingParams, segs []profile.Segment, allowance, feedPerRev float64) {
	offset := func(r float64) float64 {
		if p.Internal {
			return math.Max(r-allowance, 0)
		}
		return r + allowance
	}

	first := segs[0].Start
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(first.Axial+p.Clearance, offset(first.Radial)+p.Clearance),
		SpindleSpeed: spindleFor(p, offset(first.Radial)),
	})
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(first.Axial, offset(first.Radial)),
		SpindleSpeed: spindleFor(p, offset(first.Radial)),
	})
	for _, s := range segs {
		r := offset(s.End.Radial)
		tp.add(Movement{
			Kind:         Linear,
			Position:     pp(s.End.Axial, r),
			FeedRate:     feedPerRev,
			SpindleSpeed: spindleFor(p, r),
		})
	}
	last := segs[len(segs)-1].End
	tp.add(Movement{
		Kind:         Rapid,
		Position:     pp(last.Axial, offset(last.Radial)+p.Clearance),
		SpindleSpeed: spindleFor(p, offset(last.Radial)),
	})
}

// spindleFor converts surface speed to RPM at the given radius when
// constant-surface-speed mode is on, clamped to MaxSpindleSpeed.
func spindleFor(p FinishingParams, radius float64) float64 {
	if !p.ConstantSurfaceSpeed || radius < 1e-6 {
		return p.MaxSpindleSpeed
	}
	rpm := p.SurfaceSpeed * 1000 / (2 * math.Pi * radius)
	return math.Min(rpm, p.MaxSpindleSpeed)
}
