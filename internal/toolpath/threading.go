package toolpath

import "math"

// ThreadingParams drives the threading planner. Each pass is a
// spindle-synchronised feed cut over the thread length at a growing infeed
// depth, with rapids for lead-in and retract.
type ThreadingParams struct {
	Pitch         float64 `json:"pitch"`
	MajorDiameter float64 `json:"major_diameter"`
	ThreadDepth   float64 `json:"thread_depth"`
	StartZ        float64 `json:"start_z"`
	EndZ          float64 `json:"end_z"`
	Passes        int     `json:"passes"`
	ConstantDepth bool    `json:"constant_depth"`
	// Degression shapes variable-depth passes: cumulative depth after pass
	// i is ThreadDepth * (i/n)^Degression, so each pass removes a
	// diminishing share. Ignored when ConstantDepth is set.
	Degression   float64 `json:"degression"`
	LeadIn       float64 `json:"lead_in"`
	LeadOut      float64 `json:"lead_out"`
	Clearance    float64 `json:"clearance"`
	FeedRate     float64 `json:"feed_rate"`     // mm/min, synchronised to pitch by the control
	SpindleSpeed float64 `json:"spindle_speed"` // RPM
	Internal     bool    `json:"internal"`

	// Cancelled is polled between passes; a nil hook never cancels.
	Cancelled func() bool `json:"-"`
}

// DefaultThreadingParams returns the stock threading parameters (metric
// single-point, variable depth).
func DefaultThreadingParams() ThreadingParams {
	return ThreadingParams{
		Pitch:        1.5,
		ThreadDepth:  0.9,
		Passes:       3,
		Degression:   0.8,
		LeadIn:       5.0,
		LeadOut:      5.0,
		Clearance:    2.0,
		FeedRate:     60.0,
		SpindleSpeed: 300.0,
	}
}

// Validate rejects inconsistent thread geometry.
func (p ThreadingParams) Validate() error {
	if p.Pitch <= 0 {
		return invalid(Threading, "pitch must be positive, got %.3f", p.Pitch)
	}
	if p.MajorDiameter <= 0 {
		return invalid(Threading, "major diameter must be positive, got %.3f", p.MajorDiameter)
	}
	if p.ThreadDepth <= 0 {
		return invalid(Threading, "thread depth must be positive, got %.3f", p.ThreadDepth)
	}
	if p.StartZ <= p.EndZ {
		return invalid(Threading, "start Z %.3f must be greater than end Z %.3f", p.StartZ, p.EndZ)
	}
	if p.Passes < 1 {
		return invalid(Threading, "pass count must be at least 1, got %d", p.Passes)
	}
	return nil
}

// PlanThreading emits the per-pass cycle: rapid to lead-in, synchronised
// feed over the thread length, rapid retract, rapid back to the start.
func PlanThreading(p ThreadingParams, tool ToolRef) (*Toolpath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tp := NewToolpath("Threading", Threading, tool)
	majorR := p.MajorDiameter / 2
	clearR := majorR + p.Clearance
	if p.Internal {
		clearR = math.Max(majorR-p.ThreadDepth-p.Clearance, 0)
	}

	for i := 1; i <= p.Passes; i++ {
		if p.Cancelled != nil && p.Cancelled() {
			return nil, ErrPlanCancelled
		}
		depth := passDepth(p, i)
		var cutR float64
		if p.Internal {
			cutR = majorR - p.ThreadDepth + depth
		} else {
			cutR = majorR - depth
		}

		tp.add(Movement{Kind: Rapid, Position: pp(p.StartZ+p.LeadIn, clearR), SpindleSpeed: p.SpindleSpeed})
		tp.add(Movement{Kind: Rapid, Position: pp(p.StartZ+p.LeadIn, cutR), SpindleSpeed: p.SpindleSpeed})
		tp.add(Movement{
			Kind:         Linear,
			Position:     pp(p.EndZ-p.LeadOut, cutR),
			FeedRate:     p.FeedRate,
			SpindleSpeed: p.SpindleSpeed,
		})
		tp.add(Movement{Kind: Rapid, Position: pp(p.EndZ-p.LeadOut, clearR), SpindleSpeed: p.SpindleSpeed})
	}
	return tp, nil
}

// passDepth returns the cumulative infeed after the given 1-based pass.
func passDepth(p ThreadingParams, pass int) float64 {
	if p.ConstantDepth {
		return p.ThreadDepth * float64(pass) / float64(p.Passes)
	}
	deg := p.Degression
	if deg <= 0 {
		deg = 0.8
	}
	return p.ThreadDepth * math.Pow(float64(pass)/float64(p.Passes), deg)
}
