// Package pipeline orchestrates the canonical lathe operation sequence:
// facing, internal features, external roughing/finishing/grooving,
// chamfering, threading, and parting. One Execute call runs single-threaded
// with cooperative cancellation and fixed per-stage progress fractions.
package pipeline

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/chickenmcniggels/intuicam/internal/features"
	"github.com/chickenmcniggels/intuicam/internal/profile"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
)

// facingClearance is the radial approach distance beyond the part envelope.
// Both the profile-based and stock-based facing branches start the sweep at
// maxRadius + facingClearance.
const facingClearance = 2.0

// Result is the outcome of one pipeline run. Timeline holds whatever
// toolpaths succeeded before a failure; a failed result is to be treated as
// failed wholesale. Cancelled runs return an empty timeline.
type Result struct {
	Success      bool                 `json:"success"`
	Err          *Error               `json:"-"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Timeline     []*toolpath.Toolpath `json:"timeline"`
	Duration     time.Duration        `json:"duration"`
}

// Pipeline drives toolpath generation. A Pipeline may be reused across
// runs; a cancel request is sticky until Reset so that an Execute call
// issued after Cancel returns promptly with a Cancelled result.
type Pipeline struct {
	cancelRequested atomic.Bool
	generating      atomic.Bool
}

// New returns a pipeline ready to execute.
func New() *Pipeline {
	return &Pipeline{}
}

// Cancel requests cooperative cancellation. It takes effect at the next
// poll point: before each operation and between passes of long operations.
func (p *Pipeline) Cancel() {
	p.cancelRequested.Store(true)
}

// Reset clears a pending cancel request.
func (p *Pipeline) Reset() {
	p.cancelRequested.Store(false)
}

// Running reports whether an Execute call is in flight.
func (p *Pipeline) Running() bool {
	return p.generating.Load()
}

func (p *Pipeline) cancelled() bool {
	return p.cancelRequested.Load()
}

// stage is one canonical operation slot with its fixed progress fraction.
type stage struct {
	fraction float64
	status   string
	enabled  bool
	run      func() ([]*toolpath.Toolpath, error)
}

// Execute runs the canonical operation order against the inputs and
// returns the aggregated timeline. The first error stops the run.
func (p *Pipeline) Execute(in Inputs) Result {
	start := time.Now()
	p.generating.Store(true)
	defer p.generating.Store(false)

	var result Result
	progress := progressReporter(in.Progress)
	progress(0.0, "Starting toolpath generation pipeline...")

	if err := p.validateInputs(in); err != nil {
		return p.fail(result, err, start)
	}

	for _, st := range p.stages(in) {
		if !st.enabled {
			continue
		}
		if p.cancelled() {
			result.Timeline = nil
			return p.fail(result, errCancelled(), start)
		}
		progress(st.fraction, st.status)

		paths, err := st.run()
		if err != nil {
			return p.fail(result, p.wrapErr(err), start)
		}
		result.Timeline = append(result.Timeline, paths...)
	}

	if p.cancelled() {
		result.Timeline = nil
		return p.fail(result, errCancelled(), start)
	}

	result.Success = true
	result.Duration = time.Since(start)
	progress(1.0, "Toolpath generation complete")
	return result
}

// stages builds the canonical order. Fractions are fixed per stage so the
// caller sees smooth progress even when planners finish instantly.
func (p *Pipeline) stages(in Inputs) []stage {
	internal := in.MachineInternalFeatures
	return []stage{
		{0.10, "Generating facing toolpaths...", in.Facing, func() ([]*toolpath.Toolpath, error) { return p.runFacing(in) }},
		{0.20, "Generating drilling toolpaths...", in.Drilling && internal, func() ([]*toolpath.Toolpath, error) { return p.runDrilling(in) }},
		{0.30, "Generating internal roughing toolpaths...", in.InternalRoughing && internal, func() ([]*toolpath.Toolpath, error) { return p.runInternalRoughing(in) }},
		{0.40, "Generating internal finishing toolpaths...", in.InternalFinishing && internal, func() ([]*toolpath.Toolpath, error) { return p.runInternalFinishing(in) }},
		{0.50, "Generating internal grooving toolpaths...", in.InternalGrooving && internal, func() ([]*toolpath.Toolpath, error) { return p.runGrooving(in, in.InternalGrooveFeatures, true) }},
		{0.60, "Generating external roughing toolpaths...", in.ExternalRoughing, func() ([]*toolpath.Toolpath, error) { return p.runExternalRoughing(in) }},
		{0.70, "Generating external finishing toolpaths...", in.ExternalFinishing, func() ([]*toolpath.Toolpath, error) { return p.runExternalFinishing(in) }},
		{0.75, "Generating external grooving toolpaths...", in.ExternalGrooving, func() ([]*toolpath.Toolpath, error) { return p.runGrooving(in, in.ExternalGrooveFeatures, false) }},
		{0.80, "Generating chamfering toolpaths...", in.Chamfering, func() ([]*toolpath.Toolpath, error) { return p.runChamfering(in) }},
		{0.85, "Generating threading toolpaths...", in.Threading, func() ([]*toolpath.Toolpath, error) { return p.runThreading(in) }},
		{0.90, "Generating parting toolpaths...", in.Parting, func() ([]*toolpath.Toolpath, error) { return p.runParting(in) }},
	}
}

func (p *Pipeline) validateInputs(in Inputs) *Error {
	if in.RawMaterialDiameter <= 0 {
		return errMissingInput("raw_material_diameter")
	}
	if in.RawMaterialLength <= 0 {
		return errMissingInput("raw_material_length")
	}
	if in.Parting && in.PartLength <= 0 {
		return errMissingInput("part_length")
	}
	return nil
}

func (p *Pipeline) fail(result Result, err *Error, start time.Time) Result {
	result.Success = false
	result.Err = err
	result.ErrorMessage = err.Error()
	result.Duration = time.Since(start)
	return result
}

// wrapErr maps planner and extractor failures onto the pipeline taxonomy.
func (p *Pipeline) wrapErr(err error) *Error {
	if errors.Is(err, toolpath.ErrPlanCancelled) {
		return errCancelled()
	}
	var inv *toolpath.InvalidParamsError
	if errors.As(err, &inv) {
		return errOperation(inv.Operation.String(), inv.Detail)
	}
	var ext *profile.ExtractionError
	if errors.As(err, &ext) {
		return &Error{Kind: KindProfileExtraction, Detail: ext.Reason}
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindInternal, Detail: err.Error()}
}

// progressReporter wraps the callback so reported fractions never decrease.
func progressReporter(fn ProgressFunc) ProgressFunc {
	last := 0.0
	return func(fraction float64, status string) {
		last = math.Max(last, fraction)
		if fn != nil {
			fn(last, status)
		}
	}
}

// facingBounds normalises the two facing positioning branches: prefer the
// profile when one is available, else fall back to raw stock. Both start
// the radial sweep at maxRadius + facingClearance.
func facingBounds(in Inputs) (startZ, endZ, maxRadius float64) {
	if !in.Profile.IsEmpty() {
		b := in.Profile.Bounds()
		return b.AxialMax + 1.0, b.AxialMax - in.FacingAllowance, b.RadialMax
	}
	return in.Z0, in.Z0 - in.FacingAllowance, in.RawMaterialDiameter / 2
}

func (p *Pipeline) runFacing(in Inputs) ([]*toolpath.Toolpath, error) {
	startZ, endZ, maxRadius := facingBounds(in)

	params := toolpath.DefaultFacingParams()
	params.StartZ = startZ
	params.EndZ = endZ
	params.MaxRadius = maxRadius
	params.MinRadius = 0
	params.Clearance = facingClearance
	if in.FacingDepthOfCut > 0 {
		params.DepthOfCut = in.FacingDepthOfCut
	}

	tp, err := toolpath.PlanFacing(params, in.FacingTool)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}

func (p *Pipeline) runDrilling(in Inputs) ([]*toolpath.Toolpath, error) {
	var paths []*toolpath.Toolpath
	for _, f := range in.DrillFeatures {
		if p.cancelled() {
			return nil, toolpath.ErrPlanCancelled
		}
		if in.LargestDrillSize > 0 && f.Diameter > in.LargestDrillSize {
			// Oversize bores are roughed out, not drilled.
			continue
		}
		params := toolpath.DefaultDrillingParams()
		params.HoleDiameter = f.Diameter
		params.HoleDepth = f.Depth
		params.StartZ = f.Axial
		params.PeckDepth = math.Min(2.0, f.Depth/3)

		tp, err := toolpath.PlanDrilling(params, in.DrillingTool)
		if err != nil {
			return nil, err
		}
		paths = append(paths, tp)
	}
	return paths, nil
}

// largestDrillFeature picks the bore the internal operations work in.
func largestDrillFeature(in Inputs) (features.Feature, bool) {
	var best features.Feature
	found := false
	for _, f := range in.DrillFeatures {
		if !found || f.Diameter > best.Diameter {
			best = f
			found = true
		}
	}
	return best, found
}

func (p *Pipeline) runInternalRoughing(in Inputs) ([]*toolpath.Toolpath, error) {
	bore, ok := largestDrillFeature(in)
	if !ok {
		return nil, nil
	}
	// Bounds clamp to the detected hole: rough from the pre-drilled
	// diameter out to the bore target.
	preDrill := bore.Diameter
	if in.LargestDrillSize > 0 {
		preDrill = math.Min(bore.Diameter, in.LargestDrillSize)
	}
	if bore.Diameter-preDrill < 0.01 {
		return nil, nil
	}

	params := toolpath.DefaultRoughingParams()
	params.StartDiameter = preDrill
	params.EndDiameter = bore.Diameter
	params.StartZ = bore.Axial
	params.EndZ = bore.Axial - bore.Depth
	params.DepthOfCut = 1.0
	params.StockAllowance = 0.3
	params.FeedRate = 120.0
	params.Cancelled = p.cancelled

	tp, err := toolpath.PlanInternalRoughing(params, in.InternalRoughingTool, in.Profile)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}

func (p *Pipeline) runInternalFinishing(in Inputs) ([]*toolpath.Toolpath, error) {
	bore, ok := largestDrillFeature(in)
	if !ok || in.Profile.IsEmpty() {
		return nil, nil
	}
	params := toolpath.DefaultFinishingParams()
	params.StartZ = bore.Axial
	params.EndZ = bore.Axial - bore.Depth
	params.Passes = in.InternalFinishingPasses
	params.StockAllowance = 0.3
	params.FinalStockAllowance = in.FinishingAllowance
	params.SurfaceSpeed = 180.0
	params.Internal = true

	tp, err := toolpath.PlanFinishing(params, in.InternalFinishingTool, in.Profile)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}

func (p *Pipeline) runGrooving(in Inputs, grooves []features.Feature, internal bool) ([]*toolpath.Toolpath, error) {
	var paths []*toolpath.Toolpath
	for _, f := range grooves {
		if p.cancelled() {
			return nil, toolpath.ErrPlanCancelled
		}
		params := toolpath.DefaultGroovingParams()
		params.GrooveDiameter = f.Diameter
		params.GrooveDepth = f.Depth
		params.GrooveZ = f.Axial
		params.Internal = internal
		if w, ok := f.Extra["width"]; ok && w > 0 {
			params.GrooveWidth = w
		}
		if internal {
			params.FeedRate = 0.015
		}

		tool := in.ExternalGroovingTool
		if internal {
			tool = in.InternalGroovingTool
		}
		tp, err := toolpath.PlanGrooving(params, tool)
		if err != nil {
			return nil, err
		}
		paths = append(paths, tp)
	}
	return paths, nil
}

func (p *Pipeline) runExternalRoughing(in Inputs) ([]*toolpath.Toolpath, error) {
	params := toolpath.DefaultRoughingParams()
	params.StockAllowance = in.RoughingAllowance
	params.StartDiameter = in.RawMaterialDiameter
	params.Cancelled = p.cancelled

	if !in.Profile.IsEmpty() {
		b := in.Profile.Bounds()
		params.EndDiameter = b.RadialMin * 2
		params.StartZ = b.AxialMax
		params.EndZ = b.AxialMin
		params.FollowProfile = true
	} else {
		params.EndDiameter = math.Max(in.RawMaterialDiameter-2*params.DepthOfCut, 0)
		params.StartZ = in.Z0
		params.EndZ = in.Z0 - in.RawMaterialLength
		params.FollowProfile = false
	}

	tp, err := toolpath.PlanExternalRoughing(params, in.ExternalRoughingTool, in.Profile)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}

func (p *Pipeline) runExternalFinishing(in Inputs) ([]*toolpath.Toolpath, error) {
	if in.Profile.IsEmpty() {
		return nil, errOperation("ExternalFinishing", "no profile available")
	}
	b := in.Profile.Bounds()

	params := toolpath.DefaultFinishingParams()
	params.StartZ = b.AxialMax
	params.EndZ = b.AxialMin
	params.Passes = in.ExternalFinishingPasses
	params.StockAllowance = in.RoughingAllowance
	params.FinalStockAllowance = in.FinishingAllowance

	tp, err := toolpath.PlanFinishing(params, in.ExternalFinishingTool, in.Profile)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}

func (p *Pipeline) runChamfering(in Inputs) ([]*toolpath.Toolpath, error) {
	var paths []*toolpath.Toolpath
	for _, f := range in.ChamferFeatures {
		if p.cancelled() {
			return nil, toolpath.ErrPlanCancelled
		}
		params := toolpath.DefaultChamferingParams()
		params.ChamferSize = math.Max(f.Depth, 0.1)
		params.StartZ = f.Axial
		params.StartDiameter = f.Diameter
		params.EndDiameter = math.Max((f.Radial-params.ChamferSize)*2, 0)
		params.External = !f.Internal
		if a, ok := f.Extra["angle"]; ok && a > 0 && a < 90 {
			params.ChamferAngle = a
		}

		tp, err := toolpath.PlanChamfering(params, in.ChamferingTool)
		if err != nil {
			return nil, err
		}
		paths = append(paths, tp)
	}
	return paths, nil
}

func (p *Pipeline) runThreading(in Inputs) ([]*toolpath.Toolpath, error) {
	var paths []*toolpath.Toolpath
	for _, f := range in.ThreadFeatures {
		if p.cancelled() {
			return nil, toolpath.ErrPlanCancelled
		}
		params := toolpath.DefaultThreadingParams()
		params.MajorDiameter = f.Diameter
		params.StartZ = f.Axial
		params.EndZ = f.Axial - f.Depth
		params.Internal = f.Internal
		params.Cancelled = p.cancelled
		if v, ok := f.Extra["pitch"]; ok && v > 0 {
			params.Pitch = v
			params.ThreadDepth = 0.6 * v
		}
		if v, ok := f.Extra["depth"]; ok && v > 0 {
			params.ThreadDepth = v
		}
		if v, ok := f.Extra["passes"]; ok && v >= 1 {
			params.Passes = int(v)
		}

		tp, err := toolpath.PlanThreading(params, in.ThreadingTool)
		if err != nil {
			return nil, err
		}
		paths = append(paths, tp)
	}
	return paths, nil
}

func (p *Pipeline) runParting(in Inputs) ([]*toolpath.Toolpath, error) {
	params := toolpath.DefaultPartingParams()
	params.PartingDiameter = in.RawMaterialDiameter
	params.PartingZ = in.Z0 - in.PartLength - in.PartingAllowance

	tp, err := toolpath.PlanParting(params, in.PartingTool)
	if err != nil {
		return nil, err
	}
	return []*toolpath.Toolpath{tp}, nil
}
