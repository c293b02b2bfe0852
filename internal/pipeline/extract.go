package pipeline

import (
	"errors"
	"math"

	"github.com/chickenmcniggels/intuicam/internal/features"
	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/profile"
)

// Stock sizing factors applied when deriving defaults from part geometry:
// the billet is 5% oversize on radius and 20% oversize on length.
const (
	stockDiameterFactor = 2.1
	stockLengthFactor   = 1.2
)

// ExtractInputsFromPart builds pipeline inputs from a part shape: it
// extracts the 2D profile, derives default raw-stock dimensions from the
// part bounds, and runs feature detection to populate the per-operation
// feature lists. Thread features are left empty; they come from user face
// selection only.
func ExtractInputsFromPart(solid profile.Solid, axis geom.Axis) (Inputs, error) {
	in := DefaultInputs()
	in.Axis = axis

	prof, err := profile.Extract(solid, axis, profile.DefaultExtractionParams())
	if err != nil {
		return in, p2err(err)
	}
	in.Profile = prof

	b := prof.Bounds()
	partLength := b.AxialMax - b.AxialMin
	maxRadius := b.RadialMax

	in.RawMaterialDiameter = maxRadius * stockDiameterFactor
	in.RawMaterialLength = partLength * stockLengthFactor
	in.Z0 = in.RawMaterialLength
	in.PartLength = partLength

	split := features.Split(features.Detect(prof, solid))
	in.DrillFeatures = split.Drill
	in.InternalGrooveFeatures = split.InternalGroove
	in.ExternalGrooveFeatures = split.ExternalGroove
	in.ChamferFeatures = split.Chamfer
	in.ThreadFeatures = split.Thread
	in.MachineInternalFeatures = len(split.Drill) > 0 ||
		len(split.InternalGroove) > 0

	return in, nil
}

// AxialExtent returns the part length implied by the inputs' profile, or
// the configured part length when no profile is present.
func (in Inputs) AxialExtent() float64 {
	if in.Profile.IsEmpty() {
		return in.PartLength
	}
	b := in.Profile.Bounds()
	return math.Abs(b.AxialMax - b.AxialMin)
}

func p2err(err error) *Error {
	var ext *profile.ExtractionError
	if errors.As(err, &ext) {
		return &Error{Kind: KindProfileExtraction, Detail: ext.Reason}
	}
	return &Error{Kind: KindInternal, Detail: err.Error()}
}
