package pipeline

import (
	"github.com/chickenmcniggels/intuicam/internal/features"
	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/profile"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
)

// ProgressFunc receives a monotonically non-decreasing fraction in [0, 1]
// and a short status string. It is called on the driver's goroutine and
// must return quickly.
type ProgressFunc func(fraction float64, status string)

// Inputs is everything one pipeline run needs. The driver owns the value
// for the duration of the run and never mutates the referenced profile or
// tool records.
type Inputs struct {
	Axis    geom.Axis        `json:"axis"`
	Profile *profile.Profile `json:"profile"`

	// Raw stock and datum.
	RawMaterialDiameter float64 `json:"raw_material_diameter"`
	RawMaterialLength   float64 `json:"raw_material_length"`
	Z0                  float64 `json:"z0"` // axial datum: front face of raw stock
	PartLength          float64 `json:"part_length"`

	// Allowances.
	FacingAllowance    float64 `json:"facing_allowance"`
	FacingDepthOfCut   float64 `json:"facing_depth_of_cut"`
	RoughingAllowance  float64 `json:"roughing_allowance"`  // stock left for finishing
	FinishingAllowance float64 `json:"finishing_allowance"` // stock left after finishing
	PartingAllowance   float64 `json:"parting_allowance"`

	// Operation enable flags. Internal operations additionally require
	// MachineInternalFeatures.
	Facing                  bool `json:"facing"`
	Drilling                bool `json:"drilling"`
	InternalRoughing        bool `json:"internal_roughing"`
	InternalFinishing       bool `json:"internal_finishing"`
	InternalGrooving        bool `json:"internal_grooving"`
	ExternalRoughing        bool `json:"external_roughing"`
	ExternalFinishing       bool `json:"external_finishing"`
	ExternalGrooving        bool `json:"external_grooving"`
	Chamfering              bool `json:"chamfering"`
	Threading               bool `json:"threading"`
	Parting                 bool `json:"parting"`
	MachineInternalFeatures bool `json:"machine_internal_features"`

	ExternalFinishingPasses int     `json:"external_finishing_passes"`
	InternalFinishingPasses int     `json:"internal_finishing_passes"`
	LargestDrillSize        float64 `json:"largest_drill_size"`

	// Per-operation tools.
	FacingTool            toolpath.ToolRef `json:"facing_tool"`
	DrillingTool          toolpath.ToolRef `json:"drilling_tool"`
	InternalRoughingTool  toolpath.ToolRef `json:"internal_roughing_tool"`
	InternalFinishingTool toolpath.ToolRef `json:"internal_finishing_tool"`
	InternalGroovingTool  toolpath.ToolRef `json:"internal_grooving_tool"`
	ExternalRoughingTool  toolpath.ToolRef `json:"external_roughing_tool"`
	ExternalFinishingTool toolpath.ToolRef `json:"external_finishing_tool"`
	ExternalGroovingTool  toolpath.ToolRef `json:"external_grooving_tool"`
	ChamferingTool        toolpath.ToolRef `json:"chamfering_tool"`
	ThreadingTool         toolpath.ToolRef `json:"threading_tool"`
	PartingTool           toolpath.ToolRef `json:"parting_tool"`

	// Detected features grouped by the operation that consumes them.
	// Thread features are always caller-supplied (UI face selection);
	// the detector never produces them.
	DrillFeatures          []features.Feature `json:"drill_features"`
	InternalGrooveFeatures []features.Feature `json:"internal_groove_features"`
	ExternalGrooveFeatures []features.Feature `json:"external_groove_features"`
	ChamferFeatures        []features.Feature `json:"chamfer_features"`
	ThreadFeatures         []features.Feature `json:"thread_features"`

	Progress ProgressFunc `json:"-"`
}

// DefaultInputs returns inputs with every operation disabled and the
// standard allowances filled in.
func DefaultInputs() Inputs {
	return Inputs{
		FacingAllowance:         1.0,
		FacingDepthOfCut:        0.5,
		RoughingAllowance:       0.5,
		FinishingAllowance:      0.05,
		PartingAllowance:        2.0,
		ExternalFinishingPasses: 1,
		InternalFinishingPasses: 1,
		LargestDrillSize:        12.0,
	}
}
