// Package toolpath defines movements, toolpaths, and one planner per
// canonical lathe operation. Planners are pure: they validate their
// parameters, then emit the full movement sequence, or emit nothing at all.
package toolpath

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/google/uuid"
)

// OperationKind tags the canonical lathe operations.
type OperationKind int

const (
	Unknown OperationKind = iota
	Facing
	ExternalRoughing
	InternalRoughing
	ExternalFinishing
	InternalFinishing
	Drilling
	ExternalGrooving
	InternalGrooving
	Chamfering
	Threading
	Parting
)

func (k OperationKind) String() string {
	switch k {
	case Facing:
		return "Facing"
	case ExternalRoughing:
		return "ExternalRoughing"
	case InternalRoughing:
		return "InternalRoughing"
	case ExternalFinishing:
		return "ExternalFinishing"
	case InternalFinishing:
		return "InternalFinishing"
	case Drilling:
		return "Drilling"
	case ExternalGrooving:
		return "ExternalGrooving"
	case InternalGrooving:
		return "InternalGrooving"
	case Chamfering:
		return "Chamfering"
	case Threading:
		return "Threading"
	case Parting:
		return "Parting"
	default:
		return "Unknown"
	}
}

// MoveKind classifies a single movement.
type MoveKind int

const (
	Rapid MoveKind = iota
	Linear
	CircularCW
	CircularCCW
)

func (k MoveKind) String() string {
	switch k {
	case Rapid:
		return "Rapid"
	case Linear:
		return "Linear"
	case CircularCW:
		return "CircularCW"
	case CircularCCW:
		return "CircularCCW"
	default:
		return "Unknown"
	}
}

// Movement is one parameterised move in lathe coordinates. ArcCenter is set
// iff Kind is CircularCW or CircularCCW.
type Movement struct {
	Kind          MoveKind           `json:"kind"`
	Position      geom.ProfilePoint  `json:"position"`
	FeedRate      float64            `json:"feed_rate"`      // mm/min, mm/rev for finishing and grooving (0 for rapids)
	SpindleSpeed  float64            `json:"spindle_speed"`  // RPM
	Operation     OperationKind      `json:"operation"`
	OperationName string             `json:"operation_name"`
	ArcCenter     *geom.ProfilePoint `json:"arc_center,omitempty"`
	Comment       string             `json:"comment,omitempty"`
}

// ToolRef is the tool geometry a planner needs. The full tool record lives
// in the tool database; planners consume but never modify tools.
type ToolRef struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	Diameter     float64 `json:"diameter"`      // mm
	Width        float64 `json:"width"`         // mm, insert width for grooving/parting
	CornerRadius float64 `json:"corner_radius"` // mm
}

// Toolpath is an ordered movement sequence produced by one operation.
type Toolpath struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Operation OperationKind `json:"operation"`
	Tool      ToolRef       `json:"tool"`
	Movements []Movement    `json:"movements"`
}

// NewToolpath creates an empty toolpath with a generated ID.
func NewToolpath(name string, kind OperationKind, tool ToolRef) *Toolpath {
	return &Toolpath{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Operation: kind,
		Tool:      tool,
	}
}

// add appends a movement stamped with the toolpath's operation kind and name.
func (tp *Toolpath) add(m Movement) {
	m.Operation = tp.Operation
	m.OperationName = tp.Name
	tp.Movements = append(tp.Movements, m)
}

// Clone returns a deep copy of the toolpath with the same ID.
func (tp *Toolpath) Clone() *Toolpath {
	out := &Toolpath{
		ID:        tp.ID,
		Name:      tp.Name,
		Operation: tp.Operation,
		Tool:      tp.Tool,
		Movements: make([]Movement, len(tp.Movements)),
	}
	copy(out.Movements, tp.Movements)
	for i, m := range tp.Movements {
		if m.ArcCenter != nil {
			c := *m.ArcCenter
			out.Movements[i].ArcCenter = &c
		}
	}
	return out
}

// ApplyTransform maps every movement position and arc centre through the
// given affine. Lathe points embed into 3D as (x=radial, y=0, z=axial) and
// come back as (axial=z, radial=hypot(x,y)); the embedding and return are
// the only places the 2D/3D conversion happens.
func (tp *Toolpath) ApplyTransform(m geom.Matrix4x4) {
	mapPoint := func(p geom.ProfilePoint) geom.ProfilePoint {
		q := m.Apply(geom.Point3D{X: p.Radial, Y: 0, Z: p.Axial})
		return geom.ProfilePoint{Axial: q.Z, Radial: math.Hypot(q.X, q.Y)}
	}
	for i := range tp.Movements {
		tp.Movements[i].Position = mapPoint(tp.Movements[i].Position)
		if tp.Movements[i].ArcCenter != nil {
			c := mapPoint(*tp.Movements[i].ArcCenter)
			tp.Movements[i].ArcCenter = &c
		}
	}
}

// CutLength returns the total length of non-rapid movements.
func (tp *Toolpath) CutLength() float64 {
	var total float64
	for i := 1; i < len(tp.Movements); i++ {
		if tp.Movements[i].Kind == Rapid {
			continue
		}
		total += tp.Movements[i-1].Position.DistanceTo(tp.Movements[i].Position)
	}
	return total
}

// InvalidParamsError reports that a planner rejected its parameters. No
// movements are emitted when this is returned.
type InvalidParamsError struct {
	Operation OperationKind
	Detail    string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("%s: invalid parameters: %s", e.Operation, e.Detail)
}

func invalid(op OperationKind, format string, args ...any) error {
	return &InvalidParamsError{Operation: op, Detail: fmt.Sprintf(format, args...)}
}

// ErrPlanCancelled is returned by long-running planners when their
// cancellation hook reports a pending cancel request.
type planCancelled struct{}

func (planCancelled) Error() string { return "plan cancelled" }

// ErrPlanCancelled is the sentinel for cooperative planner cancellation.
var ErrPlanCancelled error = planCancelled{}

// pp is shorthand for a profile point in planner code.
func pp(axial, radial float64) geom.ProfilePoint {
	return geom.ProfilePoint{Axial: axial, Radial: radial}
}
