// Package display projects lathe-frame toolpaths into viewer coordinates.
// Each toolpath is cloned, carried through the workpiece transform, and
// mapped into the viewer's XZ plane: (axial, radial) becomes
// (x=radial, y=0, z=axial). Display objects are immutable after
// construction and never write back to their source toolpath.
package display

import (
	"math"

	"github.com/chickenmcniggels/intuicam/internal/geom"
	"github.com/chickenmcniggels/intuicam/internal/toolpath"
)

// RGB is a colour with components in [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ColorScheme selects how movement colours are assigned.
type ColorScheme int

const (
	SchemeOperationType ColorScheme = iota
	SchemeDepthBased
	SchemeRainbow
)

// Segment is one coloured line segment in viewer coordinates.
type Segment struct {
	Start geom.Point3D `json:"start"`
	End   geom.Point3D `json:"end"`
	Color RGB          `json:"color"`
	Rapid bool         `json:"rapid"`
}

// Object is the drawable form of one toolpath. It keeps a read-only
// reference to its source for selection queries.
type Object struct {
	Source    *toolpath.Toolpath
	Segments  []Segment
	LineWidth float64
	Scheme    ColorScheme
}

// OperationColor returns the palette colour for an operation kind. The
// values match the source tile colours exactly; the display tests pin them.
func OperationColor(kind toolpath.OperationKind) RGB {
	switch kind {
	case toolpath.Facing:
		return RGB{0.0, 0.8, 0.2}
	case toolpath.ExternalRoughing:
		return RGB{0.9, 0.1, 0.1}
	case toolpath.InternalRoughing:
		return RGB{0.65, 0.1, 0.25}
	case toolpath.ExternalFinishing:
		return RGB{0.0, 0.4, 0.9}
	case toolpath.InternalFinishing:
		return RGB{0.0, 0.6, 0.7}
	case toolpath.Drilling:
		return RGB{0.9, 0.9, 0.0}
	case toolpath.ExternalGrooving:
		return RGB{0.9, 0.0, 0.9}
	case toolpath.InternalGrooving:
		return RGB{0.7, 0.0, 0.7}
	case toolpath.Chamfering:
		return RGB{0.0, 0.9, 0.9}
	case toolpath.Threading:
		return RGB{0.5, 0.0, 0.9}
	case toolpath.Parting:
		return RGB{1.0, 0.5, 0.0}
	default:
		return RGB{0.5, 0.5, 0.5}
	}
}

// schemeFor picks the colour scheme per operation kind: finishing renders
// depth-based, threading rainbow, everything else by operation colour.
func schemeFor(kind toolpath.OperationKind) ColorScheme {
	switch kind {
	case toolpath.ExternalFinishing, toolpath.InternalFinishing:
		return SchemeDepthBased
	case toolpath.Threading:
		return SchemeRainbow
	default:
		return SchemeOperationType
	}
}

// lineWidthFor returns the per-operation display line width.
func lineWidthFor(kind toolpath.OperationKind) float64 {
	switch kind {
	case toolpath.Facing, toolpath.ExternalGrooving, toolpath.InternalGrooving:
		return 2.5
	case toolpath.ExternalFinishing, toolpath.InternalFinishing, toolpath.Chamfering:
		return 1.5
	case toolpath.Parting:
		return 3.0
	default:
		return 2.0
	}
}

// Project converts a timeline into display objects, applying the workpiece
// transform to every movement position first. The timeline toolpaths are
// never mutated; each object works on its own clone.
func Project(timeline []*toolpath.Toolpath, workpieceTransform geom.Matrix4x4) []Object {
	var objects []Object
	for _, src := range timeline {
		if src == nil || len(src.Movements) == 0 {
			continue
		}
		clone := src.Clone()
		clone.ApplyTransform(workpieceTransform)

		obj := Object{
			Source:    src,
			LineWidth: lineWidthFor(src.Operation),
			Scheme:    schemeFor(src.Operation),
		}

		minZ, maxZ := depthRange(clone)
		total := len(clone.Movements)
		prev := toDisplay(clone.Movements[0].Position)
		for i := 1; i < total; i++ {
			m := clone.Movements[i]
			cur := toDisplay(m.Position)
			obj.Segments = append(obj.Segments, Segment{
				Start: prev,
				End:   cur,
				Color: movementColor(obj.Scheme, m, i, total, minZ, maxZ),
				Rapid: m.Kind == toolpath.Rapid,
			})
			prev = cur
		}
		objects = append(objects, obj)
	}
	return objects
}

// toDisplay maps a lathe point into the viewer's XZ plane.
func toDisplay(p geom.ProfilePoint) geom.Point3D {
	return geom.Point3D{X: p.Radial, Y: 0, Z: p.Axial}
}

func movementColor(scheme ColorScheme, m toolpath.Movement, index, total int, minZ, maxZ float64) RGB {
	switch scheme {
	case SchemeDepthBased:
		return depthColor(m.Position.Axial, minZ, maxZ)
	case SchemeRainbow:
		return rainbowColor(float64(index), 0, float64(total))
	default:
		return OperationColor(m.Operation)
	}
}

// depthColor fades from blue at the deepest axial position to red at the
// shallowest.
func depthColor(z, minZ, maxZ float64) RGB {
	if maxZ <= minZ {
		return RGB{0.5, 0.5, 0.5}
	}
	t := (z - minZ) / (maxZ - minZ)
	return RGB{R: t, G: 0, B: 1 - t}
}

// rainbowColor maps a value in [min, max) onto the HSV hue circle.
func rainbowColor(value, min, max float64) RGB {
	if max <= min {
		return RGB{0.5, 0.5, 0.5}
	}
	h := 360 * (value - min) / (max - min)
	c := 1.0
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	switch {
	case h < 60:
		return RGB{c, x, 0}
	case h < 120:
		return RGB{x, c, 0}
	case h < 180:
		return RGB{0, c, x}
	case h < 240:
		return RGB{0, x, c}
	case h < 300:
		return RGB{x, 0, c}
	default:
		return RGB{c, 0, x}
	}
}

func depthRange(tp *toolpath.Toolpath) (minZ, maxZ float64) {
	minZ, maxZ = math.Inf(1), math.Inf(-1)
	for _, m := range tp.Movements {
		minZ = math.Min(minZ, m.Position.Axial)
		maxZ = math.Max(maxZ, m.Position.Axial)
	}
	return minZ, maxZ
}
