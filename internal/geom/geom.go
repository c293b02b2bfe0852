// Package geom provides the lathe coordinate frame and the small set of
// geometric value types shared by the toolpath pipeline.
//
// Lathe coordinates use named fields throughout: Axial is the distance along
// the turning axis from the chuck face (positive away from the chuck) and
// Radial is the distance from the turning axis. Radial values are never
// negative in 2D profiles. Conversion to and from 3D display coordinates
// happens explicitly at the display and import boundaries, never implicitly.
package geom

import "math"

// ProfilePoint is a point in the 2D lathe plane.
type ProfilePoint struct {
	Axial  float64 `json:"axial"`  // mm along the turning axis
	Radial float64 `json:"radial"` // mm from the turning axis, >= 0
}

// DistanceTo returns the Euclidean distance between two profile points.
func (p ProfilePoint) DistanceTo(q ProfilePoint) float64 {
	da := p.Axial - q.Axial
	dr := p.Radial - q.Radial
	return math.Sqrt(da*da + dr*dr)
}

// Point3D represents a 3D coordinate in mm.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3D represents a 3D direction or displacement.
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the vector length.
func (v Vector3D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction. The zero vector
// is returned unchanged.
func (v Vector3D) Normalized() Vector3D {
	m := v.Magnitude()
	if m < 1e-12 {
		return v
	}
	return Vector3D{X: v.X / m, Y: v.Y / m, Z: v.Z / m}
}

// Dot returns the dot product of two vectors.
func (v Vector3D) Dot(o Vector3D) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v x o.
func (v Vector3D) Cross(o Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Axis is a ray defining the turning axis of the workpiece, expressed in the
// same frame as the part solid.
type Axis struct {
	Origin    Point3D  `json:"origin"`
	Direction Vector3D `json:"direction"`
}

// BoundingBox is an axis-aligned box in the solid's frame.
type BoundingBox struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size returns the box extents along each axis.
func (b BoundingBox) Size() Vector3D {
	return Vector3D{X: b.Max.X - b.Min.X, Y: b.Max.Y - b.Min.Y, Z: b.Max.Z - b.Min.Z}
}

// Center returns the box midpoint.
func (b BoundingBox) Center() Point3D {
	return Point3D{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}
