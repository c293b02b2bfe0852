package geom

import (
	"math"
	"testing"
)

func TestIdentity_LeavesPointsAlone(t *testing.T) {
	p := Point3D{X: 1, Y: 2, Z: 3}
	if got := Identity().Apply(p); got != p {
		t.Errorf("identity moved %v to %v", p, got)
	}
}

func TestTranslation(t *testing.T) {
	m := Translation(Vector3D{X: 1, Y: -2, Z: 3})
	got := m.Apply(Point3D{X: 10, Y: 10, Z: 10})
	want := Point3D{X: 11, Y: 8, Z: 13}
	if got != want {
		t.Errorf("translated to %v, want %v", got, want)
	}
}

func TestRotation_QuarterTurnAboutZ(t *testing.T) {
	m := Rotation(Vector3D{Z: 1}, math.Pi/2)
	got := m.Apply(Point3D{X: 1, Y: 0, Z: 5})
	if math.Abs(got.X) > 1e-12 || math.Abs(got.Y-1) > 1e-12 || math.Abs(got.Z-5) > 1e-12 {
		t.Errorf("quarter turn moved (1,0,5) to %v, want (0,1,5)", got)
	}
}

func TestMul_ComposesInApplicationOrder(t *testing.T) {
	rot := Rotation(Vector3D{Z: 1}, math.Pi/2)
	trans := Translation(Vector3D{X: 10})

	// trans.Mul(rot): rotate first, then translate.
	got := trans.Mul(rot).Apply(Point3D{X: 1})
	if math.Abs(got.X-10) > 1e-12 || math.Abs(got.Y-1) > 1e-12 {
		t.Errorf("composed transform produced %v, want (10,1,0)", got)
	}
}

func TestRotation_NormalizesAxis(t *testing.T) {
	a := Rotation(Vector3D{Z: 1}, math.Pi/3)
	b := Rotation(Vector3D{Z: 42}, math.Pi/3)
	p := Point3D{X: 2, Y: 1, Z: 0}
	pa, pb := a.Apply(p), b.Apply(p)
	if math.Abs(pa.X-pb.X) > 1e-12 || math.Abs(pa.Y-pb.Y) > 1e-12 {
		t.Errorf("axis scaling changed the rotation: %v vs %v", pa, pb)
	}
}

func TestVector3D_Normalized(t *testing.T) {
	v := Vector3D{X: 3, Y: 4}.Normalized()
	if math.Abs(v.Magnitude()-1) > 1e-12 {
		t.Errorf("normalized magnitude %f, want 1", v.Magnitude())
	}
	zero := Vector3D{}.Normalized()
	if zero != (Vector3D{}) {
		t.Errorf("zero vector should normalize to itself, got %v", zero)
	}
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox{Min: Point3D{X: -1, Y: -1, Z: 0}, Max: Point3D{X: 1, Y: 1, Z: 10}}
	if !b.Contains(Point3D{Z: 5}) {
		t.Error("box should contain its centre line")
	}
	if b.Contains(Point3D{X: 2}) {
		t.Error("box should not contain points outside")
	}
	if got := b.Size(); got != (Vector3D{X: 2, Y: 2, Z: 10}) {
		t.Errorf("size %v", got)
	}
	if got := b.Center(); got != (Point3D{X: 0, Y: 0, Z: 5}) {
		t.Errorf("center %v", got)
	}
}
