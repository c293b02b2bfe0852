package toolpath

import (
	"errors"
	"math"
	"testing"
)

func testTool() ToolRef {
	return ToolRef{ID: "t1", Label: "CNMG 120408", Diameter: 12, Width: 3}
}

// newBilletFacingParams matches a 20mm diameter, 50mm long billet with a
// 1mm facing allowance: front face at Z=50, approach from Z=51.
func newBilletFacingParams() FacingParams {
	p := DefaultFacingParams()
	p.StartZ = 51
	p.EndZ = 49
	p.MaxRadius = 10
	p.MinRadius = 0
	p.DepthOfCut = 0.5
	return p
}

func TestPlanFacing_PassCount(t *testing.T) {
	tp, err := PlanFacing(newBilletFacingParams(), testTool())
	if err != nil {
		t.Fatalf("PlanFacing returned error: %v", err)
	}

	// floor(2/0.5) = 4 passes plus one final pass at the target Z.
	// Each pass emits rapid + cut + retract.
	if got, want := len(tp.Movements), 5*3; got != want {
		t.Errorf("expected %d movements, got %d", want, got)
	}
}

func TestPlanFacing_PassPositions(t *testing.T) {
	tp, err := PlanFacing(newBilletFacingParams(), testTool())
	if err != nil {
		t.Fatalf("PlanFacing returned error: %v", err)
	}

	var cutZs []float64
	for i, m := range tp.Movements {
		if m.Kind == Linear && m.Position.Radial == 0 {
			cutZs = append(cutZs, tp.Movements[i].Position.Axial)
		}
	}
	want := []float64{51, 50.5, 50, 49.5, 49}
	if len(cutZs) != len(want) {
		t.Fatalf("expected %d facing cuts, got %d", len(want), len(cutZs))
	}
	for i := range want {
		if math.Abs(cutZs[i]-want[i]) > 1e-9 {
			t.Errorf("pass %d at Z=%.3f, want %.3f", i, cutZs[i], want[i])
		}
	}
}

func TestPlanFacing_SweepStartsOutsideEnvelope(t *testing.T) {
	p := newBilletFacingParams()
	tp, err := PlanFacing(p, testTool())
	if err != nil {
		t.Fatalf("PlanFacing returned error: %v", err)
	}

	first := tp.Movements[0]
	if first.Kind != Rapid {
		t.Errorf("first movement should be a rapid, got %s", first.Kind)
	}
	if want := p.MaxRadius + p.Clearance; first.Position.Radial != want {
		t.Errorf("sweep starts at radius %.3f, want %.3f", first.Position.Radial, want)
	}
}

func TestPlanFacing_OperationStamping(t *testing.T) {
	tp, err := PlanFacing(newBilletFacingParams(), testTool())
	if err != nil {
		t.Fatalf("PlanFacing returned error: %v", err)
	}
	if tp.Operation != Facing {
		t.Fatalf("toolpath operation is %s, want Facing", tp.Operation)
	}
	for i, m := range tp.Movements {
		if m.Operation != Facing {
			t.Errorf("movement %d stamped %s, want Facing", i, m.Operation)
		}
		if m.OperationName == "" {
			t.Errorf("movement %d has no operation name", i)
		}
	}
}

func TestPlanFacing_InsideOut(t *testing.T) {
	p := newBilletFacingParams()
	p.Strategy = FacingInsideOut
	tp, err := PlanFacing(p, testTool())
	if err != nil {
		t.Fatalf("PlanFacing returned error: %v", err)
	}
	if tp.Movements[0].Position.Radial != p.MinRadius {
		t.Errorf("inside-out sweep should start at min radius, got %.3f", tp.Movements[0].Position.Radial)
	}
}

func TestPlanFacing_RejectsInvertedZ(t *testing.T) {
	p := newBilletFacingParams()
	p.StartZ, p.EndZ = p.EndZ, p.StartZ
	tp, err := PlanFacing(p, testTool())
	if tp != nil {
		t.Error("no toolpath should be emitted on invalid parameters")
	}
	var inv *InvalidParamsError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}
	if inv.Operation != Facing {
		t.Errorf("error names operation %s, want Facing", inv.Operation)
	}
}

func TestPlanFacing_RejectsZeroDepthOfCut(t *testing.T) {
	p := newBilletFacingParams()
	p.DepthOfCut = 0
	if _, err := PlanFacing(p, testTool()); err == nil {
		t.Error("expected error for zero depth of cut")
	}
}
