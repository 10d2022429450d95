package wheel

import (
	"math"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
)

func TestSolveAlignsForAllSegments(t *testing.T) {
	l := mustLayout(merchLabels)
	currents := []float64{0, 1, 29.999, 360, 1234.5678, 98765.4321, -45}
	for _, pointer := range []float64{0, 90, 255, -30, 720.5} {
		s := Solver{PointerAngle: pointer, MinFullTurns: 8}
		for i := 0; i < l.Len(); i++ {
			for _, cur := range currents {
				target, err := s.Solve(l, i, cur)
				if err != nil {
					t.Fatalf("Solve: %v", err)
				}
				if target <= cur {
					t.Fatalf("target %v not beyond current %v", target, cur)
				}
				if target-cur < 8*360 || target-cur >= 9*360 {
					t.Fatalf("advance %v outside [8,9) turns", target-cur)
				}
				if err := Verify(l, i, target, pointer); err != nil {
					t.Fatalf("pointer=%v index=%d current=%v: %v", pointer, i, cur, err)
				}
				if got := LandedIndex(l, target, pointer); got != i {
					t.Fatalf("LandedIndex=%d want %d", got, i)
				}
			}
		}
	}
}

func TestSolveConcreteScenario(t *testing.T) {
	l := mustLayout(merchLabels)
	s := Solver{PointerAngle: 90, MinFullTurns: 8}
	// 扇区 6 中心 195，所需角度 (90-195) mod 360 = 255
	target, err := s.Solve(l, 6, 0)
	if err != nil {
		t.Fatal(err)
	}
	if target < 8*360 {
		t.Fatalf("target %v below 8 turns", target)
	}
	if got := Normalize(target); math.Abs(got-255) > AlignTolerance {
		t.Fatalf("target mod 360 = %v want 255", got)
	}
}

func TestSolveAlreadyAlignedStillAdvances(t *testing.T) {
	l := mustLayout(merchLabels)
	s := Solver{PointerAngle: 90, MinFullTurns: 1}
	target, _ := s.Solve(l, 6, 255)
	if target != 255+360 {
		t.Fatalf("target=%v", target)
	}
}

func TestSolveJitterWholeTurns(t *testing.T) {
	l := mustLayout(merchLabels)
	s := Solver{PointerAngle: 255, MinFullTurns: 8, TurnJitter: 8, Rand: &fixedRand{vals: []int{8}}}
	target, err := s.Solve(l, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if target-10 < 16*360 {
		t.Fatalf("jitter not applied: %v", target)
	}
	if err := Verify(l, 2, target, 255); err != nil {
		t.Fatal(err)
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	l := mustLayout(merchLabels)
	s := Solver{PointerAngle: 90, MinFullTurns: 8}
	if _, err := s.Solve(l, 12, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("index 12: %v", err)
	}
	if _, err := s.Solve(l, 0, math.NaN()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NaN: %v", err)
	}
	bad := []Solver{
		{PointerAngle: math.Inf(1), MinFullTurns: 8},
		{PointerAngle: 90, MinFullTurns: 0},
		{PointerAngle: 90, MinFullTurns: 8, TurnJitter: -1},
		{PointerAngle: 90, MinFullTurns: 8, TurnJitter: 2},
	}
	for i, b := range bad {
		if err := b.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: %v", i, err)
		}
	}
}

func TestVerifyDetectsMisalignment(t *testing.T) {
	l := mustLayout(merchLabels)
	// 用错误的坐标约定（target - C）得到的角度
	wrong := Normalize(90+l.Center(3)) + 8*360
	err := Verify(l, 3, wrong, 90)
	if !errors.Is(err, ErrAlignmentValidationFailed) {
		t.Fatalf("want ALIGNMENT_VALIDATION_FAILED, got %v", err)
	}
	// 跨越 0/360 边界的微小误差仍视为对齐
	edge := Normalize(0-l.Center(0)) + 0.0004
	if err := Verify(l, 0, edge, 360); err != nil {
		t.Fatalf("wrap-aware tolerance: %v", err)
	}
}
