package ballistics

import (
	"errors"
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func usMission(mortar, target core.Position3D) core.FireMission {
	return core.FireMission{
		Mortar:  mortar,
		Target:  target,
		Faction: core.FactionUS,
		Shell:   core.ShellHE,
	}
}

func TestSolve_EndToEndScenario(t *testing.T) {
	fm := usMission(
		core.Position3D{X: 1000, Y: 1000, Z: 0},
		core.Position3D{X: 1100, Y: 1000, Z: 0},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sol.Distance != 100 {
		t.Errorf("expected distance 100, got %d", sol.Distance)
	}
	if sol.BearingDeg != 90 {
		t.Errorf("expected bearing 90, got %d", sol.BearingDeg)
	}
	if sol.BearingMils != 1600 {
		t.Errorf("expected 1600 bearing mils (90deg on a 6400 sight), got %d", sol.BearingMils)
	}
	if !sol.InRange {
		t.Error("expected 100m to be within [100, 600] for charge 0")
	}
	if sol.ElevationMils != 1580 {
		t.Errorf("expected 1580 mils at the 100m knot, got %d", sol.ElevationMils)
	}
	if sol.MinRange != 100 || sol.MaxRange != 600 {
		t.Errorf("expected range band [100, 600], got [%d, %d]", sol.MinRange, sol.MaxRange)
	}
}

func TestSolve_ExactAtTableKnot(t *testing.T) {
	fm := usMission(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 0, Y: 300, Z: 0},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.ElevationMils != 1310 {
		t.Errorf("expected exactly 1310 mils at the 300m knot, got %d", sol.ElevationMils)
	}
	if sol.ElevationDiff != 0 {
		t.Errorf("expected no elevation difference, got %d", sol.ElevationDiff)
	}
}

func TestSolve_InterpolatesBetweenKnots(t *testing.T) {
	// 125m is midway between the 100m (1580) and 150m (1520) knots.
	fm := usMission(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 0, Y: 125, Z: 0},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.ElevationMils != 1550 {
		t.Errorf("expected 1550 mils midway between knots, got %d", sol.ElevationMils)
	}
}

func TestSolve_HeightCorrection(t *testing.T) {
	// Target 50m above the mortar adds round(50/2) = 25 mils.
	fm := usMission(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 0, Y: 300, Z: 50},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.ElevationMils != 1335 {
		t.Errorf("expected 1310+25 mils, got %d", sol.ElevationMils)
	}
	if sol.ElevationDiff != 50 {
		t.Errorf("expected elevation difference 50, got %d", sol.ElevationDiff)
	}
}

func TestSolve_OutOfRangeUsesFallback(t *testing.T) {
	// 5000m is past charge 0's 600m max.
	fm := usMission(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 0, Y: 5000, Z: 0},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.InRange {
		t.Error("expected 5000m to be out of range for charge 0")
	}
	if sol.ElevationMils != fallbackMils {
		t.Errorf("expected fallback elevation %d, got %d", fallbackMils, sol.ElevationMils)
	}
}

func TestSolve_BelowMinRange(t *testing.T) {
	fm := usMission(
		core.Position3D{X: 0, Y: 0, Z: 0},
		core.Position3D{X: 0, Y: 50, Z: 0},
	)

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.InRange {
		t.Error("expected 50m to be below the 100m minimum range")
	}
}

func TestSolve_ChargeOutOfRange(t *testing.T) {
	fm := usMission(core.Position3D{}, core.Position3D{X: 100})

	for _, charge := range []int{-1, 5, 100} {
		_, err := Solve(fm, charge)
		if !errors.Is(err, ErrChargeOutOfRange) {
			t.Errorf("charge %d: expected ErrChargeOutOfRange, got %v", charge, err)
		}
	}
}

func TestSolve_ColocatedMortarAndTarget(t *testing.T) {
	p := core.Position3D{X: 4000, Y: 4000, Z: 10}
	sol, err := Solve(usMission(p, p), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Distance != 0 {
		t.Errorf("expected distance 0, got %d", sol.Distance)
	}
	if sol.BearingDeg != 0 || sol.BearingMils != 0 {
		t.Errorf("expected bearing 0 by convention, got %d deg / %d mils", sol.BearingDeg, sol.BearingMils)
	}
	if sol.InRange {
		t.Error("expected distance 0 to be below minimum range")
	}
}

func TestSolve_RussianSightUses6000Mils(t *testing.T) {
	fm := core.FireMission{
		Mortar:  core.Position3D{X: 1000, Y: 1000},
		Target:  core.Position3D{X: 1100, Y: 1000},
		Faction: core.FactionRU,
		Shell:   core.ShellHE,
	}

	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.BearingMils != 1500 {
		t.Errorf("expected 1500 bearing mils (90deg on a 6000 sight), got %d", sol.BearingMils)
	}
}

func TestSolve_RangeBandPredicate(t *testing.T) {
	for charge := 0; charge < NumCharges; charge++ {
		minR := MinRange(core.FactionUS)
		maxR := MaxRange(core.FactionUS, charge)
		for _, dist := range []float64{minR - 1, minR, (minR + maxR) / 2, maxR, maxR + 1} {
			fm := usMission(
				core.Position3D{X: 0, Y: 0},
				core.Position3D{X: 0, Y: dist},
			)
			sol, err := Solve(fm, charge)
			if err != nil {
				t.Fatalf("charge %d dist %f: unexpected error: %v", charge, dist, err)
			}
			want := dist >= minR && dist <= maxR
			if sol.InRange != want {
				t.Errorf("charge %d dist %f: expected inRange=%v, got %v", charge, dist, want, sol.InRange)
			}
		}
	}
}

func TestSolve_TimeOfFlightScalesWithCharge(t *testing.T) {
	fm := usMission(
		core.Position3D{X: 0, Y: 0},
		core.Position3D{X: 0, Y: 400},
	)

	// 400m at charge 0 base velocity 200: round(400/200*10)+3 = 23.
	sol, err := Solve(fm, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.TimeOfFlight != 23 {
		t.Errorf("expected time of flight 23, got %d", sol.TimeOfFlight)
	}

	// Higher charge means higher velocity means shorter flight.
	sol4, err := Solve(fm, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol4.TimeOfFlight >= sol.TimeOfFlight {
		t.Errorf("expected charge 4 flight (%d) shorter than charge 0 (%d)", sol4.TimeOfFlight, sol.TimeOfFlight)
	}
}

func TestSolveAll_FiveIndependentSolutions(t *testing.T) {
	fm := usMission(
		core.Position3D{X: 1000, Y: 1000},
		core.Position3D{X: 1000, Y: 1900},
	)

	set, err := SolveAll(fm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for charge, sol := range set {
		if sol.ChargeRings != charge {
			t.Errorf("index %d: expected chargeRings %d, got %d", charge, charge, sol.ChargeRings)
		}
		if sol.Distance != 900 {
			t.Errorf("charge %d: expected distance 900, got %d", charge, sol.Distance)
		}
	}
	// 900m is out of band for charge 0 (max 600) but in band for charge 1 (max 1200).
	if set[0].InRange {
		t.Error("expected 900m out of range at charge 0")
	}
	if !set[1].InRange {
		t.Error("expected 900m in range at charge 1")
	}
}

func TestSolve_BearingNearNorthWrapsToZeroMils(t *testing.T) {
	// 359.994° rounds up to a full circle in both mil systems.
	mortar := core.Position3D{X: 1000, Y: 1000}
	target := core.Position3D{X: 999.9, Y: 2000}

	sol, err := Solve(usMission(mortar, target), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.BearingMils != 0 {
		t.Errorf("expected bearing 0 mils at the north wrap, got %d", sol.BearingMils)
	}
	if sol.BearingDeg != 0 {
		t.Errorf("expected bearing 0 degrees at the north wrap, got %d", sol.BearingDeg)
	}

	ru := usMission(mortar, target)
	ru.Faction = core.FactionRU
	sol, err = Solve(ru, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.BearingMils != 0 {
		t.Errorf("expected bearing 0 mils on the 6000-mil sight, got %d", sol.BearingMils)
	}
}
