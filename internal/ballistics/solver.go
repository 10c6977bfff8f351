// internal/ballistics/solver.go
package ballistics

import (
	"fmt"
	"math"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

// ErrChargeOutOfRange is returned when the requested charge-ring count is
// outside [0, 4]. Table lookups are undefined past that bound, so the
// solver rejects it at the boundary instead of indexing blind.
var ErrChargeOutOfRange = fmt.Errorf("charge rings must be within [0, %d]", NumCharges-1)

// Solve computes the firing solution for a single charge-ring count.
// It is a pure function: coordinates may be negative or outside the map's
// nominal bounds, a colocated mortar and target yield bearing 0, and the
// only error is a charge outside [0, 4].
func Solve(fm core.FireMission, charge int) (core.ChargeSolution, error) {
	if charge < 0 || charge >= NumCharges {
		return core.ChargeSolution{}, ErrChargeOutOfRange
	}

	tbl := tableFor(fm.Faction)
	ct := &tbl.Charges[charge]

	dist := fm.Mortar.XY().DistanceTo(fm.Target.XY())
	bearingDeg := fm.Mortar.XY().BearingTo(fm.Target.XY())
	// A bearing just under 360° can round up to a full circle of mils;
	// the sight reads that as 0.
	bearingMils := math.Mod(math.Round(bearingDeg*tbl.MilsPerCircle/360), tbl.MilsPerCircle)

	inRange := dist >= tbl.MinRange && dist <= ct.MaxRange

	elevMils := float64(fallbackMils)
	if inRange {
		elevMils = interpolate(ct.Knots, dist)
	}

	// Height-difference correction: half the vertical delta in meters,
	// added in mils. A linear approximation, not derived ballistics.
	heightDiff := fm.Target.Z - fm.Mortar.Z
	correction := math.Round(heightDiff / 2)

	return core.ChargeSolution{
		ChargeRings:   charge,
		Faction:       fm.Faction,
		Shell:         fm.Shell,
		Distance:      int(math.Round(dist)),
		BearingDeg:    int(math.Round(bearingDeg)) % 360,
		BearingMils:   int(bearingMils),
		ElevationMils: int(math.Round(elevMils + correction)),
		ElevationDiff: int(math.Round(heightDiff)),
		TimeOfFlight:  timeOfFlight(dist, charge),
		InRange:       inRange,
		MinRange:      int(tbl.MinRange),
		MaxRange:      int(ct.MaxRange),
	}, nil
}

// SolveAll computes the full solution set, one ChargeSolution per charge
// ring count 0-4. The charge levels are independent of each other.
func SolveAll(fm core.FireMission) (core.SolutionSet, error) {
	var set core.SolutionSet
	for charge := 0; charge < NumCharges; charge++ {
		sol, err := Solve(fm, charge)
		if err != nil {
			return core.SolutionSet{}, err
		}
		set[charge] = sol
	}
	return set, nil
}

// interpolate returns the tube elevation in mils for the given distance
// by linear interpolation between the bracketing knots. Distances before
// the first knot or past the last clamp to the end values; a distance
// exactly at a knot returns the table value with no interpolation error.
func interpolate(knots []rangeKnot, dist float64) float64 {
	if len(knots) == 0 {
		return fallbackMils
	}
	if dist <= knots[0].Distance {
		return knots[0].Mils
	}
	last := knots[len(knots)-1]
	if dist >= last.Distance {
		return last.Mils
	}
	for i := 1; i < len(knots); i++ {
		lo, hi := knots[i-1], knots[i]
		if dist > hi.Distance {
			continue
		}
		frac := (dist - lo.Distance) / (hi.Distance - lo.Distance)
		return lo.Mils + frac*(hi.Mils-lo.Mils)
	}
	return last.Mils
}

// timeOfFlight approximates flight time in seconds from distance and a
// charge-dependent base velocity. A display heuristic, not a physical
// simulation.
func timeOfFlight(dist float64, charge int) int {
	velocity := float64(200 + 50*charge)
	return int(math.Round(dist/velocity*10)) + 3
}
