package ballistics

import (
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func TestTables_MaxRangeStrictlyIncreasing(t *testing.T) {
	for _, faction := range []core.Faction{core.FactionUS, core.FactionRU} {
		for charge := 1; charge < NumCharges; charge++ {
			prev := MaxRange(faction, charge-1)
			cur := MaxRange(faction, charge)
			if cur <= prev {
				t.Errorf("%s: maxRange[%d]=%f not greater than maxRange[%d]=%f",
					faction, charge, cur, charge-1, prev)
			}
		}
	}
}

func TestTables_KnotsOrderedAndMonotonic(t *testing.T) {
	for _, tbl := range []*mortarTable{&m252, &podnos2b14} {
		for charge, ct := range tbl.Charges {
			if len(ct.Knots) < 2 {
				t.Fatalf("%s charge %d: table needs at least 2 knots", tbl.Tube, charge)
			}
			for i := 1; i < len(ct.Knots); i++ {
				if ct.Knots[i].Distance <= ct.Knots[i-1].Distance {
					t.Errorf("%s charge %d: knot %d distance not increasing", tbl.Tube, charge, i)
				}
				if ct.Knots[i].Mils >= ct.Knots[i-1].Mils {
					t.Errorf("%s charge %d: knot %d elevation not decreasing", tbl.Tube, charge, i)
				}
			}
			if last := ct.Knots[len(ct.Knots)-1]; last.Distance != ct.MaxRange {
				t.Errorf("%s charge %d: last knot at %f does not reach maxRange %f",
					tbl.Tube, charge, last.Distance, ct.MaxRange)
			}
		}
	}
}

func TestTables_ElevationBelowVertical(t *testing.T) {
	// A sight can't be set past vertical: a quarter circle in mils.
	for _, tbl := range []*mortarTable{&m252, &podnos2b14} {
		vertical := tbl.MilsPerCircle / 4
		for charge, ct := range tbl.Charges {
			for _, k := range ct.Knots {
				if k.Mils >= vertical {
					t.Errorf("%s charge %d: %f mils at %fm is past vertical (%f)",
						tbl.Tube, charge, k.Mils, k.Distance, vertical)
				}
			}
		}
	}
}

func TestTables_MaxRangeOutsideChargeBounds(t *testing.T) {
	if got := MaxRange(core.FactionUS, -1); got != 0 {
		t.Errorf("expected 0 for charge -1, got %f", got)
	}
	if got := MaxRange(core.FactionUS, NumCharges); got != 0 {
		t.Errorf("expected 0 for charge %d, got %f", NumCharges, got)
	}
}

func TestTube_PerFaction(t *testing.T) {
	if Tube(core.FactionUS) != "M252" {
		t.Errorf("expected M252 for US, got %s", Tube(core.FactionUS))
	}
	if Tube(core.FactionRU) != "2B14" {
		t.Errorf("expected 2B14 for RU, got %s", Tube(core.FactionRU))
	}
}
