// Package ballistics computes mortar firing solutions from static,
// table-driven range data. The solver is a pure function over positions
// and charge levels; the tables are compiled-in constants and not
// user-editable.
package ballistics

import "github.com/MrMark1127/arma-tactical/pkg/core"

// NumCharges is the number of selectable charge-ring counts (0-4).
const NumCharges = 5

// rangeKnot is one breakpoint of a ballistic curve: fire at this
// horizontal distance with this tube elevation.
type rangeKnot struct {
	Distance float64 // meters
	Mils     float64 // tube elevation in sight mils
}

// chargeTable is the ballistic curve for one charge-ring count.
// Knots are ordered by increasing distance; elevation decreases
// monotonically with distance.
type chargeTable struct {
	MaxRange float64
	Knots    []rangeKnot
}

// mortarTable holds the full range data for one tube.
type mortarTable struct {
	Tube          string
	MilsPerCircle float64
	MinRange      float64 // shared across all charge levels
	Charges       [NumCharges]chargeTable
}

// fallbackMils is the elevation reported when the target is outside the
// charge level's range band. The curve is never extrapolated past its
// knots. Resolves the divergence between the two legacy calculators,
// which disagreed on this constant.
const fallbackMils = 0

// m252 is the US 81mm tube, 6400 mils/circle NATO sight.
var m252 = mortarTable{
	Tube:          "M252",
	MilsPerCircle: 6400,
	MinRange:      100,
	Charges: [NumCharges]chargeTable{
		{MaxRange: 600, Knots: []rangeKnot{
			{100, 1580}, {150, 1520}, {200, 1460}, {250, 1390},
			{300, 1310}, {350, 1230}, {400, 1150}, {450, 1065},
			{500, 975}, {550, 880}, {600, 780},
		}},
		{MaxRange: 1200, Knots: []rangeKnot{
			{200, 1580}, {300, 1535}, {400, 1490}, {500, 1440},
			{600, 1390}, {700, 1335}, {800, 1275}, {900, 1210},
			{1000, 1140}, {1100, 1060}, {1200, 965},
		}},
		{MaxRange: 1800, Knots: []rangeKnot{
			{300, 1580}, {450, 1540}, {600, 1495}, {750, 1450},
			{900, 1400}, {1050, 1345}, {1200, 1285}, {1350, 1220},
			{1500, 1145}, {1650, 1060}, {1800, 955},
		}},
		{MaxRange: 2400, Knots: []rangeKnot{
			{400, 1580}, {650, 1535}, {900, 1490}, {1150, 1440},
			{1400, 1385}, {1650, 1325}, {1900, 1255}, {2150, 1175},
			{2400, 1080},
		}},
		{MaxRange: 3000, Knots: []rangeKnot{
			{500, 1580}, {800, 1540}, {1100, 1495}, {1400, 1445},
			{1700, 1390}, {2000, 1330}, {2300, 1260}, {2600, 1180},
			{3000, 1065},
		}},
	},
}

// podnos2b14 is the RU 82mm tube, 6000 mils/circle Warsaw Pact sight.
var podnos2b14 = mortarTable{
	Tube:          "2B14",
	MilsPerCircle: 6000,
	MinRange:      50,
	Charges: [NumCharges]chargeTable{
		{MaxRange: 500, Knots: []rangeKnot{
			{100, 1455}, {150, 1411}, {200, 1365}, {250, 1318},
			{300, 1268}, {350, 1217}, {400, 1159}, {450, 1095},
			{500, 1023},
		}},
		{MaxRange: 1000, Knots: []rangeKnot{
			{200, 1445}, {300, 1400}, {400, 1355}, {500, 1305},
			{600, 1250}, {700, 1190}, {800, 1125}, {900, 1050},
			{1000, 960},
		}},
		{MaxRange: 1600, Knots: []rangeKnot{
			{300, 1455}, {500, 1410}, {700, 1360}, {900, 1300},
			{1100, 1230}, {1300, 1150}, {1500, 1045}, {1600, 980},
		}},
		{MaxRange: 2200, Knots: []rangeKnot{
			{400, 1450}, {700, 1400}, {1000, 1345}, {1300, 1280},
			{1600, 1200}, {1900, 1105}, {2200, 985},
		}},
		{MaxRange: 2900, Knots: []rangeKnot{
			{500, 1455}, {900, 1405}, {1300, 1345}, {1700, 1275},
			{2100, 1190}, {2500, 1085}, {2900, 945},
		}},
	},
}

// tableFor maps a faction to its fixed mortar table.
func tableFor(f core.Faction) *mortarTable {
	if f == core.FactionRU {
		return &podnos2b14
	}
	return &m252
}

// Tube returns the tube designation used by the given faction.
func Tube(f core.Faction) string {
	return tableFor(f).Tube
}

// MaxRange returns the maximum range in meters for the faction's tube at
// the given charge. Returns 0 for a charge outside [0, NumCharges).
func MaxRange(f core.Faction, charge int) float64 {
	if charge < 0 || charge >= NumCharges {
		return 0
	}
	return tableFor(f).Charges[charge].MaxRange
}

// MinRange returns the minimum range in meters for the faction's tube,
// shared across all charge levels.
func MinRange(f core.Faction) float64 {
	return tableFor(f).MinRange
}
