// pkg/core/firemission.go
package core

// FireMission is a request to compute firing solutions for one
// mortar/target pair. Positions are game-world meters with elevation ASL.
type FireMission struct {
	Mortar      Position3D `json:"mortar"`
	Target      Position3D `json:"target"`
	Faction     Faction    `json:"faction"`
	Shell       ShellType  `json:"shellType"`
	ChargeRings int        `json:"chargeRings"`
}

// ChargeSolution is the computed firing solution for a single charge-ring
// count. All displayed values are rounded to integers; the enumerated
// fields echo the request. Never persisted unless the user saves it to a
// plan.
type ChargeSolution struct {
	ChargeRings   int       `json:"chargeRings"`
	Faction       Faction   `json:"faction"`
	Shell         ShellType `json:"shellType"`
	Distance      int       `json:"distance"`      // meters
	BearingDeg    int       `json:"bearing"`       // degrees [0,360)
	BearingMils   int       `json:"bearingMils"`   // faction sight mils
	ElevationMils int       `json:"elevation"`     // tube elevation setting
	ElevationDiff int       `json:"elevationDiff"` // target minus mortar, meters
	TimeOfFlight  int       `json:"timeOfFlight"`  // seconds
	InRange       bool      `json:"inRange"`
	MinRange      int       `json:"minRange"` // meters, shared across charges
	MaxRange      int       `json:"maxRange"` // meters, for this charge
}

// SolutionSet holds one ChargeSolution per charge ring count 0-4,
// indexed by charge. The solutions are independent of each other.
type SolutionSet [5]ChargeSolution
