// pkg/core/faction.go
package core

import "fmt"

// Faction identifies which side is firing. The faction implies both the
// mortar tube in use and the angular unit system of its sight.
type Faction string

const (
	// FactionUS uses the M252 tube with a 6400 mils/circle NATO sight.
	FactionUS Faction = "US"
	// FactionRU uses the 2B14 tube with a 6000 mils/circle Warsaw Pact sight.
	FactionRU Faction = "RU"
)

// MilsPerCircle returns the number of angular mils in a full circle for
// the faction's sight system.
func (f Faction) MilsPerCircle() float64 {
	switch f {
	case FactionRU:
		return 6000
	default:
		return 6400
	}
}

// ParseFaction converts a string to a Faction, rejecting unknown values.
func ParseFaction(s string) (Faction, error) {
	switch Faction(s) {
	case FactionUS:
		return FactionUS, nil
	case FactionRU:
		return FactionRU, nil
	default:
		return "", fmt.Errorf("unknown faction %q", s)
	}
}

// ShellType identifies the mortar round being fired.
type ShellType string

const (
	ShellHE           ShellType = "HE"
	ShellSmoke        ShellType = "SMOKE"
	ShellIllumination ShellType = "ILLUM"
)

// ParseShellType converts a string to a ShellType, rejecting unknown values.
func ParseShellType(s string) (ShellType, error) {
	switch ShellType(s) {
	case ShellHE, ShellSmoke, ShellIllumination:
		return ShellType(s), nil
	default:
		return "", fmt.Errorf("unknown shell type %q", s)
	}
}
