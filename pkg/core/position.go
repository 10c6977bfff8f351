// pkg/core/position.go
package core

import "math"

// Position2D represents a 2D game-world coordinate in meters.
type Position2D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
}

// Position3D represents a 3D coordinate without GIS dependencies.
type Position3D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
	Z float64 `json:"z"` // elevation ASL
}

// XY returns the horizontal component of the position.
func (p Position3D) XY() Position2D {
	return Position2D{X: p.X, Y: p.Y}
}

// Polyline is an ordered sequence of 2D positions.
type Polyline []Position2D

// DistanceTo returns the Euclidean distance to other in meters.
func (p Position2D) DistanceTo(other Position2D) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// BearingTo returns the horizontal bearing to other in degrees,
// measured clockwise from map north (+Y), normalized to [0, 360).
// A zero delta yields bearing 0 by atan2 convention.
func (p Position2D) BearingTo(other Position2D) float64 {
	deg := math.Atan2(other.X-p.X, other.Y-p.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
