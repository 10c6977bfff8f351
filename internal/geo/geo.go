package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/MrMark1127/arma-tactical/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// World positions are stored as EPSG:3857 offsets so SQLite (which has no
// spatial awareness) can round-trip geometry through the WKB Scan/Value
// path during migrations.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses an "x,y" or "x,y,elev" string into a core.Position3D.
func Position3DFromString(coords string) (core.Position3D, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(coordsSplit[0], 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(coordsSplit[1], 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var elev float64
	if len(coordsSplit) > 2 {
		elev, err = strconv.ParseFloat(coordsSplit[2], 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
	}
	return core.Position3D{X: x, Y: y, Z: elev}, nil
}

// PointFromPosition converts a core position into a simplefeatures XYZ point.
func PointFromPosition(p core.Position3D) geom.Point {
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: p.X, Y: p.Y},
			Z:    p.Z,
			Type: geom.CoordinatesType(geom.DimXYZ),
		},
	)
}

// PositionFromPoint converts a simplefeatures point back to a core position.
// An empty point maps to the zero position.
func PositionFromPoint(pt geom.Point) core.Position3D {
	coords, ok := pt.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: coords.XY.X, Y: coords.XY.Y, Z: coords.Z}
}

// Anchor ties the game world's origin (southwest corner) to a geographic
// location, so world meters can be projected to web-mercator for storage
// and tile alignment.
type Anchor struct {
	Longitude float64
	Latitude  float64
}

// mercatorOrigin projects the anchor to EPSG:3857.
func (a Anchor) mercatorOrigin() (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(a.Longitude, a.Latitude, 0)
	return x, y
}

// WorldTo3857 projects a game-world coordinate to EPSG:3857 by offsetting
// from the anchor's mercator position.
func (a Anchor) WorldTo3857(p core.Position2D) geom.Point {
	ox, oy := a.mercatorOrigin()
	return geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: ox + p.X, Y: oy + p.Y},
		},
	)
}

// WorldFrom3857 converts an EPSG:3857 point back to game-world meters
// relative to the anchor.
func (a Anchor) WorldFrom3857(pt geom.Point) (core.Position2D, error) {
	coords, ok := pt.Coordinates()
	if !ok {
		return core.Position2D{}, ErrInvalidCoordinates
	}
	ox, oy := a.mercatorOrigin()
	return core.Position2D{X: coords.XY.X - ox, Y: coords.XY.Y - oy}, nil
}
