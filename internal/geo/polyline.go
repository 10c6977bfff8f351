package geo

import (
	"fmt"

	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/goccy/go-json"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into a core.Polyline.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePolyline(input string) (core.Polyline, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	polyline := make(core.Polyline, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		polyline[i] = core.Position2D{X: coord[0], Y: coord[1]}
	}

	return polyline, nil
}

// LineStringFromPolyline converts a core.Polyline to a simplefeatures
// LineString for WKB storage.
func LineStringFromPolyline(polyline core.Polyline) (geom.LineString, error) {
	if len(polyline) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(polyline))
	}

	flatCoords := make([]float64, 0, len(polyline)*2)
	for _, p := range polyline {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// PolylineFromLineString converts a stored LineString back to a
// core.Polyline. An empty LineString yields nil.
func PolylineFromLineString(ls geom.LineString) core.Polyline {
	seq := ls.Coordinates()
	if seq.Length() == 0 {
		return nil
	}
	polyline := make(core.Polyline, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		polyline[i] = core.Position2D{X: xy.X, Y: xy.Y}
	}
	return polyline
}
