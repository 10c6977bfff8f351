// Package convert provides functions to convert between GORM models and
// core models.
package convert

import (
	"github.com/MrMark1127/arma-tactical/internal/geo"
	"github.com/MrMark1127/arma-tactical/internal/model"
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/goccy/go-json"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// pointToPosition2D converts a stored geom.Point to a core.Position2D.
func pointToPosition2D(p geom.Point) core.Position2D {
	coord, ok := p.Coordinates()
	if !ok {
		return core.Position2D{}
	}
	return core.Position2D{X: coord.XY.X, Y: coord.XY.Y}
}

// position2DToPoint converts a core.Position2D to a geom.Point for WKB storage.
func position2DToPoint(p core.Position2D) geom.Point {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}})
}

// metadataToJSON converts a string map to datatypes.JSON for DB storage.
func metadataToJSON(metadata map[string]string) datatypes.JSON {
	if len(metadata) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(metadata)
	return datatypes.JSON(data)
}

// PlanToCore converts a GORM Plan to a core.Plan. The owner's UUID must be
// supplied by the caller since the row only carries the numeric FK.
func PlanToCore(p model.Plan, ownerUUID string) core.Plan {
	return core.Plan{
		ID:          p.UUID,
		OwnerID:     ownerUUID,
		Name:        p.Name,
		Description: p.Description,
		WorldName:   p.WorldName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MarkerToCore converts a GORM Marker to a core.Marker.
func MarkerToCore(m model.Marker, planUUID string) core.Marker {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}

	pos := pointToPosition2D(m.Position)
	return core.Marker{
		ID:         m.ID,
		PlanID:     planUUID,
		Label:      m.Label,
		MarkerType: m.MarkerType,
		Color:      m.Color,
		Shape:      m.Shape,
		Direction:  m.Direction,
		Alpha:      m.Alpha,
		Position:   core.Position3D{X: pos.X, Y: pos.Y, Z: m.Elevation},
		Metadata:   metadata,
	}
}

// CoreToMarker converts a core.Marker to a GORM model.Marker. The caller
// supplies the plan's numeric primary key.
func CoreToMarker(m core.Marker, planID uint) model.Marker {
	return model.Marker{
		ID:         m.ID,
		PlanID:     planID,
		Label:      m.Label,
		MarkerType: m.MarkerType,
		Color:      m.Color,
		Shape:      m.Shape,
		Direction:  m.Direction,
		Alpha:      m.Alpha,
		Position:   position2DToPoint(m.Position.XY()),
		Elevation:  m.Position.Z,
		Metadata:   metadataToJSON(m.Metadata),
	}
}

// RouteToCore converts a GORM Route to a core.Route.
func RouteToCore(r model.Route, planUUID string) core.Route {
	return core.Route{
		ID:       r.ID,
		PlanID:   planUUID,
		Label:    r.Label,
		Color:    r.Color,
		Width:    r.Width,
		Polyline: geo.PolylineFromLineString(r.Polyline),
	}
}

// CoreToRoute converts a core.Route to a GORM model.Route. Degenerate
// polylines are stored as the empty LineString; validation happens
// upstream of storage.
func CoreToRoute(r core.Route, planID uint) model.Route {
	ls, err := geo.LineStringFromPolyline(r.Polyline)
	if err != nil {
		ls = geom.LineString{}
	}
	return model.Route{
		ID:       r.ID,
		PlanID:   planID,
		Label:    r.Label,
		Color:    r.Color,
		Width:    r.Width,
		Polyline: ls,
	}
}

// FireMissionToCore converts a GORM FireMissionRecord to a core.SavedFireMission.
func FireMissionToCore(r model.FireMissionRecord, planUUID string) core.SavedFireMission {
	mortar := pointToPosition2D(r.MortarPosition)
	target := pointToPosition2D(r.TargetPosition)
	return core.SavedFireMission{
		ID:     r.ID,
		PlanID: planUUID,
		Label:  r.Label,
		Request: core.FireMission{
			Mortar:      core.Position3D{X: mortar.X, Y: mortar.Y, Z: r.MortarElevation},
			Target:      core.Position3D{X: target.X, Y: target.Y, Z: r.TargetElevation},
			Faction:     core.Faction(r.Faction),
			Shell:       core.ShellType(r.ShellType),
			ChargeRings: r.ChargeRings,
		},
		Solution: core.ChargeSolution{
			ChargeRings:   r.ChargeRings,
			Faction:       core.Faction(r.Faction),
			Shell:         core.ShellType(r.ShellType),
			Distance:      r.Distance,
			BearingDeg:    r.BearingDeg,
			BearingMils:   r.BearingMils,
			ElevationMils: r.ElevationMils,
			ElevationDiff: r.ElevationDiff,
			TimeOfFlight:  r.TimeOfFlight,
			InRange:       r.InRange,
			MinRange:      r.MinRange,
			MaxRange:      r.MaxRange,
		},
		SavedAt: r.CreatedAt,
	}
}

// CoreToFireMission converts a core.SavedFireMission to a GORM row.
func CoreToFireMission(fm core.SavedFireMission, planID uint) model.FireMissionRecord {
	return model.FireMissionRecord{
		ID:              fm.ID,
		PlanID:          planID,
		Label:           fm.Label,
		Faction:         string(fm.Request.Faction),
		ShellType:       string(fm.Request.Shell),
		ChargeRings:     fm.Request.ChargeRings,
		MortarPosition:  position2DToPoint(fm.Request.Mortar.XY()),
		MortarElevation: fm.Request.Mortar.Z,
		TargetPosition:  position2DToPoint(fm.Request.Target.XY()),
		TargetElevation: fm.Request.Target.Z,
		Distance:        fm.Solution.Distance,
		BearingDeg:      fm.Solution.BearingDeg,
		BearingMils:     fm.Solution.BearingMils,
		ElevationMils:   fm.Solution.ElevationMils,
		ElevationDiff:   fm.Solution.ElevationDiff,
		TimeOfFlight:    fm.Solution.TimeOfFlight,
		InRange:         fm.Solution.InRange,
		MinRange:        fm.Solution.MinRange,
		MaxRange:        fm.Solution.MaxRange,
	}
}
