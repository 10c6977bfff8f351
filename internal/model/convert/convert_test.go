package convert

import (
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func TestMarkerRoundTrip(t *testing.T) {
	in := core.Marker{
		ID:         7,
		PlanID:     "plan-uuid",
		Label:      "OBJ ALPHA",
		MarkerType: "mil_objective",
		Color:      "ColorRed",
		Shape:      "ICON",
		Direction:  45,
		Alpha:      0.8,
		Position:   core.Position3D{X: 1234, Y: 5678, Z: 42},
		Metadata:   map[string]string{"note": "breach point"},
	}

	row := CoreToMarker(in, 3)
	if row.PlanID != 3 {
		t.Errorf("expected plan FK 3, got %d", row.PlanID)
	}
	if row.Elevation != 42 {
		t.Errorf("expected elevation 42, got %f", row.Elevation)
	}

	out := MarkerToCore(row, "plan-uuid")
	if out.Position != in.Position {
		t.Errorf("expected position %v, got %v", in.Position, out.Position)
	}
	if out.Label != in.Label || out.MarkerType != in.MarkerType {
		t.Errorf("marker fields lost: %+v", out)
	}
	if out.Metadata["note"] != "breach point" {
		t.Errorf("metadata lost: %v", out.Metadata)
	}
}

func TestMarkerToCore_EmptyMetadata(t *testing.T) {
	row := CoreToMarker(core.Marker{Position: core.Position3D{X: 1, Y: 2}}, 1)
	out := MarkerToCore(row, "p")
	if len(out.Metadata) != 0 {
		t.Errorf("expected empty metadata, got %v", out.Metadata)
	}
}

func TestRouteRoundTrip(t *testing.T) {
	in := core.Route{
		ID:     4,
		PlanID: "plan-uuid",
		Label:  "INFIL",
		Color:  "ColorBlue",
		Width:  2,
		Polyline: core.Polyline{
			{X: 100, Y: 200},
			{X: 300, Y: 400},
			{X: 500, Y: 600},
		},
	}

	out := RouteToCore(CoreToRoute(in, 9), "plan-uuid")
	if len(out.Polyline) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(out.Polyline))
	}
	for i := range in.Polyline {
		if out.Polyline[i] != in.Polyline[i] {
			t.Errorf("waypoint %d: expected %v, got %v", i, in.Polyline[i], out.Polyline[i])
		}
	}
}

func TestRouteToCore_EmptyPolyline(t *testing.T) {
	out := RouteToCore(CoreToRoute(core.Route{}, 1), "p")
	if out.Polyline != nil {
		t.Errorf("expected nil polyline, got %v", out.Polyline)
	}
}

func TestFireMissionRoundTrip(t *testing.T) {
	in := core.SavedFireMission{
		ID:     2,
		PlanID: "plan-uuid",
		Label:  "FM 1",
		Request: core.FireMission{
			Mortar:      core.Position3D{X: 1000, Y: 1000, Z: 10},
			Target:      core.Position3D{X: 1100, Y: 1000, Z: 60},
			Faction:     core.FactionUS,
			Shell:       core.ShellHE,
			ChargeRings: 2,
		},
		Solution: core.ChargeSolution{
			ChargeRings:   2,
			Faction:       core.FactionUS,
			Shell:         core.ShellHE,
			Distance:      100,
			BearingDeg:    90,
			BearingMils:   1600,
			ElevationMils: 1605,
			ElevationDiff: 50,
			TimeOfFlight:  6,
			InRange:       false,
			MinRange:      100,
			MaxRange:      1800,
		},
	}

	out := FireMissionToCore(CoreToFireMission(in, 5), "plan-uuid")
	if out.Request != in.Request {
		t.Errorf("request changed: expected %+v, got %+v", in.Request, out.Request)
	}
	if out.Solution != in.Solution {
		t.Errorf("solution changed: expected %+v, got %+v", in.Solution, out.Solution)
	}
}
