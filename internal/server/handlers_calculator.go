package server

import (
	"net/http"
	"strconv"

	"github.com/MrMark1127/arma-tactical/internal/ballistics"
	"github.com/MrMark1127/arma-tactical/internal/geo"
	"github.com/MrMark1127/arma-tactical/internal/grid"
	"github.com/MrMark1127/arma-tactical/pkg/core"
)

type solveRequest struct {
	core.FireMission
	// When set, only this charge is solved; otherwise all five.
	ChargeRings *int `json:"chargeRings"`
}

type solveResponse struct {
	Solutions []core.ChargeSolution `json:"solutions"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := core.ParseFaction(string(req.Faction)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Shell != "" {
		if _, err := core.ParseShellType(string(req.Shell)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var solutions []core.ChargeSolution
	if req.ChargeRings != nil {
		sol, err := ballistics.Solve(req.FireMission, *req.ChargeRings)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		solutions = []core.ChargeSolution{sol}
	} else {
		set, err := ballistics.SolveAll(req.FireMission)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		solutions = set[:]
	}

	if s.telemetry != nil {
		inRange := false
		for _, sol := range solutions {
			if sol.InRange {
				inRange = true
				break
			}
		}
		s.telemetry.RecordSolve(string(req.Faction), string(req.Shell), inRange)
	}
	if s.solveCount != nil {
		s.solveCount(string(req.Faction))
	}

	writeJSON(w, http.StatusOK, solveResponse{Solutions: solutions})
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, key string) (float64, bool) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v, err == nil
}

func (s *Server) handleGridEncode(w http.ResponseWriter, r *http.Request) {
	x, okX := queryFloat(r, "x")
	y, okY := queryFloat(r, "y")
	if !okX || !okY {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required")
		return
	}

	ref, err := grid.Encode(core.Position2D{X: x, Y: y})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleGridDecode(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "ref query parameter is required")
		return
	}

	pos, err := grid.Decode(ref)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

type mapInfoResponse struct {
	ExtentMeters float64 `json:"extentMeters"`
	ImageWidth   int     `json:"imageWidth"`
	ImageHeight  int     `json:"imageHeight"`
	AnchorLon    float64 `json:"anchorLongitude"`
	AnchorLat    float64 `json:"anchorLatitude"`
}

func (s *Server) handleMapInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapInfoResponse{
		ExtentMeters: s.calibration.ExtentMeters,
		ImageWidth:   s.calibration.ImageWidth,
		ImageHeight:  s.calibration.ImageHeight,
		AnchorLon:    s.anchor.Longitude,
		AnchorLat:    s.anchor.Latitude,
	})
}

type projectResponse struct {
	World    core.Position2D `json:"world"`
	PixelX   float64         `json:"pixelX"`
	PixelY   float64         `json:"pixelY"`
	Mercator core.Position2D `json:"mercator"` // EPSG:3857
	Grid     grid.Reference  `json:"grid"`
}

// handleMapProject converts one world coordinate into every system a map
// client needs: pixels for rendering, web-mercator for tile alignment and
// a grid reference for display.
func (s *Server) handleMapProject(w http.ResponseWriter, r *http.Request) {
	x, okX := queryFloat(r, "x")
	y, okY := queryFloat(r, "y")
	if !okX || !okY {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required")
		return
	}
	world := core.Position2D{X: x, Y: y}

	px, py := s.calibration.WorldToPixel(world)
	mercator := geo.PositionFromPoint(s.anchor.WorldTo3857(world))
	ref, err := grid.Encode(world)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		World:    world,
		PixelX:   px,
		PixelY:   py,
		Mercator: core.Position2D{X: mercator.X, Y: mercator.Y},
		Grid:     ref,
	})
}
