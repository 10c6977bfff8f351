package geo

import (
	"math"
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func TestNewCalibration_RejectsBadInputs(t *testing.T) {
	if _, err := NewCalibration(0, 4096, 4096); err == nil {
		t.Error("expected error for zero extent")
	}
	if _, err := NewCalibration(13000, 0, 4096); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewCalibration(13000, 4096, -1); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestCalibration_Corners(t *testing.T) {
	cal, err := NewCalibration(13000, 4096, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// World southwest corner is the image's bottom-left pixel.
	px, py := cal.WorldToPixel(core.Position2D{X: 0, Y: 0})
	if px != 0 || py != 4096 {
		t.Errorf("expected (0, 4096), got (%f, %f)", px, py)
	}

	// World northeast corner is the image's top-right pixel.
	px, py = cal.WorldToPixel(core.Position2D{X: 13000, Y: 13000})
	if px != 4096 || py != 0 {
		t.Errorf("expected (4096, 0), got (%f, %f)", px, py)
	}
}

func TestCalibration_RoundTrip(t *testing.T) {
	cal, err := NewCalibration(13000, 4096, 2048)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords := []core.Position2D{
		{X: 1234, Y: 5678},
		{X: 0, Y: 13000},
		{X: 6500, Y: 6500},
	}
	for _, p := range coords {
		px, py := cal.WorldToPixel(p)
		back := cal.PixelToWorld(px, py)
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round-trip of %v gave %v", p, back)
		}
	}
}
