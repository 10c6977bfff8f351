package geo

import (
	"fmt"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

// Calibration maps between game-world meters and pixel space for a
// rendered map image. The world origin is the southwest corner; pixel
// origin is the top-left corner, so the Y axis flips.
type Calibration struct {
	ExtentMeters float64 // world size per axis, e.g. 13000
	ImageWidth   int     // pixels
	ImageHeight  int     // pixels
}

// NewCalibration validates and builds a map calibration.
func NewCalibration(extentMeters float64, imageWidth, imageHeight int) (Calibration, error) {
	if extentMeters <= 0 {
		return Calibration{}, fmt.Errorf("map extent must be positive, got %f", extentMeters)
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return Calibration{}, fmt.Errorf("image size must be positive, got %dx%d", imageWidth, imageHeight)
	}
	return Calibration{
		ExtentMeters: extentMeters,
		ImageWidth:   imageWidth,
		ImageHeight:  imageHeight,
	}, nil
}

// WorldToPixel converts game-world meters to image pixel coordinates.
func (c Calibration) WorldToPixel(p core.Position2D) (px, py float64) {
	px = p.X / c.ExtentMeters * float64(c.ImageWidth)
	py = (1 - p.Y/c.ExtentMeters) * float64(c.ImageHeight)
	return px, py
}

// PixelToWorld converts image pixel coordinates (e.g. a map click) back to
// game-world meters.
func (c Calibration) PixelToWorld(px, py float64) core.Position2D {
	return core.Position2D{
		X: px / float64(c.ImageWidth) * c.ExtentMeters,
		Y: (1 - py/float64(c.ImageHeight)) * c.ExtentMeters,
	}
}
