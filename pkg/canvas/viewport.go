package canvas

import (
	"fmt"
	"math"

	"github.com/sohail300/pipeline/pkg/domain"
)

// DefaultSnapGrid is the snap spacing in graph units.
const DefaultSnapGrid = 20

// Viewport is the pan and zoom applied to the graph: screen = graph*Zoom + (X, Y).
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport has no pan and unit zoom.
var DefaultViewport = Viewport{Zoom: 1}

// Validate rejects viewports that cannot be inverted.
func (v Viewport) Validate() error {
	if v.Zoom <= 0 || math.IsNaN(v.Zoom) || math.IsInf(v.Zoom, 0) {
		return fmt.Errorf("invalid zoom %v", v.Zoom)
	}
	return nil
}

// Project maps a point relative to the canvas origin into graph coordinates.
func (v Viewport) Project(x, y float64) domain.Position {
	return domain.Position{
		X: (x - v.X) / v.Zoom,
		Y: (y - v.Y) / v.Zoom,
	}
}

// Bounds is the canvas element's offset within the page.
type Bounds struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Snap rounds p to the nearest multiple of grid.
func Snap(p domain.Position, grid float64) domain.Position {
	if grid <= 0 {
		return p
	}
	return domain.Position{
		X: math.Round(p.X/grid) * grid,
		Y: math.Round(p.Y/grid) * grid,
	}
}
