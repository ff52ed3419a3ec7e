// Package camera maps pipeline coordinates onto the screen.
//
// The pipeline works in two spaces: curve space, where the loop and its
// particles live with the origin at the canvas centre, and landmark space,
// where detector output is normalised to [0, 1] in camera image coordinates.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera holds the current viewport and the landmark orientation.
type Camera struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Mirror flips landmarks horizontally so the user sees a selfie view.
	Mirror bool
}

// New creates a camera for a viewport with mirrored landmarks.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Mirror:    true,
	}
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Center returns the screen position of the curve-space origin.
func (c *Camera) Center() (sx, sy float32) {
	return c.ViewportW / 2, c.ViewportH / 2
}

// CurveToScreen converts a curve-space point to screen coordinates.
func (c *Camera) CurveToScreen(p r2.Vec) (sx, sy float32) {
	return c.ViewportW/2 + float32(p.X), c.ViewportH/2 + float32(p.Y)
}

// ScreenToCurve converts screen coordinates to curve space.
func (c *Camera) ScreenToCurve(sx, sy float32) r2.Vec {
	return r2.Vec{X: float64(sx - c.ViewportW/2), Y: float64(sy - c.ViewportH/2)}
}

// LandmarkToScreen converts a normalised landmark position to screen
// coordinates, stretching the camera image over the whole viewport.
func (c *Camera) LandmarkToScreen(x, y float64) (sx, sy float32) {
	if c.Mirror {
		x = 1 - x
	}
	return float32(x) * c.ViewportW, float32(y) * c.ViewportH
}

// IsVisible returns true if a circle at screen position (sx, sy) with the
// given radius overlaps the viewport.
func (c *Camera) IsVisible(sx, sy, radius float32) bool {
	return sx+radius >= 0 && sx-radius <= c.ViewportW &&
		sy+radius >= 0 && sy-radius <= c.ViewportH
}
