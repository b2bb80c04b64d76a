// Package camera provides the pan/zoom camera for the wrapping map view.
package camera

import (
	gomath "math"

	"github.com/e555321e/cladeview/pkg/math"
)

// MaxZoom is the fixed upper zoom bound.
const MaxZoom = 8.0

// minZoomFloor keeps tiny worlds from shrinking to nothing on zoom-out.
const minZoomFloor = 0.2

// verticalMarginRatio is the share of the viewport height the map may be
// dragged past the world's top or bottom edge.
const verticalMarginRatio = 0.2

// State is the serializable camera snapshot.
type State struct {
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
	Zoom float64 `yaml:"zoom" json:"zoom"`
}

// Camera maps world pixel coordinates to screen pixel coordinates via
// screen = world*zoom + offset. The world wraps horizontally, so the
// horizontal offset is never clamped; rendering and picking both reduce it
// to an effective offset in (-worldWidth*zoom, 0]. The vertical offset is
// clamped so the map cannot leave the viewport.
type Camera struct {
	// Offset in screen pixels. X wraps, Y is clamped.
	X, Y float64
	Zoom float64

	// World bounds in pixels at zoom 1.
	WorldWidth  float64
	WorldHeight float64

	// Viewport in device-independent pixels.
	ViewportWidth  float64
	ViewportHeight float64
}

// New creates a camera over a world of the given pixel size.
func New(worldWidth, worldHeight float64) *Camera {
	return &Camera{
		Zoom:        1.0,
		WorldWidth:  worldWidth,
		WorldHeight: worldHeight,
	}
}

// SetViewport updates the viewport size, re-clamping zoom and vertical
// offset against the new bounds.
func (c *Camera) SetViewport(width, height float64) {
	c.ViewportWidth = width
	c.ViewportHeight = height
	c.Zoom = c.clampZoom(c.Zoom)
	c.clampY()
}

// MinZoom returns the smallest zoom allowed for the current viewport: the
// whole world fits on screen with a little slack, but never below the
// fixed floor.
func (c *Camera) MinZoom() float64 {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 || c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return minZoomFloor
	}
	fit := gomath.Min(c.ViewportWidth/c.WorldWidth, c.ViewportHeight/c.WorldHeight) * 0.9
	return gomath.Max(minZoomFloor, fit)
}

// Pan shifts the camera offset. X is free to wrap; Y is re-clamped.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
	c.clampY()
}

// ZoomAt changes the zoom factor while keeping the world point currently
// under the given screen point fixed on screen.
func (c *Camera) ZoomAt(screen math.Vec2, newZoom float64) {
	newZoom = c.clampZoom(newZoom)
	world := c.ToWorld(screen)
	c.Zoom = newZoom
	c.X = screen.X - world.X*newZoom
	c.Y = screen.Y - world.Y*newZoom
	c.clampY()
}

// ToScreen maps a world point to screen space using the wrap-normalized
// horizontal offset.
func (c *Camera) ToScreen(world math.Vec2) math.Vec2 {
	return math.Vec2{
		X: world.X*c.Zoom + c.EffectiveOffsetX(),
		Y: world.Y*c.Zoom + c.Y,
	}
}

// ToWorld maps a screen point back to world space. Inverse of ToScreen.
func (c *Camera) ToWorld(screen math.Vec2) math.Vec2 {
	return math.Vec2{
		X: (screen.X - c.EffectiveOffsetX()) / c.Zoom,
		Y: (screen.Y - c.Y) / c.Zoom,
	}
}

// EffectiveOffsetX reduces the raw horizontal offset modulo the scaled
// world width into (-worldWidth*zoom, 0]. Rendering and picking must both
// use this value so the two stay consistent across the wrap seam.
func (c *Camera) EffectiveOffsetX() float64 {
	period := c.WorldWidth * c.Zoom
	if period <= 0 {
		return c.X
	}
	eff := gomath.Mod(c.X, period)
	if eff > 0 {
		eff -= period
	}
	return eff
}

// State returns the {x, y, zoom} snapshot verbatim.
func (c *Camera) State() State {
	return State{X: c.X, Y: c.Y, Zoom: c.Zoom}
}

// Restore applies a snapshot, then re-establishes the zoom and vertical
// clamp invariants for the current viewport.
func (c *Camera) Restore(s State) {
	c.X = s.X
	c.Y = s.Y
	c.Zoom = c.clampZoom(s.Zoom)
	c.clampY()
}

func (c *Camera) clampZoom(z float64) float64 {
	minZoom := c.MinZoom()
	if z < minZoom {
		return minZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// clampY keeps the vertical offset within the travel bounds for the
// current zoom. When the scaled world is shorter than the viewport the
// bounds invert; the top bound wins so the map stays pinned near the top.
func (c *Camera) clampY() {
	if c.ViewportHeight <= 0 {
		return
	}
	margin := c.ViewportHeight * verticalMarginRatio
	minY := c.ViewportHeight - c.WorldHeight*c.Zoom - margin
	maxY := margin
	if minY > maxY {
		c.Y = maxY
		return
	}
	if c.Y < minY {
		c.Y = minY
	}
	if c.Y > maxY {
		c.Y = maxY
	}
}

// MinY returns the lower vertical travel bound for the current zoom.
func (c *Camera) MinY() float64 {
	return c.ViewportHeight - c.WorldHeight*c.Zoom - c.ViewportHeight*verticalMarginRatio
}

// MaxY returns the upper vertical travel bound.
func (c *Camera) MaxY() float64 {
	return c.ViewportHeight * verticalMarginRatio
}
