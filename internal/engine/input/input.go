// Package input turns a pointer event stream into camera pans, zooms,
// hover picks, and tile selection.
package input

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// DragDeadZone is the pointer travel in pixels below which a press still
// counts as a click.
const DragDeadZone = 4.0

// wheelZoomBase converts one wheel notch into a zoom factor.
const wheelZoomBase = 1.12

// frameTime is the nominal frame duration used to convert sampled pointer
// speed into per-frame inertia velocity.
const frameTime = time.Second / 60

// PickFunc resolves a screen point to a tile.
type PickFunc func(math.Vec2) (worldmap.TileID, bool)

// sample is one timed pointer position.
type sample struct {
	pos math.Vec2
	at  time.Time
}

// Controller drives the camera from pointer and wheel events. The caller
// owns the event source and threads event time through, so the controller
// never reads a clock and stays testable without a display.
type Controller struct {
	cam     *camera.Camera
	inertia *camera.Inertia
	pick    PickFunc

	// OnHover fires when the hovered tile changes; ok is false when the
	// pointer leaves all tiles.
	OnHover func(id worldmap.TileID, ok bool)
	// OnSelect fires when a click lands on a tile.
	OnSelect func(id worldmap.TileID, p math.Vec2)
	// OnMiss fires when a click lands on no tile.
	OnMiss func()

	down     bool
	dragging bool
	start    math.Vec2
	last     math.Vec2

	// The two most recent timed positions while dragging; their spacing
	// becomes the release velocity.
	samples [2]sample

	hovered  worldmap.TileID
	hasHover bool
}

// New creates a controller driving cam and in. pick may be nil while no
// map is loaded.
func New(cam *camera.Camera, in *camera.Inertia, pick PickFunc) *Controller {
	return &Controller{cam: cam, inertia: in, pick: pick}
}

// SetPick swaps the tile resolver. The layout changes with every map
// snapshot, so the view rebinds this on snapshot swaps.
func (c *Controller) SetPick(pick PickFunc) {
	c.pick = pick
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// PointerDown starts a press: any inertia run stops immediately and drag
// tracking arms.
func (c *Controller) PointerDown(p math.Vec2, now time.Time) {
	c.inertia.Cancel()
	c.down = true
	c.dragging = false
	c.start = p
	c.last = p
	c.samples[0] = sample{pos: p, at: now}
	c.samples[1] = c.samples[0]
}

// PointerMove pans the camera while dragging, or hover-picks while the
// pointer is up. A press becomes a drag once the pointer travels past the
// dead zone; the first drag pan covers the whole travel so the map catches
// up with the pointer.
func (c *Controller) PointerMove(p math.Vec2, now time.Time) {
	if !c.down {
		c.hoverPick(p)
		return
	}
	if !c.dragging {
		if p.Sub(c.start).Length() <= DragDeadZone {
			return
		}
		c.dragging = true
	}
	if p != c.last {
		delta := p.Sub(c.last)
		c.cam.Pan(delta.X, delta.Y)
		c.last = p
	}
	// Sample even when stationary, so holding still before release decays
	// the velocity to zero instead of replaying the last motion.
	c.samples[0] = c.samples[1]
	c.samples[1] = sample{pos: p, at: now}
}

// PointerUp ends a press: a drag hands its release velocity to inertia, a
// click picks the tile under the pointer.
func (c *Controller) PointerUp(p math.Vec2, now time.Time) {
	if !c.down {
		return
	}
	c.down = false
	if !c.dragging {
		c.clickPick(p)
		return
	}
	c.dragging = false
	c.inertia.Start(c.releaseVelocity())
}

// Wheel zooms about the pointer: one notch scales the zoom by 1.12.
func (c *Controller) Wheel(p math.Vec2, dy float64) {
	if dy == 0 {
		return
	}
	c.cam.ZoomAt(p, c.cam.Zoom*gomath.Pow(wheelZoomBase, dy))
}

// Pan nudges the camera directly, stopping any inertia run first.
func (c *Controller) Pan(dx, dy float64) {
	c.inertia.Cancel()
	c.cam.Pan(dx, dy)
}

// releaseVelocity converts the spacing of the two most recent samples into
// screen pixels per nominal frame.
func (c *Controller) releaseVelocity() math.Vec2 {
	dt := c.samples[1].at.Sub(c.samples[0].at)
	if dt <= 0 {
		return math.Vec2{}
	}
	return c.samples[1].pos.Sub(c.samples[0].pos).Scale(float64(frameTime) / float64(dt))
}

func (c *Controller) hoverPick(p math.Vec2) {
	if c.pick == nil || c.OnHover == nil {
		return
	}
	id, ok := c.pick(p)
	if ok == c.hasHover && (!ok || id == c.hovered) {
		return
	}
	c.hovered = id
	c.hasHover = ok
	c.OnHover(id, ok)
}

func (c *Controller) clickPick(p math.Vec2) {
	if c.pick == nil {
		return
	}
	id, ok := c.pick(p)
	if !ok {
		if c.OnMiss != nil {
			c.OnMiss()
		}
		return
	}
	logger.Debug("tile selected", zap.Int("tile", int(id)))
	if c.OnSelect != nil {
		c.OnSelect(id, p)
	}
}
