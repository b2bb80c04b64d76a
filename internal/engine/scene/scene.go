// Package scene builds and maintains the retained primitive set for the
// wrapping hex map: terrain fills, river curves, vegetation marks, habitat
// indicators, and hover/selection outlines. Geometry is constructed once per
// map snapshot; view-mode and selection changes mutate the existing
// primitives in place.
package scene

import (
	"image/color"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// phases are the horizontal wrap copies, in world-width multiples. Every
// primitive is built once per phase so panning across the seam stays
// seamless in both rendering and picking.
var phases = [3]float64{-1, 0, 1}

// Background is the clear color behind the map.
var Background = color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}

// pulsePeriod is the cycle length of the highlight pulse.
const pulsePeriod = 1.2 * float64(time.Second)

// Pulse returns the alpha and scale factors of the highlight pulse at t.
// Pure: the render loop is the only caller that threads time through.
func Pulse(t time.Time) (alpha, scale float64) {
	s := gomath.Sin(2 * gomath.Pi * float64(t.UnixNano()) / pulsePeriod)
	return 0.7 + 0.25*s, 1.0 + 0.08*s
}

// Stats reports the retained primitive counts, one entry per copy.
type Stats struct {
	Terrain    int
	Curves     int
	Marks      int
	Indicators int
}

// Scene owns the retained primitives for one map snapshot. It is not safe
// for concurrent use; all mutation happens on the render goroutine.
type Scene struct {
	layout      *worldmap.Layout
	tiles       []worldmap.Tile
	mode        worldmap.ViewMode
	highlighted worldmap.EntityID

	terrain   []terrainPrim
	curves    []curvePrim
	marks     []markPrim
	occupied  []occupiedTile
	indicator []indicatorPrim

	hover    outlinePrim
	selected outlinePrim

	pulseAlpha float64
	pulseScale float64

	// scratch buffers reused across Draw calls.
	pts []math.Vec2
}

// outlinePrim is a hex outline following the hovered or selected tile.
type outlinePrim struct {
	visible bool
	center  math.Vec2
	color   color.NRGBA
}

// New creates an empty scene. Call Build to populate it.
func New() *Scene {
	return &Scene{
		pulseAlpha: 1,
		pulseScale: 1,
		pts:        make([]math.Vec2, 0, 16),
	}
}

// Build tears down the previous primitives and constructs the scene for a
// snapshot: three wrap-phase copies of every terrain hex, river curve,
// vegetation mark, and habitat indicator. A nil snapshot or layout empties
// the scene (the missing-data case is a no-op everywhere else).
func (s *Scene) Build(snap *worldmap.Snapshot, layout *worldmap.Layout, mode worldmap.ViewMode, highlighted worldmap.EntityID) {
	s.release()
	if snap == nil || layout == nil {
		return
	}

	s.layout = layout
	s.tiles = snap.Tiles
	s.mode = mode
	s.highlighted = highlighted

	s.buildTerrain()
	s.buildRivers(snap.Rivers)
	s.buildVegetation(snap.Vegetation)
	s.buildIndicators(snap.Occupancy)

	logger.Debug("scene built",
		zap.Int("tiles", len(s.tiles)),
		zap.Int("terrain", len(s.terrain)),
		zap.Int("curves", len(s.curves)),
		zap.Int("marks", len(s.marks)),
		zap.Int("indicators", len(s.indicator)),
	)
}

// Ready reports whether the scene holds a built snapshot.
func (s *Scene) Ready() bool {
	return s.layout != nil
}

// Stats returns the current primitive counts.
func (s *Scene) Stats() Stats {
	return Stats{
		Terrain:    len(s.terrain),
		Curves:     len(s.curves),
		Marks:      len(s.marks),
		Indicators: len(s.indicator),
	}
}

// SetViewMode re-tints all three phase copies of every terrain primitive in
// place. Geometry is untouched.
func (s *Scene) SetViewMode(mode worldmap.ViewMode) {
	s.mode = mode
	if s.layout == nil {
		return
	}
	s.retintTerrain()
}

// SetHover moves the hover outline onto a tile, or hides it.
func (s *Scene) SetHover(id worldmap.TileID, ok bool) {
	s.moveOutline(&s.hover, id, ok)
}

// SetSelected moves the selection outline onto a tile, or hides it.
func (s *Scene) SetSelected(id worldmap.TileID, ok bool) {
	s.moveOutline(&s.selected, id, ok)
}

func (s *Scene) moveOutline(o *outlinePrim, id worldmap.TileID, ok bool) {
	if !ok || s.layout == nil {
		o.visible = false
		return
	}
	center, found := s.layout.Center(id)
	o.visible = found
	o.center = center
}

// Tick advances the pulse animation. Visible rings and outlines pick the
// new alpha/scale up on the next Draw; idle primitives cost nothing here.
func (s *Scene) Tick(now time.Time) {
	s.pulseAlpha, s.pulseScale = Pulse(now)
}

// Draw culls against the viewport and emits the primitives back-to-front:
// terrain, river curves, vegetation marks, habitat indicators, outlines.
func (s *Scene) Draw(dst Surface, cam *camera.Camera) {
	dst.Clear(Background)
	if s.layout == nil || cam == nil {
		return
	}

	w, h := dst.Size()
	vp := viewport{w: float64(w), h: float64(h)}

	s.drawTerrain(dst, cam, vp)
	s.drawRivers(dst, cam, vp)
	s.drawMarks(dst, cam, vp)
	s.drawIndicators(dst, cam, vp)
	s.drawOutlines(dst, cam, vp)
}

// Destroy releases all primitives. The scene may be rebuilt afterwards.
func (s *Scene) Destroy() {
	s.release()
}

func (s *Scene) release() {
	s.layout = nil
	s.tiles = nil
	s.terrain = nil
	s.curves = nil
	s.marks = nil
	s.occupied = nil
	s.indicator = nil
	s.hover = outlinePrim{}
	s.selected = outlinePrim{}
}

// viewport carries the draw target size through the cull helpers.
type viewport struct {
	w, h float64
}

// visible reports whether a screen point is within the viewport plus a
// margin on every side.
func (vp viewport) visible(p math.Vec2, margin float64) bool {
	return p.X >= -margin && p.X <= vp.w+margin &&
		p.Y >= -margin && p.Y <= vp.h+margin
}

func (s *Scene) drawOutlines(dst Surface, cam *camera.Camera, vp viewport) {
	s.drawOutline(dst, cam, vp, &s.hover, palette.HoverColor)
	s.drawOutline(dst, cam, vp, &s.selected, palette.SelectColor)
}

// drawOutline strokes a closed hex loop around an outline's tile, pulsing
// alpha and scale, once per wrap phase that lands on screen.
func (s *Scene) drawOutline(dst Surface, cam *camera.Camera, vp viewport, o *outlinePrim, tint color.NRGBA) {
	if !o.visible {
		return
	}
	m := s.layout.Metrics
	margin := m.HexWidth * cam.Zoom
	c := palette.WithAlpha(tint, s.pulseAlpha)
	for _, phase := range phases {
		center := math.Vec2{X: o.center.X + phase*s.layout.WorldWidth, Y: o.center.Y}
		sc := cam.ToScreen(center)
		if !vp.visible(sc, margin) {
			continue
		}
		corners := m.Corners(center)
		s.pts = s.pts[:0]
		for _, p := range corners {
			// Scale the hex about its center by the pulse factor.
			p.X = center.X + (p.X-center.X)*s.pulseScale
			p.Y = center.Y + (p.Y-center.Y)*s.pulseScale
			s.pts = append(s.pts, cam.ToScreen(p))
		}
		// Close the loop.
		s.pts = append(s.pts, s.pts[0])
		dst.StrokePolyline(s.pts, 2.0, c)
	}
}
