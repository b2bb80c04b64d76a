// Package view orchestrates the map view: camera, inertia, scene,
// interaction, and the drawing surface lifecycle.
package view

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/input"
	"github.com/e555321e/cladeview/internal/engine/picking"
	"github.com/e555321e/cladeview/internal/engine/scene"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// State is the surface lifecycle state of the view.
type State int

const (
	// StateUninitialized: no surface requested yet.
	StateUninitialized State = iota
	// StateInitializing: a surface acquisition is in flight.
	StateInitializing
	// StateReady: the surface is live and the view renders.
	StateReady
	// StateFailed: surface acquisition failed. Terminal; never retried.
	StateFailed
	// StateDisposed: the view is closed. Terminal.
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// MapView owns the rendering pipeline of one wrapping hex map: the camera
// and its inertia, the interaction controller, the retained scene, and the
// drawing surface. All methods must run on one goroutine; asynchronous
// surface continuations assert the expected state and generation before
// touching anything, so late arrivals self-discard.
type MapView struct {
	provider scene.Provider
	cam      *camera.Camera
	inertia  *camera.Inertia
	scene    *scene.Scene
	ctrl     *input.Controller

	state State
	err   error
	// gen counts surface acquisitions; a continuation whose generation no
	// longer matches is stale and releases its surface unused.
	gen int

	surface scene.Surface
	vw, vh  int

	snap   *worldmap.Snapshot
	layout *worldmap.Layout
	tiles  map[worldmap.TileID]worldmap.Tile
	// pendingBuild defers the scene build while a surface acquisition is
	// in flight; the snapshot fields above always hold the latest data,
	// so intermediate snapshots are discarded, never queued up.
	pendingBuild bool

	mode        worldmap.ViewMode
	highlighted worldmap.EntityID

	hovered     worldmap.TileID
	hasHovered  bool
	selected    worldmap.TileID
	hasSelected bool

	onTileSelected func(worldmap.Tile, math.Vec2)
}

// New creates a map view drawing through the given surface provider. The
// view starts uninitialized; the first SetViewport call requests a surface.
func New(provider scene.Provider) *MapView {
	cam := camera.New(0, 0)
	in := camera.NewInertia(cam)
	v := &MapView{
		provider:    provider,
		cam:         cam,
		inertia:     in,
		scene:       scene.New(),
		mode:        worldmap.ModeBiome,
		highlighted: worldmap.NoEntity,
	}
	v.ctrl = input.New(cam, in, func(p math.Vec2) (worldmap.TileID, bool) {
		return picking.PickTile(v.layout, v.cam, p)
	})
	v.ctrl.OnHover = v.onHover
	v.ctrl.OnSelect = v.onSelect
	v.ctrl.OnMiss = v.onMiss
	return v
}

// State returns the lifecycle state.
func (v *MapView) State() State {
	return v.state
}

// Err returns the failure that moved the view into StateFailed, if any.
func (v *MapView) Err() error {
	return v.err
}

// Controller returns the interaction controller the event source feeds.
func (v *MapView) Controller() *input.Controller {
	return v.ctrl
}

// Camera returns the view camera.
func (v *MapView) Camera() *camera.Camera {
	return v.cam
}

// ViewMode returns the active view mode.
func (v *MapView) ViewMode() worldmap.ViewMode {
	return v.mode
}

// Highlighted returns the entity whose habitat is highlighted.
func (v *MapView) Highlighted() worldmap.EntityID {
	return v.highlighted
}

// SceneStats returns the retained primitive counts.
func (v *MapView) SceneStats() scene.Stats {
	return v.scene.Stats()
}

// OnTileSelected registers the callback fired when a click lands on a
// tile. The callback receives the tile and the screen point.
func (v *MapView) OnTileSelected(fn func(worldmap.Tile, math.Vec2)) {
	v.onTileSelected = fn
}

// SetViewport resizes the view. The camera re-clamps immediately. The
// surface is requested on first use, reacquired when ready, and left to
// the in-flight continuation when initializing: on completion the
// delivered size is checked against the current viewport and a mismatch
// triggers a fresh acquisition.
func (v *MapView) SetViewport(width, height int) {
	if v.state == StateDisposed || v.state == StateFailed {
		return
	}
	if width <= 0 || height <= 0 {
		return
	}
	if width == v.vw && height == v.vh {
		return
	}
	v.vw = width
	v.vh = height
	v.cam.SetViewport(float64(width), float64(height))

	switch v.state {
	case StateUninitialized:
		v.acquire()
	case StateReady:
		if err := v.surface.Release(); err != nil {
			logger.Warn("surface release on resize failed", zap.Error(err))
		}
		v.surface = nil
		v.pendingBuild = v.layout != nil
		v.acquire()
	}
}

// SetSnapshot replaces the world data. A nil or empty snapshot clears the
// scene and is otherwise a no-op. While a surface acquisition is in
// flight, only the latest snapshot is kept; the build runs once the
// surface arrives.
func (v *MapView) SetSnapshot(snap *worldmap.Snapshot) {
	if v.state == StateDisposed || v.state == StateFailed {
		return
	}
	if snap == nil || len(snap.Tiles) == 0 {
		v.snap = nil
		v.layout = nil
		v.tiles = nil
		v.pendingBuild = false
		v.hasHovered = false
		v.hasSelected = false
		v.scene.Build(nil, nil, v.mode, v.highlighted)
		logger.Info("map snapshot cleared")
		return
	}

	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	v.snap = snap
	v.layout = layout
	v.tiles = make(map[worldmap.TileID]worldmap.Tile, len(snap.Tiles))
	for _, t := range snap.Tiles {
		v.tiles[t.ID] = t
	}

	// The camera's world bounds follow the layout; re-clamp against them.
	v.cam.WorldWidth = layout.WorldWidth
	v.cam.WorldHeight = layout.WorldHeight
	if v.vw > 0 && v.vh > 0 {
		v.cam.SetViewport(float64(v.vw), float64(v.vh))
	}

	logger.Info("map snapshot applied",
		zap.Int("tiles", len(snap.Tiles)),
		zap.Int("rivers", len(snap.Rivers)),
		zap.Int("occupants", len(snap.Occupancy)),
	)

	if v.state == StateReady {
		v.buildScene()
	} else {
		v.pendingBuild = true
	}
}

// SetViewMode switches the terrain tinting. Re-tints the retained scene
// in place; geometry stays.
func (v *MapView) SetViewMode(mode worldmap.ViewMode) {
	if v.mode == mode {
		return
	}
	v.mode = mode
	v.scene.SetViewMode(mode)
	logger.Debug("view mode switched", zap.Stringer("mode", mode))
}

// SetHighlighted switches the habitat highlight to an entity; NoEntity
// clears it.
func (v *MapView) SetHighlighted(e worldmap.EntityID) {
	if v.highlighted == e {
		return
	}
	v.highlighted = e
	v.scene.SetHighlighted(e)
}

// CameraState returns the {x, y, zoom} snapshot.
func (v *MapView) CameraState() camera.State {
	return v.cam.State()
}

// SetCameraState restores a camera snapshot. Any inertia run stops first
// so the restore is not immediately overwritten.
func (v *MapView) SetCameraState(s camera.State) {
	v.inertia.Cancel()
	v.cam.Restore(s)
}

// ResetCamera frames the whole world: minimum zoom, seam at the left
// edge, map vertically centered.
func (v *MapView) ResetCamera() {
	z := v.cam.MinZoom()
	v.SetCameraState(camera.State{
		X:    0,
		Y:    (float64(v.vh) - v.cam.WorldHeight*z) / 2,
		Zoom: z,
	})
}

// Hovered returns the tile under the pointer.
func (v *MapView) Hovered() (worldmap.Tile, bool) {
	if !v.hasHovered {
		return worldmap.Tile{}, false
	}
	t, ok := v.tiles[v.hovered]
	return t, ok
}

// Selected returns the selected tile.
func (v *MapView) Selected() (worldmap.Tile, bool) {
	if !v.hasSelected {
		return worldmap.Tile{}, false
	}
	t, ok := v.tiles[v.selected]
	return t, ok
}

// Tick advances inertia and the highlight pulse. Call once per frame.
func (v *MapView) Tick(now time.Time) {
	if v.state == StateDisposed {
		return
	}
	v.inertia.Tick()
	v.scene.Tick(now)
}

// Render draws the scene into the view surface and returns it for
// compositing. Returns nil unless the view is ready.
func (v *MapView) Render() scene.Surface {
	if v.state != StateReady || v.surface == nil {
		return nil
	}
	v.scene.Draw(v.surface, v.cam)
	return v.surface
}

// DebugString summarizes the view state on one line, for the clipboard
// shortcut and bug reports.
func (v *MapView) DebugString() string {
	var b strings.Builder
	st := v.cam.State()
	stats := v.scene.Stats()
	fmt.Fprintf(&b, "state=%s mode=%s cam={x:%.1f y:%.1f zoom:%.2f} viewport=%dx%d",
		v.state, v.mode, st.X, st.Y, st.Zoom, v.vw, v.vh)
	fmt.Fprintf(&b, " tiles=%d prims={terrain:%d curves:%d marks:%d indicators:%d}",
		len(v.tiles), stats.Terrain, stats.Curves, stats.Marks, stats.Indicators)
	if v.highlighted != worldmap.NoEntity {
		fmt.Fprintf(&b, " highlighted=%d", v.highlighted)
	}
	if t, ok := v.Selected(); ok {
		fmt.Fprintf(&b, " selected=%d(%d,%d)", t.ID, t.Column, t.Row)
	}
	if t, ok := v.Hovered(); ok {
		fmt.Fprintf(&b, " hovered=%d(%d,%d)", t.ID, t.Column, t.Row)
	}
	return b.String()
}

// Close tears the view down: inertia stops, the pending build and any
// in-flight acquisition are orphaned, primitives and surface release.
// Idempotent; later continuations self-discard against the bumped
// generation.
func (v *MapView) Close() error {
	if v.state == StateDisposed {
		return nil
	}
	v.inertia.Cancel()
	v.gen++
	v.pendingBuild = false
	v.scene.Destroy()
	var err error
	if v.surface != nil {
		err = multierr.Append(err, v.surface.Release())
		v.surface = nil
	}
	v.state = StateDisposed
	logger.Info("map view closed")
	return err
}

// acquire requests a surface for the current viewport.
func (v *MapView) acquire() {
	v.state = StateInitializing
	v.gen++
	gen := v.gen
	logger.Debug("surface acquisition started",
		zap.Int("width", v.vw), zap.Int("height", v.vh), zap.Int("generation", gen))
	v.provider.Acquire(v.vw, v.vh, func(s scene.Surface, err error) {
		v.onAcquired(gen, s, err)
	})
}

// onAcquired is the acquisition continuation. It may run synchronously
// inside acquire or on a later tick, and must cope with the view having
// moved on: a stale generation or a disposed view releases the surface
// and returns.
func (v *MapView) onAcquired(gen int, s scene.Surface, err error) {
	if gen != v.gen || v.state == StateDisposed {
		if s != nil {
			if rerr := s.Release(); rerr != nil {
				logger.Warn("stale surface release failed", zap.Error(rerr))
			}
		}
		return
	}
	if err != nil {
		v.state = StateFailed
		v.err = err
		logger.Error("surface acquisition failed", zap.Error(err))
		return
	}

	v.surface = s
	v.state = StateReady

	// A resize that arrived mid-acquisition wins over the delivered size.
	if w, h := s.Size(); w != v.vw || h != v.vh {
		if rerr := v.surface.Release(); rerr != nil {
			logger.Warn("undersized surface release failed", zap.Error(rerr))
		}
		v.surface = nil
		v.acquire()
		return
	}

	logger.Info("map surface ready", zap.Int("width", v.vw), zap.Int("height", v.vh))
	if v.pendingBuild {
		v.pendingBuild = false
		v.buildScene()
	}
}

// buildScene rebuilds the retained primitives from the current snapshot
// and re-applies a still-valid selection. Hover clears; the next pointer
// move restores it.
func (v *MapView) buildScene() {
	v.scene.Build(v.snap, v.layout, v.mode, v.highlighted)
	v.hasHovered = false
	if v.hasSelected {
		if _, ok := v.tiles[v.selected]; ok {
			v.scene.SetSelected(v.selected, true)
		} else {
			v.hasSelected = false
		}
	}
}

func (v *MapView) onHover(id worldmap.TileID, ok bool) {
	v.hovered = id
	v.hasHovered = ok
	v.scene.SetHover(id, ok)
}

func (v *MapView) onSelect(id worldmap.TileID, p math.Vec2) {
	v.selected = id
	v.hasSelected = true
	v.scene.SetSelected(id, true)
	if v.onTileSelected != nil {
		if t, ok := v.tiles[id]; ok {
			v.onTileSelected(t, p)
		}
	}
}

func (v *MapView) onMiss() {
	v.hasSelected = false
	v.scene.SetSelected(0, false)
}
