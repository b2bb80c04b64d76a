package scene

import (
	"image/color"
	"testing"
	"time"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// recordSurface captures draw calls so tests can assert primitive-level
// output without a GPU.
type surfaceOp struct {
	kind   string
	pts    []math.Vec2
	center math.Vec2
	radius float64
	width  float64
	color  color.NRGBA
}

type recordSurface struct {
	w, h     int
	ops      []surfaceOp
	released bool
}

func newRecordSurface(w, h int) *recordSurface {
	return &recordSurface{w: w, h: h}
}

func (r *recordSurface) Size() (int, int) { return r.w, r.h }

func (r *recordSurface) Clear(c color.NRGBA) {
	r.ops = append(r.ops, surfaceOp{kind: "clear", color: c})
}

func (r *recordSurface) FillPolygon(pts []math.Vec2, c color.NRGBA) {
	r.ops = append(r.ops, surfaceOp{kind: "fillPolygon", pts: clonePts(pts), color: c})
}

func (r *recordSurface) StrokePolyline(pts []math.Vec2, width float64, c color.NRGBA) {
	r.ops = append(r.ops, surfaceOp{kind: "strokePolyline", pts: clonePts(pts), width: width, color: c})
}

func (r *recordSurface) FillCircle(center math.Vec2, radius float64, c color.NRGBA) {
	r.ops = append(r.ops, surfaceOp{kind: "fillCircle", center: center, radius: radius, color: c})
}

func (r *recordSurface) StrokeCircle(center math.Vec2, radius, width float64, c color.NRGBA) {
	r.ops = append(r.ops, surfaceOp{kind: "strokeCircle", center: center, radius: radius, width: width, color: c})
}

func (r *recordSurface) Release() error {
	r.released = true
	return nil
}

func (r *recordSurface) count(kind string) int {
	n := 0
	for _, op := range r.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func (r *recordSurface) reset() {
	r.ops = r.ops[:0]
}

// clonePts copies the scratch slice the scene reuses between calls.
func clonePts(pts []math.Vec2) []math.Vec2 {
	out := make([]math.Vec2, len(pts))
	copy(out, pts)
	return out
}

// testSnapshot builds a 10x6 world (300x301 px at default metrics) with a
// river pair, vegetation on two tiles, and occupants on two tiles.
func testSnapshot() *worldmap.Snapshot {
	tiles := make([]worldmap.Tile, 0, 60)
	for c := 0; c < 10; c++ {
		for r := 0; r < 6; r++ {
			tiles = append(tiles, worldmap.Tile{
				ID:     worldmap.TileID(c*6 + r),
				Column: c,
				Row:    r,
				Colors: map[worldmap.ViewMode]string{
					worldmap.ModeBiome:       "#336644",
					worldmap.ModeTemperature: "#884422",
					worldmap.ModeElevation:   "rgb(90, 90, 90)",
				},
				Suitability: float64(c) / 9,
			})
		}
	}
	return &worldmap.Snapshot{
		Tiles: tiles,
		Rivers: map[worldmap.TileID]worldmap.RiverLink{
			// Tile (1,1) -> (2,1): neighbors, kept.
			7: {Target: 13, Flux: 0.5},
			// Tile (0,0) -> (9,0): would stroke across the map, skipped.
			0: {Target: 54, Flux: 1},
		},
		Vegetation: map[worldmap.TileID]worldmap.Vegetation{
			20: {Density: 1.0, Category: "forest"}, // 6 marks
			21: {Density: 0.5, Category: "grass"},  // 2 marks (round(1.5))
		},
		Occupancy: []worldmap.Occupant{
			{Entity: 1, Tile: 12},
			{Entity: 2, Tile: 12},
			{Entity: 3, Tile: 12},
			{Entity: 9, Tile: 30},
		},
	}
}

func buildTestScene(t *testing.T) (*Scene, *worldmap.Layout, *worldmap.Snapshot) {
	t.Helper()
	snap := testSnapshot()
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	if layout == nil {
		t.Fatal("ComputeLayout returned nil")
	}
	s := New()
	s.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)
	return s, layout, snap
}

// wideCamera spans far past the 300px world at zoom 1, so the phase-0 and
// phase-(+1) copies of mid-map tiles both land on screen. The left copy sits
// off the left edge: the effective offset keeps copy 0 starting near the
// origin, phase -1 only ever contributes its rightmost columns at the seam.
func wideCamera(layout *worldmap.Layout) *camera.Camera {
	cam := camera.New(layout.WorldWidth, layout.WorldHeight)
	cam.SetViewport(2000, 200)
	return cam
}

func TestBuildCounts(t *testing.T) {
	s, _, snap := buildTestScene(t)
	stats := s.Stats()

	if want := len(snap.Tiles) * 3; stats.Terrain != want {
		t.Errorf("terrain primitives = %d, want %d", stats.Terrain, want)
	}
	// One river link kept, one skipped as a seam jump.
	if want := 1 * 3; stats.Curves != want {
		t.Errorf("curves = %d, want %d", stats.Curves, want)
	}
	// forest 1.0*6 = 6 marks, grass 0.5*3 = 2 marks, three copies each.
	if want := (6 + 2) * 3; stats.Marks != want {
		t.Errorf("marks = %d, want %d", stats.Marks, want)
	}
	// Two occupied tiles, three copies each.
	if want := 2 * 3; stats.Indicators != want {
		t.Errorf("indicators = %d, want %d", stats.Indicators, want)
	}
}

func TestBuildNilEmptiesScene(t *testing.T) {
	s, layout, snap := buildTestScene(t)
	s.Build(nil, nil, worldmap.ModeBiome, worldmap.NoEntity)
	if s.Ready() {
		t.Fatal("scene still ready after nil build")
	}
	if got := s.Stats(); got != (Stats{}) {
		t.Errorf("stats after nil build = %+v, want zero", got)
	}

	// A nil-built scene draws only the clear.
	dst := newRecordSurface(400, 300)
	cam := camera.New(layout.WorldWidth, layout.WorldHeight)
	cam.SetViewport(400, 300)
	s.Draw(dst, cam)
	if len(dst.ops) != 1 || dst.ops[0].kind != "clear" {
		t.Errorf("nil scene emitted %d ops, want clear only", len(dst.ops))
	}

	// Rebuild restores the primitives.
	layout2 := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	s.Build(snap, layout2, worldmap.ModeBiome, worldmap.NoEntity)
	if !s.Ready() {
		t.Fatal("scene not ready after rebuild")
	}
}

func TestSetViewModeRetintsAllCopies(t *testing.T) {
	s, _, snap := buildTestScene(t)

	biome := palette.ParseOrWhite("#336644")
	for i := range s.terrain {
		if s.terrain[i].tint != biome {
			t.Fatalf("prim %d tint = %v before mode switch, want %v", i, s.terrain[i].tint, biome)
		}
	}

	s.SetViewMode(worldmap.ModeSuitability)
	for i := range s.terrain {
		prim := &s.terrain[i]
		var tile worldmap.Tile
		for _, tt := range snap.Tiles {
			if tt.ID == prim.tile {
				tile = tt
				break
			}
		}
		want := palette.Suitability(tile.Suitability)
		if prim.tint != want {
			t.Fatalf("prim %d (tile %d) tint = %v after mode switch, want %v", i, prim.tile, prim.tint, want)
		}
	}
}

func TestHabitatToggle(t *testing.T) {
	s, _, _ := buildTestScene(t)

	// Tile 12 has 3 occupants, entity 9 is elsewhere: ambient everywhere,
	// dot banded at the two-or-more band.
	for i := range s.indicator {
		if s.indicator[i].state != indicatorAmbient {
			t.Fatalf("indicator %d starts %v, want ambient", i, s.indicator[i].state)
		}
	}
	for i := range s.indicator {
		if s.indicator[i].tile == 12 && s.indicator[i].band.Min != 2 {
			t.Errorf("3-occupant tile banded at min %d, want 2", s.indicator[i].band.Min)
		}
	}

	// Highlighting one of the three occupants flips that tile to the ring.
	s.SetHighlighted(2)
	for i := range s.indicator {
		want := indicatorAmbient
		if s.indicator[i].tile == 12 {
			want = indicatorHighlighted
		}
		if s.indicator[i].state != want {
			t.Fatalf("indicator %d (tile %d) = %v after highlight, want %v",
				i, s.indicator[i].tile, s.indicator[i].state, want)
		}
	}

	// Clearing the selection restores the dot.
	s.SetHighlighted(worldmap.NoEntity)
	for i := range s.indicator {
		if s.indicator[i].state != indicatorAmbient {
			t.Fatalf("indicator %d still %v after clear", i, s.indicator[i].state)
		}
	}
}

func TestHighlightSurvivesBuild(t *testing.T) {
	snap := testSnapshot()
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	s := New()
	s.Build(snap, layout, worldmap.ModeBiome, 9)

	for i := range s.indicator {
		want := indicatorAmbient
		if s.indicator[i].tile == 30 {
			want = indicatorHighlighted
		}
		if s.indicator[i].state != want {
			t.Fatalf("indicator %d (tile %d) built as %v, want %v",
				i, s.indicator[i].tile, s.indicator[i].state, want)
		}
	}
}

func TestDrawIndicatorExclusivity(t *testing.T) {
	snap := testSnapshot()
	snap.Vegetation = nil // keep FillCircle counts to habitat dots only
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	s := New()
	s.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)
	cam := wideCamera(layout)
	dst := newRecordSurface(2000, 200)

	// Two occupied tiles, two visible copies each.
	s.Draw(dst, cam)
	if got := dst.count("fillCircle"); got != 4 {
		t.Errorf("ambient dots drawn = %d, want 4", got)
	}
	if got := dst.count("strokeCircle"); got != 0 {
		t.Errorf("rings drawn = %d, want 0 with nothing highlighted", got)
	}

	s.SetHighlighted(1) // entity 1 lives on tile 12
	dst.reset()
	s.Draw(dst, cam)
	if got := dst.count("fillCircle"); got != 2 {
		t.Errorf("ambient dots after highlight = %d, want 2", got)
	}
	if got := dst.count("strokeCircle"); got != 2 {
		t.Errorf("rings after highlight = %d, want 2", got)
	}
}

func TestDrawCullsOffscreen(t *testing.T) {
	s, layout, snap := buildTestScene(t)

	// Zoomed far in on one corner, most of the 180 terrain copies are
	// outside the viewport.
	cam := camera.New(layout.WorldWidth, layout.WorldHeight)
	cam.SetViewport(200, 150)
	cam.ZoomAt(math.Vec2{X: 100, Y: 75}, 4)

	dst := newRecordSurface(200, 150)
	s.Draw(dst, cam)
	total := len(snap.Tiles) * 3
	if got := dst.count("fillPolygon"); got == 0 || got >= total {
		t.Errorf("terrain drawn = %d, want 0 < n < %d after culling", got, total)
	}
}

func TestDrawOutlineClosedAndPulsing(t *testing.T) {
	s, layout, _ := buildTestScene(t)
	cam := wideCamera(layout)
	dst := newRecordSurface(2000, 200)

	s.SetHover(7, true)
	s.Tick(time.Unix(0, 300*int64(time.Millisecond)))
	s.Draw(dst, cam)

	outlines := 0
	for _, op := range dst.ops {
		if op.kind != "strokePolyline" || op.width != 2.0 {
			continue
		}
		outlines++
		if len(op.pts) != 7 {
			t.Fatalf("outline has %d points, want 7 (closed hex)", len(op.pts))
		}
		if op.pts[0] != op.pts[6] {
			t.Error("outline loop is not closed")
		}
	}
	if outlines != 2 {
		t.Errorf("outline drawn %d times, want the two on-screen copies", outlines)
	}

	s.SetHover(0, false)
	dst.reset()
	s.Draw(dst, cam)
	for _, op := range dst.ops {
		if op.kind == "strokePolyline" && op.width == 2.0 {
			t.Fatal("outline still drawn after hover cleared")
		}
	}
}

func TestSeamJumpRiverSkipped(t *testing.T) {
	snap := testSnapshot()
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	s := New()
	s.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)

	from, _ := layout.Center(0)
	for i := range s.curves {
		if s.curves[i].pts[0].Y == from.Y && s.curves[i].pts[0].X == from.X {
			t.Fatal("seam-jump river was built")
		}
	}
}

func TestRiverWidthScalesWithFlux(t *testing.T) {
	snap := testSnapshot()
	snap.Rivers = map[worldmap.TileID]worldmap.RiverLink{
		7:  {Target: 13, Flux: 0},
		19: {Target: 25, Flux: 1},
	}
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	s := New()
	s.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)

	widths := map[float64]bool{}
	for i := range s.curves {
		widths[s.curves[i].width] = true
	}
	if !widths[1.0] || !widths[4.0] {
		t.Errorf("curve widths = %v, want 1.0 (flux 0) and 4.0 (flux 1)", widths)
	}
}

func TestVegetationDeterministic(t *testing.T) {
	snap := testSnapshot()
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())

	a := New()
	a.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)
	b := New()
	b.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)

	if len(a.marks) != len(b.marks) {
		t.Fatalf("mark counts differ: %d vs %d", len(a.marks), len(b.marks))
	}
	for i := range a.marks {
		if a.marks[i] != b.marks[i] {
			t.Fatalf("mark %d differs between identical builds: %+v vs %+v", i, a.marks[i], b.marks[i])
		}
	}
}

func TestPulseBounds(t *testing.T) {
	for ms := 0; ms < 3000; ms += 50 {
		alpha, scale := Pulse(time.Unix(0, int64(ms)*int64(time.Millisecond)))
		if alpha < 0.44 || alpha > 0.96 {
			t.Fatalf("pulse alpha at %dms = %v out of range", ms, alpha)
		}
		if scale < 0.91 || scale > 1.09 {
			t.Fatalf("pulse scale at %dms = %v out of range", ms, scale)
		}
	}
}

func TestDestroyReleasesPrimitives(t *testing.T) {
	s, _, _ := buildTestScene(t)
	s.Destroy()
	if s.Ready() {
		t.Error("scene ready after Destroy")
	}
	if got := s.Stats(); got != (Stats{}) {
		t.Errorf("stats after Destroy = %+v, want zero", got)
	}
}
