// Package main is a headless diagnostic for the map view: it generates a
// demo world, builds the retained scene against a counting surface, and
// round-trips sampled tiles through the picking path at several camera
// states, reporting the results as text or JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	gomath "math"
	"os"

	"go.uber.org/multierr"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/picking"
	"github.com/e555321e/cladeview/internal/engine/scene"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldgen"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// countSurface tallies draw calls instead of rasterizing them.
type countSurface struct {
	width, height int

	clears    int
	polygons  int
	polylines int
	circles   int
	rings     int
}

func (s *countSurface) Size() (int, int) { return s.width, s.height }

func (s *countSurface) Clear(color.NRGBA) { s.clears++ }

func (s *countSurface) FillPolygon([]math.Vec2, color.NRGBA) { s.polygons++ }

func (s *countSurface) StrokePolyline([]math.Vec2, float64, color.NRGBA) { s.polylines++ }

func (s *countSurface) FillCircle(math.Vec2, float64, color.NRGBA) { s.circles++ }

func (s *countSurface) StrokeCircle(math.Vec2, float64, float64, color.NRGBA) { s.rings++ }

func (s *countSurface) Release() error { return nil }

type report struct {
	Seed     int64  `json:"seed"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
	Species  int    `json:"species"`
	Viewport string `json:"viewport"`

	Tiles     int `json:"tiles"`
	Rivers    int `json:"rivers"`
	SeamLinks int `json:"seam_links"`
	Vegetated int `json:"vegetated"`
	Occupants int `json:"occupants"`

	WorldWidth  float64 `json:"world_width_px"`
	WorldHeight float64 `json:"world_height_px"`
	MinZoom     float64 `json:"min_zoom"`

	Terrain    int `json:"terrain_prims"`
	Curves     int `json:"curve_prims"`
	Marks      int `json:"mark_prims"`
	Indicators int `json:"indicator_prims"`

	DrawPolygons  int `json:"draw_polygons"`
	DrawPolylines int `json:"draw_polylines"`
	DrawCircles   int `json:"draw_circles"`
	DrawRings     int `json:"draw_rings"`

	PickSamples    int `json:"pick_samples"`
	PickMismatches int `json:"pick_mismatches"`

	Failures []string `json:"failures,omitempty"`
}

func main() {
	var (
		seed    = flag.Int64("seed", 42, "world generation seed")
		columns = flag.Int("columns", 100, "world width in hex columns")
		rows    = flag.Int("rows", 60, "world height in hex rows")
		species = flag.Int("species", 8, "number of generated species")
		width   = flag.Int("width", 1280, "viewport width in pixels")
		height  = flag.Int("height", 720, "viewport height in pixels")
		sample  = flag.Int("sample", 7, "round-trip every nth tile through picking")
		asJSON  = flag.Bool("json", false, "emit the report as JSON")
	)
	flag.Parse()

	// Keep the report output clean; only warnings and errors reach stderr.
	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *sample <= 0 {
		*sample = 1
	}

	snap := worldgen.Generate(worldgen.Config{
		Seed: *seed, Columns: *columns, Rows: *rows, Species: *species,
	})
	layout := worldmap.ComputeLayout(snap.Tiles, worldmap.DefaultMetrics())
	if layout == nil {
		fmt.Fprintln(os.Stderr, "error: empty world, check -columns/-rows")
		os.Exit(1)
	}

	rep := report{
		Seed:     *seed,
		Columns:  *columns,
		Rows:     *rows,
		Species:  *species,
		Viewport: fmt.Sprintf("%dx%d", *width, *height),

		Tiles:     len(snap.Tiles),
		Rivers:    len(snap.Rivers),
		SeamLinks: countSeamLinks(snap, layout),
		Vegetated: len(snap.Vegetation),
		Occupants: len(snap.Occupancy),

		WorldWidth:  layout.WorldWidth,
		WorldHeight: layout.WorldHeight,
	}

	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}

	cam := camera.New(layout.WorldWidth, layout.WorldHeight)
	cam.SetViewport(float64(*width), float64(*height))
	rep.MinZoom = cam.MinZoom()

	// Retained scene: three wrap-phase copies of every primitive.
	sc := scene.New()
	sc.Build(snap, layout, worldmap.ModeBiome, worldmap.NoEntity)
	stats := sc.Stats()
	rep.Terrain = stats.Terrain
	rep.Curves = stats.Curves
	rep.Marks = stats.Marks
	rep.Indicators = stats.Indicators

	check(stats.Terrain == 3*len(snap.Tiles),
		"terrain prims = %d, want %d", stats.Terrain, 3*len(snap.Tiles))
	check(stats.Curves == 3*(len(snap.Rivers)-rep.SeamLinks),
		"curve prims = %d, want %d", stats.Curves, 3*(len(snap.Rivers)-rep.SeamLinks))
	check(stats.Marks%3 == 0, "mark prims = %d, want a multiple of 3", stats.Marks)
	check(stats.Indicators == 3*countOccupiedTiles(snap),
		"indicator prims = %d, want %d", stats.Indicators, 3*countOccupiedTiles(snap))

	// One frame against the counting surface, world fully framed.
	dst := &countSurface{width: *width, height: *height}
	cam.Restore(camera.State{X: 0, Y: 0, Zoom: cam.MinZoom()})
	sc.Draw(dst, cam)
	rep.DrawPolygons = dst.polygons
	rep.DrawPolylines = dst.polylines
	rep.DrawCircles = dst.circles
	rep.DrawRings = dst.rings

	check(dst.clears == 1, "draw cleared %d times, want 1", dst.clears)
	check(dst.polygons > 0, "no terrain polygons drawn")
	check(dst.polygons <= stats.Terrain,
		"drew %d polygons from %d retained", dst.polygons, stats.Terrain)

	// Picking round-trip: a tile's center must pick that tile at every
	// zoom and at pan offsets far past the wrap seam in both directions.
	samples, mismatches := 0, 0
	for _, zoom := range []float64{cam.MinZoom(), 2.0} {
		period := layout.WorldWidth * zoom
		for _, offX := range []float64{0, -0.37 * period, 2.2 * period} {
			cam.Restore(camera.State{X: offX, Y: 0, Zoom: zoom})
			for i := 0; i < len(snap.Tiles); i += *sample {
				tile := &snap.Tiles[i]
				center, ok := layout.Center(tile.ID)
				if !ok {
					continue
				}
				samples++
				id, hit := picking.PickTile(layout, cam, cam.ToScreen(center))
				if !hit || id != tile.ID {
					mismatches++
				}
			}
		}
	}
	rep.PickSamples = samples
	rep.PickMismatches = mismatches
	check(mismatches == 0, "%d of %d picking round-trips missed", mismatches, samples)

	for _, err := range multierr.Errors(errs) {
		rep.Failures = append(rep.Failures, err.Error())
	}

	if *asJSON {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		printReport(rep)
	}

	if errs != nil {
		os.Exit(1)
	}
}

// countSeamLinks counts river links joining the two edge columns; the
// scene skips those rather than draw a curve across the whole map.
func countSeamLinks(snap *worldmap.Snapshot, layout *worldmap.Layout) int {
	n := 0
	for id, link := range snap.Rivers {
		src, ok := layout.Center(id)
		if !ok {
			continue
		}
		dst, ok := layout.Center(link.Target)
		if !ok {
			continue
		}
		if gomath.Abs(dst.X-src.X) > layout.WorldWidth/2 {
			n++
		}
	}
	return n
}

func countOccupiedTiles(snap *worldmap.Snapshot) int {
	tiles := make(map[worldmap.TileID]struct{}, len(snap.Occupancy))
	for _, occ := range snap.Occupancy {
		tiles[occ.Tile] = struct{}{}
	}
	return len(tiles)
}

func printReport(rep report) {
	fmt.Printf("=== Map View Report ===\n")
	fmt.Printf("seed=%d columns=%d rows=%d species=%d viewport=%s\n\n",
		rep.Seed, rep.Columns, rep.Rows, rep.Species, rep.Viewport)

	fmt.Printf("--- World ---\n")
	fmt.Printf("tiles=%d rivers=%d seam_links=%d vegetated=%d occupants=%d\n",
		rep.Tiles, rep.Rivers, rep.SeamLinks, rep.Vegetated, rep.Occupants)

	fmt.Printf("--- Layout ---\n")
	fmt.Printf("world_px=%.1fx%.1f min_zoom=%.3f\n",
		rep.WorldWidth, rep.WorldHeight, rep.MinZoom)

	fmt.Printf("--- Scene ---\n")
	fmt.Printf("terrain=%d curves=%d marks=%d indicators=%d\n",
		rep.Terrain, rep.Curves, rep.Marks, rep.Indicators)
	fmt.Printf("draw_ops: polygons=%d polylines=%d circles=%d rings=%d\n",
		rep.DrawPolygons, rep.DrawPolylines, rep.DrawCircles, rep.DrawRings)

	fmt.Printf("--- Picking ---\n")
	fmt.Printf("samples=%d mismatches=%d\n\n", rep.PickSamples, rep.PickMismatches)

	if len(rep.Failures) == 0 {
		fmt.Println("checks: ok")
		return
	}
	fmt.Printf("checks: %d failed\n", len(rep.Failures))
	for _, f := range rep.Failures {
		fmt.Printf("  FAIL %s\n", f)
	}
}
