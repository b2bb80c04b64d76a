// Package picking resolves screen-space points to map tiles.
package picking

import (
	gomath "math"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// PickTile resolves a screen point to the tile under it. Returns false when
// no tile center lies within half a hex width of the point, or when the
// layout is missing. The camera's wrap-normalized inverse transform keeps
// the result stable however far the view has wrapped horizontally.
func PickTile(layout *worldmap.Layout, cam *camera.Camera, screen math.Vec2) (worldmap.TileID, bool) {
	if layout == nil || cam == nil {
		return 0, false
	}

	world := cam.ToWorld(screen)

	// Canonicalize world x into [0, worldWidth).
	wx := gomath.Mod(world.X, layout.WorldWidth)
	if wx < 0 {
		wx += layout.WorldWidth
	}
	wy := world.Y

	m := layout.Metrics

	// Approximate inversion of the layout formula. It is exact near tile
	// centers and off by one near hex edges and the odd-column shift, so
	// the true hit is always inside the +-1 neighborhood scanned below.
	col := int(gomath.Round((wx - m.Padding) / (m.HexWidth * 0.75)))
	row := int(gomath.Round((wy - m.Padding) / m.HexHeight))

	numCols := layout.NumColumns()
	bestDist := gomath.MaxFloat64
	var bestID worldmap.TileID
	found := false

	for dc := -1; dc <= 1; dc++ {
		cc := wrapColumn(col+dc, numCols)
		for dr := -1; dr <= 1; dr++ {
			id, ok := layout.At(cc, row+dr)
			if !ok {
				continue
			}
			center, ok := layout.Center(id)
			if !ok {
				continue
			}
			d := wrapDistance(center, math.Vec2{X: wx, Y: wy}, layout.WorldWidth)
			if d < bestDist {
				bestDist = d
				bestID = id
				found = true
			}
		}
	}

	if !found || bestDist > m.HexWidth/2 {
		return 0, false
	}
	return bestID, true
}

// wrapColumn reduces a column index modulo the column count.
func wrapColumn(col, numCols int) int {
	return ((col % numCols) + numCols) % numCols
}

// wrapDistance measures the distance from a tile center to a canonical
// point, taking the shorter way around the horizontal wrap. Centers in the
// last column sit up to a padding past the seam, so the horizontal delta
// is reduced modulo the world width first.
func wrapDistance(center, p math.Vec2, worldWidth float64) float64 {
	dx := gomath.Abs(center.X - p.X)
	dx = gomath.Mod(dx, worldWidth)
	if worldWidth-dx < dx {
		dx = worldWidth - dx
	}
	dy := center.Y - p.Y
	return gomath.Sqrt(dx*dx + dy*dy)
}
