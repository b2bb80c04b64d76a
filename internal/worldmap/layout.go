package worldmap

import (
	"github.com/e555321e/cladeview/pkg/math"
)

// Metrics fixes the hex cell dimensions the layout is computed with.
type Metrics struct {
	HexWidth  float64
	HexHeight float64
	Padding   float64
}

// DefaultMetrics returns the cell dimensions used by the map view.
func DefaultMetrics() Metrics {
	return Metrics{HexWidth: 40, HexHeight: 34, Padding: 40}
}

// Corners returns the six corners of a flat-top hex centered at c,
// clockwise from the east corner.
func (m Metrics) Corners(c math.Vec2) [6]math.Vec2 {
	w2 := m.HexWidth / 2
	w4 := m.HexWidth / 4
	h2 := m.HexHeight / 2
	return [6]math.Vec2{
		{X: c.X + w2, Y: c.Y},
		{X: c.X + w4, Y: c.Y + h2},
		{X: c.X - w4, Y: c.Y + h2},
		{X: c.X - w2, Y: c.Y},
		{X: c.X - w4, Y: c.Y - h2},
		{X: c.X + w4, Y: c.Y - h2},
	}
}

type gridKey struct {
	col, row int
}

// Layout is the derived, read-only mapping from tile identifiers to pixel
// centers, plus the world bounding box. It is recomputed whenever the tile
// set changes and never mutated piecewise.
type Layout struct {
	Metrics     Metrics
	WorldWidth  float64
	WorldHeight float64
	MaxColumn   int
	MaxRow      int

	centers map[TileID]math.Vec2
	grid    map[gridKey]TileID
}

// ComputeLayout derives pixel centers and world bounds from the tile grid.
// Column c sits at x = c*hexWidth*0.75 + padding; odd columns shift down
// half a cell. Returns nil for an empty tile set; callers must treat a nil
// layout as "no map yet" and skip dependent work.
func ComputeLayout(tiles []Tile, m Metrics) *Layout {
	if len(tiles) == 0 {
		return nil
	}

	l := &Layout{
		Metrics: m,
		centers: make(map[TileID]math.Vec2, len(tiles)),
		grid:    make(map[gridKey]TileID, len(tiles)),
	}

	for _, t := range tiles {
		x := float64(t.Column)*m.HexWidth*0.75 + m.Padding
		y := float64(t.Row)*m.HexHeight + m.Padding
		if t.Column%2 != 0 {
			y += m.HexHeight / 2
		}
		l.centers[t.ID] = math.Vec2{X: x, Y: y}
		l.grid[gridKey{t.Column, t.Row}] = t.ID
		if t.Column > l.MaxColumn {
			l.MaxColumn = t.Column
		}
		if t.Row > l.MaxRow {
			l.MaxRow = t.Row
		}
	}

	l.WorldWidth = float64(l.MaxColumn+1) * m.HexWidth * 0.75
	l.WorldHeight = float64(l.MaxRow+1)*m.HexHeight + m.HexHeight/2 + 2*m.Padding
	return l
}

// Center returns the pixel center of a tile.
func (l *Layout) Center(id TileID) (math.Vec2, bool) {
	c, ok := l.centers[id]
	return c, ok
}

// At returns the tile occupying a grid cell.
func (l *Layout) At(col, row int) (TileID, bool) {
	id, ok := l.grid[gridKey{col, row}]
	return id, ok
}

// NumColumns returns the column count, which is also the wrap modulus.
func (l *Layout) NumColumns() int {
	return l.MaxColumn + 1
}

// NumTiles returns the number of placed tiles.
func (l *Layout) NumTiles() int {
	return len(l.centers)
}
