package scene

import (
	"image/color"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// terrainPrim is one filled hex copy. Geometry is fixed at build; only the
// tint changes afterwards.
type terrainPrim struct {
	tile    worldmap.TileID
	center  math.Vec2
	corners [6]math.Vec2
	tint    color.NRGBA
}

// buildTerrain creates the phase copies tile-major: the three copies of tile
// i occupy terrain[i*3 : i*3+3], so a retint walks them without a lookup.
func (s *Scene) buildTerrain() {
	s.terrain = make([]terrainPrim, 0, len(s.tiles)*len(phases))
	for _, t := range s.tiles {
		center, ok := s.layout.Center(t.ID)
		if !ok {
			continue
		}
		tint := palette.TileColor(t, s.mode)
		for _, phase := range phases {
			c := math.Vec2{X: center.X + phase*s.layout.WorldWidth, Y: center.Y}
			s.terrain = append(s.terrain, terrainPrim{
				tile:    t.ID,
				center:  c,
				corners: s.layout.Metrics.Corners(c),
				tint:    tint,
			})
		}
	}
}

// retintTerrain recomputes every tile's tint for the current view mode and
// writes it through to all three phase copies.
func (s *Scene) retintTerrain() {
	i := 0
	for _, t := range s.tiles {
		if i >= len(s.terrain) || s.terrain[i].tile != t.ID {
			continue
		}
		tint := palette.TileColor(t, s.mode)
		for p := 0; p < len(phases) && i < len(s.terrain); p++ {
			s.terrain[i].tint = tint
			i++
		}
	}
}

func (s *Scene) drawTerrain(dst Surface, cam *camera.Camera, vp viewport) {
	margin := s.layout.Metrics.HexWidth * cam.Zoom
	for i := range s.terrain {
		t := &s.terrain[i]
		if !vp.visible(cam.ToScreen(t.center), margin) {
			continue
		}
		s.pts = s.pts[:0]
		for _, p := range t.corners {
			s.pts = append(s.pts, cam.ToScreen(p))
		}
		dst.FillPolygon(s.pts, t.tint)
	}
}
