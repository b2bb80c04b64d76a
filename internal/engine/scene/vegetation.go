package scene

import (
	"image/color"
	gomath "math"
	"math/rand"
	"sort"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// markPrim is one vegetation dot.
type markPrim struct {
	pos    math.Vec2
	radius float64
	color  color.NRGBA
}

// buildVegetation scatters density-proportional marks inside each
// vegetated hex. The scatter is seeded by tile id, so the same snapshot
// always produces the same decoration.
func (s *Scene) buildVegetation(veg map[worldmap.TileID]worldmap.Vegetation) {
	if len(veg) == 0 {
		return
	}
	m := s.layout.Metrics
	spread := m.HexWidth * 0.38
	s.marks = s.marks[:0]
	ids := make([]worldmap.TileID, 0, len(veg))
	for id := range veg {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		v := veg[id]
		center, ok := s.layout.Center(id)
		if !ok {
			continue
		}
		style := palette.Vegetation(v.Category)
		count := int(gomath.Round(clamp01(v.Density) * style.CountMul))
		if count <= 0 {
			continue
		}
		tint := palette.WithAlpha(style.Color, style.Alpha)
		rng := rand.New(rand.NewSource(int64(id)*7919 + 17))
		for i := 0; i < count; i++ {
			angle := rng.Float64() * 2 * gomath.Pi
			dist := gomath.Sqrt(rng.Float64()) * spread
			radius := 1.2 + rng.Float64()
			pos := math.Vec2{
				X: center.X + gomath.Cos(angle)*dist,
				Y: center.Y + gomath.Sin(angle)*dist,
			}
			for _, phase := range phases {
				s.marks = append(s.marks, markPrim{
					pos:    math.Vec2{X: pos.X + phase*s.layout.WorldWidth, Y: pos.Y},
					radius: radius,
					color:  tint,
				})
			}
		}
	}
}

func (s *Scene) drawMarks(dst Surface, cam *camera.Camera, vp viewport) {
	margin := s.layout.Metrics.HexWidth * cam.Zoom
	for i := range s.marks {
		mk := &s.marks[i]
		p := cam.ToScreen(mk.pos)
		if !vp.visible(p, margin) {
			continue
		}
		dst.FillCircle(p, mk.radius*cam.Zoom, mk.color)
	}
}
