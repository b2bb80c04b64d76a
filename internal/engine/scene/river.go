package scene

import (
	"image/color"
	gomath "math"
	"sort"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// curveSegments is the flattening resolution of one river quadratic.
const curveSegments = 8

// curvePrim is one flattened river quadratic. minX/maxX bound the curve
// horizontally for culling.
type curvePrim struct {
	pts        []math.Vec2
	width      float64
	color      color.NRGBA
	minX, maxX float64
	minY, maxY float64
}

// buildRivers emits one curve per river link and wrap phase. Links whose
// horizontal tile-to-tile delta exceeds half the world width would draw a
// stroke across the whole map instead of crossing the seam, so they are
// skipped.
func (s *Scene) buildRivers(rivers map[worldmap.TileID]worldmap.RiverLink) {
	if len(rivers) == 0 {
		return
	}
	s.curves = make([]curvePrim, 0, len(rivers)*len(phases))
	ids := make([]worldmap.TileID, 0, len(rivers))
	for id := range rivers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		link := rivers[id]
		from, ok := s.layout.Center(id)
		if !ok {
			continue
		}
		to, ok := s.layout.Center(link.Target)
		if !ok {
			continue
		}
		if gomath.Abs(to.X-from.X) > s.layout.WorldWidth/2 {
			continue
		}
		width := 1.0 + 3.0*clamp01(link.Flux)
		base := flattenQuad(from, riverControl(id, from, to), to)
		for _, phase := range phases {
			dx := phase * s.layout.WorldWidth
			prim := curvePrim{
				pts:   make([]math.Vec2, len(base)),
				width: width,
				color: palette.RiverColor,
				minX:  gomath.Inf(1),
				maxX:  gomath.Inf(-1),
				minY:  gomath.Inf(1),
				maxY:  gomath.Inf(-1),
			}
			for i, p := range base {
				q := math.Vec2{X: p.X + dx, Y: p.Y}
				prim.pts[i] = q
				prim.minX = gomath.Min(prim.minX, q.X)
				prim.maxX = gomath.Max(prim.maxX, q.X)
				prim.minY = gomath.Min(prim.minY, q.Y)
				prim.maxY = gomath.Max(prim.maxY, q.Y)
			}
			s.curves = append(s.curves, prim)
		}
	}
}

// riverControl bends the quadratic sideways from the straight line by a
// deterministic per-tile amount, so repeated builds draw identical rivers.
func riverControl(id worldmap.TileID, from, to math.Vec2) math.Vec2 {
	mid := math.Vec2{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}
	dir := to.Sub(from)
	length := dir.Length()
	if length == 0 {
		return mid
	}
	// Unit perpendicular, flipped by tile parity.
	perp := math.Vec2{X: -dir.Y / length, Y: dir.X / length}
	bend := length * 0.22
	if id%2 == 0 {
		bend = -bend
	}
	return mid.Add(perp.Scale(bend))
}

// flattenQuad samples a quadratic Bezier into a polyline.
func flattenQuad(p0, p1, p2 math.Vec2) []math.Vec2 {
	pts := make([]math.Vec2, curveSegments+1)
	for i := 0; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		pts[i] = math.Vec2{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		}
	}
	return pts
}

func (s *Scene) drawRivers(dst Surface, cam *camera.Camera, vp viewport) {
	for i := range s.curves {
		c := &s.curves[i]
		lo := cam.ToScreen(math.Vec2{X: c.minX, Y: c.minY})
		hi := cam.ToScreen(math.Vec2{X: c.maxX, Y: c.maxY})
		if hi.X < 0 || lo.X > vp.w || hi.Y < 0 || lo.Y > vp.h {
			continue
		}
		s.pts = s.pts[:0]
		for _, p := range c.pts {
			s.pts = append(s.pts, cam.ToScreen(p))
		}
		dst.StrokePolyline(s.pts, c.width*cam.Zoom, c.color)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
