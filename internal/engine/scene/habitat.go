package scene

import (
	"sort"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/engine/palette"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// indicatorState is the two-state visual machine for habitat markers:
// ambient shows the count-banded dot, highlighted shows the pulsing ring.
// Exactly one of the two is visible per tile per wrap phase.
type indicatorState int

const (
	indicatorAmbient indicatorState = iota
	indicatorHighlighted
)

// occupiedTile records which entities live on a tile. The indicator copies
// of occupied tile j sit at indicator[j*3 : j*3+3].
type occupiedTile struct {
	tile     worldmap.TileID
	entities []worldmap.EntityID
}

// indicatorPrim is the dot/ring pair for one occupied tile copy.
type indicatorPrim struct {
	tile   worldmap.TileID
	center math.Vec2
	count  int
	band   palette.HabitatBand
	state  indicatorState
}

func (o *occupiedTile) contains(e worldmap.EntityID) bool {
	for _, have := range o.entities {
		if have == e {
			return true
		}
	}
	return false
}

// buildIndicators groups the occupancy multiset by tile and creates one
// dot/ring pair per occupied tile and wrap phase. Rings start hidden unless
// the tile hosts the highlighted entity.
func (s *Scene) buildIndicators(occupancy []worldmap.Occupant) {
	if len(occupancy) == 0 {
		return
	}

	byTile := make(map[worldmap.TileID][]worldmap.EntityID)
	for _, o := range occupancy {
		byTile[o.Tile] = append(byTile[o.Tile], o.Entity)
	}

	// Stable order keeps rebuilds deterministic.
	ids := make([]worldmap.TileID, 0, len(byTile))
	for id := range byTile {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	s.occupied = make([]occupiedTile, 0, len(ids))
	s.indicator = make([]indicatorPrim, 0, len(ids)*len(phases))
	for _, id := range ids {
		center, ok := s.layout.Center(id)
		if !ok {
			continue
		}
		occ := occupiedTile{tile: id, entities: byTile[id]}
		band, ok := palette.Habitat(len(occ.entities))
		if !ok {
			continue
		}
		state := indicatorAmbient
		if s.highlighted != worldmap.NoEntity && occ.contains(s.highlighted) {
			state = indicatorHighlighted
		}
		s.occupied = append(s.occupied, occ)
		for _, phase := range phases {
			s.indicator = append(s.indicator, indicatorPrim{
				tile:   id,
				center: math.Vec2{X: center.X + phase*s.layout.WorldWidth, Y: center.Y},
				count:  len(occ.entities),
				band:   band,
				state:  state,
			})
		}
	}
}

// SetHighlighted switches habitat indicators between their ambient and
// highlighted states for a newly selected entity (NoEntity clears the
// selection). Only indicators whose state actually changes are touched,
// so the cost is bounded by the occupied tile count.
func (s *Scene) SetHighlighted(e worldmap.EntityID) {
	s.highlighted = e
	if s.layout == nil {
		return
	}
	for j := range s.occupied {
		want := indicatorAmbient
		if e != worldmap.NoEntity && s.occupied[j].contains(e) {
			want = indicatorHighlighted
		}
		base := j * len(phases)
		if s.indicator[base].state == want {
			continue
		}
		for p := 0; p < len(phases); p++ {
			s.indicator[base+p].state = want
		}
	}
}

// Highlighted returns the entity the indicators are highlighted for.
func (s *Scene) Highlighted() worldmap.EntityID {
	return s.highlighted
}

func (s *Scene) drawIndicators(dst Surface, cam *camera.Camera, vp viewport) {
	m := s.layout.Metrics
	margin := m.HexWidth * cam.Zoom
	dotRadius := m.HexHeight * 0.16
	ringRadius := m.HexWidth * 0.30
	for i := range s.indicator {
		ind := &s.indicator[i]
		p := cam.ToScreen(ind.center)
		if !vp.visible(p, margin) {
			continue
		}
		if ind.state == indicatorHighlighted {
			tint := palette.WithAlpha(palette.RingColor, s.pulseAlpha)
			dst.StrokeCircle(p, ringRadius*s.pulseScale*cam.Zoom, 2.0, tint)
			continue
		}
		tint := palette.WithAlpha(ind.band.Color, ind.band.Alpha)
		dst.FillCircle(p, dotRadius*ind.band.Scale*cam.Zoom, tint)
	}
}
