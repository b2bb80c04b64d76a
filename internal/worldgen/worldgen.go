// Package worldgen produces demo world snapshots: a seeded, deterministic
// stand-in for the simulation side that feeds the map view.
package worldgen

import (
	"fmt"
	gomath "math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
)

// Config sizes the generated world.
type Config struct {
	Seed    int64
	Columns int
	Rows    int
	Species int
}

// biomeDef maps a generated climate cell to its display color. Color
// strings deliberately mix the formats the simulation emits: hex, rgb()
// and SVG names.
type biomeDef struct {
	name  string
	color string
	water bool
	// jitter allows per-tile shade variation; only hex colors take it.
	jitter bool
}

var (
	biomeDeepWater = biomeDef{"deep water", "#1d4ed8", true, false}
	biomeShallows  = biomeDef{"shallows", "steelblue", true, false}
	biomeBeach     = biomeDef{"beach", "rgb(236, 217, 166)", false, false}
	biomeTundra    = biomeDef{"tundra", "#94a3b8", false, true}
	biomeTaiga     = biomeDef{"taiga", "#3f6212", false, true}
	biomeForest    = biomeDef{"forest", "forestgreen", false, false}
	biomeGrassland = biomeDef{"grassland", "#65a30d", false, true}
	biomeSavanna   = biomeDef{"savanna", "rgb(202, 138, 4)", false, false}
	biomeDesert    = biomeDef{"desert", "#eab308", false, true}
	biomeMountain  = biomeDef{"mountain", "slategray", false, false}
	biomeSnow      = biomeDef{"snowcap", "#f1f5f9", false, true}
)

// field holds the intermediate per-tile climate values the snapshot is
// derived from.
type field struct {
	elevation float64
	temp      float64
	biome     biomeDef
	suit      float64
}

// Generate builds a snapshot from the config. The same config always
// yields the same snapshot. Invalid dimensions yield an empty snapshot,
// which the view treats as missing data.
func Generate(cfg Config) *worldmap.Snapshot {
	if cfg.Columns <= 0 || cfg.Rows <= 0 {
		logger.Warn("world generation skipped",
			zap.Int("columns", cfg.Columns), zap.Int("rows", cfg.Rows))
		return &worldmap.Snapshot{}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	fields := climate(rng, cfg)

	snap := &worldmap.Snapshot{
		Tiles:      make([]worldmap.Tile, 0, cfg.Columns*cfg.Rows),
		Rivers:     make(map[worldmap.TileID]worldmap.RiverLink),
		Vegetation: make(map[worldmap.TileID]worldmap.Vegetation),
	}

	for c := 0; c < cfg.Columns; c++ {
		for r := 0; r < cfg.Rows; r++ {
			f := &fields[c*cfg.Rows+r]
			id := tileID(c, r, cfg.Rows)
			snap.Tiles = append(snap.Tiles, worldmap.Tile{
				ID:     id,
				Column: c,
				Row:    r,
				Colors: map[worldmap.ViewMode]string{
					worldmap.ModeBiome:       biomeColor(rng, f.biome),
					worldmap.ModeTemperature: temperatureColor(f.temp),
					worldmap.ModeElevation:   elevationColor(f.elevation),
				},
				Suitability: f.suit,
			})
		}
	}

	traceRivers(rng, cfg, fields, snap)
	growVegetation(rng, cfg, fields, snap)
	settleSpecies(rng, cfg, fields, snap)

	logger.Info("world generated",
		zap.Int64("seed", cfg.Seed),
		zap.Int("tiles", len(snap.Tiles)),
		zap.Int("rivers", len(snap.Rivers)),
		zap.Int("vegetated", len(snap.Vegetation)),
		zap.Int("occupants", len(snap.Occupancy)),
	)
	return snap
}

func tileID(col, row, rows int) worldmap.TileID {
	return worldmap.TileID(col*rows + row)
}

// climate derives elevation, temperature, biome, and suitability per tile.
// Elevation uses column-periodic waves so the terrain is continuous across
// the horizontal wrap seam.
func climate(rng *rand.Rand, cfg Config) []field {
	ox := rng.Float64()
	oy := rng.Float64()
	ox2 := rng.Float64()

	fields := make([]field, cfg.Columns*cfg.Rows)
	for c := 0; c < cfg.Columns; c++ {
		for r := 0; r < cfg.Rows; r++ {
			fx := float64(c) / float64(cfg.Columns)
			fy := float64(r) / float64(cfg.Rows)

			elev := 0.55 +
				0.25*gomath.Sin(2*gomath.Pi*(2*fx+ox))*gomath.Cos(gomath.Pi*(3*fy+oy)) +
				0.12*gomath.Sin(2*gomath.Pi*(5*fx+ox2))*gomath.Sin(gomath.Pi*(2*fy+ox)) +
				0.08*(rng.Float64()-0.5)
			elev = clamp01(elev)

			// Warm at the equator row, cooled by altitude.
			temp := 0.92 - 0.75*gomath.Abs(2*fy-1) - 0.35*elev + 0.06*(rng.Float64()-0.5)
			temp = clamp01(temp)

			f := &fields[c*cfg.Rows+r]
			f.elevation = elev
			f.temp = temp
			f.biome = classify(elev, temp)
			if f.biome.water {
				f.suit = 0
			} else {
				f.suit = clamp01(1 - 1.5*gomath.Abs(temp-0.55) - 0.9*gomath.Abs(elev-0.5) +
					0.1*(rng.Float64()-0.5))
			}
		}
	}
	return fields
}

func classify(elev, temp float64) biomeDef {
	switch {
	case elev < 0.28:
		return biomeDeepWater
	case elev < 0.36:
		return biomeShallows
	case elev < 0.40:
		return biomeBeach
	case elev > 0.85:
		if temp < 0.4 {
			return biomeSnow
		}
		return biomeMountain
	case temp < 0.2:
		return biomeTundra
	case temp < 0.38:
		return biomeTaiga
	case temp > 0.78:
		if elev > 0.6 {
			return biomeSavanna
		}
		return biomeDesert
	case temp > 0.6:
		return biomeSavanna
	default:
		if elev > 0.55 {
			return biomeForest
		}
		return biomeGrassland
	}
}

// biomeColor renders the biome tint, shading hex biomes slightly per tile.
func biomeColor(rng *rand.Rand, b biomeDef) string {
	if !b.jitter {
		return b.color
	}
	var r, g, bl int
	fmt.Sscanf(b.color, "#%02x%02x%02x", &r, &g, &bl)
	j := func(v int) int {
		v += rng.Intn(17) - 8
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", j(r), j(g), j(bl))
}

// temperatureColor runs cold blue to hot red.
func temperatureColor(t float64) string {
	r := int(gomath.Round(59 + t*(239-59)))
	g := int(gomath.Round(130 + t*(68-130)))
	b := int(gomath.Round(246 + t*(68-246)))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// elevationColor is a grayscale ramp, emitted in rgb() form.
func elevationColor(e float64) string {
	v := int(gomath.Round(40 + e*200))
	return fmt.Sprintf("rgb(%d, %d, %d)", v, v, v)
}

// neighborOffsets returns the six grid offsets around a column, which
// depend on column parity because odd columns sit half a cell lower.
func neighborOffsets(col int) [6][2]int {
	if col%2 == 0 {
		return [6][2]int{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {0, 1}}
	}
	return [6][2]int{{1, 1}, {1, 0}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}
}

// neighbors lists the valid neighbor cells of (col, row). Columns wrap
// around the world seam; rows clamp at the poles.
func neighbors(col, row, cols, rows int) [][2]int {
	out := make([][2]int, 0, 6)
	for _, d := range neighborOffsets(col) {
		cc := ((col+d[0])%cols + cols) % cols
		rr := row + d[1]
		if rr < 0 || rr >= rows {
			continue
		}
		out = append(out, [2]int{cc, rr})
	}
	return out
}

// traceRivers starts rivers on high ground and follows the steepest
// descent until water, a confluence, or a basin. Each tile carries at
// most one outflow; flux grows along the path.
func traceRivers(rng *rand.Rand, cfg Config, fields []field, snap *worldmap.Snapshot) {
	for c := 0; c < cfg.Columns; c++ {
		for r := 0; r < cfg.Rows; r++ {
			f := &fields[c*cfg.Rows+r]
			if f.biome.water || f.elevation < 0.6 || rng.Float64() > 0.15 {
				continue
			}

			col, row := c, r
			for step := 0; step < cfg.Columns+cfg.Rows; step++ {
				cur := &fields[col*cfg.Rows+row]
				if cur.biome.water {
					break
				}
				id := tileID(col, row, cfg.Rows)
				if _, ok := snap.Rivers[id]; ok {
					break // confluence with an existing river
				}

				nextCol, nextRow := -1, -1
				lowest := cur.elevation
				for _, n := range neighbors(col, row, cfg.Columns, cfg.Rows) {
					e := fields[n[0]*cfg.Rows+n[1]].elevation
					if e < lowest {
						lowest = e
						nextCol, nextRow = n[0], n[1]
					}
				}
				if nextCol < 0 {
					break // basin: no lower neighbor
				}

				snap.Rivers[id] = worldmap.RiverLink{
					Target: tileID(nextCol, nextRow, cfg.Rows),
					Flux:   gomath.Min(1, 0.25+0.12*float64(step)),
				}
				col, row = nextCol, nextRow
			}
		}
	}
}

// growVegetation covers viable land with density scaled by suitability.
func growVegetation(rng *rand.Rand, cfg Config, fields []field, snap *worldmap.Snapshot) {
	for c := 0; c < cfg.Columns; c++ {
		for r := 0; r < cfg.Rows; r++ {
			f := &fields[c*cfg.Rows+r]
			if f.biome.water || f.suit < 0.25 || rng.Float64() > 0.75 {
				continue
			}
			category := ""
			switch f.biome.name {
			case "forest", "taiga":
				category = "forest"
			case "grassland", "tundra":
				category = "grass"
			case "savanna":
				category = "shrub"
			case "beach":
				if rng.Float64() < 0.4 {
					category = "wetland"
				}
			}
			if category == "" {
				continue
			}
			snap.Vegetation[tileID(c, r, cfg.Rows)] = worldmap.Vegetation{
				Density:  clamp01(0.35 + 0.65*f.suit + 0.15*(rng.Float64()-0.5)),
				Category: category,
			}
		}
	}
}

// settleSpecies drops each species as a cluster: a seed tile on good
// habitat plus a short random walk of herd members around it.
func settleSpecies(rng *rand.Rand, cfg Config, fields []field, snap *worldmap.Snapshot) {
	if cfg.Species <= 0 {
		return
	}

	// Candidate seed tiles, best habitat first-served by random draw.
	candidates := make([][2]int, 0, len(fields)/4)
	for c := 0; c < cfg.Columns; c++ {
		for r := 0; r < cfg.Rows; r++ {
			if fields[c*cfg.Rows+r].suit >= 0.5 {
				candidates = append(candidates, [2]int{c, r})
			}
		}
	}
	if len(candidates) == 0 {
		logger.Warn("no viable habitat for species placement")
		return
	}

	for s := 0; s < cfg.Species; s++ {
		seed := candidates[rng.Intn(len(candidates))]
		col, row := seed[0], seed[1]
		herd := 4 + rng.Intn(7)
		for i := 0; i < herd; i++ {
			snap.Occupancy = append(snap.Occupancy, worldmap.Occupant{
				Entity: worldmap.EntityID(s),
				Tile:   tileID(col, row, cfg.Rows),
			})
			// Drift to a nearby viable tile for the next member.
			opts := neighbors(col, row, cfg.Columns, cfg.Rows)
			n := opts[rng.Intn(len(opts))]
			if !fields[n[0]*cfg.Rows+n[1]].biome.water {
				col, row = n[0], n[1]
			}
		}
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
