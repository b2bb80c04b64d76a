// Package worldmap defines the map snapshot handed over by the simulation
// and the hex grid layout derived from it.
package worldmap

// TileID identifies a tile. Stable for the lifetime of one snapshot.
type TileID int

// EntityID identifies a population-bearing entity (a species).
type EntityID int

// NoEntity is the EntityID meaning "nothing selected".
const NoEntity EntityID = -1

// ViewMode selects which per-tile color the terrain is tinted with.
type ViewMode int

// Available view modes, in display order.
const (
	ModeBiome ViewMode = iota
	ModeSuitability
	ModeTemperature
	ModeElevation
)

// String returns the display name of the mode.
func (m ViewMode) String() string {
	switch m {
	case ModeBiome:
		return "biome"
	case ModeSuitability:
		return "suitability"
	case ModeTemperature:
		return "temperature"
	case ModeElevation:
		return "elevation"
	default:
		return "unknown"
	}
}

// ViewModes returns all view modes in display order.
func ViewModes() []ViewMode {
	return []ViewMode{ModeBiome, ModeSuitability, ModeTemperature, ModeElevation}
}

// Tile is one cell of the hexagonal world grid.
type Tile struct {
	ID     TileID
	Column int
	Row    int

	// Colors holds the precomputed tint string per view mode.
	// The suitability tint is not stored; it is derived from Suitability.
	Colors map[ViewMode]string

	// Suitability is a habitat score in [0, 1].
	Suitability float64
}

// RiverLink describes the outflow from one tile to another.
type RiverLink struct {
	Target TileID
	Flux   float64
}

// Vegetation describes the plant cover on one tile.
type Vegetation struct {
	Density  float64
	Category string
}

// Occupant places an entity on a tile. A tile may carry many occupants.
type Occupant struct {
	Entity EntityID
	Tile   TileID
}

// Snapshot is the read-only world state consumed by the map view.
// It is replaced wholesale on simulation updates, never mutated in place.
type Snapshot struct {
	Tiles      []Tile
	Rivers     map[TileID]RiverLink
	Vegetation map[TileID]Vegetation
	Occupancy  []Occupant
}
