// Package palette maps tile, vegetation, and habitat state to colors and
// draw parameters. Everything here is pure except the bad-data warning on
// unparseable color strings.
package palette

import (
	"fmt"
	"image/color"
	gomath "math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/colornames"

	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
)

// White is the fallback tint for unparseable color strings.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Indicator, outline, and river colors.
var (
	RingColor   = color.NRGBA{R: 0x38, G: 0xbd, B: 0xf8, A: 0xff}
	HoverColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	SelectColor = color.NRGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}
	RiverColor  = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xd9}
)

// Parse parses a tile color string: "#RRGGBB", "rgb(r, g, b)", or an SVG
// color name.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty color string")
	case s[0] == '#':
		return parseHex(s)
	case strings.HasPrefix(strings.ToLower(s), "rgb("):
		return parseRGBFunc(s)
	default:
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
		}
		return color.NRGBA{}, fmt.Errorf("unknown color name %q", s)
	}
}

// ParseOrWhite parses a color string, falling back to white on bad data.
// The failure is a data-quality warning, never an error.
func ParseOrWhite(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		logger.Warn("bad color string, using white",
			zap.String("color", s),
			zap.Error(err),
		)
		return White
	}
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	if len(s) != 7 {
		return color.NRGBA{}, fmt.Errorf("hex color %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

func parseRGBFunc(s string) (color.NRGBA, error) {
	inner := strings.TrimSpace(s)
	inner = inner[len("rgb("):]
	if !strings.HasSuffix(inner, ")") {
		return color.NRGBA{}, fmt.Errorf("rgb color %q missing closing paren", s)
	}
	inner = strings.TrimSuffix(inner, ")")

	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, fmt.Errorf("rgb color %q needs 3 components", s)
	}

	var comps [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("rgb color %q: %w", s, err)
		}
		if n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("rgb color %q component %d out of range", s, n)
		}
		comps[i] = uint8(n)
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: 0xff}, nil
}

// Lerp interpolates between two colors, t in [0, 1].
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: lerp8(a.A, b.A, t),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(gomath.Round(float64(a) + (float64(b)-float64(a))*t))
}

// WithAlpha returns c with its alpha scaled by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(gomath.Round(float64(c.A) * a))
	return c
}

type rampStop struct {
	pos   float64
	color color.NRGBA
}

// suitabilityRamp runs red through green. The fourth stop starts at 0.6 so
// mid-grade habitat separates visibly from barely-viable habitat.
var suitabilityRamp = []rampStop{
	{0.0, color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}},
	{0.25, color.NRGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}},
	{0.5, color.NRGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}},
	{0.6, color.NRGBA{R: 0x84, G: 0xcc, B: 0x16, A: 0xff}},
	{1.0, color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}},
}

// Suitability maps a habitat score in [0, 1] onto the red-to-green ramp,
// interpolating linearly within each band. Out-of-range scores clamp.
func Suitability(score float64) color.NRGBA {
	if score <= suitabilityRamp[0].pos {
		return suitabilityRamp[0].color
	}
	last := suitabilityRamp[len(suitabilityRamp)-1]
	if score >= last.pos {
		return last.color
	}
	for i := 1; i < len(suitabilityRamp); i++ {
		hi := suitabilityRamp[i]
		if score > hi.pos {
			continue
		}
		lo := suitabilityRamp[i-1]
		t := (score - lo.pos) / (hi.pos - lo.pos)
		return Lerp(lo.color, hi.color, t)
	}
	return last.color
}

// TileColor resolves the terrain tint for a tile in a view mode. The
// suitability mode computes its tint from the score; every other mode
// parses the precomputed per-mode color string.
func TileColor(tile worldmap.Tile, mode worldmap.ViewMode) color.NRGBA {
	if mode == worldmap.ModeSuitability {
		return Suitability(tile.Suitability)
	}
	return ParseOrWhite(tile.Colors[mode])
}

// VegetationStyle describes how one vegetation category is drawn.
type VegetationStyle struct {
	Color color.NRGBA
	// CountMul scales density into a per-tile decoration count.
	CountMul float64
	Alpha    float64
}

var vegetationStyles = map[string]VegetationStyle{
	"forest":  {color.NRGBA{R: 0x16, G: 0x65, B: 0x34, A: 0xff}, 6, 0.85},
	"grass":   {color.NRGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}, 3, 0.55},
	"shrub":   {color.NRGBA{R: 0x65, G: 0xa3, B: 0x0d, A: 0xff}, 4, 0.65},
	"wetland": {color.NRGBA{R: 0x2d, G: 0xd4, B: 0xbf, A: 0xff}, 4, 0.60},
}

// defaultVegetation covers categories the table does not know.
var defaultVegetation = VegetationStyle{color.NRGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}, 3, 0.6}

// Vegetation returns the style for a category, falling back to a default
// green for unknown categories.
func Vegetation(category string) VegetationStyle {
	if s, ok := vegetationStyles[category]; ok {
		return s
	}
	return defaultVegetation
}

// HabitatBand describes the ambient dot for one occupant-count range.
type HabitatBand struct {
	Min   int
	Color color.NRGBA
	Alpha float64
	Scale float64
}

// habitatBands from sparse to crowded; Habitat takes the last band whose
// Min is covered by the count.
var habitatBands = []HabitatBand{
	{1, color.NRGBA{R: 0xfe, G: 0xf0, B: 0x8a, A: 0xff}, 0.65, 0.75},
	{2, color.NRGBA{R: 0xfd, G: 0xe0, B: 0x47, A: 0xff}, 0.75, 0.90},
	{4, color.NRGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}, 0.85, 1.05},
	{7, color.NRGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}, 0.95, 1.20},
}

// Habitat returns the ambient dot styling for an occupant count. Counts
// below one carry no dot and return false.
func Habitat(count int) (HabitatBand, bool) {
	if count < habitatBands[0].Min {
		return HabitatBand{}, false
	}
	band := habitatBands[0]
	for _, b := range habitatBands[1:] {
		if count >= b.Min {
			band = b
		}
	}
	return band, true
}
