// Package renderer implements the scene drawing surface on the Ebitengine
// 2D backend.
package renderer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/engine/scene"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	// AntiAlias toggles anti-aliased vector rendering.
	AntiAlias bool
}

// Renderer creates offscreen drawing surfaces backed by Ebitengine images.
// It implements scene.Provider.
type Renderer struct {
	config Config
}

// New creates a renderer.
func New(cfg Config) *Renderer {
	logger.Info("renderer initialized", zap.Bool("antialias", cfg.AntiAlias))
	return &Renderer{config: cfg}
}

// Acquire creates an offscreen surface and hands it to done. Creation is
// synchronous on this backend, so done runs before Acquire returns; callers
// must still treat the callback as the only delivery path.
func (r *Renderer) Acquire(width, height int, done func(scene.Surface, error)) {
	if width <= 0 || height <= 0 {
		done(nil, fmt.Errorf("invalid surface size %dx%d", width, height))
		return
	}
	logger.Debug("surface acquired", zap.Int("width", width), zap.Int("height", height))
	done(&Surface{
		img:       ebiten.NewImage(width, height),
		width:     width,
		height:    height,
		antiAlias: r.config.AntiAlias,
	}, nil)
}

// Surface is an offscreen Ebitengine image with vector drawing on top.
type Surface struct {
	img       *ebiten.Image
	width     int
	height    int
	antiAlias bool
}

// Image returns the backing image for compositing onto the screen.
// Returns nil after Release.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Clear fills the whole surface with one color.
func (s *Surface) Clear(c color.NRGBA) {
	s.img.Fill(c)
}

// FillPolygon fills a closed polygon. Fewer than three points is a no-op.
func (s *Surface) FillPolygon(pts []math.Vec2, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path vector.Path
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()
	vector.FillPath(s.img, &path, &vector.FillOptions{Color: c},
		&vector.DrawPathOptions{AntiAlias: s.antiAlias})
}

// StrokePolyline strokes the segments between consecutive points.
func (s *Surface) StrokePolyline(pts []math.Vec2, width float64, c color.NRGBA) {
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(s.img,
			float32(pts[i-1].X), float32(pts[i-1].Y),
			float32(pts[i].X), float32(pts[i].Y),
			float32(width), c, s.antiAlias)
	}
}

// FillCircle fills a circle.
func (s *Surface) FillCircle(center math.Vec2, radius float64, c color.NRGBA) {
	vector.FillCircle(s.img, float32(center.X), float32(center.Y), float32(radius), c, s.antiAlias)
}

// StrokeCircle strokes a circle outline.
func (s *Surface) StrokeCircle(center math.Vec2, radius, width float64, c color.NRGBA) {
	vector.StrokeCircle(s.img, float32(center.X), float32(center.Y), float32(radius),
		float32(width), c, s.antiAlias)
}

// Release frees the backing image. Safe to call more than once.
func (s *Surface) Release() error {
	if s.img == nil {
		return nil
	}
	s.img.Deallocate()
	s.img = nil
	return nil
}
