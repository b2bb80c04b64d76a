package scene

import (
	"image/color"

	"github.com/e555321e/cladeview/pkg/math"
)

// Surface is the drawing target the scene rasterizes into. Implementations
// supply the filled-hexagon/circle/curve primitives. All coordinates handed
// to a Surface are screen-space: the scene applies the camera transform
// itself, so rendering and picking share one transform.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Clear fills the whole surface with one color.
	Clear(c color.NRGBA)

	// FillPolygon fills the polygon described by pts. The scene reuses the
	// slice between calls; implementations must not retain it.
	FillPolygon(pts []math.Vec2, c color.NRGBA)

	// StrokePolyline strokes an open polyline through pts. The slice is
	// reused between calls; implementations must not retain it.
	StrokePolyline(pts []math.Vec2, width float64, c color.NRGBA)

	// FillCircle fills a circle.
	FillCircle(center math.Vec2, radius float64, c color.NRGBA)

	// StrokeCircle strokes a circle outline.
	StrokeCircle(center math.Vec2, radius, width float64, c color.NRGBA)

	// Release frees the surface. The surface must not be drawn to afterwards.
	Release() error
}

// Provider acquires drawing surfaces for the map view. Acquire may complete
// synchronously or on a later frame; done is called exactly once, from the
// render goroutine.
type Provider interface {
	Acquire(width, height int, done func(Surface, error))
}
