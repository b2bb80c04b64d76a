package camera

import (
	gomath "math"

	"github.com/e555321e/cladeview/pkg/math"
)

// Friction is the per-frame velocity decay factor.
const Friction = 0.92

// StopSpeed is the per-axis speed below which inertia stops.
const StopSpeed = 0.1

// Inertia continues panning after pointer release, decaying the release
// velocity by Friction each frame. At most one run is live at a time;
// drag-start and camera restore must Cancel before touching the camera so
// the two writers never interleave.
type Inertia struct {
	cam      *Camera
	velocity math.Vec2
	active   bool
}

// NewInertia creates an inertia simulator driving cam.
func NewInertia(cam *Camera) *Inertia {
	return &Inertia{cam: cam}
}

// Start begins a run from the given velocity in screen pixels per frame.
// Velocities already below the stop threshold are ignored.
func (in *Inertia) Start(v math.Vec2) {
	if belowStop(v) {
		return
	}
	in.velocity = v
	in.active = true
}

// Cancel stops the current run immediately.
func (in *Inertia) Cancel() {
	in.active = false
	in.velocity = math.Vec2{}
}

// Active reports whether a run is in progress.
func (in *Inertia) Active() bool {
	return in.active
}

// Tick applies one frame of decay and pans the camera. Called from the
// render loop only.
func (in *Inertia) Tick() {
	if !in.active {
		return
	}
	in.velocity = in.velocity.Scale(Friction)
	in.cam.Pan(in.velocity.X, in.velocity.Y)
	if belowStop(in.velocity) {
		in.Cancel()
	}
}

func belowStop(v math.Vec2) bool {
	return gomath.Abs(v.X) < StopSpeed && gomath.Abs(v.Y) < StopSpeed
}
