package input

import (
	gomath "math"
	"testing"
	"time"

	"github.com/e555321e/cladeview/internal/engine/camera"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// newTestRig builds a camera over a 300x301 world with a 400x300 viewport
// (zoom stays 1) and a controller with a region-based pick stub: x < 100
// hits tile 3, x in [100, 200) hits tile 5, anything else misses.
func newTestRig() (*Controller, *camera.Camera, *camera.Inertia) {
	cam := camera.New(300, 301)
	cam.SetViewport(400, 300)
	in := camera.NewInertia(cam)
	pick := func(p math.Vec2) (worldmap.TileID, bool) {
		switch {
		case p.X < 100:
			return 3, true
		case p.X < 200:
			return 5, true
		default:
			return 0, false
		}
	}
	return New(cam, in, pick), cam, in
}

func TestClickSelectsTile(t *testing.T) {
	c, cam, _ := newTestRig()
	var selected worldmap.TileID
	var selectedAt math.Vec2
	calls := 0
	c.OnSelect = func(id worldmap.TileID, p math.Vec2) {
		selected = id
		selectedAt = p
		calls++
	}

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 50, Y: 50}, t0)
	// Travel inside the dead zone keeps the press a click.
	c.PointerMove(math.Vec2{X: 52, Y: 51}, t0.Add(8*time.Millisecond))
	c.PointerUp(math.Vec2{X: 52, Y: 51}, t0.Add(16*time.Millisecond))

	if calls != 1 || selected != 3 {
		t.Fatalf("OnSelect calls=%d tile=%d, want 1 call for tile 3", calls, selected)
	}
	if selectedAt != (math.Vec2{X: 52, Y: 51}) {
		t.Errorf("selection point = %v, want release point", selectedAt)
	}
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("camera moved (%v, %v) during a click", cam.X, cam.Y)
	}
}

func TestClickMissFiresOnMiss(t *testing.T) {
	c, _, _ := newTestRig()
	misses := 0
	c.OnMiss = func() { misses++ }
	c.OnSelect = func(worldmap.TileID, math.Vec2) {
		t.Fatal("OnSelect fired for a miss")
	}

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 250, Y: 50}, t0)
	c.PointerUp(math.Vec2{X: 250, Y: 50}, t0.Add(16*time.Millisecond))

	if misses != 1 {
		t.Errorf("OnMiss calls = %d, want 1", misses)
	}
}

func TestDragPansCamera(t *testing.T) {
	c, cam, _ := newTestRig()
	c.OnSelect = func(worldmap.TileID, math.Vec2) {
		t.Fatal("drag must not select")
	}

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 50, Y: 50}, t0)
	if c.Dragging() {
		t.Fatal("dragging armed before any movement")
	}
	c.PointerMove(math.Vec2{X: 60, Y: 50}, t0.Add(frameTime))
	if !c.Dragging() {
		t.Fatal("10px travel did not start a drag")
	}
	if cam.X != 10 {
		t.Errorf("cam.X = %v after first drag move, want 10 (map catches up)", cam.X)
	}
	c.PointerMove(math.Vec2{X: 65, Y: 55}, t0.Add(2*frameTime))
	if cam.X != 15 {
		t.Errorf("cam.X = %v, want 15", cam.X)
	}
	c.PointerUp(math.Vec2{X: 65, Y: 55}, t0.Add(2*frameTime))
	if c.Dragging() {
		t.Error("still dragging after release")
	}
}

func TestDeadZoneBoundaryStaysClick(t *testing.T) {
	c, cam, _ := newTestRig()
	selected := false
	c.OnSelect = func(worldmap.TileID, math.Vec2) { selected = true }

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 50, Y: 50}, t0)
	// Exactly the dead-zone distance: still a click.
	c.PointerMove(math.Vec2{X: 54, Y: 50}, t0.Add(frameTime))
	if c.Dragging() {
		t.Fatal("travel equal to the dead zone started a drag")
	}
	c.PointerUp(math.Vec2{X: 54, Y: 50}, t0.Add(2*frameTime))
	if !selected {
		t.Error("click at the dead-zone boundary did not select")
	}
	if cam.X != 0 {
		t.Errorf("cam.X = %v, want 0", cam.X)
	}
}

func TestReleaseVelocityPerFrame(t *testing.T) {
	c, _, in := newTestRig()

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 0, Y: 0}, t0)
	c.PointerMove(math.Vec2{X: 10, Y: 0}, t0.Add(frameTime))
	c.PointerUp(math.Vec2{X: 10, Y: 0}, t0.Add(frameTime))

	// 10px over one nominal frame releases at 10px/frame.
	if !in.Active() {
		t.Fatal("inertia not started after a fast drag release")
	}
}

func TestStationaryHoldReleasesWithoutInertia(t *testing.T) {
	c, _, in := newTestRig()

	t0 := time.Unix(10, 0)
	c.PointerDown(math.Vec2{X: 0, Y: 0}, t0)
	c.PointerMove(math.Vec2{X: 30, Y: 0}, t0.Add(frameTime))
	// Hold still for a few frames before releasing.
	c.PointerMove(math.Vec2{X: 30, Y: 0}, t0.Add(2*frameTime))
	c.PointerMove(math.Vec2{X: 30, Y: 0}, t0.Add(3*frameTime))
	c.PointerUp(math.Vec2{X: 30, Y: 0}, t0.Add(4*frameTime))

	if in.Active() {
		t.Error("inertia started although the pointer was held still at release")
	}
}

func TestPointerDownCancelsInertia(t *testing.T) {
	c, _, in := newTestRig()
	in.Start(math.Vec2{X: 20, Y: 0})
	if !in.Active() {
		t.Fatal("inertia did not start")
	}
	c.PointerDown(math.Vec2{X: 50, Y: 50}, time.Unix(10, 0))
	if in.Active() {
		t.Error("press did not cancel the inertia run")
	}
}

func TestWheelZoomsAboutPointer(t *testing.T) {
	c, cam, _ := newTestRig()
	p := math.Vec2{X: 100, Y: 100}
	before := cam.ToWorld(p)

	c.Wheel(p, 1)
	if got, want := cam.Zoom, 1.12; gomath.Abs(got-want) > 1e-9 {
		t.Fatalf("zoom = %v after one notch, want %v", got, want)
	}
	after := cam.ToWorld(p)
	if after.Distance(before) > 1e-9 {
		t.Errorf("world point under pointer moved %v -> %v", before, after)
	}

	// Zero delta is a no-op.
	c.Wheel(p, 0)
	if got := cam.Zoom; gomath.Abs(got-1.12) > 1e-9 {
		t.Errorf("zoom = %v after zero-delta wheel, want unchanged", got)
	}
}

func TestHoverPickFiresOnChange(t *testing.T) {
	c, _, _ := newTestRig()
	var calls []worldmap.TileID
	var oks []bool
	c.OnHover = func(id worldmap.TileID, ok bool) {
		calls = append(calls, id)
		oks = append(oks, ok)
	}

	t0 := time.Unix(10, 0)
	c.PointerMove(math.Vec2{X: 50, Y: 10}, t0)
	c.PointerMove(math.Vec2{X: 60, Y: 10}, t0.Add(frameTime))  // same tile
	c.PointerMove(math.Vec2{X: 150, Y: 10}, t0.Add(2*frameTime)) // tile 5
	c.PointerMove(math.Vec2{X: 250, Y: 10}, t0.Add(3*frameTime)) // miss

	if len(calls) != 3 {
		t.Fatalf("OnHover fired %d times, want 3 (enter, change, leave)", len(calls))
	}
	if calls[0] != 3 || !oks[0] {
		t.Errorf("first hover = (%d, %v), want (3, true)", calls[0], oks[0])
	}
	if calls[1] != 5 || !oks[1] {
		t.Errorf("second hover = (%d, %v), want (5, true)", calls[1], oks[1])
	}
	if oks[2] {
		t.Error("third hover should report a miss")
	}
}

func TestPanHelperCancelsInertia(t *testing.T) {
	c, cam, in := newTestRig()
	in.Start(math.Vec2{X: 20, Y: 0})
	c.Pan(-30, 0)
	if in.Active() {
		t.Error("Pan left the inertia run alive")
	}
	if cam.X != -30 {
		t.Errorf("cam.X = %v, want -30", cam.X)
	}
}
