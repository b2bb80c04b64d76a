// Package app adapts the map view to the ebiten.Game interface: it polls
// the input devices, forwards them to the view controller, and draws the
// view surface plus a small HUD.
package app

import (
	"fmt"
	"image/color"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/engine/debug"
	"github.com/e555321e/cladeview/internal/engine/renderer"
	"github.com/e555321e/cladeview/internal/engine/view"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldmap"
	"github.com/e555321e/cladeview/pkg/math"
)

// keyPanStep is the per-frame pan distance for the arrow keys, in screen
// pixels.
const keyPanStep = 12.0

// keyZoomSteps is the wheel-step equivalent of one +/- keypress (about a
// 1.25x zoom change).
const keyZoomSteps = 2.0

var modeKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
}

// Game drives a MapView from the ebiten main loop.
type Game struct {
	view       *view.MapView
	species    int
	showFPS    bool
	screenshot *debug.ScreenshotCapture

	// frameWorld requests a one-shot camera reset once the real window
	// size is known; set when no saved camera state was restored.
	frameWorld bool

	width  int
	height int
}

// New constructs a Game over an already configured view. species bounds
// the H-key highlight cycle.
func New(v *view.MapView, species int, showFPS, frameWorld bool) *Game {
	return &Game{
		view:       v,
		species:    species,
		showFPS:    showFPS,
		screenshot: debug.NewScreenshotCapture("screenshots", "mapview"),
		frameWorld: frameWorld,
	}
}

// Update polls input, forwards it to the view controller, and advances
// the view clock.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	ctrl := g.view.Controller()

	mx, my := ebiten.CursorPosition()
	cursor := math.Vec2{X: float64(mx), Y: float64(my)}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		ctrl.PointerDown(cursor, now)
	}
	ctrl.PointerMove(cursor, now)
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		ctrl.PointerUp(cursor, now)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		ctrl.Wheel(cursor, wy)
	}

	// Arrow keys pan; +/- zoom about the viewport center.
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx += keyPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx -= keyPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy += keyPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy -= keyPanStep
	}
	if dx != 0 || dy != 0 {
		ctrl.Pan(dx, dy)
	}

	center := math.Vec2{X: float64(g.width) / 2, Y: float64(g.height) / 2}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		ctrl.Wheel(center, keyZoomSteps)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		ctrl.Wheel(center, -keyZoomSteps)
	}

	for i, k := range modeKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.view.SetViewMode(worldmap.ViewModes()[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.cycleHighlight()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.view.ResetCamera()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(g.view.DebugString()); err != nil {
			logger.Warn("clipboard copy failed", zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.captureScreenshot()
	}

	g.view.Tick(now)
	return nil
}

func (g *Game) captureScreenshot() {
	s, ok := g.view.Render().(*renderer.Surface)
	if !ok {
		return
	}
	name, err := g.screenshot.Capture(s.Image())
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// cycleHighlight steps the highlighted species: none, 0, 1, ..., none.
func (g *Game) cycleHighlight() {
	if g.species <= 0 {
		return
	}
	next := g.view.Highlighted() + 1
	if int(next) >= g.species {
		next = worldmap.NoEntity
	}
	g.view.SetHighlighted(next)
}

// Draw blits the view surface and overlays the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	s, ok := g.view.Render().(*renderer.Surface)
	if !ok {
		screen.Fill(color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff})
		ebitenutil.DebugPrintAt(screen, "view "+g.view.State().String(), 8, 8)
		return
	}
	screen.DrawImage(s.Image(), nil)
	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	y := 8
	put := func(line string) {
		ebitenutil.DebugPrintAt(screen, line, 8, y)
		y += 14
	}

	if g.showFPS {
		put(fmt.Sprintf("fps %.0f  tps %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	put(fmt.Sprintf("mode %s  zoom %.2fx", g.view.ViewMode(), g.view.Camera().Zoom))
	if tile, ok := g.view.Hovered(); ok {
		put(fmt.Sprintf("tile %d (%d, %d)  suitability %.2f",
			tile.ID, tile.Column, tile.Row, tile.Suitability))
	}
	if tile, ok := g.view.Selected(); ok {
		put(fmt.Sprintf("selected %d", tile.ID))
	}
	if e := g.view.Highlighted(); e != worldmap.NoEntity {
		put(fmt.Sprintf("species %d highlighted", e))
	}
}

// Layout reports the logical screen size and keeps the view's viewport in
// step with the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	g.view.SetViewport(outsideWidth, outsideHeight)
	if g.frameWorld && outsideWidth > 0 {
		g.frameWorld = false
		g.view.ResetCamera()
	}
	return outsideWidth, outsideHeight
}
