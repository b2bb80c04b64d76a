// Package main is the entry point for the cladeview map window.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/e555321e/cladeview/internal/app"
	"github.com/e555321e/cladeview/internal/config"
	"github.com/e555321e/cladeview/internal/engine/renderer"
	"github.com/e555321e/cladeview/internal/engine/view"
	"github.com/e555321e/cladeview/internal/logger"
	"github.com/e555321e/cladeview/internal/worldgen"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== cladeview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v := view.New(renderer.New(renderer.Config{AntiAlias: true}))
	defer func() {
		if err := v.Close(); err != nil {
			logger.Error("view close failed", zap.Error(err))
		}
	}()

	v.SetSnapshot(worldgen.Generate(worldgen.Config{
		Seed:    cfg.World.Seed,
		Columns: cfg.World.Columns,
		Rows:    cfg.World.Rows,
		Species: cfg.World.Species,
	}))
	if cfg.HasCamera() {
		v.SetCameraState(cfg.Camera)
	}

	game := app.New(v, cfg.World.Species, cfg.Window.ShowFPS, !cfg.HasCamera())

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("map view error", zap.Error(err))
		os.Exit(1)
	}

	// Persist the camera so the next launch resumes where this one left off.
	cfg.Camera = v.CameraState()
	if err := cfg.Save(); err != nil {
		logger.Warn("failed to save config", zap.Error(err))
	}

	logger.Info("map view closed normally")
}
