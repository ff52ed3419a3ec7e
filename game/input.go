package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const screenshotLayout = "canvas_15-04-05.png"

// handleInput processes window and keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		switch key {
		case rl.KeyF11:
			rl.ToggleFullscreen()
		case rl.KeyS:
			name := time.Now().Format(screenshotLayout)
			rl.TakeScreenshot(name)
			slog.Info("screenshot saved", "file", name)
		default:
			if id, on, ok := g.overlays.HandleKeyPress(key); ok {
				slog.Debug("overlay toggled", "overlay", id, "enabled", on)
			}
		}
	}
}

// handleResize propagates window size changes to the pipeline.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	if err := g.OnResize(w, h); err != nil {
		slog.Error("resize failed, keeping previous size", "width", w, "height", h, "error", err)
	}
}
