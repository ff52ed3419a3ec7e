package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cyberloops/camera"
	"github.com/pthm-cable/cyberloops/renderer"
	"github.com/pthm-cable/cyberloops/ui"
)

const (
	logoSize   = 40
	logoBorder = 20
	logoGrey   = 150
)

func (g *Game) initRendering() error {
	glow, err := renderer.NewGlowRenderer(g.width, g.height, g.cfg.Particles.MaxCount, g.cfg.Glow.Multiplier)
	if err != nil {
		return fmt.Errorf("creating glow renderer: %w", err)
	}
	g.glow = glow
	g.cam = camera.New(float32(g.width), float32(g.height))
	g.lattice = renderer.NewLatticeRenderer(g.cfg.Lattice.Stroke)
	g.loop = renderer.NewLoopRenderer(g.cfg.Derived.LoopColor)
	g.hands = renderer.NewHandRenderer(g.cfg.Hands.Features)
	g.hud = ui.NewHUD()
	g.logo = ui.NewLogo(logoSize, logoBorder, logoGrey)
	g.overlays = ui.NewOverlayRegistry()
	return nil
}

// Draw renders a frame produced by Update. Graphical mode only.
func (g *Game) Draw(f Frame) {
	if g.headless {
		return
	}
	w, h := int32(g.width), int32(g.height)

	// The glow pass renders to its own target and must run outside
	// BeginDrawing.
	if f.State != StateLoading {
		g.glow.Render(f.Uniforms)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if f.State == StateLoading {
		g.lattice.Draw(g.state.Lattice.Segments())
		g.hud.DrawStatus("Waking up", w, h)
		rl.EndDrawing()
		return
	}

	g.glow.Draw()
	g.logo.Draw(w, h)

	if g.overlays.IsEnabled(ui.OverlayLattice) {
		g.lattice.Draw(g.state.Lattice.Segments())
	}
	if g.overlays.IsEnabled(ui.OverlayHands) {
		g.hands.Draw(f.Hands, g.cam)
	}
	if g.overlays.IsEnabled(ui.OverlayLoop) {
		g.loop.Draw(f.Points, f.Cursor, g.cam)
		g.loop.Draw(f.Points, f.Cursor, g.cam)
	}
	if g.overlays.IsEnabled(ui.OverlayDebug) {
		g.hud.Draw(g.hudData(f), g.overlays)
	}

	rl.EndDrawing()
}

func (g *Game) hudData(f Frame) ui.HUDData {
	return ui.HUDData{
		State:         f.State.String(),
		FPS:           rl.GetFPS(),
		Frame:         f.Index,
		Cursor:        f.Cursor,
		NPoints:       g.cfg.Loop.NPoints,
		Particles:     f.Uniforms.ParticleCount,
		Capacity:      f.Uniforms.Capacity,
		Hands:         len(f.Hands),
		SessionID:     g.state.SessionID.String(),
		SessionLeft:   g.SessionRemaining(),
		TickDuration:  g.lastPerf.AvgTickDuration,
		TrackingShare: g.lastStats.TrackingShare(),
	}
}
