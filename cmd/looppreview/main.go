// Loop preview tool - interactive oscillator bank tuning with sliders.
//
// Drives the bank from synthetic hands (or lets it idle) and draws the loop
// and its particles, so loop parameters can be tuned without a camera.
//
// Usage: go run ./cmd/looppreview
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/camera"
	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/renderer"
	"github.com/pthm-cable/cyberloops/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = windowHeight
	panelWidth   = windowWidth - previewSize - 30
)

// slider is one tunable float parameter.
type slider struct {
	label    string
	min, max float32
	value    *float64
}

func main() {
	config.MustInit("")
	cfg := config.Cfg()
	loopCfg := cfg.Loop

	rl.InitWindow(windowWidth, windowHeight, "Loop Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	var seed int64 = 1
	noise := systems.NewNoise(seed)
	rng := rand.New(rand.NewSource(seed))
	bank := systems.NewOscillatorBank(loopCfg, cfg.Hands.Features, cfg.Hands.Count, noise, rng)
	particles := systems.NewParticleSystem(cfg.Particles, cfg.Derived.Palette, rng)

	cam := camera.New(previewSize, previewSize)
	loop := renderer.NewLoopRenderer(cfg.Derived.LoopColor)
	hands := renderer.NewHandRenderer(cfg.Hands.Features)

	handSpeed := 1.0
	sliders := []slider{
		{"Sensitivity (radius per sin)", 0, 300, &loopCfg.Sensitivity},
		{"Base radius", 0, 50, &loopCfg.BaseRadius},
		{"Detect speed (tracking lerp)", 0.005, 1, &loopCfg.DetectSpeed},
		{"Idle speed (idle lerp)", 0.001, 0.2, &loopCfg.IdleSpeed},
		{"Idle noise magnitude", 0, 3, &loopCfg.IdleNoiseMag},
		{"Hand animation speed", 0, 5, &handSpeed},
	}

	var (
		points   []r2.Vec
		cursor   int
		frame    int
		t        float64
		tracking = true
		rebuild  bool
	)

	for !rl.WindowShouldClose() {
		if rebuild {
			bank = systems.NewOscillatorBank(loopCfg, cfg.Hands.Features, cfg.Hands.Count, noise, rng)
			particles.Reset()
			rebuild = false
		}

		frame++
		t += float64(rl.GetFrameTime()) * handSpeed
		cursor += loopCfg.TimeRate
		if cursor > loopCfg.NPoints {
			cursor = 0
			bank.ResampleIdle()
		}

		var handData []detect.Hand
		if tracking {
			handData = detect.SyntheticHands(t)
			_ = bank.Compute(handData, loopCfg.DetectSpeed)
		} else {
			bank.Idle(loopCfg.IdleSpeed, frame)
		}
		points = systems.MakeBankPoints(points, bank, loopCfg.NPoints)
		particles.OnCurveSample(points[cursor])
		particles.Tick()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		rl.BeginScissorMode(0, 0, previewSize, previewSize)
		for i := range particles.Particles {
			p := &particles.Particles[i]
			sx, sy := cam.CurveToScreen(p.Pos)
			r := float32(1 + p.Mass/5)
			if !cam.IsVisible(sx, sy, r) {
				continue
			}
			c := rl.Color{R: uint8(p.Color.R * 255), G: uint8(p.Color.G * 255), B: uint8(p.Color.B * 255), A: 255}
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, c)
		}
		if tracking {
			hands.Draw(handData, cam)
		}
		loop.Draw(points, cursor, cam)
		rl.EndScissorMode()

		// Control panel
		panelX := float32(previewSize + 15)
		panelY := float32(10)
		rl.DrawRectangle(int32(panelX)-5, 0, windowWidth-previewSize, windowHeight, rl.RayWhite)

		rl.DrawText("Loop Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				float32(*s.value), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf("%.3f", *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != float32(*s.value) {
				*s.value = float64(v)
				rebuild = true
			}
			panelY += 35
		}

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(tracking, "Drop hands", "Show hands")) {
			tracking = !tracking
			if !tracking {
				bank.ResampleIdle()
				bank.RerollNoise()
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Resample idle") {
			bank.ResampleIdle()
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			loopCfg = cfg.Loop
			handSpeed = 1
			rebuild = true
		}
		panelY += 50

		rl.DrawText(fmt.Sprintf("Particles: %d / %d", particles.Count(), particles.Capacity()), int32(panelX), int32(panelY), 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Cursor: %d / %d", cursor, loopCfg.NPoints), int32(panelX), int32(panelY+20), 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("FPS: %d", rl.GetFPS()), int32(panelX), int32(panelY+40), 16, rl.DarkGray)

		rl.EndDrawing()
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
