package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/camera"
	"github.com/pthm-cable/cyberloops/components"
)

const (
	loopHaloThickness = 6
	loopCoreThickness = 1
	cursorRadius      = 5
)

// LoopRenderer draws the Fourier loop as a glowing closed polyline with a
// dot at the sample cursor.
type LoopRenderer struct {
	halo rl.Color
	buf  []rl.Vector2
}

// NewLoopRenderer creates a loop renderer with the given glow colour.
func NewLoopRenderer(glow components.RGB) *LoopRenderer {
	return &LoopRenderer{
		halo: rl.Color{
			R: uint8(glow.R * 255),
			G: uint8(glow.G * 255),
			B: uint8(glow.B * 255),
			A: 60,
		},
	}
}

// Draw renders the loop. points are in curve space; cursor indexes the
// current sample.
func (r *LoopRenderer) Draw(points []r2.Vec, cursor int, cam *camera.Camera) {
	if len(points) < 2 {
		return
	}

	r.buf = r.buf[:0]
	for _, p := range points {
		sx, sy := cam.CurveToScreen(p)
		r.buf = append(r.buf, rl.Vector2{X: sx, Y: sy})
	}
	// Close the loop.
	r.buf = append(r.buf, r.buf[0])

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 1; i < len(r.buf); i++ {
		rl.DrawLineEx(r.buf[i-1], r.buf[i], loopHaloThickness, r.halo)
	}
	rl.EndBlendMode()

	for i := 1; i < len(r.buf); i++ {
		rl.DrawLineEx(r.buf[i-1], r.buf[i], loopCoreThickness, rl.White)
	}

	if cursor >= 0 && cursor < len(points) {
		rl.DrawCircleV(r.buf[cursor], cursorRadius, rl.White)
	}
}
