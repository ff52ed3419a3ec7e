package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cyberloops/systems"
)

// LatticeRenderer draws the background lattice segments in a single grey.
type LatticeRenderer struct {
	stroke uint8
}

// NewLatticeRenderer creates a lattice renderer with the given grey level.
func NewLatticeRenderer(stroke uint8) *LatticeRenderer {
	return &LatticeRenderer{stroke: stroke}
}

// Draw renders the segments. Coordinates are already in screen space.
func (r *LatticeRenderer) Draw(segments []systems.Segment) {
	for _, s := range segments {
		c := rl.Color{R: r.stroke, G: r.stroke, B: r.stroke, A: s.Alpha}
		rl.DrawLineV(
			rl.Vector2{X: float32(s.A.X), Y: float32(s.A.Y)},
			rl.Vector2{X: float32(s.B.X), Y: float32(s.B.Y)},
			c,
		)
	}
}
