package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cyberloops/camera"
	"github.com/pthm-cable/cyberloops/detect"
)

// HandRenderer draws detected hands as finger skeletons.
type HandRenderer struct {
	features [][3]int
	bone     rl.Color
}

// NewHandRenderer creates a hand renderer for the given feature triples.
// Features come in pairs per finger: (a, b, c) and (b, c, d).
func NewHandRenderer(features [][3]int) *HandRenderer {
	return &HandRenderer{
		features: features,
		bone:     rl.Color{R: 255, G: 255, B: 255, A: 100},
	}
}

// Draw renders every hand in screen space. Hands missing landmarks are
// drawn as far as they go.
func (r *HandRenderer) Draw(hands []detect.Hand, cam *camera.Camera) {
	for _, hand := range hands {
		for i := 0; i+1 < len(r.features); i += 2 {
			f := r.features[i]
			joints := [4]int{f[0], f[1], f[2], f[2] + 1}

			var pts [4]rl.Vector2
			ok := true
			for k, li := range joints {
				lm, err := hand.Landmark(li)
				if err != nil {
					ok = false
					break
				}
				x, y := cam.LandmarkToScreen(lm.X, lm.Y)
				pts[k] = rl.Vector2{X: x, Y: y}
			}
			if !ok {
				continue
			}

			for k := 1; k < len(pts); k++ {
				rl.DrawLineEx(pts[k-1], pts[k], 4, r.bone)
			}
			rl.DrawCircleV(pts[1], 3, r.bone)
			rl.DrawCircleV(pts[2], 3, r.bone)
		}
	}
}
