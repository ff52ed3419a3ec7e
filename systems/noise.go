package systems

import (
	"github.com/ojrac/opensimplex-go"
)

// Noise generates coherent noise values in [0, 1].
type Noise struct {
	src opensimplex.Noise
}

// NewNoise creates a new noise generator.
func NewNoise(seed int64) *Noise {
	return &Noise{src: opensimplex.NewNormalized(seed)}
}

// At1 returns a noise value for a 1D coordinate.
func (n *Noise) At1(x float64) float64 {
	return clamp01(n.src.Eval2(x, 0))
}

// At2 returns a noise value for 2D coordinates.
func (n *Noise) At2(x, y float64) float64 {
	return clamp01(n.src.Eval2(x, y))
}

// Signed maps a [0, 1] noise value onto [-mag, +mag].
func Signed(v, mag float64) float64 {
	return (v*2 - 1) * mag
}
