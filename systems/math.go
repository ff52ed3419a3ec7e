package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

const twoPi = 2 * math.Pi

// lerp interpolates linearly from a to b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// randRange returns a uniform value in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// signedAngle returns the angle that rotates a onto b, in (-Pi, Pi].
// Zero-length vectors give 0.
func signedAngle(a, b r2.Vec) float64 {
	angle := math.Atan2(r2.Cross(a, b), r2.Dot(a, b))
	if angle == -math.Pi {
		return math.Pi
	}
	return angle
}

// rotate rotates v about the origin by alpha radians.
func rotate(v r2.Vec, alpha float64) r2.Vec {
	return r2.Rotate(v, alpha, r2.Vec{})
}
