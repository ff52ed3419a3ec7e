package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
)

func vec(v [2]float64) r2.Vec {
	return r2.Vec{X: v[0], Y: v[1]}
}

func coeff(dir int, phase, speed, radius float64) components.Coefficient {
	return components.Coefficient{Dir: dir, Phase: phase, Speed: speed, Radius: radius}
}
