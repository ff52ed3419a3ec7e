// Package components defines the plain data records shared by the pipeline:
// oscillator coefficients, particles and lattice cells.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Direction of rotation for an oscillator coefficient.
const (
	DirCW  = -1
	DirCCW = +1
)

// Coefficient is one harmonic term of the Fourier loop.
// Dir is ±1, Phase is in radians, Speed in radians per unit of curve
// parameter, Radius is non-negative.
type Coefficient struct {
	Dir    int
	Phase  float64
	Speed  float64
	Radius float64
}

// Angle returns the coefficient's angle at curve parameter t.
func (c Coefficient) Angle(t float64) float64 {
	return c.Phase + float64(c.Dir)*t*c.Speed
}

// RGB is a colour with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Particle is a spark emitted from the loop. Owned by the particle system.
type Particle struct {
	Pos   r2.Vec
	Vel   r2.Vec
	Mass  float64
	Drag  float64 // per-tick velocity multiplier in (0, 1)
	Color RGB
}

// Speed returns the particle's velocity magnitude.
func (p *Particle) Speed() float64 {
	return r2.Norm(p.Vel)
}

// Weight is the particle's render-time glow contribution: mass times speed.
func (p *Particle) Weight() float64 {
	return p.Mass * p.Speed()
}

// Cell is one lattice centre. Base and Occupied are fixed at construction.
type Cell struct {
	Base     r2.Vec
	Occupied bool
}
