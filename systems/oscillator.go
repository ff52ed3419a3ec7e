// Package systems contains the per-frame pipeline stages: the oscillator
// bank, curve sampling, particles and the background lattice.
package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
)

// noiseOffsetRange bounds the per-episode noise offset.
const noiseOffsetRange = 10000

// OscillatorBank holds the harmonic coefficients of the Fourier loop.
//
// coeffs is what gets rendered; idleCoeffs is the target while no hands are
// tracked. Both always have the same length and index i always refers to the
// same hand feature. coeffs is only ever nudged towards a target, never
// overwritten outright, so the loop never pops.
type OscillatorBank struct {
	cfg      config.LoopConfig
	features [][3]int
	noise    *Noise
	rng      *rand.Rand

	coeffs      []components.Coefficient
	idleCoeffs  []components.Coefficient
	noiseOffset float64
}

// NewOscillatorBank creates a bank with one coefficient per feature per hand,
// starting at a freshly sampled idle shape.
func NewOscillatorBank(cfg config.LoopConfig, features [][3]int, hands int, noise *Noise, rng *rand.Rand) *OscillatorBank {
	n := len(features) * hands
	b := &OscillatorBank{
		cfg:        cfg,
		features:   features,
		noise:      noise,
		rng:        rng,
		coeffs:     make([]components.Coefficient, n),
		idleCoeffs: make([]components.Coefficient, n),
	}
	b.ResampleIdle()
	copy(b.coeffs, b.idleCoeffs)
	return b
}

// Len returns the number of coefficients.
func (b *OscillatorBank) Len() int {
	return len(b.coeffs)
}

// Coefficients returns a copy of the live coefficients.
func (b *OscillatorBank) Coefficients() []components.Coefficient {
	out := make([]components.Coefficient, len(b.coeffs))
	copy(out, b.coeffs)
	return out
}

// IdleCoefficients returns a copy of the idle targets.
func (b *OscillatorBank) IdleCoefficients() []components.Coefficient {
	out := make([]components.Coefficient, len(b.idleCoeffs))
	copy(out, b.idleCoeffs)
	return out
}

// live exposes the live coefficients to the sampler without copying.
func (b *OscillatorBank) live() []components.Coefficient {
	return b.coeffs
}

// NoiseOffset returns the current per-episode noise offset.
func (b *OscillatorBank) NoiseOffset() float64 {
	return b.noiseOffset
}

// ResampleIdle draws a fresh idle target for every coefficient.
// Speeds are whole multiples of 2π so the loop closes after one sample cycle.
func (b *OscillatorBank) ResampleIdle() {
	mults := b.cfg.IdleSpeedMultiples
	for i := range b.idleCoeffs {
		dir := components.DirCCW
		if b.rng.Intn(2) == 0 {
			dir = components.DirCW
		}
		b.idleCoeffs[i] = components.Coefficient{
			Dir:    dir,
			Phase:  b.rng.Float64() * twoPi,
			Speed:  twoPi * float64(mults[b.rng.Intn(len(mults))]),
			Radius: b.cfg.IdleRadiusMin + b.rng.Float64()*b.cfg.IdleRadiusSpan,
		}
	}
}

// RerollNoise picks a new noise offset, decorrelating the next tracking
// episode's phases from the last one.
func (b *OscillatorBank) RerollNoise() {
	b.noiseOffset = b.rng.Float64() * noiseOffsetRange
}

// Idle moves every coefficient towards its idle target by rate, then adds a
// small noise-driven jitter to the radius so the idle loop never sits still.
// rate is per call (per frame), not scaled by elapsed time. frame drives the
// jitter noise lookup. A rate of 0 or less leaves the bank untouched, jitter
// included.
func (b *OscillatorBank) Idle(rate float64, frame int) {
	if rate <= 0 {
		return
	}
	mag := b.cfg.IdleNoiseMag
	ts := float64(frame) * b.cfg.IdleNoiseSpeed
	for i := range b.coeffs {
		c := lerpCoefficient(b.coeffs[i], b.idleCoeffs[i], rate)
		if mag != 0 {
			c.Radius = math.Max(0, c.Radius+Signed(b.noise.At2(float64(i), ts), mag))
		}
		b.coeffs[i] = c
	}
}

// Compute moves the coefficients towards targets derived from the detected
// hands. Hand h, feature f drives coefficient h*len(features)+f. Indices with
// no data this frame keep their value. Landmarks missing from a hand are
// reported as an error after every computable coefficient has been updated.
func (b *OscillatorBank) Compute(hands []detect.Hand, rate float64) error {
	var errs []error
	n := len(b.features)
	for h, hand := range hands {
		if h*n >= len(b.coeffs) {
			break
		}
		for f := range b.features {
			target, err := b.target(hand, f)
			if err != nil {
				errs = append(errs, fmt.Errorf("hand %d feature %d: %w", h, f, err))
				continue
			}
			idx := h*n + f
			b.coeffs[idx] = lerpCoefficient(b.coeffs[idx], target, rate)
		}
	}
	return errors.Join(errs...)
}

// target derives the coefficient for feature f from the joint angle at the
// feature's middle landmark.
func (b *OscillatorBank) target(hand detect.Hand, f int) (components.Coefficient, error) {
	var pts [3]r2.Vec
	for k, li := range b.features[f] {
		lm, err := hand.Landmark(li)
		if err != nil {
			return components.Coefficient{}, err
		}
		pts[k] = r2.Vec{X: lm.X, Y: lm.Y}
	}

	angle := signedAngle(r2.Sub(pts[0], pts[1]), r2.Sub(pts[2], pts[1]))
	dir := components.DirCW
	if angle > 0 {
		dir = components.DirCCW
	}

	return components.Coefficient{
		Dir:    dir,
		Phase:  b.noise.At1(float64(f)+b.noiseOffset) * twoPi,
		Speed:  twoPi * float64(f),
		Radius: b.cfg.BaseRadius + math.Abs(math.Sin(angle))*b.cfg.Sensitivity,
	}, nil
}

// lerpCoefficient moves phase and radius from c towards target by t.
// Direction and speed are discrete; they are kept until t reaches 1, at which
// point the target is adopted whole.
func lerpCoefficient(c, target components.Coefficient, t float64) components.Coefficient {
	if t >= 1 {
		return target
	}
	if t <= 0 {
		return c
	}
	return components.Coefficient{
		Dir:    c.Dir,
		Speed:  c.Speed,
		Phase:  lerp(c.Phase, target.Phase, t),
		Radius: lerp(c.Radius, target.Radius, t),
	}
}
