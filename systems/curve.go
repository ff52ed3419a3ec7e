package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
)

// Sample sums the coefficients into one point of the loop at parameter t in [0, 1].
func Sample(coeffs []components.Coefficient, t float64) r2.Vec {
	var p r2.Vec
	for _, c := range coeffs {
		s, cs := math.Sincos(c.Angle(t))
		p.X += c.Radius * cs
		p.Y += c.Radius * s
	}
	return p
}

// MakePoints samples the closed loop at t = 0, 1/n, ..., 1 (n+1 points).
// It only reads coeffs, so calling it again on the same state gives the
// same sequence.
func MakePoints(coeffs []components.Coefficient, n int) []r2.Vec {
	return MakePointsInto(nil, coeffs, n)
}

// MakePointsInto is MakePoints reusing dst's storage when it is large enough.
func MakePointsInto(dst []r2.Vec, coeffs []components.Coefficient, n int) []r2.Vec {
	if n <= 0 {
		return dst[:0]
	}
	if cap(dst) < n+1 {
		dst = make([]r2.Vec, n+1)
	}
	dst = dst[:n+1]
	for i := 0; i <= n; i++ {
		dst[i] = Sample(coeffs, float64(i)/float64(n))
	}
	return dst
}

// SampleBank samples the bank's live coefficients at t.
func SampleBank(b *OscillatorBank, t float64) r2.Vec {
	return Sample(b.live(), t)
}

// MakeBankPoints samples the bank's live coefficients into dst.
func MakeBankPoints(dst []r2.Vec, b *OscillatorBank, n int) []r2.Vec {
	return MakePointsInto(dst, b.live(), n)
}
