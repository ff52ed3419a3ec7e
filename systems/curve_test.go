package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
)

func TestSampleSingleCoefficient(t *testing.T) {
	coeffs := []components.Coefficient{coeff(components.DirCCW, 0, twoPi, 10)}

	tests := []struct {
		t    float64
		want r2.Vec
	}{
		{0, r2.Vec{X: 10, Y: 0}},
		{0.25, r2.Vec{X: 0, Y: 10}},
		{0.5, r2.Vec{X: -10, Y: 0}},
	}
	for _, tt := range tests {
		got := Sample(coeffs, tt.t)
		if r2.Norm(r2.Sub(got, tt.want)) > 1e-9 {
			t.Errorf("Sample(t=%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestSampleEmptyIsOrigin(t *testing.T) {
	if got := Sample(nil, 0.3); got != (r2.Vec{}) {
		t.Errorf("expected origin, got %v", got)
	}
}

func TestMakePointsCountAndClosure(t *testing.T) {
	b := newTestBank(t, 0)

	pts := MakePoints(b.Coefficients(), 1000)
	if len(pts) != 1001 {
		t.Fatalf("expected 1001 points, got %d", len(pts))
	}

	// Speeds are whole multiples of 2π, so the loop closes.
	if d := r2.Norm(r2.Sub(pts[0], pts[1000])); d > 1e-6 {
		t.Errorf("loop not closed: first %v last %v (gap %g)", pts[0], pts[1000], d)
	}
}

func TestMakePointsIsPure(t *testing.T) {
	b := newTestBank(t, 0)
	coeffs := b.Coefficients()

	first := MakePoints(coeffs, 200)
	second := MakePoints(coeffs, 200)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("MakePoints not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(b.Coefficients(), coeffs); diff != "" {
		t.Errorf("MakePoints mutated coefficients (-want +got):\n%s", diff)
	}
}

func TestMakeBankPointsReusesBuffer(t *testing.T) {
	b := newTestBank(t, 0)
	buf := make([]r2.Vec, 0, 2000)

	pts := MakeBankPoints(buf, b, 1000)
	if &pts[0] != &buf[:1][0] {
		t.Error("expected the destination buffer to be reused")
	}
	if diff := cmp.Diff(MakePoints(b.Coefficients(), 1000), pts); diff != "" {
		t.Errorf("bank sampling differs from coefficient sampling:\n%s", diff)
	}
}

func TestMakePointsNonPositive(t *testing.T) {
	if pts := MakePoints(nil, 0); len(pts) != 0 {
		t.Errorf("expected no points, got %d", len(pts))
	}
}

func TestSampleBoundedByRadiusSum(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	coeffs := make([]components.Coefficient, 20)
	sum := 0.0
	for i := range coeffs {
		coeffs[i] = coeff(components.DirCW, rng.Float64()*twoPi, twoPi*float64(i), rng.Float64()*50)
		sum += coeffs[i].Radius
	}
	for _, p := range MakePoints(coeffs, 500) {
		if math.Hypot(p.X, p.Y) > sum+1e-9 {
			t.Fatalf("point %v exceeds radius sum %f", p, sum)
		}
	}
}

func TestSampleBankMatchesSample(t *testing.T) {
	b := newTestBank(t, 0)
	for _, tt := range []float64{0, 0.1, 0.5, 0.9} {
		if got, want := SampleBank(b, tt), Sample(b.Coefficients(), tt); got != want {
			t.Errorf("SampleBank(%v) = %v, want %v", tt, got, want)
		}
	}
}
