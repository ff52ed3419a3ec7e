package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/config"
)

func newTestLattice(t *testing.T, w, h float64) *WorleyNetwork {
	t.Helper()
	l, err := NewWorleyNetwork(config.Default().Lattice, w, h, NewNoise(5))
	if err != nil {
		t.Fatalf("NewWorleyNetwork: %v", err)
	}
	return l
}

func TestLatticeDims(t *testing.T) {
	l := newTestLattice(t, 1000, 600)
	cols, rows := l.Dims()
	// -100, 0, ..., 1000 and -100, 0, ..., 600
	if cols != 12 || rows != 8 {
		t.Errorf("dims = %dx%d, want 12x8", cols, rows)
	}
	if c := l.Cell(0, 0); c.Base != (r2.Vec{X: -100, Y: -100}) {
		t.Errorf("first cell at %v, want (-100, -100)", c.Base)
	}
}

func TestLatticeHole(t *testing.T) {
	l := newTestLattice(t, 1000, 600)
	center := r2.Vec{X: 500, Y: 300}
	hole := config.Default().Lattice.Hole

	cols, rows := l.Dims()
	var occupied, empty int
	for ix := 0; ix < cols; ix++ {
		for iy := 0; iy < rows; iy++ {
			c := l.Cell(ix, iy)
			inside := r2.Norm(r2.Sub(c.Base, center)) < hole
			if inside == c.Occupied {
				t.Errorf("cell (%d,%d) at %v: occupied=%v, inside hole=%v", ix, iy, c.Base, c.Occupied, inside)
			}
			if c.Occupied {
				occupied++
			} else {
				empty++
			}
		}
	}
	if occupied == 0 || empty == 0 {
		t.Errorf("expected both occupied and empty cells, got %d/%d", occupied, empty)
	}
}

func TestLatticeAdvance(t *testing.T) {
	l := newTestLattice(t, 800, 800)
	cfg := config.Default().Lattice
	amp := cfg.Spacing * cfg.Wobble

	cols, rows := l.Dims()
	for _, phase := range []float64{0, 1.5, 60, 3600} {
		l.Advance(phase)
		for ix := 0; ix < cols; ix++ {
			for iy := 0; iy < rows; iy++ {
				c := l.Cell(ix, iy)
				p := l.Point(ix, iy)
				if !c.Occupied {
					if p != c.Base {
						t.Errorf("phase %v: unoccupied cell (%d,%d) moved to %v", phase, ix, iy, p)
					}
					continue
				}
				if dx, dy := p.X-c.Base.X, p.Y-c.Base.Y; dx*dx > amp*amp+1e-9 || dy*dy > amp*amp+1e-9 {
					t.Errorf("phase %v: cell (%d,%d) offset (%f,%f) exceeds %f", phase, ix, iy, dx, dy, amp)
				}
			}
		}
	}
}

func TestLatticeAdvanceDeterministic(t *testing.T) {
	a := newTestLattice(t, 640, 480)
	b := newTestLattice(t, 640, 480)
	a.Advance(12.5)
	b.Advance(12.5)

	cols, rows := a.Dims()
	for ix := 0; ix < cols; ix++ {
		for iy := 0; iy < rows; iy++ {
			if a.Point(ix, iy) != b.Point(ix, iy) {
				t.Fatalf("same seed and phase gave different points at (%d,%d)", ix, iy)
			}
		}
	}
}

func TestLatticeSegments(t *testing.T) {
	l := newTestLattice(t, 1000, 600)
	l.Advance(7)

	occupiedAt := map[r2.Vec]bool{}
	cols, rows := l.Dims()
	for ix := 0; ix < cols; ix++ {
		for iy := 0; iy < rows; iy++ {
			if l.Cell(ix, iy).Occupied {
				occupiedAt[l.Point(ix, iy)] = true
			}
		}
	}

	segs := l.Segments()
	if len(segs) == 0 {
		t.Fatal("expected some segments")
	}
	maxAlpha := uint8(config.Default().Lattice.AlphaMax)
	for i, s := range segs {
		if !occupiedAt[s.A] || !occupiedAt[s.B] {
			t.Errorf("segment %d touches an unoccupied cell: %v -> %v", i, s.A, s.B)
		}
		if s.Alpha == 0 || s.Alpha > maxAlpha {
			t.Errorf("segment %d alpha %d outside (0, %d]", i, s.Alpha, maxAlpha)
		}
		if d := r2.Norm(r2.Sub(s.A, s.B)); d >= fadeSpan*100 {
			t.Errorf("segment %d spans %f, beyond the fade distance", i, d)
		}
	}
}

func TestLatticeInvalidArgs(t *testing.T) {
	cfg := config.Default().Lattice
	noise := NewNoise(1)

	bad := cfg
	bad.Spacing = 0
	if _, err := NewWorleyNetwork(bad, 100, 100, noise); err == nil {
		t.Error("expected error for zero spacing")
	}
	if _, err := NewWorleyNetwork(cfg, 0, 100, noise); err == nil {
		t.Error("expected error for zero width")
	}
	dense := cfg
	dense.Spacing = 0.01
	if _, err := NewWorleyNetwork(dense, 4000, 4000, noise); err == nil {
		t.Error("expected error for an oversized grid")
	}
}
