package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
	"github.com/pthm-cable/cyberloops/config"
)

// maxLatticeCells guards against a spacing so small the grid would not fit in a frame budget.
const maxLatticeCells = 1 << 20

// fadeSpan is the neighbour distance, in spacings, at which lines vanish.
const fadeSpan = 1.5

// Segment is one lattice line to draw.
type Segment struct {
	A, B  r2.Vec
	Alpha uint8
}

// WorleyNetwork is the animated background lattice. The base grid is fixed
// for the lattice's lifetime; each Advance recomputes the animated positions
// from it. A new canvas size needs a new network.
type WorleyNetwork struct {
	spacing  float64
	hole     float64
	width    float64
	height   float64
	wobble   float64
	alphaMax float64

	cols, rows int
	cells      []components.Cell
	seeds      [][2]float64 // per-cell chained noise values (n1, n2)
	points     []r2.Vec

	segments []Segment
}

// NewWorleyNetwork builds the lattice for a width x height canvas. Cells
// closer than cfg.Hole to the canvas centre are left unoccupied.
func NewWorleyNetwork(cfg config.LatticeConfig, width, height float64, noise *Noise) (*WorleyNetwork, error) {
	s := cfg.Spacing
	if s <= 0 {
		return nil, fmt.Errorf("lattice spacing must be positive, got %v", s)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("lattice needs a positive canvas, got %vx%v", width, height)
	}

	// One extra ring of cells beyond every edge.
	cols := gridCount(width, s)
	rows := gridCount(height, s)
	if cols*rows > maxLatticeCells {
		return nil, fmt.Errorf("lattice of %dx%d cells is too dense", cols, rows)
	}

	w := &WorleyNetwork{
		spacing:  s,
		hole:     cfg.Hole,
		width:    width,
		height:   height,
		wobble:   cfg.Wobble,
		alphaMax: cfg.AlphaMax,
		cols:     cols,
		rows:     rows,
		cells:    make([]components.Cell, cols*rows),
		seeds:    make([][2]float64, cols*rows),
		points:   make([]r2.Vec, cols*rows),
	}

	center := r2.Vec{X: width / 2, Y: height / 2}
	scale := cfg.NoiseScale
	for ix := 0; ix < cols; ix++ {
		for iy := 0; iy < rows; iy++ {
			base := r2.Vec{X: -s + float64(ix)*s, Y: -s + float64(iy)*s}
			i := w.index(ix, iy)
			w.cells[i] = components.Cell{
				Base:     base,
				Occupied: r2.Norm(r2.Sub(base, center)) >= cfg.Hole,
			}
			// The offsets only depend on grid coordinates and phase, so the
			// chained lookups are done once here.
			n1 := noise.At2(float64(ix)*scale, float64(iy)*scale)
			n2 := noise.At2((float64(ix)+n1)*scale, (float64(iy)+n1)*scale)
			w.seeds[i] = [2]float64{n1, n2}
			w.points[i] = base
		}
	}
	return w, nil
}

// gridCount returns how many cells fit from -s up to (but excluding) extent+s.
func gridCount(extent, s float64) int {
	n := 0
	for x := -s; x < extent+s; x += s {
		n++
	}
	return n
}

func (w *WorleyNetwork) index(ix, iy int) int {
	return iy*w.cols + ix
}

// Dims returns the grid size in cells.
func (w *WorleyNetwork) Dims() (cols, rows int) {
	return w.cols, w.rows
}

// Size returns the canvas size the lattice was built for.
func (w *WorleyNetwork) Size() (width, height float64) {
	return w.width, w.height
}

// Cell returns the base cell at grid coordinates.
func (w *WorleyNetwork) Cell(ix, iy int) components.Cell {
	return w.cells[w.index(ix, iy)]
}

// Point returns the animated position at grid coordinates.
func (w *WorleyNetwork) Point(ix, iy int) r2.Vec {
	return w.points[w.index(ix, iy)]
}

// Advance recomputes every animated position for the given phase.
// Unoccupied cells stay at their base position.
func (w *WorleyNetwork) Advance(phase float64) {
	amp := w.spacing * w.wobble
	for i, c := range w.cells {
		if !c.Occupied {
			w.points[i] = c.Base
			continue
		}
		n1, n2 := w.seeds[i][0], w.seeds[i][1]
		w.points[i] = r2.Vec{
			X: c.Base.X + math.Sin(n1*(phase+10))*amp,
			Y: c.Base.Y + math.Cos(n2*(phase+10))*amp,
		}
	}
}

// Segments returns the lines to draw: from every occupied cell to each of
// its 8 occupied neighbours, fading linearly to nothing as the distance
// approaches 1.5 spacings. The returned slice is reused by the next call.
func (w *WorleyNetwork) Segments() []Segment {
	w.segments = w.segments[:0]
	fade := fadeSpan * w.spacing

	for iy := 0; iy < w.rows; iy++ {
		for ix := 0; ix < w.cols; ix++ {
			i := w.index(ix, iy)
			if !w.cells[i].Occupied {
				continue
			}
			p := w.points[i]

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := ix+dx, iy+dy
					if nx < 0 || nx >= w.cols || ny < 0 || ny >= w.rows {
						continue
					}
					j := w.index(nx, ny)
					if !w.cells[j].Occupied {
						continue
					}
					q := w.points[j]
					alpha := (fade - r2.Norm(r2.Sub(p, q))) / fade * w.alphaMax
					if alpha < 1 {
						continue
					}
					w.segments = append(w.segments, Segment{A: p, B: q, Alpha: uint8(math.Min(alpha, 255))})
				}
			}
		}
	}
	return w.segments
}
