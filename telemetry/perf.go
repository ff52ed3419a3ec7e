package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for one pipeline tick.
const (
	PhaseDetect    = "detect"
	PhaseBank      = "bank"
	PhaseCurve     = "curve"
	PhaseParticles = "particles"
	PhaseLattice   = "lattice"
	PhaseUniforms  = "uniforms"
	PhaseRender    = "render"
)

// phases lists every phase in pipeline order.
var phases = []string{
	PhaseDetect, PhaseBank, PhaseCurve, PhaseParticles,
	PhaseLattice, PhaseUniforms, PhaseRender,
}

// tickTiming is one tick's wall time and its split across phases.
type tickTiming struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector keeps per-phase timings for the last windowSize ticks.
// Phases are delimited by StartPhase calls; the last one runs until EndTick.
type PerfCollector struct {
	ring []tickTiming
	next int
	full bool

	cur        tickTiming
	tickStart  time.Time
	phase      string
	phaseStart time.Time

	lastFrame time.Time
	frameDur  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 if windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickTiming, windowSize)}
}

// StartTick begins timing a new pipeline tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickTiming{phases: make(map[string]time.Duration, len(phases))}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase == "" {
		return
	}
	p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	p.phase = ""
}

// EndTick closes the tick and pushes it into the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next++
	if p.next == len(p.ring) {
		p.next = 0
		p.full = true
	}
}

// RecordFrame marks a presented frame; the gap to the previous one gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDur = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// window returns the recorded ticks in ring order.
func (p *PerfCollector) window() []tickTiming {
	if p.full {
		return p.ring
	}
	return p.ring[:p.next]
}

// PerfStats is a summary of the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per-phase mean duration and share of the mean tick, in percent.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Graphical mode only.
	FrameDuration time.Duration
	FPS           float64
}

// Stats summarises the window. An empty window gives zero timings and
// empty, non-nil phase maps.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDur,
	}
	if p.frameDur > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDur)
	}

	ticks := p.window()
	if len(ticks) == 0 {
		return s
	}

	totals := make([]float64, len(ticks))
	sums := make(map[string]time.Duration)
	for i, tk := range ticks {
		totals[i] = float64(tk.total)
		for name, d := range tk.phases {
			sums[name] += d
		}
	}

	mean := stat.Mean(totals, nil)
	s.AvgTickDuration = time.Duration(mean)
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	n := time.Duration(len(ticks))
	for name, sum := range sums {
		avg := sum / n
		s.PhaseAvg[name] = avg
		if mean > 0 {
			s.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return s
}

// LogStats logs the summary at Info, listing phases in pipeline order.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, phase := range phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row. Phase columns follow pipeline order.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	DetectPct    float64 `csv:"detect_pct"`
	BankPct      float64 `csv:"bank_pct"`
	CurvePct     float64 `csv:"curve_pct"`
	ParticlesPct float64 `csv:"particles_pct"`
	LatticePct   float64 `csv:"lattice_pct"`
	UniformsPct  float64 `csv:"uniforms_pct"`
	RenderPct    float64 `csv:"render_pct"`
}

// phaseColumns maps each phase to its column in r.
func (r *PerfStatsCSV) phaseColumns() map[string]*float64 {
	return map[string]*float64{
		PhaseDetect:    &r.DetectPct,
		PhaseBank:      &r.BankPct,
		PhaseCurve:     &r.CurvePct,
		PhaseParticles: &r.ParticlesPct,
		PhaseLattice:   &r.LatticePct,
		PhaseUniforms:  &r.UniformsPct,
		PhaseRender:    &r.RenderPct,
	}
}

// ToCSV flattens the summary into a perf.csv row. Untracked phases are 0.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	row := PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		MinTickUS:   s.MinTickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		FPS:         s.FPS,
	}
	cols := row.phaseColumns()
	for _, phase := range phases {
		*cols[phase] = s.PhasePct[phase]
	}
	return row
}
