package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	SessionID       string  `csv:"session"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	TimeSec         float64 `csv:"time"`

	// Ticks spent in each state
	LoadingTicks  int `csv:"loading_ticks"`
	IdleTicks     int `csv:"idle_ticks"`
	TrackingTicks int `csv:"tracking_ticks"`

	// Events during window
	Spawns      int `csv:"spawns"`
	Culls       int `csv:"culls"`
	Transitions int `csv:"transitions"`
	Resamples   int `csv:"resamples"`
	Faults      int `csv:"faults"`
	InputErrors int `csv:"input_errors"`
	Resets      int `csv:"resets"`

	// Live particle count, sampled once per tick
	ParticleMean float64 `csv:"particles_mean"`
	ParticleP50  float64 `csv:"particles_p50"`
	ParticleMax  float64 `csv:"particles_max"`
}

// ComputeCountStats returns the mean, median and maximum of per-tick samples.
// Empty input gives zeros.
func ComputeCountStats(values []float64) (mean, p50, maxVal float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	maxVal = floats.Max(sorted)
	return mean, p50, maxVal
}

// TrackingShare returns the fraction of the window's ticks spent tracking.
func (s WindowStats) TrackingShare() float64 {
	total := s.LoadingTicks + s.IdleTicks + s.TrackingTicks
	if total == 0 {
		return 0
	}
	return float64(s.TrackingTicks) / float64(total)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session", s.SessionID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("time", s.TimeSec),
		slog.Int("loading_ticks", s.LoadingTicks),
		slog.Int("idle_ticks", s.IdleTicks),
		slog.Int("tracking_ticks", s.TrackingTicks),
		slog.Int("spawns", s.Spawns),
		slog.Int("culls", s.Culls),
		slog.Int("transitions", s.Transitions),
		slog.Int("resamples", s.Resamples),
		slog.Int("faults", s.Faults),
		slog.Int("input_errors", s.InputErrors),
		slog.Int("resets", s.Resets),
		slog.Float64("particles_mean", s.ParticleMean),
		slog.Float64("particles_p50", s.ParticleP50),
		slog.Float64("particles_max", s.ParticleMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
