// Package telemetry provides per-window pipeline statistics, timing and CSV output.
package telemetry

// Pipeline state names as reported by the orchestrator.
const (
	StateLoading  = "loading"
	StateIdle     = "idle"
	StateTracking = "tracking"
)

// Collector accumulates pipeline events within windows of ticks and
// produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Per-window counters
	loadingTicks  int
	idleTicks     int
	trackingTicks int
	spawns        int
	culls         int
	transitions   int
	resamples     int
	faults        int
	inputErrors   int
	resets        int

	particleSamples []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in seconds of pipeline time
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		particleSamples:     make([]float64, 0, ticksPerWindow),
	}
}

// RecordTick records which state a tick ran in and the live particle count
// at its end.
func (c *Collector) RecordTick(state string, particles int) {
	switch state {
	case StateLoading:
		c.loadingTicks++
	case StateIdle:
		c.idleTicks++
	case StateTracking:
		c.trackingTicks++
	}
	c.particleSamples = append(c.particleSamples, float64(particles))
}

// RecordSpawn records a particle spawn.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordCulls records n particles dropped by the integrator.
func (c *Collector) RecordCulls(n int) {
	c.culls += n
}

// RecordTransition records a state change.
func (c *Collector) RecordTransition() {
	c.transitions++
}

// RecordResample records a fresh idle target draw.
func (c *Collector) RecordResample() {
	c.resamples++
}

// RecordFault records a tick whose geometry stage failed.
func (c *Collector) RecordFault() {
	c.faults++
}

// RecordInputError records a detection frame with unusable landmarks.
func (c *Collector) RecordInputError() {
	c.inputErrors++
}

// RecordReset records a full pipeline reinitialisation.
func (c *Collector) RecordReset() {
	c.resets++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sessionID string) WindowStats {
	mean, p50, maxCount := ComputeCountStats(c.particleSamples)

	stats := WindowStats{
		SessionID:       sessionID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		TimeSec:         float64(currentTick) * c.dt,

		LoadingTicks:  c.loadingTicks,
		IdleTicks:     c.idleTicks,
		TrackingTicks: c.trackingTicks,

		Spawns:      c.spawns,
		Culls:       c.culls,
		Transitions: c.transitions,
		Resamples:   c.resamples,
		Faults:      c.faults,
		InputErrors: c.inputErrors,
		Resets:      c.resets,

		ParticleMean: mean,
		ParticleP50:  p50,
		ParticleMax:  maxCount,
	}

	c.windowStartTick = currentTick
	c.loadingTicks = 0
	c.idleTicks = 0
	c.trackingTicks = 0
	c.spawns = 0
	c.culls = 0
	c.transitions = 0
	c.resamples = 0
	c.faults = 0
	c.inputErrors = 0
	c.resets = 0
	c.particleSamples = c.particleSamples[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
