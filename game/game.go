// Package game orchestrates the pipeline: it owns the session state, steps
// every subsystem once per tick and hands the result to the renderers.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/camera"
	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/renderer"
	"github.com/pthm-cable/cyberloops/systems"
	"github.com/pthm-cable/cyberloops/telemetry"
	"github.com/pthm-cable/cyberloops/ui"
)

// Options configures a pipeline instance.
type Options struct {
	Config   *config.Config // nil uses config.Cfg()
	Seed     int64
	Width    int // 0 uses screen.width
	Height   int // 0 uses screen.height
	Headless bool

	LogStats      bool
	OutputDir     string
	StatsCallback func(telemetry.WindowStats)

	// Now is the session clock; nil uses time.Now.
	Now func() time.Time
}

// Frame is what one tick produced, for drawing.
type Frame struct {
	State  State
	Index  int
	Cursor int
	// Points aliases the pipeline's buffer and is only valid until the next tick.
	Points   []r2.Vec
	Hands    []detect.Hand
	Uniforms systems.Uniforms
}

// Game holds the complete pipeline state.
type Game struct {
	cfg   *config.Config
	rng   *rand.Rand
	noise *systems.Noise
	slot  *detect.Slot
	now   func() time.Time

	state PipelineState

	width, height int
	headless      bool

	// tick counts every Update since New and never wraps.
	tick int32

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	lastStats     telemetry.WindowStats
	lastPerf      telemetry.PerfStats

	// Rendering, nil when headless
	cam      *camera.Camera
	glow     *renderer.GlowRenderer
	lattice  *renderer.LatticeRenderer
	loop     *renderer.LoopRenderer
	hands    *renderer.HandRenderer
	hud      *ui.HUD
	logo     *ui.Logo
	overlays *ui.OverlayRegistry
}

// New creates the pipeline for a canvas of the configured or given size.
// Graphical mode must be called after the raylib window is created.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = cfg.Screen.Width
	}
	if height == 0 {
		height = cfg.Screen.Height
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		noise:         systems.NewNoise(opts.Seed),
		slot:          &detect.Slot{},
		now:           now,
		width:         width,
		height:        height,
		headless:      opts.Headless,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	if err := g.initPipeline(); err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		dir := filepath.Join(opts.OutputDir, g.state.SessionID.String())
		om, err := telemetry.NewOutputManager(dir)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.output = om
		slog.Info("writing telemetry", "dir", dir)
	}

	if !g.headless {
		if err := g.initRendering(); err != nil {
			g.output.Close()
			return nil, err
		}
	}

	return g, nil
}

// initPipeline builds a fresh session at the current canvas size.
func (g *Game) initPipeline() error {
	cfg := g.cfg

	lattice, err := systems.NewWorleyNetwork(cfg.Lattice, float64(g.width), float64(g.height), g.noise)
	if err != nil {
		return fmt.Errorf("building lattice: %w", err)
	}

	g.state = PipelineState{
		Bank:         systems.NewOscillatorBank(cfg.Loop, cfg.Hands.Features, cfg.Hands.Count, g.noise, g.rng),
		Particles:    systems.NewParticleSystem(cfg.Particles, cfg.Derived.Palette, g.rng),
		Lattice:      lattice,
		Points:       make([]r2.Vec, 0, cfg.Loop.NPoints+1),
		State:        StateLoading,
		SessionID:    uuid.New(),
		SessionStart: g.now(),
	}

	slog.Info("pipeline initialized",
		"session", g.state.SessionID,
		"width", g.width,
		"height", g.height,
		"coefficients", g.state.Bank.Len(),
	)
	return nil
}

// OnDetectionResult posts a detector result. Safe to call from any goroutine.
func (g *Game) OnDetectionResult(hands []detect.Hand) {
	g.slot.OnDetectionResult(hands)
}

// Slot returns the detection slot, for detector sources.
func (g *Game) Slot() *detect.Slot {
	return g.slot
}

// OnResize rebuilds size-dependent resources. The oscillator bank and the
// particles carry over; the lattice and glow target are replaced. On error
// the previous resources are kept.
func (g *Game) OnResize(width, height int) error {
	if width == g.width && height == g.height {
		return nil
	}

	lattice, err := systems.NewWorleyNetwork(g.cfg.Lattice, float64(width), float64(height), g.noise)
	if err != nil {
		return fmt.Errorf("resizing lattice: %w", err)
	}
	if g.glow != nil {
		if err := g.glow.Resize(width, height); err != nil {
			return fmt.Errorf("resizing glow target: %w", err)
		}
	}

	g.state.Lattice = lattice
	g.width, g.height = width, height
	if g.cam != nil {
		g.cam.Resize(float32(width), float32(height))
	}

	slog.Info("resized", "width", width, "height", height)
	return nil
}

// OnTick runs one full tick: input, pipeline step and drawing.
func (g *Game) OnTick() {
	g.perf.StartTick()
	if !g.headless {
		g.handleInput()
	}
	f := g.step()
	if !g.headless {
		g.perf.StartPhase(telemetry.PhaseRender)
		g.Draw(f)
		g.perf.RecordFrame()
	}
	g.endTick()
}

// Update runs one pipeline step without input handling or drawing.
func (g *Game) Update() Frame {
	g.perf.StartTick()
	f := g.step()
	g.endTick()
	return f
}

func (g *Game) endTick() {
	g.perf.EndTick()
	g.collector.RecordTick(g.state.State.String(), g.state.Particles.Count())
	g.tick++
	g.flushTelemetry()
}

// Unload releases GPU resources and closes telemetry output.
func (g *Game) Unload() {
	if g.glow != nil {
		g.glow.Unload()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close telemetry output", "error", err)
	}
}

// State returns the current orchestrator state.
func (g *Game) State() State {
	return g.state.State
}

// FrameIndex returns the wrapping frame counter.
func (g *Game) FrameIndex() int {
	return g.state.Frame
}

// Cursor returns the current sample cursor.
func (g *Game) Cursor() int {
	return g.state.Cursor
}

// Tick returns the number of ticks run since New.
func (g *Game) Tick() int32 {
	return g.tick
}

// Bank returns the oscillator bank.
func (g *Game) Bank() *systems.OscillatorBank {
	return g.state.Bank
}

// Particles returns the particle system.
func (g *Game) Particles() *systems.ParticleSystem {
	return g.state.Particles
}

// Lattice returns the background lattice.
func (g *Game) Lattice() *systems.WorleyNetwork {
	return g.state.Lattice
}

// SessionID returns the current session's id.
func (g *Game) SessionID() uuid.UUID {
	return g.state.SessionID
}

// SessionRemaining returns the time until the next lifespan reset, or 0 when
// resets are disabled.
func (g *Game) SessionRemaining() time.Duration {
	lifespan := g.cfg.Session.Lifespan
	if lifespan <= 0 {
		return 0
	}
	return lifespan - g.now().Sub(g.state.SessionStart)
}

// Size returns the canvas size.
func (g *Game) Size() (width, height int) {
	return g.width, g.height
}
