// Package config provides configuration loading and access for the pipeline.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/cyberloops/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all pipeline configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Loop      LoopConfig      `yaml:"loop"`
	Hands     HandsConfig     `yaml:"hands"`
	Particles ParticleConfig  `yaml:"particles"`
	Glow      GlowConfig      `yaml:"glow"`
	Lattice   LatticeConfig   `yaml:"lattice"`
	Session   SessionConfig   `yaml:"session"`
	Detector  DetectorConfig  `yaml:"detector"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	TargetFPS    int `yaml:"target_fps"`
	PixelDensity int `yaml:"pixel_density"`
}

// LoopConfig holds oscillator bank and curve parameters.
type LoopConfig struct {
	NPoints            int     `yaml:"npoints"`
	TimeRate           int     `yaml:"time_rate"`
	DetectSpeed        float64 `yaml:"detect_speed"`
	IdleSpeed          float64 `yaml:"idle_speed"`
	IdleNoiseMag       float64 `yaml:"idle_noise_mag"`
	IdleNoiseSpeed     float64 `yaml:"idle_noise_speed"`
	Sensitivity        float64 `yaml:"sensitivity"`
	BaseRadius         float64 `yaml:"base_radius"`
	IdleRadiusMin      float64 `yaml:"idle_radius_min"`
	IdleRadiusSpan     float64 `yaml:"idle_radius_span"`
	IdleSpeedMultiples []int   `yaml:"idle_speed_multiples"`
}

// HandsConfig describes which landmarks feed the oscillator bank.
type HandsConfig struct {
	Count    int      `yaml:"count"`
	Features [][3]int `yaml:"features"`
}

// ParticleConfig holds spawner and integrator parameters.
type ParticleConfig struct {
	MaxCount       int      `yaml:"max_count"`
	SpawnThreshold float64  `yaml:"spawn_threshold"`
	DieThreshold   float64  `yaml:"die_threshold"`
	SpeedMin       float64  `yaml:"speed_min"`
	SpeedMax       float64  `yaml:"speed_max"`
	SpreadDegrees  float64  `yaml:"spread_degrees"`
	MassMin        float64  `yaml:"mass_min"`
	MassMax        float64  `yaml:"mass_max"`
	DragMin        float64  `yaml:"drag_min"`
	DragMax        float64  `yaml:"drag_max"`
	Palette        []string `yaml:"palette"`
}

// GlowConfig holds shader parameters.
type GlowConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	LoopColor  string  `yaml:"loop_color"`
}

// LatticeConfig holds background lattice parameters.
type LatticeConfig struct {
	Spacing    float64 `yaml:"spacing"`
	Hole       float64 `yaml:"hole"`
	Slowdown   float64 `yaml:"slowdown"`
	Wobble     float64 `yaml:"wobble"`
	NoiseScale float64 `yaml:"noise_scale"`
	AlphaMax   float64 `yaml:"alpha_max"`
	Stroke     uint8   `yaml:"stroke"`
}

// SessionConfig holds the periodic safety reset parameters.
type SessionConfig struct {
	FrameWrap int           `yaml:"frame_wrap"`
	Lifespan  time.Duration `yaml:"lifespan"`
}

// DetectorConfig holds hand-landmark feed settings.
type DetectorConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	Path           string        `yaml:"path"`
	ReplayFile     string        `yaml:"replay_file"`
	ReplayInterval time.Duration `yaml:"replay_interval"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumFeatures int              // len(Hands.Features) * Hands.Count
	Palette     []components.RGB // Particles.Palette parsed
	LoopColor   components.RGB   // Glow.LoopColor parsed
	DT          float64          // seconds per tick at the target rate
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.Loop.NPoints <= 0 {
		errs = append(errs, errors.New("loop.npoints must be positive"))
	}
	if c.Loop.TimeRate <= 0 {
		errs = append(errs, errors.New("loop.time_rate must be positive"))
	}
	if len(c.Loop.IdleSpeedMultiples) == 0 {
		errs = append(errs, errors.New("loop.idle_speed_multiples must not be empty"))
	}
	if c.Hands.Count != 2 {
		errs = append(errs, errors.New("hands.count must be 2"))
	}
	if len(c.Hands.Features) == 0 {
		errs = append(errs, errors.New("hands.features must not be empty"))
	}
	if c.Particles.MaxCount <= 0 {
		errs = append(errs, errors.New("particles.max_count must be positive"))
	}
	if c.Particles.SpeedMax < c.Particles.SpeedMin ||
		c.Particles.MassMax < c.Particles.MassMin ||
		c.Particles.DragMax < c.Particles.DragMin {
		errs = append(errs, errors.New("particles: max bounds must not be below min bounds"))
	}
	if len(c.Particles.Palette) == 0 {
		errs = append(errs, errors.New("particles.palette must not be empty"))
	}
	if c.Lattice.Spacing <= 0 {
		errs = append(errs, errors.New("lattice.spacing must be positive"))
	}
	if c.Lattice.Slowdown <= 0 {
		errs = append(errs, errors.New("lattice.slowdown must be positive"))
	}
	if c.Session.FrameWrap <= 0 {
		errs = append(errs, errors.New("session.frame_wrap must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.NumFeatures = len(c.Hands.Features) * c.Hands.Count

	c.Derived.Palette = make([]components.RGB, 0, len(c.Particles.Palette))
	for _, hex := range c.Particles.Palette {
		col, err := parseHex(hex)
		if err != nil {
			return fmt.Errorf("particles.palette: %w", err)
		}
		c.Derived.Palette = append(c.Derived.Palette, col)
	}

	loop, err := parseHex(c.Glow.LoopColor)
	if err != nil {
		return fmt.Errorf("glow.loop_color: %w", err)
	}
	c.Derived.LoopColor = loop

	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.DT = 1.0 / float64(fps)
	return nil
}

func parseHex(s string) (components.RGB, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return components.RGB{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	return components.RGB{R: col.R, G: col.G, B: col.B}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
