package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/components"
	"github.com/pthm-cable/cyberloops/config"
)

// Uniforms is the payload handed to the glow shader each tick.
// Particles holds (x, y, weight) triples and Colors holds (r, g, b) triples,
// both padded to Capacity entries. Entries at or beyond ParticleCount are
// zero and must not be interpreted.
type Uniforms struct {
	ParticleCount int
	Capacity      int
	Particles     []float32
	Colors        []float32
}

// ParticleSystem spawns sparks from the loop's motion and integrates them.
type ParticleSystem struct {
	cfg          config.ParticleConfig
	palette      []components.RGB
	rng          *rand.Rand
	maxParticles int

	Particles []components.Particle

	// Previous curve sample; spawn velocity needs two samples.
	prev    r2.Vec
	hasPrev bool

	uniforms Uniforms
}

// NewParticleSystem creates a new particle system.
func NewParticleSystem(cfg config.ParticleConfig, palette []components.RGB, rng *rand.Rand) *ParticleSystem {
	n := cfg.MaxCount
	return &ParticleSystem{
		cfg:          cfg,
		palette:      palette,
		rng:          rng,
		maxParticles: n,
		Particles:    make([]components.Particle, 0, n),
		uniforms: Uniforms{
			Capacity:  n,
			Particles: make([]float32, 3*n),
			Colors:    make([]float32, 3*n),
		},
	}
}

// Reset drops every particle and forgets the previous sample.
func (s *ParticleSystem) Reset() {
	s.Particles = s.Particles[:0]
	s.hasPrev = false
	s.prev = r2.Vec{}
}

// OnCurveSample feeds the loop's current trace point. When the point moved
// more than the spawn threshold since the last sample, one particle is
// emitted at the previous point heading along the motion. Returns whether a
// particle was spawned; at the live-count cap nothing is spawned.
func (s *ParticleSystem) OnCurveSample(p r2.Vec) bool {
	spawned := false
	if s.hasPrev && len(s.Particles) < s.maxParticles {
		d := r2.Sub(p, s.prev)
		if r2.Norm(d) > s.cfg.SpawnThreshold {
			s.emit(s.prev, r2.Unit(d))
			spawned = true
		}
	}
	s.prev = p
	s.hasPrev = true
	return spawned
}

func (s *ParticleSystem) emit(at, heading r2.Vec) {
	spread := s.cfg.SpreadDegrees * math.Pi / 180
	vel := r2.Scale(randRange(s.rng, s.cfg.SpeedMin, s.cfg.SpeedMax), heading)
	vel = rotate(vel, randRange(s.rng, -spread, spread))

	s.Particles = append(s.Particles, components.Particle{
		Pos:   at,
		Vel:   vel,
		Mass:  randRange(s.rng, s.cfg.MassMin, s.cfg.MassMax),
		Drag:  randRange(s.rng, s.cfg.DragMin, s.cfg.DragMax),
		Color: s.palette[s.rng.Intn(len(s.palette))],
	})
}

// Tick applies drag, moves every particle and drops the ones that became
// too slow. Survivors keep their relative order. Returns the number culled.
func (s *ParticleSystem) Tick() int {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Vel = r2.Scale(p.Drag, p.Vel)
		p.Pos = r2.Add(p.Pos, p.Vel)

		if p.Speed() < s.cfg.DieThreshold {
			continue
		}

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	culled := len(s.Particles) - alive
	s.Particles = s.Particles[:alive]
	return culled
}

// SnapshotForRender packs up to Capacity particles into the shader payload.
// The returned slices are reused by the next call.
func (s *ParticleSystem) SnapshotForRender() Uniforms {
	u := &s.uniforms
	clear(u.Particles)
	clear(u.Colors)

	n := min(len(s.Particles), u.Capacity)
	for i := 0; i < n; i++ {
		p := &s.Particles[i]
		j := i * 3
		u.Particles[j] = float32(p.Pos.X)
		u.Particles[j+1] = float32(p.Pos.Y)
		u.Particles[j+2] = float32(p.Weight())
		u.Colors[j] = float32(p.Color.R)
		u.Colors[j+1] = float32(p.Color.G)
		u.Colors[j+2] = float32(p.Color.B)
	}
	u.ParticleCount = n
	return *u
}

// Count returns the current number of live particles.
func (s *ParticleSystem) Count() int {
	return len(s.Particles)
}

// Capacity returns the live-count cap.
func (s *ParticleSystem) Capacity() int {
	return s.maxParticles
}
