package game

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cyberloops/systems"
	"github.com/pthm-cable/cyberloops/telemetry"
)

// State is the orchestrator's coarse mode.
type State int

const (
	// StateLoading: the detector has not delivered anything yet.
	StateLoading State = iota
	// StateIdle: fewer than two hands; the loop drifts towards a random shape.
	StateIdle
	// StateTracking: two hands drive the loop.
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return telemetry.StateLoading
	case StateIdle:
		return telemetry.StateIdle
	case StateTracking:
		return telemetry.StateTracking
	}
	return "unknown"
}

// PipelineState is everything a session owns. It is rebuilt from scratch on
// a lifespan reset; a resize only replaces the lattice.
type PipelineState struct {
	Bank      *systems.OscillatorBank
	Particles *systems.ParticleSystem
	Lattice   *systems.WorleyNetwork

	// Points is the current loop, reused between ticks.
	Points []r2.Vec
	// Cursor indexes Points; it is the loop sample that feeds the spawner.
	Cursor int
	// Frame counts ticks and wraps at session.frame_wrap.
	Frame int
	State State

	SessionID    uuid.UUID
	SessionStart time.Time
}
