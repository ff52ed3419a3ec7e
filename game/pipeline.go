package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/systems"
	"github.com/pthm-cable/cyberloops/telemetry"
)

// step advances the pipeline by one frame. Callers own perf tick bracketing.
func (g *Game) step() Frame {
	st := &g.state
	cfg := g.cfg

	st.Frame = (st.Frame + 1) % cfg.Session.FrameWrap

	if g.sessionExpired() {
		g.resetSession()
		st = &g.state
	}

	g.perf.StartPhase(telemetry.PhaseDetect)
	det := g.slot.Load()
	if det == nil {
		g.advanceLattice()
		return Frame{State: st.State, Index: st.Frame}
	}
	if st.State == StateLoading {
		g.setState(StateIdle)
	}

	st.Cursor += cfg.Loop.TimeRate
	if st.Cursor > cfg.Loop.NPoints {
		st.Cursor = 0
		st.Bank.ResampleIdle()
		g.collector.RecordResample()
	}

	if err := g.stepGeometry(det.Hands); err != nil {
		slog.Warn("tick fault", "frame", st.Frame, "state", st.State, "error", err)
		g.collector.RecordFault()
	}

	g.advanceLattice()

	g.perf.StartPhase(telemetry.PhaseUniforms)
	u := st.Particles.SnapshotForRender()

	return Frame{
		State:    st.State,
		Index:    st.Frame,
		Cursor:   st.Cursor,
		Points:   st.Points,
		Hands:    det.Hands,
		Uniforms: u,
	}
}

// stepGeometry drives the bank from the hands, samples the loop and feeds
// the particle system. A panic anywhere in here is returned as an error so
// one bad frame never takes the render loop down.
func (g *Game) stepGeometry(hands []detect.Hand) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geometry panic: %v", r)
		}
	}()

	st := &g.state
	cfg := g.cfg

	g.perf.StartPhase(telemetry.PhaseBank)
	if len(hands) < cfg.Hands.Count {
		if st.State == StateTracking {
			g.setState(StateIdle)
			st.Bank.ResampleIdle()
			st.Bank.RerollNoise()
			g.collector.RecordResample()
		}
		st.Bank.Idle(cfg.Loop.IdleSpeed, st.Frame)
	} else {
		if st.State == StateIdle {
			g.setState(StateTracking)
		}
		if err := st.Bank.Compute(hands, cfg.Loop.DetectSpeed); err != nil {
			slog.Debug("incomplete hand data", "frame", st.Frame, "error", err)
			g.collector.RecordInputError()
		}
	}

	g.perf.StartPhase(telemetry.PhaseCurve)
	st.Points = systems.MakeBankPoints(st.Points, st.Bank, cfg.Loop.NPoints)
	if st.Cursor >= len(st.Points) {
		return fmt.Errorf("cursor %d outside %d points", st.Cursor, len(st.Points))
	}

	g.perf.StartPhase(telemetry.PhaseParticles)
	if st.Particles.OnCurveSample(st.Points[st.Cursor]) {
		g.collector.RecordSpawn()
	}
	if culled := st.Particles.Tick(); culled > 0 {
		g.collector.RecordCulls(culled)
	}
	return nil
}

func (g *Game) advanceLattice() {
	g.perf.StartPhase(telemetry.PhaseLattice)
	g.state.Lattice.Advance(float64(g.state.Frame) / g.cfg.Lattice.Slowdown)
}

func (g *Game) setState(s State) {
	if s == g.state.State {
		return
	}
	slog.Info("state transition",
		"from", g.state.State,
		"to", s,
		"frame", g.state.Frame,
		"session", g.state.SessionID,
	)
	g.state.State = s
	g.collector.RecordTransition()
}

func (g *Game) sessionExpired() bool {
	lifespan := g.cfg.Session.Lifespan
	if lifespan <= 0 {
		return false
	}
	return g.now().Sub(g.state.SessionStart) > lifespan
}

// resetSession rebuilds the whole pipeline at the current size and waits
// for the detector again. If the lattice cannot be rebuilt the old session
// carries on and the reset is retried next tick.
func (g *Game) resetSession() {
	prev := g.state.SessionID
	if err := g.initPipeline(); err != nil {
		slog.Error("session reset failed", "session", prev, "error", err)
		return
	}
	g.slot.Clear()
	g.collector.RecordReset()
	slog.Info("session reset", "previous", prev, "session", g.state.SessionID)
}
