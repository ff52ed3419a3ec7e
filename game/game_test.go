package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/telemetry"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func oneHand(t float64) []detect.Hand  { return detect.SyntheticHands(t)[:1] }
func twoHands(t float64) []detect.Hand { return detect.SyntheticHands(t) }
func noHands() []detect.Hand           { return []detect.Hand{} }

func testConfig() *config.Config {
	return config.Default()
}

func newTestGame(t *testing.T, cfg *config.Config, clock *fakeClock, mods ...func(*Options)) *Game {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	if clock == nil {
		clock = newFakeClock()
	}
	opts := Options{
		Config:   cfg,
		Seed:     42,
		Headless: true,
		Now:      clock.Now,
	}
	for _, m := range mods {
		m(&opts)
	}
	g, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func TestStartsLoading(t *testing.T) {
	g := newTestGame(t, nil, nil)

	for i := 0; i < 3; i++ {
		f := g.Update()
		assert.Equal(t, StateLoading, f.State)
		assert.Empty(t, f.Points)
		assert.Zero(t, f.Uniforms.ParticleCount)
	}
	assert.Equal(t, 3, g.FrameIndex())
	assert.Zero(t, g.Cursor(), "cursor must not move before the first detection")
}

func TestStateTransitions(t *testing.T) {
	g := newTestGame(t, nil, nil)

	g.Update()
	require.Equal(t, StateLoading, g.State())

	// Detector fired but saw nothing.
	g.OnDetectionResult(noHands())
	g.Update()
	require.Equal(t, StateIdle, g.State())

	g.OnDetectionResult(twoHands(0))
	f := g.Update()
	require.Equal(t, StateTracking, g.State())
	assert.Len(t, f.Points, g.cfg.Loop.NPoints+1)
	assert.Len(t, f.Hands, 2)

	idleBefore := g.Bank().IdleCoefficients()
	noiseBefore := g.Bank().NoiseOffset()

	g.OnDetectionResult(oneHand(0))
	g.Update()
	require.Equal(t, StateIdle, g.State())
	assert.NotEqual(t, idleBefore, g.Bank().IdleCoefficients(), "losing a hand should resample the idle shape")
	assert.NotEqual(t, noiseBefore, g.Bank().NoiseOffset(), "losing a hand should reroll the noise offset")
}

func TestLoadingGoesStraightToTracking(t *testing.T) {
	g := newTestGame(t, nil, nil)

	g.OnDetectionResult(twoHands(0))
	f := g.Update()
	assert.Equal(t, StateTracking, f.State)
}

func TestCursorWrapResamplesIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Loop.NPoints = 10
	cfg.Loop.TimeRate = 2
	g := newTestGame(t, cfg, nil)
	g.OnDetectionResult(noHands())

	for want := 2; want <= 10; want += 2 {
		f := g.Update()
		require.Equal(t, want, f.Cursor)
	}

	before := g.Bank().IdleCoefficients()
	f := g.Update()
	assert.Zero(t, f.Cursor)
	assert.NotEqual(t, before, g.Bank().IdleCoefficients())
}

func TestCursorWrapWhileTracking(t *testing.T) {
	cfg := testConfig()
	cfg.Loop.NPoints = 4
	cfg.Loop.TimeRate = 3
	g := newTestGame(t, cfg, nil)
	g.OnDetectionResult(twoHands(0))

	g.Update() // cursor 3
	before := g.Bank().IdleCoefficients()
	f := g.Update() // 6 > 4 wraps
	assert.Zero(t, f.Cursor)
	assert.Equal(t, StateTracking, f.State)
	assert.NotEqual(t, before, g.Bank().IdleCoefficients())
}

func TestResizeKeepsBankAndParticles(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.OnDetectionResult(twoHands(0))
	for i := 0; i < 200; i++ {
		g.OnDetectionResult(twoHands(float64(i) * 0.05))
		g.Update()
	}

	bank := g.Bank()
	coeffs := bank.Coefficients()
	particles := g.Particles()
	count := particles.Count()
	lattice := g.Lattice()

	require.NoError(t, g.OnResize(800, 600))

	assert.Same(t, bank, g.Bank())
	assert.Equal(t, coeffs, g.Bank().Coefficients())
	assert.Same(t, particles, g.Particles())
	assert.Equal(t, count, g.Particles().Count())
	assert.NotSame(t, lattice, g.Lattice())

	w, h := g.Lattice().Size()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)
}

func TestResizeFailureKeepsLattice(t *testing.T) {
	g := newTestGame(t, nil, nil)
	lattice := g.Lattice()

	err := g.OnResize(0, 600)
	require.Error(t, err)
	assert.Same(t, lattice, g.Lattice())

	w, h := g.Size()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	g := newTestGame(t, nil, nil)
	lattice := g.Lattice()
	require.NoError(t, g.OnResize(1280, 720))
	assert.Same(t, lattice, g.Lattice())
}

func TestSessionExpiryReinitializes(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Lifespan = time.Minute
	clock := newFakeClock()
	g := newTestGame(t, cfg, clock)

	g.OnDetectionResult(twoHands(0))
	for i := 0; i < 10; i++ {
		g.Update()
	}
	require.Equal(t, StateTracking, g.State())
	oldSession := g.SessionID()
	oldBank := g.Bank()

	clock.Advance(30 * time.Second)
	g.Update()
	require.Equal(t, oldSession, g.SessionID(), "reset before the lifespan elapsed")

	clock.Advance(31 * time.Second)
	f := g.Update()
	assert.NotEqual(t, oldSession, g.SessionID())
	assert.NotSame(t, oldBank, g.Bank())
	assert.Equal(t, StateLoading, f.State)
	assert.Zero(t, f.Index)
	assert.Zero(t, g.Cursor())
	assert.Zero(t, g.Particles().Count())
	assert.Equal(t, time.Minute, g.SessionRemaining())
}

func TestSessionLifespanZeroNeverResets(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Lifespan = 0
	clock := newFakeClock()
	g := newTestGame(t, cfg, clock)
	id := g.SessionID()

	clock.Advance(24 * time.Hour)
	g.Update()
	assert.Equal(t, id, g.SessionID())
	assert.Zero(t, g.SessionRemaining())
}

func TestFrameCounterWraps(t *testing.T) {
	cfg := testConfig()
	cfg.Session.FrameWrap = 5
	g := newTestGame(t, cfg, nil)

	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, g.Update().Index)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 0, 1, 2}, got)
	assert.Equal(t, int32(7), g.Tick())
}

func TestShortHandDoesNotHaltPipeline(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = cfg.Derived.DT
	var inputErrors, faults int
	g := newTestGame(t, cfg, nil, func(o *Options) {
		o.StatsCallback = func(s telemetry.WindowStats) {
			inputErrors += s.InputErrors
			faults += s.Faults
		}
	})

	hands := twoHands(0)
	hands[1] = hands[1][:9]
	g.OnDetectionResult(hands)

	for i := 0; i < 5; i++ {
		f := g.Update()
		require.Equal(t, StateTracking, f.State)
		require.Len(t, f.Points, cfg.Loop.NPoints+1)
	}
	assert.Equal(t, 5, inputErrors)
	assert.Zero(t, faults)
}

func TestGeometryPanicIsRecovered(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = cfg.Derived.DT
	var faults int
	g := newTestGame(t, cfg, nil, func(o *Options) {
		o.StatsCallback = func(s telemetry.WindowStats) { faults += s.Faults }
	})
	g.OnDetectionResult(twoHands(0))
	g.Update()

	g.state.Bank = nil
	require.NotPanics(t, func() {
		for i := 0; i < 3; i++ {
			g.Update()
		}
	})
	assert.Equal(t, 3, faults)
	assert.Equal(t, 4, g.FrameIndex(), "the rest of the tick still runs")
}

func TestUniformsNeverExceedCapacity(t *testing.T) {
	cfg := testConfig()
	g := newTestGame(t, cfg, nil)

	sawParticles := false
	for i := 0; i < 2000; i++ {
		g.OnDetectionResult(twoHands(float64(i) * 0.02))
		u := g.Update().Uniforms
		require.LessOrEqual(t, u.ParticleCount, u.Capacity)
		require.Equal(t, cfg.Particles.MaxCount, u.Capacity)
		require.Len(t, u.Particles, 3*u.Capacity)
		require.Len(t, u.Colors, 3*u.Capacity)
		if u.ParticleCount > 0 {
			sawParticles = true
		}
	}
	assert.True(t, sawParticles, "a moving loop should emit particles")
}

func TestStatsCallbackCountsTransitions(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = cfg.Derived.DT
	var total telemetry.WindowStats
	g := newTestGame(t, cfg, nil, func(o *Options) {
		o.StatsCallback = func(s telemetry.WindowStats) {
			total.Transitions += s.Transitions
			total.LoadingTicks += s.LoadingTicks
			total.IdleTicks += s.IdleTicks
			total.TrackingTicks += s.TrackingTicks
			total.Resamples += s.Resamples
		}
	})

	g.Update() // loading
	g.OnDetectionResult(noHands())
	g.Update() // -> idle
	g.OnDetectionResult(twoHands(0))
	g.Update() // -> tracking
	g.Update()
	g.OnDetectionResult(oneHand(0))
	g.Update() // -> idle

	assert.Equal(t, 3, total.Transitions)
	assert.Equal(t, 1, total.LoadingTicks)
	assert.Equal(t, 2, total.IdleTicks)
	assert.Equal(t, 2, total.TrackingTicks)
	assert.Equal(t, 1, total.Resamples)
	assert.Equal(t, g.SessionID().String(), g.LastStats().SessionID)
}

func TestOutputDirReceivesFiles(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = cfg.Derived.DT
	dir := t.TempDir()
	g := newTestGame(t, cfg, nil, func(o *Options) { o.OutputDir = dir })

	g.OnDetectionResult(twoHands(0))
	for i := 0; i < 3; i++ {
		g.Update()
	}

	sessionDir := filepath.Join(dir, g.SessionID().String())
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv"} {
		info, err := os.Stat(filepath.Join(sessionDir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateLoading, "loading"},
		{StateIdle, "idle"},
		{StateTracking, "tracking"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestTrackingNeedsTwoHandsOnly(t *testing.T) {
	g := newTestGame(t, nil, nil)

	hands := append(twoHands(0), detect.SyntheticHands(1)[0])
	g.OnDetectionResult(hands)
	assert.Equal(t, StateTracking, g.Update().State, "extra hands still track")

	g.OnDetectionResult(twoHands(0))
	assert.Equal(t, StateTracking, g.Update().State)

	g.OnDetectionResult(oneHand(0))
	assert.Equal(t, StateIdle, g.Update().State)
}
