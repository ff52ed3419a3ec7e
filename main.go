package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/game"
	"github.com/pthm-cable/cyberloops/telemetry"
)

var (
	configPath string
	seed       int64
	maxTicks   int
	outputDir  string
	logStats   bool
	replayPath string
	listenAddr string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cyberloops",
		Short:         "hand-driven Fourier loop with particle glow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			return config.Init(configPath)
		},
		RunE: runGraphical,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	pf.Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	pf.IntVar(&maxTicks, "max-ticks", 0, "stop after N ticks (0 = unlimited)")
	pf.StringVar(&outputDir, "output-dir", "", "directory for CSV telemetry and config snapshot")
	pf.BoolVar(&logStats, "log-stats", false, "log window stats via slog")
	pf.StringVar(&replayPath, "replay", "", "JSONL detector recording to play back")
	pf.StringVar(&listenAddr, "listen", "", "address for the websocket detector feed (overrides config)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run the pipeline without a window",
		Long: "Runs the pipeline on the CPU only. Hands come from --replay, " +
			"stepped one recorded frame per tick, or from a synthetic pair.",
		RunE: runHeadless,
	}
	rootCmd.AddCommand(headlessCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("cyberloops failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing --log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

func resolveSeed() int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

func runGraphical(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "cyberloops")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.HideCursor()

	rngSeed := resolveSeed()
	g, err := game.New(game.Options{
		Seed:      rngSeed,
		Width:     int(rl.GetScreenWidth()),
		Height:    int(rl.GetScreenHeight()),
		LogStats:  logStats,
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}
	defer g.Unload()

	errCh := startDetectors(ctx, cfg, g)

	slog.Info("starting", "seed", rngSeed, "session", g.SessionID())

	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		default:
		}

		g.OnTick()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

// startDetectors launches the configured detector sources. Each runs until
// ctx is cancelled; a source failing for any other reason is reported on the
// returned channel.
func startDetectors(ctx context.Context, cfg *config.Config, sink detect.Sink) <-chan error {
	errCh := make(chan error, 2)

	addr := cfg.Detector.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	if addr != "" {
		srv := detect.NewServer(addr, cfg.Detector.Path, sink)
		go func() {
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("detector feed: %w", err)
			}
		}()
	}

	path := cfg.Detector.ReplayFile
	if replayPath != "" {
		path = replayPath
	}
	if path != "" {
		rp, err := detect.LoadReplay(path, cfg.Detector.ReplayInterval)
		if err != nil {
			errCh <- err
			return errCh
		}
		slog.Info("replaying detector recording", "file", path, "frames", len(rp.Frames))
		go func() {
			if err := rp.Run(ctx, sink); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("replay: %w", err)
			}
		}()
	}

	return errCh
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var replay *detect.Replay
	path := cfg.Detector.ReplayFile
	if replayPath != "" {
		path = replayPath
	}
	if path != "" {
		rp, err := detect.LoadReplay(path, cfg.Detector.ReplayInterval)
		if err != nil {
			return err
		}
		replay = rp
	}

	var history []float64
	rngSeed := resolveSeed()
	g, err := game.New(game.Options{
		Seed:      rngSeed,
		Headless:  true,
		LogStats:  logStats,
		OutputDir: outputDir,
		StatsCallback: func(s telemetry.WindowStats) {
			history = append(history, s.ParticleMean)
		},
	})
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless run",
		"seed", rngSeed,
		"max_ticks", maxTicks,
		"replay", path,
		"session", g.SessionID(),
	)

	dt := cfg.Derived.DT
	for ctx.Err() == nil {
		tick := int(g.Tick())
		if replay != nil {
			g.OnDetectionResult(replay.At(tick))
		} else {
			g.OnDetectionResult(detect.SyntheticHands(float64(tick) * dt))
		}
		g.Update()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	printSummary(history)
	return nil
}

// printSummary plots the per-window mean particle count.
func printSummary(history []float64) {
	if len(history) < 2 {
		return
	}
	fmt.Println(asciigraph.Plot(history,
		asciigraph.Height(10),
		asciigraph.Width(72),
		asciigraph.Caption("mean live particles per stats window"),
	))
}
