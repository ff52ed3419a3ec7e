package game

import (
	"log/slog"

	"github.com/pthm-cable/cyberloops/telemetry"
)

// flushTelemetry closes the stats window when it is due and fans it out to
// the callback, the log and the CSV output.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.state.SessionID.String())
	perfStats := g.perf.Stats()
	g.lastStats = stats
	g.lastPerf = perfStats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}
