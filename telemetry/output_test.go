package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/cyberloops/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	// Nil managers are safe to use.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil = %q", om.Dir())
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{SessionID: "s1", WindowEndTick: i * 600, Spawns: int(i)}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, i*600); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "session,window_end,time,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "session,") != 1 {
		t.Error("header written more than once")
	}
	if !strings.HasPrefix(lines[3], "s1,1800,") {
		t.Errorf("unexpected last row %q", lines[3])
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "lattice_pct") {
		t.Errorf("perf.csv missing phase columns:\n%s", perf)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
